package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

func TestFlatRatePrice(t *testing.T) {
	p := NewFlatRate(5)

	assert.InDelta(t, 12.5, p.Price(at(1, 10, 0), at(1, 12, 30), SpotStandard), 1e-9)
	assert.InDelta(t, 0.0, p.Price(at(1, 10, 0), at(1, 10, 0), SpotStandard), 1e-9)
	assert.InDelta(t, 0.0, p.Price(at(1, 10, 0), at(1, 9, 0), SpotStandard), 1e-9)
	// exact elapsed time, not calendar hour difference
	assert.InDelta(t, 0.83, p.Price(at(1, 10, 50), at(1, 11, 0), SpotStandard), 1e-9)
	assert.InDelta(t, 120.0, p.Price(at(1, 22, 0), at(2, 22, 0), SpotOversized), 1e-9)
}

func TestPeakRatePrice(t *testing.T) {
	tests := []struct {
		name   string
		policy PeakRate
		entry  time.Time
		exit   time.Time
		want   float64
	}{
		{
			name:   "half hour base then an hour of peak",
			policy: NewPeakRate(5, 10, PeakWindow{Start: 8, End: 10}),
			entry:  at(1, 7, 30),
			exit:   at(1, 9, 30),
			want:   15,
		},
		{
			name:   "partial final step is pro-rated",
			policy: NewPeakRate(5, 10, PeakWindow{Start: 8, End: 10}),
			entry:  at(1, 7, 30),
			exit:   at(1, 8, 0),
			want:   2.5,
		},
		{
			name:   "partial step starting in peak",
			policy: NewPeakRate(5, 10, PeakWindow{Start: 8, End: 10}),
			entry:  at(1, 8, 15),
			exit:   at(1, 9, 0),
			want:   7.5,
		},
		{
			name:   "crosses midnight",
			policy: NewPeakRate(5, 10, PeakWindow{Start: 0, End: 1}),
			entry:  at(1, 23, 30),
			exit:   at(2, 1, 30),
			want:   15,
		},
		{
			name:   "window wrapping midnight",
			policy: NewPeakRate(5, 10, PeakWindow{Start: 22, End: 2}),
			entry:  at(1, 21, 0),
			exit:   at(2, 3, 0),
			want:   5 + 10*4 + 5,
		},
		{
			name:   "two full days with default windows",
			policy: NewPeakRate(5, 10, DefaultPeakWindows()...),
			entry:  at(1, 0, 0),
			exit:   at(3, 0, 0),
			want:   2 * (18*5 + 6*10),
		},
		{
			name:   "crosses month end",
			policy: NewPeakRate(5, 10, PeakWindow{Start: 8, End: 11}),
			entry:  time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC),
			exit:   time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC),
			want:   9*5 + 1*10,
		},
		{
			name:   "empty interval",
			policy: NewPeakRate(5, 10, DefaultPeakWindows()...),
			entry:  at(1, 9, 0),
			exit:   at(1, 9, 0),
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.policy.Price(tt.entry, tt.exit, SpotStandard), 1e-9)
		})
	}
}

func TestPricingIsMonotonic(t *testing.T) {
	policies := []PricingPolicy{
		NewFlatRate(3.5),
		NewPeakRate(5, 10, DefaultPeakWindows()...),
		NewPeakRate(2, 7, PeakWindow{Start: 22, End: 3}),
	}
	entry := at(1, 6, 17)

	for _, p := range policies {
		prev := 0.0
		for minutes := 0; minutes <= 48*60; minutes += 7 {
			price := p.Price(entry, entry.Add(time.Duration(minutes)*time.Minute), SpotCompact)
			require.GreaterOrEqual(t, price, prev, "policy %v at %d minutes", p, minutes)
			prev = price
		}
	}
}

func TestPeakWindowContains(t *testing.T) {
	day := PeakWindow{Start: 8, End: 11}
	assert.True(t, day.Contains(8))
	assert.True(t, day.Contains(10))
	assert.False(t, day.Contains(11))
	assert.False(t, day.Contains(7))

	night := PeakWindow{Start: 22, End: 2}
	assert.True(t, night.Contains(23))
	assert.True(t, night.Contains(0))
	assert.True(t, night.Contains(1))
	assert.False(t, night.Contains(2))
	assert.False(t, night.Contains(21))

	assert.False(t, PeakWindow{Start: 5, End: 5}.Contains(5))

	late := PeakWindow{Start: 22, End: 24}
	assert.True(t, late.Contains(22))
	assert.True(t, late.Contains(23))
	assert.False(t, late.Contains(0))

	allDay := PeakWindow{Start: 0, End: 24}
	for hour := 0; hour < 24; hour++ {
		assert.True(t, allDay.Contains(hour), hour)
	}
}

func TestParsePeakWindows(t *testing.T) {
	windows, err := ParsePeakWindows("8-11, 17-20,22-24")
	require.NoError(t, err)
	assert.Equal(t, []PeakWindow{{8, 11}, {17, 20}, {22, 24}}, windows)

	for _, bad := range []string{"8", "x-9", "25-3", "8-", "24-2"} {
		_, err := ParsePeakWindows(bad)
		assert.Error(t, err, bad)
	}

	windows, err = ParsePeakWindows("")
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestPeakRateAllDayWindow(t *testing.T) {
	windows, err := ParsePeakWindows("0-24")
	require.NoError(t, err)
	assert.Equal(t, []PeakWindow{{0, 24}}, windows)

	p := NewPeakRate(5, 10, windows...)
	assert.InDelta(t, 10.0, p.Price(at(1, 12, 0), at(1, 13, 0), SpotStandard), 1e-9)
	assert.InDelta(t, 240.0, p.Price(at(1, 0, 0), at(2, 0, 0), SpotStandard), 1e-9)
}

func TestPeakRateWithoutWindowsChargesBase(t *testing.T) {
	windows, err := ParsePeakWindows("")
	require.NoError(t, err)

	p := NewPeakRate(5, 10, windows...)
	assert.InDelta(t, 5.0, p.Price(at(1, 9, 0), at(1, 10, 0), SpotStandard), 1e-9)
	assert.InDelta(t, 5.0, NewPeakRate(5, 10).Price(at(1, 9, 0), at(1, 10, 0), SpotStandard), 1e-9)
}
