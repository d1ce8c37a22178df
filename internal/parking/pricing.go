package parking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// PricingPolicy prices an interval for a spot type. Implementations must be
// deterministic and non-decreasing in elapsed time.
type PricingPolicy interface {
	Price(entry, exit time.Time, spotType SpotType) float64
}

type FlatRate struct {
	RatePerHour float64
}

func NewFlatRate(ratePerHour float64) FlatRate {
	return FlatRate{RatePerHour: ratePerHour}
}

func (p FlatRate) Price(entry, exit time.Time, _ SpotType) float64 {
	if !exit.After(entry) {
		return 0
	}
	return roundCents(p.RatePerHour * exit.Sub(entry).Hours())
}

func (p FlatRate) String() string {
	return fmt.Sprintf("flat(%.2f/h)", p.RatePerHour)
}

// PeakWindow is a half-open range of wall-clock hours [Start, End). Start is
// 0..23 and End is 0..24, so 0-24 covers the whole day. A window with
// End < Start wraps past midnight; Start == End is empty.
type PeakWindow struct {
	Start int
	End   int
}

func (w PeakWindow) Contains(hour int) bool {
	if w.Start == w.End {
		return false
	}
	if w.Start < w.End {
		return hour >= w.Start && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

func (w PeakWindow) String() string {
	return fmt.Sprintf("%d-%d", w.Start, w.End)
}

// ParsePeakWindows reads "8-11,17-20" style window lists.
func ParsePeakWindows(s string) ([]PeakWindow, error) {
	var windows []PeakWindow
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid peak window %q", part)
		}
		start, err := parseHour(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("invalid peak window %q: %w", part, err)
		}
		end, err := parseHour(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("invalid peak window %q: %w", part, err)
		}
		if start == 24 {
			return nil, fmt.Errorf("invalid peak window %q: start hour must be below 24", part)
		}
		windows = append(windows, PeakWindow{Start: start, End: end})
	}
	return windows, nil
}

func parseHour(s string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 24 {
		return 0, fmt.Errorf("hour %d out of range", h)
	}
	return h, nil
}

func DefaultPeakWindows() []PeakWindow {
	return []PeakWindow{{Start: 8, End: 11}, {Start: 17, End: 20}}
}

// PeakRate charges each hour-long step of a stay at the peak rate when the
// step starts inside a peak window, and at the base rate otherwise. Steps are
// anchored at the entry instant; the last partial step is pro-rated.
type PeakRate struct {
	BaseRate float64
	PeakRate float64
	Windows  []PeakWindow
}

// NewPeakRate charges peakRate inside windows and baseRate elsewhere. With no
// windows every hour is charged at the base rate.
func NewPeakRate(baseRate, peakRate float64, windows ...PeakWindow) PeakRate {
	return PeakRate{BaseRate: baseRate, PeakRate: peakRate, Windows: windows}
}

func (p PeakRate) Price(entry, exit time.Time, _ SpotType) float64 {
	total := 0.0
	for step := entry; step.Before(exit); step = step.Add(time.Hour) {
		fraction := 1.0
		if remaining := exit.Sub(step); remaining < time.Hour {
			fraction = remaining.Hours()
		}
		total += p.rateAt(step) * fraction
	}
	return roundCents(total)
}

func (p PeakRate) rateAt(t time.Time) float64 {
	hour := t.Hour()
	for _, w := range p.Windows {
		if w.Contains(hour) {
			return p.PeakRate
		}
	}
	return p.BaseRate
}

func (p PeakRate) String() string {
	windows := make([]string, len(p.Windows))
	for i, w := range p.Windows {
		windows[i] = w.String()
	}
	return fmt.Sprintf("peak(base %.2f/h, peak %.2f/h, windows %s)", p.BaseRate, p.PeakRate, strings.Join(windows, ","))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
