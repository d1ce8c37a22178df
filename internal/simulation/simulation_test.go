package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/parking"
	"parking-facility/internal/stats"
)

func newAttendant(t *testing.T, layout parking.Layout) (*parking.Attendant, *parking.Facility, *stats.MemoryStore) {
	t.Helper()

	facility, err := parking.NewFacility(layout)
	require.NoError(t, err)
	recorder := stats.NewMemoryStore()
	attendant := parking.NewAttendant(facility,
		parking.NewEntryGate(1, facility, parking.NewFlatRate(5), nil),
		parking.NewExitGate(1, facility, nil),
		recorder,
	)
	return attendant, facility, recorder
}

func fastConfig() Config {
	return Config{
		Workers:         4,
		Vehicles:        40,
		MaxDwell:        2 * time.Millisecond,
		MaxTries:        100,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestRunReturnsEverySpot(t *testing.T) {
	layout := parking.Layout{Levels: [][]parking.SpotType{
		{parking.SpotCompact, parking.SpotStandard, parking.SpotOversized},
		{parking.SpotCompact, parking.SpotStandard, parking.SpotOversized},
	}}
	attendant, facility, recorder := newAttendant(t, layout)

	report, err := Run(context.Background(), fastConfig(), attendant)
	require.NoError(t, err)

	assert.Equal(t, int64(40), report.Admitted+report.GaveUp)
	assert.Equal(t, report.Admitted, report.Departed)
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.Inconsistent)
	assert.Empty(t, attendant.Active())

	for _, level := range facility.Status() {
		assert.Empty(t, level.Occupied)
	}

	summary, err := recorder.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Admitted, summary.Totals[stats.OutcomeAdmitted])
	assert.Equal(t, report.Departed, summary.Totals[stats.OutcomeDeparted])
}

func TestRunGivesUpWhenFull(t *testing.T) {
	layout := parking.Layout{Levels: [][]parking.SpotType{
		{parking.SpotCompact, parking.SpotStandard, parking.SpotOversized},
	}}
	attendant, _, _ := newAttendant(t, layout)
	ctx := context.Background()

	for i, kind := range []parking.VehicleKind{parking.Motorcycle, parking.Car, parking.Truck} {
		_, err := attendant.Park(ctx, parking.NewVehicle("HOLD-"+string(rune('A'+i)), "Grey", kind))
		require.NoError(t, err)
	}

	cfg := fastConfig()
	cfg.Vehicles = 5
	cfg.MaxTries = 2

	report, err := Run(ctx, cfg, attendant)
	require.NoError(t, err)
	assert.Equal(t, int64(5), report.GaveUp)
	assert.Zero(t, report.Admitted)
	assert.Len(t, attendant.Active(), 3)
}

func TestRunRejectsBadConfig(t *testing.T) {
	attendant, _, _ := newAttendant(t, parking.DefaultLayout())

	_, err := Run(context.Background(), Config{Workers: 0}, attendant)
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SIM_WORKERS", "3")
	t.Setenv("SIM_MAX_DWELL", "1s")
	t.Setenv("SIM_MAX_TRIES", "bogus")

	cfg := LoadConfig()
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, time.Second, cfg.MaxDwell)
	assert.Equal(t, 5, cfg.MaxTries)
}
