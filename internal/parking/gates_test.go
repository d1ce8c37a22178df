package parking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingAllocator claims through a real facility but refuses every release.
type failingAllocator struct {
	*Facility
}

func (a failingAllocator) Release(level, spot int) error {
	return errors.New("release refused")
}

func TestEntryGateAdmit(t *testing.T) {
	facility, _ := NewFacility(DefaultLayout())
	clock := newFakeClock(at(1, 10, 0))
	entry := NewEntryGate(1, facility, NewFlatRate(5), clock)

	ticket, err := entry.Admit(context.Background(), NewVehicle("CAR-123", "White", Car))
	require.NoError(t, err)

	assert.Equal(t, TicketActive, ticket.State())
	assert.Equal(t, Allocation{Level: 0, Spot: 1, Type: SpotStandard}, ticket.Allocation())
	assert.Equal(t, at(1, 10, 0), ticket.EntryTime())

	located, err := facility.Locate("CAR-123")
	require.NoError(t, err)
	assert.Equal(t, ticket.Allocation(), located)
}

func TestEntryGateUnavailableHasNoSideEffects(t *testing.T) {
	facility, _ := NewFacility(Layout{Levels: [][]SpotType{{SpotCompact}}})
	entry := NewEntryGate(1, facility, NewFlatRate(5), nil)
	before := facility.Status()

	ticket, err := entry.Admit(context.Background(), NewVehicle("TRUCK-789", "Red", Truck))
	assert.Nil(t, ticket)
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, before, facility.Status())
}

func TestEntryGateRejectsBadVehicles(t *testing.T) {
	facility, _ := NewFacility(DefaultLayout())
	entry := NewEntryGate(1, facility, NewFlatRate(5), nil)

	_, err := entry.Admit(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrInvalidReference))

	_, err = entry.Admit(context.Background(), &Vehicle{RegistrationNumber: "X", Kind: VehicleKind(9)})
	assert.True(t, errors.Is(err, ErrInvalidReference))
}

func TestExitGateDepart(t *testing.T) {
	facility, _ := NewFacility(DefaultLayout())
	clock := newFakeClock(at(1, 10, 0))
	entry := NewEntryGate(1, facility, NewFlatRate(5), clock)
	exit := NewExitGate(1, facility, clock)
	ctx := context.Background()

	ticket, err := entry.Admit(ctx, NewVehicle("CAR-123", "White", Car))
	require.NoError(t, err)

	clock.Advance(2*time.Hour + 30*time.Minute)
	price, err := exit.Depart(ctx, ticket)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, price, 1e-9)
	assert.Equal(t, TicketSettled, ticket.State())

	_, err = facility.Locate("CAR-123")
	assert.Error(t, err)

	_, err = exit.Depart(ctx, ticket)
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = exit.Depart(ctx, nil)
	assert.True(t, errors.Is(err, ErrInvalidReference))
}

func TestExitGateReportsInconsistency(t *testing.T) {
	facility, _ := NewFacility(DefaultLayout())
	allocator := failingAllocator{Facility: facility}
	clock := newFakeClock(at(1, 7, 30))
	entry := NewEntryGate(1, allocator, NewPeakRate(5, 10, PeakWindow{Start: 8, End: 10}), clock)
	exit := NewExitGate(2, allocator, clock)
	ctx := context.Background()

	ticket, err := entry.Admit(ctx, NewVehicle("CAR-123", "White", Car))
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	price, err := exit.Depart(ctx, ticket)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistent))
	assert.InDelta(t, 15.0, price, 1e-9)

	var inconsistency *InconsistencyError
	require.True(t, errors.As(err, &inconsistency))
	assert.Equal(t, ticket.ID(), inconsistency.TicketID)
	assert.InDelta(t, 15.0, inconsistency.Price, 1e-9)

	settledPrice, settled := ticket.Price()
	assert.True(t, settled)
	assert.InDelta(t, 15.0, settledPrice, 1e-9)

	_, err = facility.Locate("CAR-123")
	assert.NoError(t, err, "spot stays claimed after a failed release")
}
