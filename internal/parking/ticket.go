package parking

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type TicketState int

const (
	TicketActive TicketState = iota
	TicketSettled
)

func (s TicketState) String() string {
	switch s {
	case TicketActive:
		return "active"
	case TicketSettled:
		return "settled"
	default:
		return fmt.Sprintf("TicketState(%d)", int(s))
	}
}

// Ticket records one allocation from claim to settlement. It moves from
// Active to Settled exactly once and is immutable afterwards.
type Ticket struct {
	id         string
	vehicle    Vehicle
	allocation Allocation
	entryTime  time.Time
	policy     PricingPolicy

	mu       sync.Mutex
	state    TicketState
	exitTime time.Time
	price    float64
}

type TicketInfo struct {
	ID           string     `json:"ticket_id"`
	Registration string     `json:"registration"`
	Color        string     `json:"color,omitempty"`
	VehicleKind  string     `json:"vehicle_kind"`
	SpotType     string     `json:"spot_type"`
	Level        int        `json:"level"`
	Spot         int        `json:"spot"`
	State        string     `json:"state"`
	EntryTime    time.Time  `json:"entry_time"`
	ExitTime     *time.Time `json:"exit_time,omitempty"`
	Price        *float64   `json:"price,omitempty"`
}

func NewTicket(vehicle Vehicle, allocation Allocation, entryTime time.Time, policy PricingPolicy) *Ticket {
	return &Ticket{
		id:         uuid.New().String(),
		vehicle:    vehicle,
		allocation: allocation,
		entryTime:  entryTime,
		policy:     policy,
		state:      TicketActive,
	}
}

func (t *Ticket) ID() string {
	return t.id
}

func (t *Ticket) Vehicle() Vehicle {
	return t.vehicle
}

func (t *Ticket) Allocation() Allocation {
	return t.allocation
}

func (t *Ticket) EntryTime() time.Time {
	return t.entryTime
}

func (t *Ticket) State() TicketState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Price returns the settled price; ok is false while the ticket is active.
func (t *Ticket) Price() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.price, t.state == TicketSettled
}

// Settle prices the stay up to exitTime and freezes the result. A second call
// fails with ErrInvalidState and leaves the recorded price untouched.
func (t *Ticket) Settle(exitTime time.Time) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TicketSettled {
		return 0, fmt.Errorf("%w: ticket %s is already settled", ErrInvalidState, t.id)
	}
	if exitTime.Before(t.entryTime) {
		return 0, fmt.Errorf("%w: exit %s precedes entry %s for ticket %s",
			ErrInvalidState, exitTime.Format(time.RFC3339), t.entryTime.Format(time.RFC3339), t.id)
	}

	t.price = t.policy.Price(t.entryTime, exitTime, t.allocation.Type)
	t.exitTime = exitTime
	t.state = TicketSettled
	return t.price, nil
}

func (t *Ticket) Info() TicketInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	info := TicketInfo{
		ID:           t.id,
		Registration: t.vehicle.RegistrationNumber,
		Color:        t.vehicle.Color,
		VehicleKind:  t.vehicle.Kind.String(),
		SpotType:     t.allocation.Type.String(),
		Level:        t.allocation.Level,
		Spot:         t.allocation.Spot,
		State:        t.state.String(),
		EntryTime:    t.entryTime,
	}
	if t.state == TicketSettled {
		exit := t.exitTime
		price := t.price
		info.ExitTime = &exit
		info.Price = &price
	}
	return info
}
