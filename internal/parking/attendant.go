package parking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"parking-facility/internal/logging"
	"parking-facility/internal/stats"
)

// Attendant is the caller that holds tickets on behalf of drivers. The
// facility keeps no ticket references, so the active set lives here.
type Attendant struct {
	facility *Facility
	entry    *EntryGate
	exit     *ExitGate
	recorder stats.Recorder

	mu      sync.RWMutex
	tickets map[string]*Ticket
}

func NewAttendant(facility *Facility, entry *EntryGate, exit *ExitGate, recorder stats.Recorder) *Attendant {
	if recorder == nil {
		recorder = stats.NewMemoryStore()
	}
	return &Attendant{
		facility: facility,
		entry:    entry,
		exit:     exit,
		recorder: recorder,
		tickets:  make(map[string]*Ticket),
	}
}

func (a *Attendant) Park(ctx context.Context, vehicle *Vehicle) (*Ticket, error) {
	ticket, err := a.entry.Admit(ctx, vehicle)
	if err != nil {
		spotType := ""
		if vehicle != nil {
			if t, typeErr := vehicle.SpotType(); typeErr == nil {
				spotType = t.String()
			}
		}
		if IsUnavailable(err) {
			logging.Info(ctx, "no spot available", slog.String("spot_type", spotType))
			a.record(ctx, stats.Event{Outcome: stats.OutcomeUnavailable, SpotType: spotType})
		} else {
			logging.Warn(ctx, "admission rejected", slog.String("error", err.Error()))
			a.record(ctx, stats.Event{Outcome: stats.OutcomeRejected, SpotType: spotType})
		}
		return nil, err
	}

	a.mu.Lock()
	a.tickets[ticket.ID()] = ticket
	a.mu.Unlock()

	allocation := ticket.Allocation()
	logging.Info(ctx, "vehicle admitted",
		slog.String("ticket_id", ticket.ID()),
		slog.String("registration", vehicle.RegistrationNumber),
		slog.Int("level", allocation.Level),
		slog.Int("spot", allocation.Spot),
	)
	a.record(ctx, stats.Event{Outcome: stats.OutcomeAdmitted, SpotType: allocation.Type.String(), At: ticket.EntryTime()})
	return ticket, nil
}

// Leave presents the ticket at the exit gate. The ticket is forgotten once it
// is settled, including when the spot release is reported inconsistent.
func (a *Attendant) Leave(ctx context.Context, ticketID string) (*Ticket, error) {
	a.mu.RLock()
	ticket, ok := a.tickets[ticketID]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown ticket %s", ErrInvalidReference, ticketID)
	}
	ctx = logging.AppendAttrs(ctx, slog.String("ticket_id", ticketID))

	price, err := a.exit.Depart(ctx, ticket)
	spotType := ticket.Allocation().Type.String()

	var inconsistency *InconsistencyError
	switch {
	case err == nil:
	case errors.As(err, &inconsistency):
		logging.Error(ctx, "ticket settled but spot not released",
			slog.Float64("price", price),
			slog.String("error", err.Error()),
		)
		a.forget(ticketID)
		a.record(ctx, stats.Event{Outcome: stats.OutcomeInconsistent, SpotType: spotType, Amount: price})
		return ticket, err
	default:
		logging.Warn(ctx, "departure rejected", slog.String("error", err.Error()))
		return nil, err
	}

	a.forget(ticketID)
	logging.Info(ctx, "vehicle departed", slog.Float64("price", price))
	a.record(ctx, stats.Event{Outcome: stats.OutcomeDeparted, SpotType: spotType, Amount: price})
	return ticket, nil
}

func (a *Attendant) Ticket(id string) (*Ticket, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ticket, ok := a.tickets[id]
	return ticket, ok
}

// Active lists held tickets ordered by entry time.
func (a *Attendant) Active() []*Ticket {
	a.mu.RLock()
	tickets := make([]*Ticket, 0, len(a.tickets))
	for _, ticket := range a.tickets {
		tickets = append(tickets, ticket)
	}
	a.mu.RUnlock()

	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].EntryTime().Equal(tickets[j].EntryTime()) {
			return tickets[i].ID() < tickets[j].ID()
		}
		return tickets[i].EntryTime().Before(tickets[j].EntryTime())
	})
	return tickets
}

func (a *Attendant) Status() []LevelStatus {
	return a.facility.Status()
}

func (a *Attendant) Capacity() int {
	return a.facility.Capacity()
}

func (a *Attendant) Locate(registrationNumber string) (Allocation, error) {
	return a.facility.Locate(registrationNumber)
}

func (a *Attendant) Stats(ctx context.Context) (stats.Summary, error) {
	return a.recorder.Snapshot(ctx)
}

func (a *Attendant) forget(ticketID string) {
	a.mu.Lock()
	delete(a.tickets, ticketID)
	a.mu.Unlock()
}

func (a *Attendant) record(ctx context.Context, ev stats.Event) {
	if err := a.recorder.Record(ctx, ev); err != nil {
		logging.Warn(ctx, "failed to record gate event",
			slog.String("outcome", string(ev.Outcome)),
			slog.String("error", err.Error()),
		)
	}
}
