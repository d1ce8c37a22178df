package parking

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("parking-facility/gates")

// EntryGate turns an arrival into a claimed spot and an active ticket.
type EntryGate struct {
	ID        int
	allocator Allocator
	policy    PricingPolicy
	clock     Clock
}

func NewEntryGate(id int, allocator Allocator, policy PricingPolicy, clock Clock) *EntryGate {
	if clock == nil {
		clock = SystemClock
	}
	return &EntryGate{
		ID:        id,
		allocator: allocator,
		policy:    policy,
		clock:     clock,
	}
}

// Admit claims a spot for the vehicle. When nothing matches it returns
// ErrUnavailable and changes nothing.
func (g *EntryGate) Admit(ctx context.Context, vehicle *Vehicle) (*Ticket, error) {
	ctx, span := tracer.Start(ctx, "gate.admit",
		trace.WithAttributes(
			attribute.Int("gate.id", g.ID),
		))
	defer span.End()

	if vehicle == nil {
		err := fmt.Errorf("%w: no vehicle presented", ErrInvalidReference)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("vehicle.registration_number", vehicle.RegistrationNumber),
		attribute.String("vehicle.kind", vehicle.Kind.String()),
	)

	spotType, err := vehicle.SpotType()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	allocation, ok := allocate(ctx, g.allocator, spotType, vehicle)
	if !ok {
		span.AddEvent("no_spot_available")
		return nil, fmt.Errorf("%w: no free %s spot", ErrUnavailable, spotType)
	}

	ticket := NewTicket(*vehicle, allocation, g.clock.Now(), g.policy)
	span.SetAttributes(
		attribute.String("ticket.id", ticket.ID()),
		attribute.Int("allocation.level", allocation.Level),
		attribute.Int("allocation.spot", allocation.Spot),
	)
	return ticket, nil
}

// ExitGate settles a ticket and hands its spot back to the facility.
type ExitGate struct {
	ID        int
	allocator Allocator
	clock     Clock
}

func NewExitGate(id int, allocator Allocator, clock Clock) *ExitGate {
	if clock == nil {
		clock = SystemClock
	}
	return &ExitGate{
		ID:        id,
		allocator: allocator,
		clock:     clock,
	}
}

// Depart settles the ticket at the current time and releases its spot. If the
// release fails after settlement the returned error is an
// *InconsistencyError; the price stays frozen on the ticket.
func (g *ExitGate) Depart(ctx context.Context, ticket *Ticket) (float64, error) {
	ctx, span := tracer.Start(ctx, "gate.depart",
		trace.WithAttributes(
			attribute.Int("gate.id", g.ID),
		))
	defer span.End()

	if ticket == nil {
		err := fmt.Errorf("%w: no ticket presented", ErrInvalidReference)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.String("ticket.id", ticket.ID()))

	price, err := ticket.Settle(g.clock.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Float64("ticket.price", price))

	allocation := ticket.Allocation()
	if err := release(ctx, g.allocator, allocation.Level, allocation.Spot); err != nil {
		inconsistency := &InconsistencyError{
			TicketID: ticket.ID(),
			Level:    allocation.Level,
			Spot:     allocation.Spot,
			Price:    price,
			Err:      err,
		}
		span.RecordError(inconsistency)
		span.SetStatus(codes.Error, inconsistency.Error())
		return price, inconsistency
	}

	span.AddEvent("spot_released")
	return price, nil
}

// IsUnavailable reports whether err is the normal no-spot outcome.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
