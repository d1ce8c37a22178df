package parking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-facility/internal/telemetry"
)

// InstrumentedFacility observes a Facility with spans and metrics. The
// wrapped facility stays free of telemetry.
type InstrumentedFacility struct {
	*Facility
	telemetry *telemetry.Provider

	allocations       metric.Int64Counter
	releases          metric.Int64Counter
	occupancy         metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
}

func NewInstrumentedFacility(facility *Facility, tp *telemetry.Provider) (*InstrumentedFacility, error) {
	meter := tp.Meter()

	allocations, err := meter.Int64Counter("parking_allocations_total",
		metric.WithDescription("Total number of spot allocation attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	releases, err := meter.Int64Counter("parking_releases_total",
		metric.WithDescription("Total number of spot release attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancy, err := meter.Int64UpDownCounter("parking_facility_occupancy",
		metric.WithDescription("Current number of claimed spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("parking_operation_duration_seconds",
		metric.WithDescription("Duration of facility operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedFacility{
		Facility:          facility,
		telemetry:         tp,
		allocations:       allocations,
		releases:          releases,
		occupancy:         occupancy,
		operationDuration: operationDuration,
	}, nil
}

// Allocate keeps the Allocator signature, so it records against a background
// context; AllocateContext carries the caller's span.
func (f *InstrumentedFacility) Allocate(spotType SpotType, occupant *Vehicle) (Allocation, bool) {
	return f.AllocateContext(context.Background(), spotType, occupant)
}

func (f *InstrumentedFacility) AllocateContext(ctx context.Context, spotType SpotType, occupant *Vehicle) (Allocation, bool) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.allocate",
		trace.WithAttributes(
			attribute.String("spot.type", spotType.String()),
		))
	defer span.End()

	start := time.Now()
	allocation, ok := f.Facility.Allocate(spotType, occupant)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "allocate"),
		attribute.String("spot_type", spotType.String()),
	}

	if !ok {
		span.AddEvent("unavailable")
		labels = append(labels, attribute.String("status", "unavailable"))
	} else {
		span.SetAttributes(
			attribute.Int("allocation.level", allocation.Level),
			attribute.Int("allocation.spot", allocation.Spot),
		)
		labels = append(labels, attribute.String("status", "success"))
		f.occupancy.Add(ctx, 1, metric.WithAttributes(attribute.String("spot_type", spotType.String())))
	}

	f.allocations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return allocation, ok
}

func (f *InstrumentedFacility) Release(level, spot int) error {
	return f.ReleaseContext(context.Background(), level, spot)
}

func (f *InstrumentedFacility) ReleaseContext(ctx context.Context, level, spot int) error {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.release",
		trace.WithAttributes(
			attribute.Int("allocation.level", level),
			attribute.Int("allocation.spot", spot),
		))
	defer span.End()

	start := time.Now()
	vacated, err := f.Facility.Vacate(level, spot)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "release"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		span.SetAttributes(attribute.String("vehicle.registration_number", vacated.Vehicle.RegistrationNumber))
		span.AddEvent("spot_released")
		labels = append(labels, attribute.String("status", "success"))
		f.occupancy.Add(ctx, -1, metric.WithAttributes(attribute.String("spot_type", vacated.Type.String())))
	}

	f.releases.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return err
}
