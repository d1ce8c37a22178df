package parking

import (
	"fmt"
	"strings"
)

// SpotType tags both a parking spot and the demand a vehicle places on the
// facility. The set is closed.
type SpotType int

const (
	SpotCompact SpotType = iota
	SpotStandard
	SpotOversized
)

var spotTypeNames = [...]string{
	SpotCompact:   "compact",
	SpotStandard:  "standard",
	SpotOversized: "oversized",
}

// SpotTypes lists every spot type in declaration order.
func SpotTypes() []SpotType {
	return []SpotType{SpotCompact, SpotStandard, SpotOversized}
}

func (t SpotType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("SpotType(%d)", int(t))
	}
	return spotTypeNames[t]
}

func (t SpotType) Valid() bool {
	return t >= SpotCompact && t <= SpotOversized
}

func ParseSpotType(s string) (SpotType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range spotTypeNames {
		if n == name {
			return SpotType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown spot type %q", s)
}

type VehicleKind int

const (
	Motorcycle VehicleKind = iota
	Car
	Truck
)

var vehicleKindNames = [...]string{
	Motorcycle: "motorcycle",
	Car:        "car",
	Truck:      "truck",
}

func (k VehicleKind) String() string {
	if k < Motorcycle || k > Truck {
		return fmt.Sprintf("VehicleKind(%d)", int(k))
	}
	return vehicleKindNames[k]
}

func ParseVehicleKind(s string) (VehicleKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range vehicleKindNames {
		if n == name {
			return VehicleKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown vehicle kind %q", s)
}

// SpotTypeFor classifies a vehicle kind into the spot type it occupies.
func SpotTypeFor(kind VehicleKind) (SpotType, error) {
	switch kind {
	case Motorcycle:
		return SpotCompact, nil
	case Car:
		return SpotStandard, nil
	case Truck:
		return SpotOversized, nil
	default:
		return 0, fmt.Errorf("%w: unclassified vehicle kind %s", ErrInvalidReference, kind)
	}
}

type Vehicle struct {
	RegistrationNumber string
	Color              string
	Kind               VehicleKind
}

func NewVehicle(registrationNumber, color string, kind VehicleKind) *Vehicle {
	return &Vehicle{
		RegistrationNumber: registrationNumber,
		Color:              color,
		Kind:               kind,
	}
}

func (v *Vehicle) SpotType() (SpotType, error) {
	return SpotTypeFor(v.Kind)
}
