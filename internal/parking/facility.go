package parking

import (
	"context"
	"errors"
	"fmt"
)

// Layout describes the spot types of every level, in slot order.
type Layout struct {
	Levels [][]SpotType
}

// UniformLayout builds levels of equal size whose slot types cycle through mix.
func UniformLayout(levels, spotsPerLevel int, mix []SpotType) (Layout, error) {
	if levels <= 0 {
		return Layout{}, fmt.Errorf("level count must be positive, got %d", levels)
	}
	if spotsPerLevel <= 0 {
		return Layout{}, fmt.Errorf("spots per level must be positive, got %d", spotsPerLevel)
	}
	if len(mix) == 0 {
		return Layout{}, errors.New("spot mix must not be empty")
	}

	layout := Layout{Levels: make([][]SpotType, levels)}
	for i := range layout.Levels {
		types := make([]SpotType, spotsPerLevel)
		for j := range types {
			types[j] = mix[j%len(mix)]
		}
		layout.Levels[i] = types
	}
	return layout, nil
}

// DefaultMix repeats oversized, standard, compact across each level.
func DefaultMix() []SpotType {
	return []SpotType{SpotOversized, SpotStandard, SpotCompact}
}

func DefaultLayout() Layout {
	layout, _ := UniformLayout(3, 10, DefaultMix())
	return layout
}

type Allocation struct {
	Level int
	Spot  int
	Type  SpotType
}

// Allocator is the facility-wide claim/release contract the gates consume.
type Allocator interface {
	Allocate(spotType SpotType, occupant *Vehicle) (Allocation, bool)
	Release(level, spot int) error
}

// contextAllocator is implemented by allocators that trace under the
// caller's span.
type contextAllocator interface {
	AllocateContext(ctx context.Context, spotType SpotType, occupant *Vehicle) (Allocation, bool)
	ReleaseContext(ctx context.Context, level, spot int) error
}

func allocate(ctx context.Context, a Allocator, spotType SpotType, occupant *Vehicle) (Allocation, bool) {
	if ca, ok := a.(contextAllocator); ok {
		return ca.AllocateContext(ctx, spotType, occupant)
	}
	return a.Allocate(spotType, occupant)
}

func release(ctx context.Context, a Allocator, level, spot int) error {
	if ca, ok := a.(contextAllocator); ok {
		return ca.ReleaseContext(ctx, level, spot)
	}
	return a.Release(level, spot)
}

// Facility aggregates levels. It holds no lock of its own: levels are tried in
// a fixed order and each claim runs under that level's lock only.
type Facility struct {
	levels []*Level
}

func NewFacility(layout Layout) (*Facility, error) {
	if len(layout.Levels) == 0 {
		return nil, errors.New("facility needs at least one level")
	}

	levels := make([]*Level, len(layout.Levels))
	for i, types := range layout.Levels {
		for _, t := range types {
			if !t.Valid() {
				return nil, fmt.Errorf("level %d: invalid spot type %s", i, t)
			}
		}
		levels[i] = NewLevel(i, types)
	}

	return &Facility{levels: levels}, nil
}

func (f *Facility) Allocate(spotType SpotType, occupant *Vehicle) (Allocation, bool) {
	for _, level := range f.levels {
		if spot, ok := level.Claim(spotType, occupant); ok {
			return Allocation{Level: level.ID(), Spot: spot, Type: spotType}, true
		}
	}
	return Allocation{}, false
}

func (f *Facility) Release(level, spot int) error {
	_, err := f.Vacate(level, spot)
	return err
}

// Vacate releases a spot and reports what occupied it.
func (f *Facility) Vacate(level, spot int) (SlotStatus, error) {
	if level < 0 || level >= len(f.levels) {
		return SlotStatus{}, fmt.Errorf("%w: level %d", ErrInvalidReference, level)
	}
	return f.levels[level].Release(spot)
}

func (f *Facility) Levels() int {
	return len(f.levels)
}

func (f *Facility) Capacity() int {
	total := 0
	for _, level := range f.levels {
		total += level.Capacity()
	}
	return total
}

// Status snapshots each level in turn; the result is not a single atomic view
// across levels.
func (f *Facility) Status() []LevelStatus {
	statuses := make([]LevelStatus, len(f.levels))
	for i, level := range f.levels {
		statuses[i] = level.Snapshot()
	}
	return statuses
}

func (f *Facility) Locate(registrationNumber string) (Allocation, error) {
	if registrationNumber == "" {
		return Allocation{}, fmt.Errorf("%w: empty registration number", ErrInvalidReference)
	}
	for _, level := range f.levels {
		if spot, ok := level.Find(registrationNumber); ok {
			return Allocation{Level: level.ID(), Spot: spot, Type: level.slots[spot].Type}, nil
		}
	}
	return Allocation{}, fmt.Errorf("%w: vehicle %s is not parked", ErrInvalidReference, registrationNumber)
}
