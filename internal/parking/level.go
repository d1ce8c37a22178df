package parking

import (
	"fmt"
	"sync"
)

// Level is one independently locked partition of the facility. Its slot set
// is fixed at construction.
type Level struct {
	id    int
	mu    sync.Mutex
	slots []*Slot
}

type SlotStatus struct {
	Number  int
	Type    SpotType
	Vehicle Vehicle
}

type LevelStatus struct {
	Level    int
	Capacity int
	Free     map[SpotType]int
	Claimed  map[SpotType]int
	Occupied []SlotStatus
}

func NewLevel(id int, types []SpotType) *Level {
	slots := make([]*Slot, len(types))
	for i, t := range types {
		slots[i] = NewSlot(i, t)
	}

	return &Level{
		id:    id,
		slots: slots,
	}
}

func (l *Level) ID() int {
	return l.id
}

func (l *Level) Capacity() int {
	return len(l.slots)
}

// Claim marks the first free slot of the requested type as occupied and
// returns its number. Lookup and mark happen under a single lock hold. The
// slot keeps its own copy of the occupant.
func (l *Level) Claim(spotType SpotType, occupant *Vehicle) (int, bool) {
	held := &Vehicle{}
	if occupant != nil {
		*held = *occupant
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, slot := range l.slots {
		if !slot.IsOccupied() && slot.Type == spotType {
			slot.Park(held)
			return slot.Number, true
		}
	}
	return 0, false
}

// Release frees a claimed slot and reports what it held.
func (l *Level) Release(number int) (SlotStatus, error) {
	if number < 0 || number >= len(l.slots) {
		return SlotStatus{}, fmt.Errorf("%w: spot %d on level %d", ErrInvalidReference, number, l.id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	slot := l.slots[number]
	if !slot.IsOccupied() {
		return SlotStatus{}, fmt.Errorf("%w: spot %d on level %d is already free", ErrInvalidState, number, l.id)
	}

	vehicle := slot.Leave()
	return SlotStatus{Number: slot.Number, Type: slot.Type, Vehicle: *vehicle}, nil
}

func (l *Level) Find(registrationNumber string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, slot := range l.slots {
		if slot.IsOccupied() && slot.Vehicle.RegistrationNumber == registrationNumber {
			return slot.Number, true
		}
	}
	return 0, false
}

func (l *Level) Snapshot() LevelStatus {
	status := LevelStatus{
		Level:    l.id,
		Capacity: len(l.slots),
		Free:     make(map[SpotType]int),
		Claimed:  make(map[SpotType]int),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, slot := range l.slots {
		if !slot.IsOccupied() {
			status.Free[slot.Type]++
			continue
		}
		status.Claimed[slot.Type]++
		status.Occupied = append(status.Occupied, SlotStatus{
			Number:  slot.Number,
			Type:    slot.Type,
			Vehicle: *slot.Vehicle,
		})
	}

	return status
}
