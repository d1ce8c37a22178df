package parking

// Slot is a single parking spot. Its state is only touched by the owning
// Level while that level's lock is held.
type Slot struct {
	Number  int
	Type    SpotType
	Vehicle *Vehicle
}

func NewSlot(number int, spotType SpotType) *Slot {
	return &Slot{
		Number: number,
		Type:   spotType,
	}
}

// IsOccupied reports whether the slot holds a live allocation.
func (s *Slot) IsOccupied() bool {
	return s.Vehicle != nil
}

func (s *Slot) Park(vehicle *Vehicle) {
	s.Vehicle = vehicle
}

func (s *Slot) Leave() *Vehicle {
	vehicle := s.Vehicle
	s.Vehicle = nil
	return vehicle
}
