package parking

import (
	"errors"
	"reflect"
	"testing"
)

func TestLevelClaimFirstFit(t *testing.T) {
	level := NewLevel(0, []SpotType{SpotOversized, SpotStandard, SpotCompact, SpotStandard})

	spot, ok := level.Claim(SpotStandard, NewVehicle("KA01HH1234", "White", Car))
	if !ok {
		t.Fatal("Expected a standard spot to be claimed")
	}
	if spot != 1 {
		t.Errorf("Expected spot 1, got %d", spot)
	}

	spot, ok = level.Claim(SpotStandard, NewVehicle("KA01HH9999", "Black", Car))
	if !ok || spot != 3 {
		t.Errorf("Expected spot 3, got %d (ok=%t)", spot, ok)
	}

	if _, ok := level.Claim(SpotStandard, NewVehicle("KA01BB0001", "Red", Car)); ok {
		t.Error("Expected no standard spot to be left")
	}

	spot, ok = level.Claim(SpotCompact, nil)
	if !ok || spot != 2 {
		t.Errorf("Expected anonymous claim of spot 2, got %d (ok=%t)", spot, ok)
	}
}

func TestLevelRelease(t *testing.T) {
	level := NewLevel(4, []SpotType{SpotStandard, SpotStandard})
	vehicle := NewVehicle("KA01HH1234", "White", Car)
	level.Claim(SpotStandard, vehicle)

	released, err := level.Release(0)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if released.Vehicle.RegistrationNumber != vehicle.RegistrationNumber || released.Type != SpotStandard {
		t.Errorf("Unexpected released slot %+v", released)
	}

	if _, err := level.Release(0); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState on double release, got %v", err)
	}

	for _, bad := range []int{-1, 2, 100} {
		if _, err := level.Release(bad); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("Expected ErrInvalidReference for spot %d, got %v", bad, err)
		}
	}

	spot, ok := level.Claim(SpotStandard, vehicle)
	if !ok || spot != 0 {
		t.Errorf("Expected released spot 0 to be reused, got %d (ok=%t)", spot, ok)
	}
}

func TestLevelFullRoundTrip(t *testing.T) {
	types := make([]SpotType, 10)
	for i := range types {
		types[i] = SpotStandard
	}
	level := NewLevel(0, types)
	before := level.Snapshot()

	for i := 0; i < 10; i++ {
		if _, ok := level.Claim(SpotStandard, NewVehicle("CAR", "Grey", Car)); !ok {
			t.Fatalf("Expected claim %d to succeed", i)
		}
	}
	if _, ok := level.Claim(SpotStandard, nil); ok {
		t.Fatal("Expected a full level to report unavailable")
	}

	full := level.Snapshot()
	if full.Free[SpotStandard] != 0 || full.Claimed[SpotStandard] != 10 {
		t.Errorf("Unexpected full snapshot %+v", full)
	}

	for i := 0; i < 10; i++ {
		if _, err := level.Release(i); err != nil {
			t.Fatalf("Unexpected error releasing %d: %s", i, err.Error())
		}
	}

	after := level.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Expected round trip to restore %+v, got %+v", before, after)
	}
}

func TestLevelFind(t *testing.T) {
	level := NewLevel(0, []SpotType{SpotCompact, SpotStandard})
	level.Claim(SpotStandard, NewVehicle("KA01HH9999", "Black", Car))

	spot, ok := level.Find("KA01HH9999")
	if !ok || spot != 1 {
		t.Errorf("Expected spot 1, got %d (ok=%t)", spot, ok)
	}

	if _, ok := level.Find("NOTFOUND"); ok {
		t.Error("Expected unknown registration to be missing")
	}
}

func TestLevelClaimCopiesOccupant(t *testing.T) {
	level := NewLevel(0, []SpotType{SpotStandard})
	vehicle := NewVehicle("KA01HH1234", "White", Car)

	spot, ok := level.Claim(SpotStandard, vehicle)
	if !ok {
		t.Fatal("Expected a standard spot to be claimed")
	}

	vehicle.RegistrationNumber = "CHANGED"
	vehicle.Color = "Black"

	if _, found := level.Find("CHANGED"); found {
		t.Error("Expected caller mutation not to reach the slot")
	}
	if got, found := level.Find("KA01HH1234"); !found || got != spot {
		t.Errorf("Expected original registration at spot %d, got %d (found=%t)", spot, got, found)
	}

	status := level.Snapshot()
	if len(status.Occupied) != 1 || status.Occupied[0].Vehicle.Color != "White" {
		t.Errorf("Expected snapshot to show the claimed vehicle, got %+v", status.Occupied)
	}
}
