package service

import (
	"context"
	"testing"

	"slotbook/pkg/model"
)

func TestSeed_CreatesFullDay(t *testing.T) {
	store := newFakeSlotStore()
	svc := newTestService(t, store)

	count, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 slots created, got %d", count)
	}

	slots, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantIDs := []string{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}
	if len(slots) != len(wantIDs) {
		t.Fatalf("expected %d slots, got %d", len(wantIDs), len(slots))
	}
	for i, slot := range slots {
		if slot.ID != wantIDs[i] {
			t.Errorf("slot %d: expected id %s, got %s", i, wantIDs[i], slot.ID)
		}
		if slot.Status != model.StatusAvailable {
			t.Errorf("slot %s: expected status available, got %s", slot.ID, slot.Status)
		}
		if slot.ManuallyUnavailable {
			t.Errorf("slot %s: seeded slot must not be blocked", slot.ID)
		}
	}
}

func TestSeed_Idempotent(t *testing.T) {
	store := newFakeSlotStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("first seed: unexpected error: %v", err)
	}

	count, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("second seed: unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected second seed to create 0 slots, got %d", count)
	}
}

func TestSeed_NeverOverwritesExistingState(t *testing.T) {
	store := newFakeSlotStore()
	store.put(bookedSlot(12, alice.ID, "Alice"))
	svc := newTestService(t, store)

	count, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 6 {
		t.Errorf("expected 6 new slots around the existing one, got %d", count)
	}

	slot := store.get("12:00")
	if slot.Status != model.StatusBooked || slot.BookedByUserID != alice.ID {
		t.Error("seeding must not touch an existing booked slot")
	}
}
