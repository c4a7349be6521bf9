package repository

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"slotbook/pkg/model"
)

func TestBuildUpdateDocument_Booking(t *testing.T) {
	booked := model.StatusBooked
	at := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	changes := model.SlotChanges{
		Status: &booked,
		Booking: &model.BookingInfo{
			UserID: "user-1",
			Name:   "Alice",
			At:     at,
		},
	}

	got := buildUpdateDocument(changes)
	want := bson.M{
		"$set": bson.M{
			"status":            booked,
			"booked_by_user_id": "user-1",
			"booked_by_name":    "Alice",
			"booked_at":         at,
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildUpdateDocument() = %v, want %v", got, want)
	}
}

func TestBuildUpdateDocument_ClearBooking(t *testing.T) {
	available := model.StatusAvailable
	changes := model.SlotChanges{
		Status:       &available,
		ClearBooking: true,
	}

	got := buildUpdateDocument(changes)
	want := bson.M{
		"$set": bson.M{
			"status": available,
		},
		"$unset": bson.M{
			"booked_by_user_id": "",
			"booked_by_name":    "",
			"booked_at":         "",
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildUpdateDocument() = %v, want %v", got, want)
	}
}

func TestBuildUpdateDocument_ToggleOverride(t *testing.T) {
	unavailable := true
	changes := model.SlotChanges{ManuallyUnavailable: &unavailable}

	got := buildUpdateDocument(changes)
	want := bson.M{
		"$set": bson.M{
			"is_manually_unavailable": true,
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildUpdateDocument() = %v, want %v", got, want)
	}
}

func TestBuildUpdateDocument_UnblockNotBooked(t *testing.T) {
	available := model.StatusAvailable
	unavailable := false
	changes := model.SlotChanges{
		Status:              &available,
		ManuallyUnavailable: &unavailable,
	}

	got := buildUpdateDocument(changes)
	want := bson.M{
		"$set": bson.M{
			"status":                  available,
			"is_manually_unavailable": false,
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildUpdateDocument() = %v, want %v", got, want)
	}
}
