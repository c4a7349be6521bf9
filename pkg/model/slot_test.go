package model

import "testing"

func TestSlotID(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "00:00"},
		{9, "09:00"},
		{10, "10:00"},
		{16, "16:00"},
		{23, "23:00"},
	}

	for _, tc := range cases {
		if got := SlotID(tc.hour); got != tc.want {
			t.Errorf("SlotID(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestSlotTimeLabel(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{10, "10:00 AM - 11:00 AM"},
		{11, "11:00 AM - 12:00 PM"},
		{12, "12:00 PM - 1:00 PM"},
		{16, "4:00 PM - 5:00 PM"},
		{23, "11:00 PM - 12:00 AM"},
		{0, "12:00 AM - 1:00 AM"},
	}

	for _, tc := range cases {
		if got := SlotTimeLabel(tc.hour); got != tc.want {
			t.Errorf("SlotTimeLabel(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestNewSlot(t *testing.T) {
	slot := NewSlot(14)

	if slot.ID != "14:00" {
		t.Errorf("expected id 14:00, got %s", slot.ID)
	}
	if slot.Hour != 14 {
		t.Errorf("expected hour 14, got %d", slot.Hour)
	}
	if slot.Status != StatusAvailable {
		t.Errorf("expected status available, got %s", slot.Status)
	}
	if slot.ManuallyUnavailable {
		t.Error("new slot must not be blocked")
	}
	if slot.BookedByUserID != "" || slot.BookedByName != "" || slot.BookedAt != nil {
		t.Error("new slot must carry no booking fields")
	}
}

func TestBookable(t *testing.T) {
	cases := []struct {
		name        string
		status      SlotStatus
		unavailable bool
		want        bool
	}{
		{"available and unblocked", StatusAvailable, false, true},
		{"available but blocked", StatusAvailable, true, false},
		{"booked", StatusBooked, false, false},
		{"booked and blocked", StatusBooked, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slot := &Slot{Status: tc.status, ManuallyUnavailable: tc.unavailable}
			if got := slot.Bookable(); got != tc.want {
				t.Errorf("Bookable() = %v, want %v", got, tc.want)
			}
		})
	}
}
