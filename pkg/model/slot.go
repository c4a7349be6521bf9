package model

import (
	"fmt"
	"time"
)

type SlotStatus string

const (
	StatusAvailable SlotStatus = "available"
	StatusBooked    SlotStatus = "booked"
)

// Slot is a fixed one-hour bookable time window identified by its start
// hour. The booking fields are all-or-nothing: they are present exactly
// when Status is StatusBooked. ManuallyUnavailable is an administrator
// override that is independent of the booking relationship; a slot can
// be both booked and manually unavailable.
type Slot struct {
	ID                  string     `json:"id" bson:"_id"`
	TimeLabel           string     `json:"time_label" bson:"time_label"`
	Hour                int        `json:"hour" bson:"hour"`
	Status              SlotStatus `json:"status" bson:"status"`
	BookedByUserID      string     `json:"booked_by_user_id,omitempty" bson:"booked_by_user_id,omitempty"`
	BookedByName        string     `json:"booked_by_name,omitempty" bson:"booked_by_name,omitempty"`
	BookedAt            *time.Time `json:"booked_at,omitempty" bson:"booked_at,omitempty"`
	ManuallyUnavailable bool       `json:"is_manually_unavailable" bson:"is_manually_unavailable"`
}

func (s *Slot) Booked() bool {
	return s.Status == StatusBooked
}

// Bookable reports whether a booking attempt can currently succeed.
func (s *Slot) Bookable() bool {
	return s.Status == StatusAvailable && !s.ManuallyUnavailable
}

// NewSlot builds the canonical seed-time slot for the given start hour.
func NewSlot(hour int) *Slot {
	return &Slot{
		ID:        SlotID(hour),
		TimeLabel: SlotTimeLabel(hour),
		Hour:      hour,
		Status:    StatusAvailable,
	}
}

// SlotID derives the stable slot identifier from its start hour,
// e.g. SlotID(10) == "10:00". The id doubles as the Mongo _id.
func SlotID(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// SlotTimeLabel renders the display label for a one-hour slot in
// 12-hour form, e.g. "10:00 AM - 11:00 AM".
func SlotTimeLabel(hour int) string {
	return fmt.Sprintf("%s - %s", clockLabel(hour), clockLabel(hour+1))
}

func clockLabel(hour int) string {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	meridiem := "PM"
	if hour < 12 || hour == 24 {
		meridiem = "AM"
	}
	return fmt.Sprintf("%d:00 %s", h, meridiem)
}

// SlotCondition is the optimistic-concurrency comparison key for
// conditional updates: a write only applies while the stored slot
// still carries this exact status/override pair.
type SlotCondition struct {
	Status              SlotStatus
	ManuallyUnavailable bool
}

// BookingInfo is the snapshot written onto a slot when it is booked.
type BookingInfo struct {
	UserID string
	Name   string
	At     time.Time
}

// SlotChanges describes the fields a conditional update applies.
// Booking and ClearBooking are mutually exclusive; ClearBooking removes
// all three booking fields together so the all-or-nothing invariant
// cannot be broken by a partial write.
type SlotChanges struct {
	Status              *SlotStatus
	Booking             *BookingInfo
	ClearBooking        bool
	ManuallyUnavailable *bool
}
