package service

import (
	"context"
	"errors"
	"time"

	"slotbook/internal/slots/events"
	sloterrors "slotbook/internal/slots/errors"
	"slotbook/internal/slots/repository"
	"slotbook/internal/slots/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
)

// SlotService is the booking state machine. Each operation reads the
// current slot state, checks the transition rules against the caller,
// and issues a single conditional write keyed on the observed state.
// No lock is held between the read and the write; races are resolved
// by the store's compare-and-set.
type SlotService interface {
	List(ctx context.Context) ([]*model.Slot, error)
	Get(ctx context.Context, id string) (*model.Slot, error)
	Book(ctx context.Context, slotID string, actor model.Actor) error
	Cancel(ctx context.Context, slotID string, actor model.Actor) error
	AdminCancel(ctx context.Context, slotID string, actor model.Actor) error
	SetUnavailable(ctx context.Context, slotID string, unavailable bool, actor model.Actor) error
	UserBookings(ctx context.Context, userID string) ([]*model.Slot, error)
	Seed(ctx context.Context) (int, error)
}

type slotService struct {
	store     repository.SlotStore
	validator *validator.SlotValidator
	events    events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewSlotService(
	store repository.SlotStore,
	validator *validator.SlotValidator,
	publisher events.Publisher,
	cfg *config.Config,
) SlotService {
	return &slotService{
		store:     store,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *slotService) List(ctx context.Context) ([]*model.Slot, error) {
	slots, err := s.store.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list slots", "error", err)
		return nil, apperrors.Unavailable("Slot store")
	}
	return slots, nil
}

func (s *slotService) Get(ctx context.Context, id string) (*model.Slot, error) {
	if err := s.validator.ValidateSlotID(id); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return s.read(ctx, id)
}

func (s *slotService) UserBookings(ctx context.Context, userID string) ([]*model.Slot, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	slots, err := s.store.FindByBookedUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list user bookings", "user_id", userID, "error", err)
		return nil, apperrors.Unavailable("Slot store")
	}
	return slots, nil
}

// Book transitions an available, unblocked slot to booked on behalf of
// the actor. "Already booked" and "admin blocked" are distinct denials
// even though both render the same user-facing message.
func (s *slotService) Book(ctx context.Context, slotID string, actor model.Actor) error {
	if err := s.validateCall(slotID, actor); err != nil {
		return err
	}

	slot, err := s.read(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.Booked() {
		return apperrors.AlreadyBooked()
	}
	if slot.ManuallyUnavailable {
		return apperrors.AdminBlocked()
	}

	booked := model.StatusBooked
	changes := model.SlotChanges{
		Status: &booked,
		Booking: &model.BookingInfo{
			UserID: actor.ID,
			Name:   sanitizer.NormalizeDisplayName(actor.Name),
			At:     s.now().UTC().Truncate(time.Millisecond),
		},
	}

	expected := model.SlotCondition{Status: model.StatusAvailable, ManuallyUnavailable: false}
	if err := s.store.ConditionalUpdate(ctx, slotID, expected, changes); err != nil {
		return s.resolveBookConflict(ctx, slotID, err)
	}

	s.cfg.Log.Info("Slot booked", "slot_id", slotID, "user_id", actor.ID)
	s.publish(ctx, events.OpBook, slot, model.StatusBooked, false, actor)
	return nil
}

// Cancel releases a booking. Only the booking owner or an admin may
// cancel; a non-owner gets an authorization error, which is a different
// failure from cancelling a slot that holds no booking at all.
func (s *slotService) Cancel(ctx context.Context, slotID string, actor model.Actor) error {
	if err := s.validateCall(slotID, actor); err != nil {
		return err
	}
	return s.cancel(ctx, slotID, actor, false)
}

// AdminCancel force-releases any booking regardless of owner.
func (s *slotService) AdminCancel(ctx context.Context, slotID string, actor model.Actor) error {
	if err := s.validateCall(slotID, actor); err != nil {
		return err
	}
	if !actor.Admin() {
		return apperrors.Forbidden("Administrator role required")
	}
	return s.cancel(ctx, slotID, actor, true)
}

func (s *slotService) cancel(ctx context.Context, slotID string, actor model.Actor, force bool) error {
	slot, err := s.read(ctx, slotID)
	if err != nil {
		return err
	}
	if !slot.Booked() {
		return apperrors.NotBooked()
	}
	if !force && !actor.Admin() && slot.BookedByUserID != actor.ID {
		return apperrors.Forbidden("You are not authorized to cancel this booking.")
	}

	available := model.StatusAvailable
	changes := model.SlotChanges{
		Status:       &available,
		ClearBooking: true,
	}

	// The override flag is part of the comparison key: cancelling a
	// booked-and-blocked slot releases the booking but keeps the block.
	expected := model.SlotCondition{Status: model.StatusBooked, ManuallyUnavailable: slot.ManuallyUnavailable}
	if err := s.store.ConditionalUpdate(ctx, slotID, expected, changes); err != nil {
		return s.resolveCancelConflict(ctx, slotID, err)
	}

	op := events.OpCancel
	if force {
		op = events.OpAdminCancel
	}
	s.cfg.Log.Info("Booking cancelled", "slot_id", slotID, "actor_id", actor.ID, "forced", force)
	s.publish(ctx, op, slot, model.StatusAvailable, slot.ManuallyUnavailable, actor)
	return nil
}

// SetUnavailable flips the administrator override. It never touches the
// booking fields: blocking a booked slot does not cancel it, and
// unblocking a booked slot leaves it booked.
func (s *slotService) SetUnavailable(ctx context.Context, slotID string, unavailable bool, actor model.Actor) error {
	if err := s.validateCall(slotID, actor); err != nil {
		return err
	}
	if !actor.Admin() {
		return apperrors.Forbidden("Administrator role required")
	}

	slot, err := s.read(ctx, slotID)
	if err != nil {
		return err
	}

	changes := model.SlotChanges{ManuallyUnavailable: &unavailable}
	if !unavailable && !slot.Booked() {
		available := model.StatusAvailable
		changes.Status = &available
	}

	expected := model.SlotCondition{Status: slot.Status, ManuallyUnavailable: slot.ManuallyUnavailable}
	if err := s.store.ConditionalUpdate(ctx, slotID, expected, changes); err != nil {
		return s.translateStoreError(ctx, slotID, err)
	}

	status := slot.Status
	if changes.Status != nil {
		status = *changes.Status
	}
	s.cfg.Log.Info("Slot availability toggled", "slot_id", slotID, "unavailable", unavailable, "actor_id", actor.ID)
	s.publish(ctx, events.OpSetUnavailable, slot, status, unavailable, actor)
	return nil
}

// Seed materializes the fixed daily slot set, skipping slots that
// already exist. Safe to run on every deployment.
func (s *slotService) Seed(ctx context.Context) (int, error) {
	count := 0
	for hour := s.cfg.FirstSlotHour; hour <= s.cfg.LastSlotHour; hour++ {
		created, err := s.store.CreateIfAbsent(ctx, model.NewSlot(hour))
		if err != nil {
			s.cfg.Log.Error("Failed to seed slot", "hour", hour, "error", err)
			return count, apperrors.Internal("Failed to seed slots", err)
		}
		if created {
			count++
		}
	}

	s.cfg.Log.Info("Slot seeding completed",
		"created", count,
		"first_hour", s.cfg.FirstSlotHour,
		"last_hour", s.cfg.LastSlotHour,
	)
	return count, nil
}

// --- Helpers ---

func (s *slotService) validateCall(slotID string, actor model.Actor) error {
	if err := s.validator.ValidateSlotID(slotID); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if err := s.validator.ValidateActor(actor); err != nil {
		s.cfg.Log.Warn("Actor validation failed", "error", err)
		return apperrors.Validation("Invalid caller identity", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *slotService) read(ctx context.Context, slotID string) (*model.Slot, error) {
	slot, err := s.store.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sloterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Slot", slotID)
		}
		s.cfg.Log.Error("Failed to read slot", "slot_id", slotID, "error", err)
		return nil, apperrors.Unavailable("Slot store")
	}
	return slot, nil
}

// resolveBookConflict handles a lost booking race. The service re-reads
// once to report the terminal state; it never re-applies the stale
// intent, which could double-book on state it did not observe.
func (s *slotService) resolveBookConflict(ctx context.Context, slotID string, err error) error {
	if !errors.Is(err, sloterrors.ErrConflictingWrite) {
		return s.translateStoreError(ctx, slotID, err)
	}

	slot, readErr := s.read(ctx, slotID)
	if readErr != nil {
		return readErr
	}
	if slot.Booked() {
		return apperrors.AlreadyBooked()
	}
	if slot.ManuallyUnavailable {
		return apperrors.AdminBlocked()
	}
	return apperrors.ConflictingWrite()
}

func (s *slotService) resolveCancelConflict(ctx context.Context, slotID string, err error) error {
	if !errors.Is(err, sloterrors.ErrConflictingWrite) {
		return s.translateStoreError(ctx, slotID, err)
	}

	slot, readErr := s.read(ctx, slotID)
	if readErr != nil {
		return readErr
	}
	if !slot.Booked() {
		return apperrors.NotBooked()
	}
	return apperrors.ConflictingWrite()
}

func (s *slotService) translateStoreError(ctx context.Context, slotID string, err error) error {
	switch {
	case errors.Is(err, sloterrors.ErrNotFound):
		return apperrors.NotFoundWithID("Slot", slotID)
	case errors.Is(err, sloterrors.ErrConflictingWrite):
		return apperrors.ConflictingWrite()
	default:
		s.cfg.Log.Error("Slot store operation failed", "slot_id", slotID, "error", err)
		return apperrors.Unavailable("Slot store")
	}
}

// publish is best-effort: a transition that landed in the store is
// reported as success even if the event broker is down.
func (s *slotService) publish(ctx context.Context, op string, slot *model.Slot, status model.SlotStatus, unavailable bool, actor model.Actor) {
	event := events.SlotEvent{
		SlotID:              slot.ID,
		Hour:                slot.Hour,
		Operation:           op,
		Status:              status,
		ManuallyUnavailable: unavailable,
		ActorID:             actor.ID,
		OccurredAt:          s.now().UTC(),
	}
	if err := s.events.SlotChanged(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish slot event",
			"slot_id", slot.ID,
			"operation", op,
			"error", err,
		)
	}
}
