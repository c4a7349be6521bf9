package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sloterrors "slotbook/internal/slots/errors"
	"slotbook/pkg/config"
	"slotbook/pkg/model"
)

const CollectionName = "Slots"

// SlotStore is the narrow persistence contract the booking state
// machine runs against. ConditionalUpdate is the load-bearing piece:
// it must atomically verify the slot still matches the expected
// (status, manually-unavailable) pair before applying changes, and
// report a lost race as ErrConflictingWrite.
type SlotStore interface {
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindAll(ctx context.Context) ([]*model.Slot, error)
	FindByBookedUser(ctx context.Context, userID string) ([]*model.Slot, error)
	CreateIfAbsent(ctx context.Context, slot *model.Slot) (bool, error)
	ConditionalUpdate(ctx context.Context, id string, expected model.SlotCondition, changes model.SlotChanges) error
}

type mongoSlotStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotStore(cfg *config.Config) SlotStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotStore{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout bounds a store round trip without shortening a deadline
// the caller already set.
func (r *mongoSlotStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSlotStore) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var slot model.Slot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sloterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotStore) FindAll(ctx context.Context) ([]*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "hour", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}

	return slots, nil
}

func (r *mongoSlotStore) FindByBookedUser(ctx context.Context, userID string) ([]*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "hour", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"booked_by_user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for user: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}

	return slots, nil
}

// CreateIfAbsent inserts the slot unless one with the same id already
// exists. Returns whether a new document was created. Existing slots
// are never touched, which makes seeding idempotent.
func (r *mongoSlotStore) CreateIfAbsent(ctx context.Context, slot *model.Slot) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create slot: %w", err)
	}

	return true, nil
}

// ConditionalUpdate applies changes only while the stored slot still
// matches the expected condition. A single UpdateOne with the condition
// in the filter is atomic in Mongo, so two racing callers observing the
// same prior state can never both win.
func (r *mongoSlotStore) ConditionalUpdate(ctx context.Context, id string, expected model.SlotCondition, changes model.SlotChanges) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":                     id,
		"status":                  expected.Status,
		"is_manually_unavailable": expected.ManuallyUnavailable,
	}

	result, err := r.collection.UpdateOne(ctx, filter, buildUpdateDocument(changes))
	if err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}

	if result.MatchedCount == 0 {
		// Distinguish a lost race from a missing slot.
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to check slot existence: %w", err)
		}
		if count == 0 {
			return sloterrors.ErrNotFound
		}
		return sloterrors.ErrConflictingWrite
	}

	return nil
}

// buildUpdateDocument translates SlotChanges into a Mongo update. The
// booking fields are always written or removed as a unit.
func buildUpdateDocument(changes model.SlotChanges) bson.M {
	set := bson.M{}
	unset := bson.M{}

	if changes.Status != nil {
		set["status"] = *changes.Status
	}
	if changes.ManuallyUnavailable != nil {
		set["is_manually_unavailable"] = *changes.ManuallyUnavailable
	}
	if changes.Booking != nil {
		set["booked_by_user_id"] = changes.Booking.UserID
		set["booked_by_name"] = changes.Booking.Name
		set["booked_at"] = changes.Booking.At
	}
	if changes.ClearBooking {
		unset["booked_by_user_id"] = ""
		unset["booked_by_name"] = ""
		unset["booked_at"] = ""
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
