package repository

import (
	"context"
	"time"

	"docbook/pkg/config"
	"docbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// SlotLockRepository stores advisory locks for slots being booked.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) error
	Delete(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(LockCollectionName),
		ttl:        cfg.SlotLockTTL,
	}
}

// Create returns a duplicate key error if the lock is already held.
func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) error {
	now := time.Now().UTC()
	lock.CreatedAt = now
	if lock.ExpiresAt.IsZero() {
		lock.ExpiresAt = now.Add(r.ttl)
	}

	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
