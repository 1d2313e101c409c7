package model

import "time"

// SlotLock is a short-lived advisory lock keyed by doctor, date and start.
// Expired locks are reaped by a TTL index on expires_at.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
