package datastore

import "github.com/google/uuid"

// NewObservationKey generates a store-assigned observation key. UUIDv7 keys
// carry a millisecond timestamp prefix, so keys sort roughly in insertion
// order and are never reused.
func NewObservationKey() string {
	key, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4
		return uuid.NewString()
	}
	return key.String()
}
