// Package store holds the persistence layer for customer records. The
// address book lives embedded on the customer document; the store exposes
// exactly two capabilities for it: read the whole record, and atomically
// replace the whole address sequence. The store applies whatever sequence it
// is given without inspecting it; callers own the default-address rules.
package store

import (
	"context"
	"errors"
	"time"

	"grocery-backend/models"
)

var (
	// ErrNotFound means no customer exists under the given id.
	ErrNotFound = errors.New("customer not found")
	// ErrConflict means the version check failed: another writer replaced
	// the address sequence between the caller's read and this write.
	ErrConflict = errors.New("address sequence modified concurrently")
)

// CustomerStore is the durable home of customer records and their embedded
// address sequences.
type CustomerStore interface {
	// FindCustomerByID returns the customer, or ErrNotFound.
	FindCustomerByID(ctx context.Context, id string) (*models.Customer, error)

	// ReplaceAddresses swaps the customer's entire address sequence in one
	// write, guarded by the version the caller read. Returns ErrConflict on
	// a version mismatch and ErrNotFound if the customer is gone. The given
	// records are stamped with created/updated times before persisting.
	ReplaceAddresses(ctx context.Context, id string, version int64, addresses []models.Address) error
}

// stampTimestamps sets CreatedAt on records that lack one and UpdatedAt on
// every record. The sequence is the unit of write, so the commit time is the
// modification time for all of it.
func stampTimestamps(addresses []models.Address, now time.Time) {
	for i := range addresses {
		if addresses[i].CreatedAt.IsZero() {
			addresses[i].CreatedAt = now
		}
		addresses[i].UpdatedAt = now
	}
}
