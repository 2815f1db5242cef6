package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/models"
)

// MemoryCustomerStore is an in-process CustomerStore with the same
// version-check semantics as the mongo store. Tests use it in place of a
// running database.
type MemoryCustomerStore struct {
	mu        sync.Mutex
	customers map[string]*models.Customer
}

// NewMemoryCustomerStore returns an empty in-memory store.
func NewMemoryCustomerStore() *MemoryCustomerStore {
	return &MemoryCustomerStore{customers: make(map[string]*models.Customer)}
}

// PutCustomer inserts or replaces a customer record, assigning an id if the
// record has none. Returns the customer's hex id.
func (s *MemoryCustomerStore) PutCustomer(customer *models.Customer) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID.IsZero() {
		customer.ID = primitive.NewObjectID()
	}
	clone := cloneCustomer(customer)
	s.customers[customer.ID.Hex()] = clone
	return customer.ID.Hex()
}

// FindCustomerByID returns a copy of the customer, or ErrNotFound.
func (s *MemoryCustomerStore) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCustomer(customer), nil
}

// ReplaceAddresses swaps the address sequence if the stored version still
// matches, mirroring the mongo store's filtered UpdateOne.
func (s *MemoryCustomerStore) ReplaceAddresses(ctx context.Context, id string, version int64, addresses []models.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok {
		return ErrNotFound
	}
	if customer.AddressVersion != version {
		return ErrConflict
	}

	if addresses == nil {
		addresses = []models.Address{}
	}
	stampTimestamps(addresses, time.Now().UTC())
	replaced := make([]models.Address, len(addresses))
	copy(replaced, addresses)

	customer.Addresses = replaced
	customer.AddressVersion++
	return nil
}

func cloneCustomer(customer *models.Customer) *models.Customer {
	clone := *customer
	clone.Addresses = make([]models.Address, len(customer.Addresses))
	copy(clone.Addresses, customer.Addresses)
	return &clone
}
