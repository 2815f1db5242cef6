// Package services holds the application-level address book operations. The
// store underneath applies whatever sequence it is told to; this layer is
// the one place that understands the default-address rule: a customer with
// any addresses has exactly one default, a customer with none has none.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/models"
	"grocery-backend/store"
)

var (
	// ErrCustomerNotFound means the customer id names no record.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrAddressNotFound means the address id is not in the customer's book.
	ErrAddressNotFound = errors.New("address not found")
	// ErrValidation flags a missing or invalid request field.
	ErrValidation = errors.New("invalid address")
)

// Writers that lose the version race re-read and retry this many times
// before giving up.
const maxCommitAttempts = 3

// AddressFields carries the body of an add or update request. Nil pointers
// mean the field was absent, so updates leave it untouched.
type AddressFields struct {
	Label       *string
	FullAddress *string
	Landmark    *string
	Floor       *string
	Location    *models.Location
	IsDefault   *bool
}

// AddressService implements the customer address book over a CustomerStore.
// Commits for the same customer are serialized in-process; the version
// check on the store catches writers in other processes.
type AddressService struct {
	Store store.CustomerStore

	locks sync.Map // customer id -> *sync.Mutex
}

// NewAddressService creates an AddressService.
func NewAddressService(st store.CustomerStore) *AddressService {
	return &AddressService{Store: st}
}

func (s *AddressService) lockCustomer(customerID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(customerID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// ListAddresses returns the customer's addresses in insertion order, empty
// if none exist.
func (s *AddressService) ListAddresses(ctx context.Context, customerID string) ([]models.Address, error) {
	customer, err := s.Store.FindCustomerByID(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	if customer.Addresses == nil {
		return []models.Address{}, nil
	}
	return customer.Addresses, nil
}

// AddAddress validates the request and appends a new address. The first
// address of a customer becomes the default no matter what the request
// asked for; an explicit isDefault steals the flag from the others.
func (s *AddressService) AddAddress(ctx context.Context, customerID string, fields AddressFields) (*models.Address, error) {
	if fields.FullAddress == nil || strings.TrimSpace(*fields.FullAddress) == "" {
		return nil, fmt.Errorf("%w: full address is required", ErrValidation)
	}
	label := models.LabelHome
	if fields.Label != nil && *fields.Label != "" {
		if !models.ValidLabel(*fields.Label) {
			return nil, fmt.Errorf("%w: unknown label %q", ErrValidation, *fields.Label)
		}
		label = *fields.Label
	}

	return s.commit(ctx, customerID, func(addresses []models.Address) ([]models.Address, *models.Address, error) {
		makeDefault := fields.IsDefault != nil && *fields.IsDefault
		if len(addresses) == 0 {
			makeDefault = true
		}
		if makeDefault {
			for i := range addresses {
				addresses[i].IsDefault = false
			}
		}

		address := models.Address{
			ID:          primitive.NewObjectID(),
			Label:       label,
			FullAddress: *fields.FullAddress,
			IsDefault:   makeDefault,
		}
		if fields.Landmark != nil {
			address.Landmark = *fields.Landmark
		}
		if fields.Floor != nil {
			address.Floor = *fields.Floor
		}
		if fields.Location != nil {
			loc := *fields.Location
			address.Location = &loc
		}

		addresses = append(addresses, address)
		return addresses, &addresses[len(addresses)-1], nil
	})
}

// UpdateAddress applies the fields present in the request to one address.
// Omitted fields keep their value. Setting isDefault moves the flag in the
// same commit; clearing it on the current default hands the flag to the
// first address in order.
func (s *AddressService) UpdateAddress(ctx context.Context, customerID, addressID string, fields AddressFields) (*models.Address, error) {
	if fields.Label != nil && *fields.Label != "" && !models.ValidLabel(*fields.Label) {
		return nil, fmt.Errorf("%w: unknown label %q", ErrValidation, *fields.Label)
	}
	if fields.FullAddress != nil && strings.TrimSpace(*fields.FullAddress) == "" {
		return nil, fmt.Errorf("%w: full address cannot be empty", ErrValidation)
	}

	return s.commit(ctx, customerID, func(addresses []models.Address) ([]models.Address, *models.Address, error) {
		index := findAddress(addresses, addressID)
		if index < 0 {
			return nil, nil, ErrAddressNotFound
		}

		if fields.IsDefault != nil && *fields.IsDefault {
			for i := range addresses {
				addresses[i].IsDefault = false
			}
		}

		address := &addresses[index]
		if fields.Label != nil && *fields.Label != "" {
			address.Label = *fields.Label
		}
		if fields.FullAddress != nil {
			address.FullAddress = *fields.FullAddress
		}
		if fields.Landmark != nil {
			address.Landmark = *fields.Landmark
		}
		if fields.Floor != nil {
			address.Floor = *fields.Floor
		}
		if fields.Location != nil {
			loc := *fields.Location
			address.Location = &loc
		}
		if fields.IsDefault != nil {
			address.IsDefault = *fields.IsDefault
		}

		ensureOneDefault(addresses)
		return addresses, address, nil
	})
}

// DeleteAddress removes one address. When the default goes away the first
// remaining address inherits the flag; an emptied book has no default.
func (s *AddressService) DeleteAddress(ctx context.Context, customerID, addressID string) error {
	_, err := s.commit(ctx, customerID, func(addresses []models.Address) ([]models.Address, *models.Address, error) {
		index := findAddress(addresses, addressID)
		if index < 0 {
			return nil, nil, ErrAddressNotFound
		}

		wasDefault := addresses[index].IsDefault
		addresses = append(addresses[:index], addresses[index+1:]...)
		if wasDefault && len(addresses) > 0 {
			addresses[0].IsDefault = true
		}
		return addresses, nil, nil
	})
	return err
}

// SetDefaultAddress makes one address the default and clears the rest in a
// single commit.
func (s *AddressService) SetDefaultAddress(ctx context.Context, customerID, addressID string) (*models.Address, error) {
	return s.commit(ctx, customerID, func(addresses []models.Address) ([]models.Address, *models.Address, error) {
		index := findAddress(addresses, addressID)
		if index < 0 {
			return nil, nil, ErrAddressNotFound
		}
		for i := range addresses {
			addresses[i].IsDefault = i == index
		}
		return addresses, &addresses[index], nil
	})
}

// commit runs one read-modify-write round: fresh read, mutation over the
// copy, versioned replace. A version conflict restarts the round from a new
// read; deterministic errors from the mutation surface immediately.
func (s *AddressService) commit(ctx context.Context, customerID string, mutate func([]models.Address) ([]models.Address, *models.Address, error)) (*models.Address, error) {
	lock := s.lockCustomer(customerID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		customer, err := s.Store.FindCustomerByID(ctx, customerID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		if err != nil {
			return nil, err
		}

		next, result, err := mutate(customer.Addresses)
		if err != nil {
			return nil, err
		}

		err = s.Store.ReplaceAddresses(ctx, customerID, customer.AddressVersion, next)
		if errors.Is(err, store.ErrConflict) {
			lastErr = err
			continue
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("address commit failed after %d attempts: %w", maxCommitAttempts, lastErr)
}

// ensureOneDefault restores the invariant after a partial update: a
// non-empty sequence with no default hands the flag to the first address.
func ensureOneDefault(addresses []models.Address) {
	if len(addresses) == 0 {
		return
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			return
		}
	}
	addresses[0].IsDefault = true
}

func findAddress(addresses []models.Address, addressID string) int {
	for i := range addresses {
		if addresses[i].ID.Hex() == addressID {
			return i
		}
	}
	return -1
}
