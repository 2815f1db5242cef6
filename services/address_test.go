package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-backend/models"
	"grocery-backend/store"
)

func newTestService(t *testing.T) (*AddressService, *store.MemoryCustomerStore, string) {
	t.Helper()
	st := store.NewMemoryCustomerStore()
	customerID := st.PutCustomer(&models.Customer{
		Phone:       "9876543210",
		Role:        "Customer",
		IsActivated: true,
	})
	return NewAddressService(st), st, customerID
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// assertOneDefault checks the invariant: exactly one default on a non-empty
// book, none on an empty one.
func assertOneDefault(t *testing.T, addresses []models.Address) {
	t.Helper()
	defaults := 0
	for _, a := range addresses {
		if a.IsDefault {
			defaults++
		}
	}
	if len(addresses) == 0 {
		assert.Equal(t, 0, defaults, "empty address book must have no default")
	} else {
		assert.Equal(t, 1, defaults, "non-empty address book must have exactly one default")
	}
}

func TestListAddressesEmpty(t *testing.T) {
	service, _, customerID := newTestService(t)

	addresses, err := service.ListAddresses(context.Background(), customerID)
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestListAddressesUnknownCustomer(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.ListAddresses(context.Background(), "no-such-customer")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestAddFirstAddressAlwaysDefault(t *testing.T) {
	service, _, customerID := newTestService(t)

	// Explicitly requesting isDefault=false must still make the first
	// address the default.
	address, err := service.AddAddress(context.Background(), customerID, AddressFields{
		FullAddress: strPtr("12 MG Road, Bengaluru"),
		IsDefault:   boolPtr(false),
	})
	require.NoError(t, err)
	assert.True(t, address.IsDefault)
	assert.Equal(t, models.LabelHome, address.Label)
	assert.False(t, address.CreatedAt.IsZero())
	assert.False(t, address.UpdatedAt.IsZero())
}

func TestAddSecondAddressKeepsExistingDefault(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	first, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)

	second, err := service.AddAddress(ctx, customerID, AddressFields{
		FullAddress: strPtr("B"),
		IsDefault:   boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, first.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
	assert.Equal(t, second.ID, addresses[1].ID)
	assert.False(t, addresses[1].IsDefault)
}

func TestAddDefaultAddressStealsFlag(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	_, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)

	second, err := service.AddAddress(ctx, customerID, AddressFields{
		FullAddress: strPtr("B"),
		IsDefault:   boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	assertOneDefault(t, addresses)
	assert.True(t, addresses[1].IsDefault)
}

func TestAddAddressRequiresFullAddress(t *testing.T) {
	service, _, customerID := newTestService(t)

	_, err := service.AddAddress(context.Background(), customerID, AddressFields{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.AddAddress(context.Background(), customerID, AddressFields{
		FullAddress: strPtr("   "),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddAddressRejectsUnknownLabel(t *testing.T) {
	service, _, customerID := newTestService(t)

	_, err := service.AddAddress(context.Background(), customerID, AddressFields{
		FullAddress: strPtr("A"),
		Label:       strPtr("Office"),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAddressPartialFields(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	added, err := service.AddAddress(ctx, customerID, AddressFields{
		FullAddress: strPtr("12 MG Road"),
		Landmark:    strPtr("Near Metro"),
		Floor:       strPtr("3rd"),
	})
	require.NoError(t, err)

	updated, err := service.UpdateAddress(ctx, customerID, added.ID.Hex(), AddressFields{
		Landmark: strPtr("Opposite Mall"),
	})
	require.NoError(t, err)

	// Only the landmark changed; everything else survived.
	assert.Equal(t, "Opposite Mall", updated.Landmark)
	assert.Equal(t, "12 MG Road", updated.FullAddress)
	assert.Equal(t, "3rd", updated.Floor)
	assert.True(t, updated.IsDefault)
}

func TestUpdateAddressSetDefaultMovesFlag(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	a, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)
	b, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("B")})
	require.NoError(t, err)

	updated, err := service.UpdateAddress(ctx, customerID, b.ID.Hex(), AddressFields{
		IsDefault: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	assertOneDefault(t, addresses)
	for _, addr := range addresses {
		if addr.ID == a.ID {
			assert.False(t, addr.IsDefault)
		}
		if addr.ID == b.ID {
			assert.True(t, addr.IsDefault)
		}
	}
}

func TestUpdateAddressClearDefaultPromotesFirst(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	a, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)
	b, err := service.AddAddress(ctx, customerID, AddressFields{
		FullAddress: strPtr("B"),
		IsDefault:   boolPtr(true),
	})
	require.NoError(t, err)

	// Clearing the flag on the current default must not leave the book
	// with zero defaults; the first address in order picks it up.
	_, err = service.UpdateAddress(ctx, customerID, b.ID.Hex(), AddressFields{
		IsDefault: boolPtr(false),
	})
	require.NoError(t, err)

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	assertOneDefault(t, addresses)
	assert.Equal(t, a.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
}

func TestUpdateAddressNotFound(t *testing.T) {
	service, _, customerID := newTestService(t)

	_, err := service.UpdateAddress(context.Background(), customerID, "0123456789abcdef01234567", AddressFields{
		Landmark: strPtr("x"),
	})
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestDeleteDefaultPromotesFirstRemaining(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	a, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)
	b, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("B")})
	require.NoError(t, err)
	require.True(t, a.IsDefault)

	require.NoError(t, service.DeleteAddress(ctx, customerID, a.ID.Hex()))

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, b.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
}

func TestDeleteNonDefaultKeepsDefault(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	a, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)
	b, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("B")})
	require.NoError(t, err)

	require.NoError(t, service.DeleteAddress(ctx, customerID, b.ID.Hex()))

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, a.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
}

func TestDeleteOnlyAddressLeavesEmptyBook(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	a, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)

	require.NoError(t, service.DeleteAddress(ctx, customerID, a.ID.Hex()))

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, addresses)
	assertOneDefault(t, addresses)
}

func TestDeleteAddressNotFound(t *testing.T) {
	service, _, customerID := newTestService(t)

	err := service.DeleteAddress(context.Background(), customerID, "0123456789abcdef01234567")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestSetDefaultAddress(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	a, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)
	b, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("B")})
	require.NoError(t, err)

	nowDefault, err := service.SetDefaultAddress(ctx, customerID, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, b.ID, nowDefault.ID)
	assert.True(t, nowDefault.IsDefault)

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	assertOneDefault(t, addresses)
	assert.False(t, addresses[0].IsDefault)
	assert.Equal(t, a.ID, addresses[0].ID)
}

func TestSetDefaultAddressNotFound(t *testing.T) {
	service, _, customerID := newTestService(t)

	_, err := service.SetDefaultAddress(context.Background(), customerID, "0123456789abcdef01234567")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestInvariantAcrossOperationSequence(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	a, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.NoError(t, err)
	b, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("B"), IsDefault: boolPtr(true)})
	require.NoError(t, err)
	c, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("C")})
	require.NoError(t, err)

	steps := []func() error{
		func() error { _, err := service.SetDefaultAddress(ctx, customerID, c.ID.Hex()); return err },
		func() error { return service.DeleteAddress(ctx, customerID, c.ID.Hex()) },
		func() error {
			_, err := service.UpdateAddress(ctx, customerID, a.ID.Hex(), AddressFields{IsDefault: boolPtr(true)})
			return err
		},
		func() error { return service.DeleteAddress(ctx, customerID, a.ID.Hex()) },
		func() error { return service.DeleteAddress(ctx, customerID, b.ID.Hex()) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		addresses, err := service.ListAddresses(ctx, customerID)
		require.NoError(t, err)
		assertOneDefault(t, addresses)
	}
}

func TestConcurrentDefaultAddsKeepOneDefault(t *testing.T) {
	service, _, customerID := newTestService(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.AddAddress(ctx, customerID, AddressFields{
				FullAddress: strPtr("Concurrent"),
				IsDefault:   boolPtr(true),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	addresses, err := service.ListAddresses(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, addresses, writers, "no add may be lost")
	assertOneDefault(t, addresses)
}

// conflictingStore wraps the memory store and fails the first n replaces
// with ErrConflict, simulating a writer in another process.
type conflictingStore struct {
	*store.MemoryCustomerStore
	remaining int
}

func (c *conflictingStore) ReplaceAddresses(ctx context.Context, id string, version int64, addresses []models.Address) error {
	if c.remaining > 0 {
		c.remaining--
		return store.ErrConflict
	}
	return c.MemoryCustomerStore.ReplaceAddresses(ctx, id, version, addresses)
}

func TestCommitRetriesOnConflict(t *testing.T) {
	memory := store.NewMemoryCustomerStore()
	customerID := memory.PutCustomer(&models.Customer{Phone: "1", Role: "Customer"})
	service := NewAddressService(&conflictingStore{MemoryCustomerStore: memory, remaining: 2})

	address, err := service.AddAddress(context.Background(), customerID, AddressFields{
		FullAddress: strPtr("A"),
	})
	require.NoError(t, err)
	assert.True(t, address.IsDefault)
}

func TestCommitGivesUpAfterBoundedRetries(t *testing.T) {
	memory := store.NewMemoryCustomerStore()
	customerID := memory.PutCustomer(&models.Customer{Phone: "1", Role: "Customer"})
	service := NewAddressService(&conflictingStore{MemoryCustomerStore: memory, remaining: maxCommitAttempts})

	_, err := service.AddAddress(context.Background(), customerID, AddressFields{
		FullAddress: strPtr("A"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestCancelledContextLeavesStoreUnchanged(t *testing.T) {
	service, st, customerID := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.AddAddress(ctx, customerID, AddressFields{FullAddress: strPtr("A")})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCustomerNotFound))

	addresses, err := service.ListAddresses(context.Background(), customerID)
	require.NoError(t, err)
	assert.Empty(t, addresses)

	customer, err := st.FindCustomerByID(context.Background(), customerID)
	require.NoError(t, err)
	assert.Zero(t, customer.AddressVersion)
}
