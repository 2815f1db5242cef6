package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-backend/middleware"
	"grocery-backend/models"
	"grocery-backend/services"
	"grocery-backend/store"
	"grocery-backend/utils"
)

// newAddressRouter wires the address routes over the given store, with the
// auth middleware replaced by one that injects the given identity.
func newAddressRouter(st *store.MemoryCustomerStore, userID string) *mux.Router {
	controller := NewAddressController(services.NewAddressService(st))

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &utils.Claims{UserID: userID, Role: "Customer"}
			ctx := context.WithValue(r.Context(), middleware.UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.HandleFunc("/api/address", controller.GetAddresses).Methods("GET")
	router.HandleFunc("/api/address", controller.AddAddress).Methods("POST")
	router.HandleFunc("/api/address/{addressId}", controller.UpdateAddress).Methods("PUT")
	router.HandleFunc("/api/address/{addressId}", controller.DeleteAddress).Methods("DELETE")
	router.HandleFunc("/api/address/{addressId}/default", controller.SetDefaultAddress).Methods("PUT")
	return router
}

func seededRouter(t *testing.T) *mux.Router {
	t.Helper()
	st := store.NewMemoryCustomerStore()
	customerID := st.PutCustomer(&models.Customer{Phone: "9876543210", Role: "Customer", IsActivated: true})
	return newAddressRouter(st, customerID)
}

func doJSON(t *testing.T, router *mux.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	if body == "" {
		body = "{}"
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return recorder, payload
}

func TestGetAddressesUnknownCustomer(t *testing.T) {
	router := newAddressRouter(store.NewMemoryCustomerStore(), "0123456789abcdef01234567")

	recorder, payload := doJSON(t, router, "GET", "/api/address", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Customer not found", payload["message"])
}

func TestGetAddressesEmptyList(t *testing.T) {
	router := seededRouter(t)

	recorder, payload := doJSON(t, router, "GET", "/api/address", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, payload["success"])
	assert.Empty(t, payload["addresses"])
}

func TestAddAddressMissingFullAddress(t *testing.T) {
	router := seededRouter(t)

	recorder, payload := doJSON(t, router, "POST", "/api/address", `{"label":"Work"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, false, payload["success"])
	assert.NotEmpty(t, payload["message"])
}

func TestAddAddressSuccess(t *testing.T) {
	router := seededRouter(t)

	recorder, payload := doJSON(t, router, "POST", "/api/address",
		`{"fullAddress":"12 MG Road, Bengaluru","label":"Work","landmark":"Near Metro","location":{"latitude":12.97,"longitude":77.59}}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, payload["success"])

	address, ok := payload["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "12 MG Road, Bengaluru", address["fullAddress"])
	assert.Equal(t, "Work", address["label"])
	// First address is the default regardless of the request.
	assert.Equal(t, true, address["isDefault"])
	assert.NotEmpty(t, address["id"])
}

func TestUpdateAddressNotFoundOverHTTP(t *testing.T) {
	router := seededRouter(t)

	recorder, payload := doJSON(t, router, "PUT", "/api/address/0123456789abcdef01234567", `{"landmark":"x"}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Address not found", payload["message"])
}

func TestAddressLifecycleOverHTTP(t *testing.T) {
	router := seededRouter(t)

	_, payload := doJSON(t, router, "POST", "/api/address", `{"fullAddress":"A"}`)
	firstID := payload["address"].(map[string]any)["id"].(string)

	_, payload = doJSON(t, router, "POST", "/api/address", `{"fullAddress":"B"}`)
	secondID := payload["address"].(map[string]any)["id"].(string)

	// Promote the second address.
	recorder, payload := doJSON(t, router, "PUT", "/api/address/"+secondID+"/default", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, payload["address"].(map[string]any)["isDefault"])

	// Delete it; the first address inherits the flag.
	recorder, payload = doJSON(t, router, "DELETE", "/api/address/"+secondID, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, payload["success"])

	recorder, payload = doJSON(t, router, "GET", "/api/address", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	addresses, ok := payload["addresses"].([]any)
	require.True(t, ok)
	require.Len(t, addresses, 1)
	remaining := addresses[0].(map[string]any)
	assert.Equal(t, firstID, remaining["id"])
	assert.Equal(t, true, remaining["isDefault"])

	// Partial update keeps untouched fields.
	recorder, payload = doJSON(t, router, "PUT", "/api/address/"+firstID, `{"floor":"2nd"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	updated := payload["address"].(map[string]any)
	assert.Equal(t, "2nd", updated["floor"])
	assert.Equal(t, "A", updated["fullAddress"])
}
