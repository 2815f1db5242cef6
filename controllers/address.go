package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"grocery-backend/middleware"
	"grocery-backend/models"
	"grocery-backend/services"
	"grocery-backend/utils"
)

// AddressController handles the customer address book endpoints.
type AddressController struct {
	Service *services.AddressService
}

// NewAddressController creates an AddressController.
func NewAddressController(service *services.AddressService) *AddressController {
	return &AddressController{Service: service}
}

// addressRequest is the add/update body. Pointer fields distinguish absent
// from zero so updates stay partial.
type addressRequest struct {
	Label       *string          `json:"label"`
	FullAddress *string          `json:"fullAddress"`
	Landmark    *string          `json:"landmark"`
	Floor       *string          `json:"floor"`
	Location    *models.Location `json:"location"`
	IsDefault   *bool            `json:"isDefault"`
}

func (ar addressRequest) fields() services.AddressFields {
	return services.AddressFields{
		Label:       ar.Label,
		FullAddress: ar.FullAddress,
		Landmark:    ar.Landmark,
		Floor:       ar.Floor,
		Location:    ar.Location,
		IsDefault:   ar.IsDefault,
	}
}

// GetAddresses handles GET /api/address.
func (ac *AddressController) GetAddresses(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	addresses, err := ac.Service.ListAddresses(ctx, claims.UserID)
	if err != nil {
		ac.fail(w, "Failed to fetch addresses", err)
		return
	}

	utils.OK(w, map[string]any{"addresses": addresses})
}

// AddAddress handles POST /api/address.
func (ac *AddressController) AddAddress(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	address, err := ac.Service.AddAddress(ctx, claims.UserID, req.fields())
	if err != nil {
		ac.fail(w, "Failed to add address", err)
		return
	}

	utils.OK(w, map[string]any{
		"message": "Address added successfully",
		"address": address,
	})
}

// UpdateAddress handles PUT /api/address/{addressId}.
func (ac *AddressController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	addressID := mux.Vars(r)["addressId"]

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	address, err := ac.Service.UpdateAddress(ctx, claims.UserID, addressID, req.fields())
	if err != nil {
		ac.fail(w, "Failed to update address", err)
		return
	}

	utils.OK(w, map[string]any{
		"message": "Address updated successfully",
		"address": address,
	})
}

// DeleteAddress handles DELETE /api/address/{addressId}.
func (ac *AddressController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	addressID := mux.Vars(r)["addressId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := ac.Service.DeleteAddress(ctx, claims.UserID, addressID); err != nil {
		ac.fail(w, "Failed to delete address", err)
		return
	}

	utils.OK(w, map[string]any{"message": "Address deleted successfully"})
}

// SetDefaultAddress handles PUT /api/address/{addressId}/default.
func (ac *AddressController) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	addressID := mux.Vars(r)["addressId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	address, err := ac.Service.SetDefaultAddress(ctx, claims.UserID, addressID)
	if err != nil {
		ac.fail(w, "Failed to set default address", err)
		return
	}

	utils.OK(w, map[string]any{
		"message": "Default address updated",
		"address": address,
	})
}

// fail maps service errors onto the response envelope.
func (ac *AddressController) fail(w http.ResponseWriter, fallback string, err error) {
	switch {
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.Fail(w, http.StatusNotFound, "Customer not found", nil)
	case errors.Is(err, services.ErrAddressNotFound):
		utils.Fail(w, http.StatusNotFound, "Address not found", nil)
	case errors.Is(err, services.ErrValidation):
		utils.Fail(w, http.StatusBadRequest, err.Error(), nil)
	default:
		utils.Fail(w, http.StatusInternalServerError, fallback, err)
	}
}
