package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"grocery-backend/middleware"
	"grocery-backend/models"
	"grocery-backend/utils"
)

// AuthController handles login and token refresh for customers and delivery
// partners.
type AuthController struct {
	CustomerCollection *mongo.Collection
	PartnerCollection  *mongo.Collection
}

// NewAuthController creates a new AuthController.
func NewAuthController(client *mongo.Client) *AuthController {
	db := client.Database("grocery")
	return &AuthController{
		CustomerCollection: db.Collection("customers"),
		PartnerCollection:  db.Collection("deliveryPartners"),
	}
}

// LoginCustomer handles POST /api/customer/login. Customers log in by phone
// number only; an unknown number creates a fresh activated account.
func (ac *AuthController) LoginCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		utils.Fail(w, http.StatusBadRequest, "Phone number is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var customer models.Customer
	err := ac.CustomerCollection.FindOne(ctx, bson.M{"phone": req.Phone}).Decode(&customer)
	if err == mongo.ErrNoDocuments {
		customer = models.Customer{
			Phone:       req.Phone,
			Role:        "Customer",
			IsActivated: true,
			Addresses:   []models.Address{},
		}
		result, insertErr := ac.CustomerCollection.InsertOne(ctx, customer)
		if insertErr != nil {
			utils.Fail(w, http.StatusInternalServerError, "An error occurred", insertErr)
			return
		}
		customer.ID = result.InsertedID.(primitive.ObjectID)
	} else if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "An error occurred", err)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(customer.ID.Hex(), customer.Role)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error generating tokens", err)
		return
	}

	utils.OK(w, map[string]any{
		"message":      "Login Successful",
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"customer":     customer,
	})
}

// LoginDeliveryPartner handles POST /api/delivery/login.
func (ac *AuthController) LoginDeliveryPartner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var partner models.DeliveryPartner
	err := ac.PartnerCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&partner)
	if err == mongo.ErrNoDocuments {
		utils.Fail(w, http.StatusNotFound, "Delivery Partner not found", nil)
		return
	}
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "An error occurred", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(partner.Password), []byte(req.Password)) != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid Credentials", nil)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(partner.ID.Hex(), partner.Role)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error generating tokens", err)
		return
	}

	partner.Password = ""
	utils.OK(w, map[string]any{
		"message":         "Login Successful",
		"accessToken":     accessToken,
		"refreshToken":    refreshToken,
		"deliveryPartner": partner,
	})
}

// RefreshToken handles POST /api/refresh-token, exchanging a valid refresh
// token for a new token pair.
func (ac *AuthController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		utils.Fail(w, http.StatusUnauthorized, "Refresh token required", nil)
		return
	}

	claims, err := utils.ParseToken(req.RefreshToken, utils.RefreshSecret)
	if err != nil {
		utils.Fail(w, http.StatusForbidden, "Invalid Refresh Token", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := ac.userExists(ctx, claims); err != nil {
		utils.Fail(w, http.StatusForbidden, "User not found", nil)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(claims.UserID, claims.Role)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error generating tokens", err)
		return
	}

	utils.OK(w, map[string]any{
		"message":      "Token Refreshed",
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// FetchUser handles GET /api/user, returning the authenticated user's
// record by role.
func (ac *AuthController) FetchUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	switch claims.Role {
	case "Customer":
		var customer models.Customer
		if err := ac.CustomerCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&customer); err != nil {
			utils.Fail(w, http.StatusNotFound, "User not found", nil)
			return
		}
		utils.OK(w, map[string]any{"message": "User fetched successfully", "user": customer})
	case "DeliveryPartner":
		var partner models.DeliveryPartner
		if err := ac.PartnerCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&partner); err != nil {
			utils.Fail(w, http.StatusNotFound, "User not found", nil)
			return
		}
		partner.Password = ""
		utils.OK(w, map[string]any{"message": "User fetched successfully", "user": partner})
	default:
		utils.Fail(w, http.StatusForbidden, "Invalid Role", nil)
	}
}

func (ac *AuthController) userExists(ctx context.Context, claims *utils.Claims) error {
	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return err
	}
	switch claims.Role {
	case "Customer":
		return ac.CustomerCollection.FindOne(ctx, bson.M{"_id": oid}).Err()
	case "DeliveryPartner":
		return ac.PartnerCollection.FindOne(ctx, bson.M{"_id": oid}).Err()
	}
	return mongo.ErrNoDocuments
}
