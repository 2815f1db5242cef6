package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"grocery-backend/utils"
)

// PaymentController handles Razorpay order creation and payment
// verification.
type PaymentController struct {
	OrderCollection *mongo.Collection
	Razorpay        *utils.RazorpayClient
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(client *mongo.Client, razorpay *utils.RazorpayClient) *PaymentController {
	return &PaymentController{
		OrderCollection: client.Database("grocery").Collection("orders"),
		Razorpay:        razorpay,
	}
}

// CreatePaymentOrder handles POST /api/payment/create-order.
func (pc *PaymentController) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		utils.Fail(w, http.StatusBadRequest, "Invalid amount", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	// Razorpay expects the amount in paise.
	receipt := fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	order, err := pc.Razorpay.CreateOrder(ctx, int64(req.Amount*100+0.5), receipt)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to create payment order", err)
		return
	}

	utils.OK(w, map[string]any{
		"order_id": order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"key_id":   pc.Razorpay.KeyID,
	})
}

// VerifyPayment handles POST /api/payment/verify. On a valid signature the
// referenced order is marked paid.
func (pc *PaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
		OrderID           string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if !pc.Razorpay.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		utils.Fail(w, http.StatusBadRequest, "Payment verification failed", nil)
		return
	}

	if req.OrderID != "" {
		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			utils.Fail(w, http.StatusNotFound, "Order not found", nil)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		_, err = pc.OrderCollection.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{
			"$set": bson.M{
				"payment_status":      "paid",
				"payment_method":      "ONLINE",
				"razorpay_order_id":   req.RazorpayOrderID,
				"razorpay_payment_id": req.RazorpayPaymentID,
				"updated_at":          time.Now().UTC(),
			},
		})
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Failed to update order", err)
			return
		}
	}

	utils.OK(w, map[string]any{
		"message":    "Payment verified successfully",
		"payment_id": req.RazorpayPaymentID,
	})
}
