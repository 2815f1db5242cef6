package utils

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayClient creates payment orders and verifies payment signatures
// against the Razorpay REST API.
type RazorpayClient struct {
	KeyID     string
	KeySecret string
	HTTP      *http.Client
}

// NewRazorpayClient builds a client from RAZORPAY_KEY_ID and
// RAZORPAY_KEY_SECRET.
func NewRazorpayClient() *RazorpayClient {
	return &RazorpayClient{
		KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

// RazorpayOrder is the subset of the gateway's order response we use.
type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder creates a payment order for the given amount in paise.
func (rc *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*RazorpayOrder, error) {
	body, err := json.Marshal(map[string]any{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, razorpayBaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(rc.KeyID, rc.KeySecret)

	resp, err := rc.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay returned status %d", resp.StatusCode)
	}

	var order RazorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifySignature checks the checkout callback signature: HMAC-SHA256 of
// "<orderId>|<paymentId>" under the key secret.
func (rc *RazorpayClient) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(rc.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
