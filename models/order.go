package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses, in lifecycle order. Cancelled is only reachable from
// Available.
const (
	StatusAvailable = "available"
	StatusConfirmed = "confirmed"
	StatusArriving  = "arriving"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// ValidStatusTransition reports whether an order may move from one status
// to the next.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case StatusAvailable:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusArriving
	case StatusArriving:
		return to == StatusDelivered
	}
	return false
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Count     int                `bson:"count" json:"count"`
}

// Order is a grocery order placed by a customer against a branch. The
// delivery address is snapshotted at creation so later edits to the
// customer's address book do not move an in-flight delivery.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Customer        primitive.ObjectID `bson:"customer" json:"customer"`
	DeliveryPartner primitive.ObjectID `bson:"delivery_partner,omitempty" json:"deliveryPartner,omitempty"`
	Branch          primitive.ObjectID `bson:"branch" json:"branch"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalPrice      float64            `bson:"total_price" json:"totalPrice"`
	DeliveryAddress Address            `bson:"delivery_address" json:"deliveryAddress"`
	Status          string             `bson:"status" json:"status"`
	PaymentStatus   string             `bson:"payment_status,omitempty" json:"paymentStatus,omitempty"`
	PaymentMethod   string             `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	RazorpayOrderID string             `bson:"razorpay_order_id,omitempty" json:"razorpayOrderId,omitempty"`
	RazorpayPayID   string             `bson:"razorpay_payment_id,omitempty" json:"razorpayPaymentId,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}
