package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address labels allowed on a customer address.
const (
	LabelHome  = "Home"
	LabelWork  = "Work"
	LabelHotel = "Hotel"
	LabelOther = "Other"
)

// ValidLabel reports whether label is one of the allowed address labels.
func ValidLabel(label string) bool {
	switch label {
	case LabelHome, LabelWork, LabelHotel, LabelOther:
		return true
	}
	return false
}

// Location is a latitude/longitude pair.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Address is one entry of a customer's address book. A customer keeps an
// ordered list of these; at most one carries IsDefault.
type Address struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Label       string             `bson:"label" json:"label"`
	FullAddress string             `bson:"full_address" json:"fullAddress"`
	Landmark    string             `bson:"landmark,omitempty" json:"landmark,omitempty"`
	Floor       string             `bson:"floor,omitempty" json:"floor,omitempty"`
	Location    *Location          `bson:"location,omitempty" json:"location,omitempty"`
	IsDefault   bool               `bson:"is_default" json:"isDefault"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Customer is an app user ordering groceries. Login is by phone number;
// the account is created and activated on first login.
type Customer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone        string             `bson:"phone" json:"phone"`
	Role         string             `bson:"role" json:"role"` // always "Customer"
	IsActivated  bool               `bson:"is_activated" json:"isActivated"`
	LiveLocation *Location          `bson:"live_location,omitempty" json:"liveLocation,omitempty"`
	Addresses    []Address          `bson:"addresses" json:"addresses"`

	// Bumped on every replace of Addresses; concurrent writers conflict on it.
	AddressVersion int64 `bson:"address_version" json:"-"`
}

// DefaultAddress returns the customer's default address, or nil if the
// address book is empty.
func (c *Customer) DefaultAddress() *Address {
	for i := range c.Addresses {
		if c.Addresses[i].IsDefault {
			return &c.Addresses[i]
		}
	}
	return nil
}

// DeliveryPartner is delivery personnel attached to a branch.
type DeliveryPartner struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password,omitempty" json:"-"`
	Phone        string             `bson:"phone" json:"phone"`
	Role         string             `bson:"role" json:"role"` // always "DeliveryPartner"
	IsActivated  bool               `bson:"is_activated" json:"isActivated"`
	LiveLocation *Location          `bson:"live_location,omitempty" json:"liveLocation,omitempty"`
	Branch       primitive.ObjectID `bson:"branch,omitempty" json:"branch,omitempty"`
}

// Admin is an admin-panel user.
type Admin struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name,omitempty" json:"name,omitempty"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password,omitempty" json:"-"`
	Role        string             `bson:"role" json:"role"` // always "Admin"
	IsActivated bool               `bson:"is_activated" json:"isActivated"`
}
