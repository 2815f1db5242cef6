package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Branch is a store location orders are fulfilled from.
type Branch struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name             string               `bson:"name" json:"name"`
	Location         Location             `bson:"location" json:"location"`
	Address          string               `bson:"address" json:"address"`
	DeliveryPartners []primitive.ObjectID `bson:"delivery_partners" json:"deliveryPartners"`
}
