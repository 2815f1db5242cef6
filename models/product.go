package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products on the storefront.
type Category struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
}

// Product is a single catalog item.
type Product struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name     string             `bson:"name" json:"name"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
	Price    float64            `bson:"price" json:"price"`
	Discount float64            `bson:"discount_price,omitempty" json:"discountPrice,omitempty"`
	Quantity string             `bson:"quantity" json:"quantity"` // e.g. "500 ml"
	Category primitive.ObjectID `bson:"category" json:"category,omitempty"`
}
