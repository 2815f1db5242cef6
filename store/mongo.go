package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"grocery-backend/models"
)

// MongoCustomerStore keeps customer records in the "customers" collection.
type MongoCustomerStore struct {
	Collection *mongo.Collection
}

// NewMongoCustomerStore creates a MongoCustomerStore on the grocery database.
func NewMongoCustomerStore(client *mongo.Client) *MongoCustomerStore {
	collection := client.Database("grocery").Collection("customers")
	return &MongoCustomerStore{Collection: collection}
}

// FindCustomerByID returns the customer document, or ErrNotFound. A
// malformed id cannot name any customer, so it also maps to ErrNotFound.
func (s *MongoCustomerStore) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var customer models.Customer
	err = s.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&customer)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ReplaceAddresses writes the whole address sequence in a single UpdateOne
// filtered on both the customer id and the version the caller read. A
// concurrent writer bumps the version, the filter matches nothing, and the
// caller gets ErrConflict to retry from a fresh read.
func (s *MongoCustomerStore) ReplaceAddresses(ctx context.Context, id string, version int64, addresses []models.Address) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	if addresses == nil {
		addresses = []models.Address{}
	}
	stampTimestamps(addresses, time.Now().UTC())

	result, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "address_version": version},
		bson.M{
			"$set": bson.M{"addresses": addresses},
			"$inc": bson.M{"address_version": 1},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the customer vanished or the version moved; tell them apart
		// so deterministic not-found is never retried.
		count, err := s.Collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
