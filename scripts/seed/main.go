// Seeds the catalog and the main branch. Run once against a fresh database:
//
//	go run ./scripts/seed
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/models"
	"grocery-backend/utils"
)

var categories = []models.Category{
	{Name: "Milk, Curd & Paneer"},
	{Name: "Vegetables & Fruits"},
	{Name: "Munchies"},
	{Name: "Cold Drinks & Juices"},
	{Name: "Atta, Rice & Dal"},
}

// product name, quantity, price, category name
var products = []struct {
	Name     string
	Quantity string
	Price    float64
	Category string
}{
	{"Amul Gold Milk", "500 ml", 34, "Milk, Curd & Paneer"},
	{"Fresh Paneer", "200 g", 89, "Milk, Curd & Paneer"},
	{"Onion", "1 kg", 38, "Vegetables & Fruits"},
	{"Banana", "6 pcs", 42, "Vegetables & Fruits"},
	{"Lays Classic Salted", "52 g", 20, "Munchies"},
	{"Coca-Cola", "750 ml", 45, "Cold Drinks & Juices"},
	{"Aashirvaad Atta", "5 kg", 263, "Atta, Rice & Dal"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database("grocery")
	categoryCollection := db.Collection("categories")
	productCollection := db.Collection("products")
	branchCollection := db.Collection("branches")

	if _, err := productCollection.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatal("Error clearing products:", err)
	}
	if _, err := categoryCollection.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatal("Error clearing categories:", err)
	}

	categoryIDs := make(map[string]primitive.ObjectID)
	for _, category := range categories {
		result, err := categoryCollection.InsertOne(ctx, category)
		if err != nil {
			log.Fatal("Error seeding categories:", err)
		}
		categoryIDs[category.Name] = result.InsertedID.(primitive.ObjectID)
	}

	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		docs = append(docs, models.Product{
			Name:     p.Name,
			Quantity: p.Quantity,
			Price:    p.Price,
			Category: categoryIDs[p.Category],
		})
	}
	if _, err := productCollection.InsertMany(ctx, docs); err != nil {
		log.Fatal("Error seeding products:", err)
	}

	// Create the main branch if none exists yet.
	var existing models.Branch
	err := branchCollection.FindOne(ctx, bson.M{}).Decode(&existing)
	if err == nil {
		log.Println("Branch already exists, BRANCH_ID:", existing.ID.Hex())
		log.Println("DATABASE SEEDED SUCCESSFULLY")
		return
	}

	branch := models.Branch{
		Name:    "Main Store - Delhi",
		Address: "Connaught Place, New Delhi, Delhi 110001",
		Location: models.Location{
			Latitude:  28.6139,
			Longitude: 77.2090,
		},
		DeliveryPartners: []primitive.ObjectID{},
	}
	result, err := branchCollection.InsertOne(ctx, branch)
	if err != nil {
		log.Fatal("Error creating branch:", err)
	}
	log.Println("Branch created, BRANCH_ID:", result.InsertedID.(primitive.ObjectID).Hex())
	log.Println("DATABASE SEEDED SUCCESSFULLY")
}
