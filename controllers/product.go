package controllers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-backend/models"
	"grocery-backend/utils"
)

// ProductController handles catalog browsing and search.
type ProductController struct {
	ProductCollection  *mongo.Collection
	CategoryCollection *mongo.Collection
}

// NewProductController creates a new ProductController.
func NewProductController(client *mongo.Client) *ProductController {
	db := client.Database("grocery")
	return &ProductController{
		ProductCollection:  db.Collection("products"),
		CategoryCollection: db.Collection("categories"),
	}
}

// GetCategories handles GET /api/categories.
func (pc *ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := pc.CategoryCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "An error occurred", err)
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "An error occurred", err)
		return
	}

	utils.OK(w, map[string]any{"categories": categories})
}

// GetProductsByCategoryID handles GET /api/products/{categoryId}.
func (pc *ProductController) GetProductsByCategoryID(w http.ResponseWriter, r *http.Request) {
	categoryID, err := primitive.ObjectIDFromHex(mux.Vars(r)["categoryId"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := pc.ProductCollection.Find(ctx, bson.M{"category": categoryID})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "An error occurred", err)
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "An error occurred", err)
		return
	}

	utils.OK(w, map[string]any{"products": products})
}

// SearchProducts handles GET /api/products/search with filters:
// q, category, minPrice, maxPrice, sort, limit, page.
func (pc *ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := bson.M{}
	if q := params.Get("q"); q != "" {
		query["name"] = bson.M{"$regex": q, "$options": "i"}
	}
	if category := params.Get("category"); category != "" {
		categoryID, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			utils.Fail(w, http.StatusBadRequest, "Invalid category ID", nil)
			return
		}
		query["category"] = categoryID
	}

	price := bson.M{}
	if minPrice := params.Get("minPrice"); minPrice != "" {
		if v, err := strconv.ParseFloat(minPrice, 64); err == nil {
			price["$gte"] = v
		}
	}
	if maxPrice := params.Get("maxPrice"); maxPrice != "" {
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			price["$lte"] = v
		}
	}
	if len(price) > 0 {
		query["price"] = price
	}

	var sortOption bson.D
	switch params.Get("sort") {
	case "price_asc":
		sortOption = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sortOption = bson.D{{Key: "price", Value: -1}}
	case "name_asc":
		sortOption = bson.D{{Key: "name", Value: 1}}
	case "name_desc":
		sortOption = bson.D{{Key: "name", Value: -1}}
	default:
		sortOption = bson.D{{Key: "_id", Value: -1}} // newest first
	}

	limit := int64(20)
	if v, err := strconv.ParseInt(params.Get("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}
	page := int64(1)
	if v, err := strconv.ParseInt(params.Get("page"), 10, 64); err == nil && v > 0 {
		page = v
	}
	skip := (page - 1) * limit

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(sortOption).SetSkip(skip).SetLimit(limit)
	cursor, err := pc.ProductCollection.Find(ctx, query, findOptions)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Search failed", err)
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Search failed", err)
		return
	}

	total, err := pc.ProductCollection.CountDocuments(ctx, query)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Search failed", err)
		return
	}
	totalPages := int64(math.Ceil(float64(total) / float64(limit)))

	utils.OK(w, map[string]any{
		"data": products,
		"pagination": map[string]any{
			"currentPage":   page,
			"totalPages":    totalPages,
			"totalProducts": total,
			"hasNextPage":   page < totalPages,
			"hasPrevPage":   page > 1,
		},
	})
}
