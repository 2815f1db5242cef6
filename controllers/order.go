package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"grocery-backend/middleware"
	"grocery-backend/models"
	"grocery-backend/realtime"
	"grocery-backend/utils"
)

// OrderController handles order creation, listing and the delivery
// lifecycle. Lifecycle changes and live-location updates are published to
// the order's room on the hub.
type OrderController struct {
	OrderCollection    *mongo.Collection
	ProductCollection  *mongo.Collection
	CustomerCollection *mongo.Collection
	PartnerCollection  *mongo.Collection
	BranchCollection   *mongo.Collection
	Hub                *realtime.Hub
	EmailService       *utils.EmailService
}

// NewOrderController creates a new OrderController.
func NewOrderController(client *mongo.Client, hub *realtime.Hub, emailService *utils.EmailService) *OrderController {
	db := client.Database("grocery")
	return &OrderController{
		OrderCollection:    db.Collection("orders"),
		ProductCollection:  db.Collection("products"),
		CustomerCollection: db.Collection("customers"),
		PartnerCollection:  db.Collection("deliveryPartners"),
		BranchCollection:   db.Collection("branches"),
		Hub:                hub,
		EmailService:       emailService,
	}
}

// CreateOrder handles POST /api/order. The delivery address is the
// customer's default address (or an explicitly chosen one), snapshotted
// onto the order.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.Role != "Customer" {
		utils.Fail(w, http.StatusForbidden, "Customers only", nil)
		return
	}

	var req struct {
		Items []struct {
			ID    string `json:"id"`
			Count int    `json:"count"`
		} `json:"items"`
		BranchID  string `json:"branch"`
		AddressID string `json:"addressId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input", err)
		return
	}
	if len(req.Items) == 0 {
		utils.Fail(w, http.StatusBadRequest, "Order must contain at least one item", nil)
		return
	}

	customerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Customer not found", nil)
		return
	}
	branchID, err := primitive.ObjectIDFromHex(req.BranchID)
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid branch ID", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var customer models.Customer
	if err := oc.CustomerCollection.FindOne(ctx, bson.M{"_id": customerID}).Decode(&customer); err != nil {
		utils.Fail(w, http.StatusNotFound, "Customer not found", nil)
		return
	}

	deliveryAddress := customer.DefaultAddress()
	if req.AddressID != "" {
		deliveryAddress = nil
		for i := range customer.Addresses {
			if customer.Addresses[i].ID.Hex() == req.AddressID {
				deliveryAddress = &customer.Addresses[i]
				break
			}
		}
	}
	if deliveryAddress == nil {
		utils.Fail(w, http.StatusBadRequest, "No delivery address set", nil)
		return
	}

	if err := oc.BranchCollection.FindOne(ctx, bson.M{"_id": branchID}).Err(); err != nil {
		utils.Fail(w, http.StatusNotFound, "Branch not found", nil)
		return
	}

	var items []models.OrderItem
	var total float64
	for _, line := range req.Items {
		productID, err := primitive.ObjectIDFromHex(line.ID)
		if err != nil || line.Count <= 0 {
			utils.Fail(w, http.StatusBadRequest, "Invalid order item", nil)
			return
		}
		var product models.Product
		if err := oc.ProductCollection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			utils.Fail(w, http.StatusNotFound, "Product not found", nil)
			return
		}
		price := product.Price
		if product.Discount > 0 {
			price = product.Discount
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     price,
			Count:     line.Count,
		})
		total += price * float64(line.Count)
	}

	now := time.Now().UTC()
	order := models.Order{
		Customer:        customerID,
		Branch:          branchID,
		Items:           items,
		TotalPrice:      total,
		DeliveryAddress: *deliveryAddress,
		Status:          models.StatusAvailable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result, err := oc.OrderCollection.InsertOne(ctx, order)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to create order", err)
		return
	}
	order.ID = result.InsertedID.(primitive.ObjectID)

	utils.OK(w, map[string]any{
		"message": "Order created successfully",
		"order":   order,
	})
}

// GetOrders handles GET /api/order: a customer sees their own orders, a
// delivery partner the ones assigned to them. An optional status query
// narrows the list.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
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

	filter := bson.M{}
	switch claims.Role {
	case "Customer":
		filter["customer"] = oid
	case "DeliveryPartner":
		filter["delivery_partner"] = oid
	default:
		utils.Fail(w, http.StatusForbidden, "Invalid Role", nil)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := oc.OrderCollection.Find(ctx, filter)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to fetch orders", err)
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to fetch orders", err)
		return
	}

	utils.OK(w, map[string]any{"orders": orders})
}

// UpdateOrderStatus handles PATCH /api/order/{orderId}/status. Confirming
// an available order assigns it to the calling partner; every accepted
// change is published to the order's room.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.Role != "DeliveryPartner" {
		utils.Fail(w, http.StatusForbidden, "Delivery partners only", nil)
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["orderId"])
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Order not found", nil)
		return
	}
	partnerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found", nil)
		return
	}

	var req struct {
		Status   string           `json:"status"`
		Location *models.Location `json:"deliveryPersonLocation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var order models.Order
	if err := oc.OrderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.Fail(w, http.StatusNotFound, "Order not found", nil)
		return
	}

	if !models.ValidStatusTransition(order.Status, req.Status) {
		utils.Fail(w, http.StatusBadRequest, "Invalid status transition", nil)
		return
	}
	if !order.DeliveryPartner.IsZero() && order.DeliveryPartner != partnerID {
		utils.Fail(w, http.StatusForbidden, "Order assigned to another partner", nil)
		return
	}

	update := bson.M{
		"status":     req.Status,
		"updated_at": time.Now().UTC(),
	}
	if req.Status == models.StatusConfirmed {
		update["delivery_partner"] = partnerID
	}

	if _, err := oc.OrderCollection.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": update}); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to update order", err)
		return
	}
	if err := oc.OrderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to update order", err)
		return
	}

	oc.Hub.Publish(order.ID.Hex(), realtime.Event{
		Event: "orderStatusUpdated",
		Data: map[string]any{
			"status":                 order.Status,
			"deliveryPersonLocation": req.Location,
			"order":                  order,
		},
	})

	if req.Status == models.StatusConfirmed {
		go oc.notifyPartner(partnerID, order)
	}

	utils.OK(w, map[string]any{
		"message": "Order updated successfully",
		"order":   order,
	})
}

// UpdatePartnerLocation handles POST /api/delivery/location. The new
// position is stored on the partner and pushed to the room of every order
// the partner is actively delivering.
func (oc *OrderController) UpdatePartnerLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.Role != "DeliveryPartner" {
		utils.Fail(w, http.StatusForbidden, "Delivery partners only", nil)
		return
	}

	partnerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found", nil)
		return
	}

	var location models.Location
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err = oc.PartnerCollection.UpdateOne(ctx,
		bson.M{"_id": partnerID},
		bson.M{"$set": bson.M{"live_location": location}},
	)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to update location", err)
		return
	}

	oc.publishToActiveOrders(ctx, bson.M{
		"delivery_partner": partnerID,
		"status":           bson.M{"$in": []string{models.StatusConfirmed, models.StatusArriving}},
	}, realtime.Event{
		Event: "liveTrackingUpdates",
		Data:  map[string]any{"deliveryPersonLocation": location},
	})

	utils.OK(w, map[string]any{"message": "Location updated"})
}

// UpdateCustomerLocation handles POST /api/customer/location, mirroring the
// partner flow for the customer's live position.
func (oc *OrderController) UpdateCustomerLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.Role != "Customer" {
		utils.Fail(w, http.StatusForbidden, "Customers only", nil)
		return
	}

	customerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found", nil)
		return
	}

	var location models.Location
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err = oc.CustomerCollection.UpdateOne(ctx,
		bson.M{"_id": customerID},
		bson.M{"$set": bson.M{"live_location": location}},
	)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to update location", err)
		return
	}

	oc.publishToActiveOrders(ctx, bson.M{
		"customer": customerID,
		"status":   bson.M{"$in": []string{models.StatusConfirmed, models.StatusArriving}},
	}, realtime.Event{
		Event: "customerLocationUpdated",
		Data:  map[string]any{"customerLocation": location},
	})

	utils.OK(w, map[string]any{"message": "Location updated"})
}

// publishToActiveOrders fans an event out to the room of every order
// matching the filter.
func (oc *OrderController) publishToActiveOrders(ctx context.Context, filter bson.M, event realtime.Event) {
	cursor, err := oc.OrderCollection.Find(ctx, filter)
	if err != nil {
		log.Println("publish to active orders:", err)
		return
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			continue
		}
		oc.Hub.Publish(order.ID.Hex(), event)
	}
}

func (oc *OrderController) notifyPartner(partnerID primitive.ObjectID, order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var partner models.DeliveryPartner
	if err := oc.PartnerCollection.FindOne(ctx, bson.M{"_id": partnerID}).Decode(&partner); err != nil {
		log.Println("notify partner:", err)
		return
	}
	if err := oc.EmailService.SendOrderAssignedEmail(partner.Email, order); err != nil {
		log.Println("notify partner:", err)
	}
}
