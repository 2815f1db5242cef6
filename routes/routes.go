package routes

import (
	"github.com/gorilla/mux"

	"grocery-backend/controllers"
	"grocery-backend/middleware"
	"grocery-backend/realtime"
)

// RegisterRoutes sets up all the routes for the application under /api,
// plus the websocket endpoint at /ws.
func RegisterRoutes(
	router *mux.Router,
	authController *controllers.AuthController,
	productController *controllers.ProductController,
	addressController *controllers.AddressController,
	orderController *controllers.OrderController,
	paymentController *controllers.PaymentController,
	socketHandler *realtime.SocketHandler,
) {
	// Realtime channel
	router.Handle("/ws", socketHandler)

	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/customer/login", authController.LoginCustomer).Methods("POST")
	api.HandleFunc("/delivery/login", authController.LoginDeliveryPartner).Methods("POST")
	api.HandleFunc("/refresh-token", authController.RefreshToken).Methods("POST")

	// Catalog routes
	api.HandleFunc("/categories", productController.GetCategories).Methods("GET")
	api.HandleFunc("/products/search", productController.SearchProducts).Methods("GET")
	api.HandleFunc("/products/{categoryId}", productController.GetProductsByCategoryID).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/user", authController.FetchUser).Methods("GET")

	// Address routes
	protected.HandleFunc("/address", addressController.GetAddresses).Methods("GET")
	protected.HandleFunc("/address", addressController.AddAddress).Methods("POST")
	protected.HandleFunc("/address/{addressId}", addressController.UpdateAddress).Methods("PUT")
	protected.HandleFunc("/address/{addressId}", addressController.DeleteAddress).Methods("DELETE")
	protected.HandleFunc("/address/{addressId}/default", addressController.SetDefaultAddress).Methods("PUT")

	// Order routes
	protected.HandleFunc("/order", orderController.CreateOrder).Methods("POST")
	protected.HandleFunc("/order", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/order/{orderId}/status", orderController.UpdateOrderStatus).Methods("PATCH")
	protected.HandleFunc("/delivery/location", orderController.UpdatePartnerLocation).Methods("POST")
	protected.HandleFunc("/customer/location", orderController.UpdateCustomerLocation).Methods("POST")

	// Payment routes
	protected.HandleFunc("/payment/create-order", paymentController.CreatePaymentOrder).Methods("POST")
	protected.HandleFunc("/payment/verify", paymentController.VerifyPayment).Methods("POST")
}
