// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"grocery-backend/controllers"
	"grocery-backend/realtime"
	"grocery-backend/routes"
	"grocery-backend/services"
	"grocery-backend/store"
	"grocery-backend/utils"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secrets
	if secret := os.Getenv("ACCESS_TOKEN_SECRET"); secret != "" {
		utils.AccessSecret = []byte(secret)
	}
	if secret := os.Getenv("REFRESH_TOKEN_SECRET"); secret != "" {
		utils.RefreshSecret = []byte(secret)
	}

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	// Initialize shared services
	emailService := utils.NewEmailService()
	razorpay := utils.NewRazorpayClient()
	hub := realtime.NewHub()
	customerStore := store.NewMongoCustomerStore(client)
	addressService := services.NewAddressService(customerStore)

	// Initialize controllers
	authController := controllers.NewAuthController(client)
	productController := controllers.NewProductController(client)
	addressController := controllers.NewAddressController(addressService)
	orderController := controllers.NewOrderController(client, hub, emailService)
	paymentController := controllers.NewPaymentController(client, razorpay)
	socketHandler := realtime.NewSocketHandler(hub)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, authController, productController, addressController, orderController, paymentController, socketHandler)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	fmt.Printf("Grocery App running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
