package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"backend/internal/catalog"
	"backend/internal/checkout"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/notify"
	"backend/internal/orders"
	"backend/internal/payment"
	"backend/internal/pricing"
	"backend/internal/store"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}
	if err := database.EnsureDraftIndexes(db); err != nil {
		log.Printf("⚠️ draft index warning: %v", err)
	}

	if config.AppEnv.OnlinePaymentEnabled && config.AppEnv.StripeSecretKey == "" {
		log.Fatal("STRIPE_SECRET_KEY is required when online payment is enabled")
	}

	notifier := notify.LogNotifier{}
	addressStore := store.NewAddressStore(db, config.AppEnv.PromoteDefaultOnDelete)
	orderRepo := store.NewOrderRepository(db)
	draftStore := store.NewDraftStore(db, config.AppEnv.DraftTTL)

	paymentAdapter := payment.NewAdapter(
		payment.NewStripeProcessor(config.AppEnv.StripeSecretKey),
		config.AppEnv.PaymentTimeout,
		config.AppEnv.Currency,
	)

	orchestrator := checkout.NewOrchestrator(
		catalog.New(db),
		addressStore,
		orderRepo,
		draftStore,
		paymentAdapter,
		notifier,
		checkout.Settings{
			Pricing: pricing.Settings{
				TaxEnabled:      config.AppEnv.TaxEnabled,
				TaxRate:         config.AppEnv.TaxRate,
				ShippingEnabled: config.AppEnv.ShippingEnabled,
				ShippingCharges: config.AppEnv.ShippingCharges,
				EmptyCartFloor:  config.AppEnv.EmptyCartFloor,
			},
			CODEnabled:    config.AppEnv.CODEnabled,
			OnlineEnabled: config.AppEnv.OnlinePaymentEnabled,
		},
	)

	orderService := orders.NewService(orderRepo, notifier)

	r := gin.Default()

	userAuth := middleware.UserAuth(config.AppEnv.JWTSecret)

	r.POST("/orders", userAuth, handlers.CreateOrder(db, orchestrator))
	r.POST("/orders/confirm", userAuth, handlers.ConfirmOrder(orchestrator))
	r.GET("/orders", userAuth, handlers.GetMyOrders(orderService))
	r.GET("/orders/:id", userAuth, handlers.GetOrder(orderService))
	r.PATCH("/orders/:id/cancel", userAuth, handlers.CancelOrder(orderService))

	user := r.Group("/user")
	user.Use(userAuth)
	{
		user.GET("/addresses", handlers.GetUserAddresses(addressStore))
		user.POST("/addresses", handlers.CreateUserAddress(addressStore))
		user.PUT("/addresses/:id", handlers.UpdateUserAddress(addressStore))
		user.DELETE("/addresses/:id", handlers.DeleteUserAddress(addressStore))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/orders", handlers.GetAllOrders(orderService))
		admin.PATCH("/orders/:id/status", handlers.SetOrderStatus(orderService))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
