package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lapak/internal/config"
	"lapak/internal/handlers"
	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/pkg/payments"
	"lapak/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.WishlistItem{},
		&models.ExchangeRate{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// --- Redis (webhook event ledger) ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	// --- RabbitMQ ---
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	// --- Payment provider client ---
	paymentClient := payments.NewClient(payments.Config{
		APIKey:     cfg.PaymentAPIKey,
		BaseURL:    cfg.PaymentBaseURL,
		SuccessURL: cfg.PaymentSuccessURL,
		CancelURL:  cfg.PaymentCancelURL,
		Currency:   cfg.BaseCurrency,
	})

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	wishlistRepo := repositories.NewGORMWishlistRepository(db)
	rateRepo := repositories.NewGORMExchangeRateRepository(db)
	eventLedger := repositories.NewRedisEventLedger(redisClient, cfg.LedgerTTL)

	seedExchangeRates(rateRepo, cfg.BaseCurrency)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	productService := services.NewProductService(productRepo)
	currencyService := services.NewCurrencyService(rateRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, userRepo, paymentClient, mqClient, cfg.DeliveryLeadDays)
	reconcileService := services.NewReconcileService(orderRepo, productRepo, cartRepo, userRepo, eventLedger, paymentClient, mqClient)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	productHandler := handlers.NewProductHandler(productService, currencyService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	webhookHandler := handlers.NewWebhookHandler(reconcileService, cfg.PaymentWebhookSecret)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")

	// Public routes. The webhook endpoint authenticates the provider with
	// its signature, not a user token.
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	webhookHandler.RegisterRoutes(apiV1)

	// Authenticated routes
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	userHandler.RegisterRoutes(protected)
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	wishlistHandler.RegisterRoutes(protected)

	// Admin routes
	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterAdminRoutes(admin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Notification consumer ---
	// Delivery to email/SMS providers lives in a separate worker; this
	// consumer drains the queue and logs what would be sent.
	go func() {
		log.Println("Starting RabbitMQ notification consumer...")
		handler := func(msg amqp.Delivery) error {
			log.Printf("Notification (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeNotifications(handler); consumerErr != nil {
			log.Printf("Failed to start notification consumer: %v", consumerErr)
		}
	}()

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seedExchangeRates installs a baseline rate table when none exists yet, so
// currency conversion works before the external refresh job has ever run.
func seedExchangeRates(repo repositories.ExchangeRateRepository, base string) {
	if _, err := repo.Latest(); err == nil {
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking exchange rates: %v", err)
		return
	}

	rate := &models.ExchangeRate{
		Base: base,
		Rates: map[string]float64{
			"USD": 1.0,
			"EUR": 0.92,
			"GBP": 0.79,
			"IDR": 16250.0,
			"JPY": 147.0,
		},
		UpdatedAt: time.Now(),
	}
	if err := repo.Upsert(rate); err != nil {
		log.Printf("Error seeding exchange rates: %v", err)
	} else {
		log.Printf("Seeded baseline exchange rates (base: %s)", base)
	}
}
