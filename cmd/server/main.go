package main

import (
	"coin_exchange/internal/api"        // Custom package for API handlers
	"coin_exchange/internal/config"     // Custom package for configuration
	"coin_exchange/internal/db"         // Custom package for database access
	"coin_exchange/internal/middleware" // Custom package for middleware
	"coin_exchange/internal/service"    // Custom package for the engines
	"context"                           // context package is needed for Redis operations
	"log"                               // log package is needed for logging

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	gdb, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build the service layer
	quotes := service.RedisQuoteCache{Client: redisClient}
	users := service.NewUserService(gdb)
	wallets := service.NewWalletService(gdb)
	balances := service.NewBalanceService(gdb)
	trades := service.NewTradeService(gdb, quotes)
	coins := service.NewCoinService(gdb)
	feed := service.NewPriceFeed(gdb, quotes)

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Public routes
	r.POST("/users", api.CreateUserHandler(users))           // Registration endpoint
	r.POST("/login", api.LoginHandler(users, cfg.JWTSecret)) // Login endpoint

	// Authenticated routes (protected by JWT)
	auth := r.Group("")
	auth.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	auth.GET("/users", api.ListUsersHandler(users))                      // List users endpoint
	auth.GET("/users/:id/details", api.GetUserDetailsHandler(users))     // User details endpoint
	auth.GET("/wallet", api.GetWalletHandler(wallets))                   // Get wallet endpoint
	auth.POST("/wallet/deposit", api.DepositHandler(balances))           // Deposit endpoint
	auth.POST("/wallet/withdraw", api.WithdrawHandler(balances))         // Withdraw endpoint
	auth.GET("/coins", api.ListCoinsHandler(coins))                      // List coins endpoint
	auth.POST("/coins", api.AddCoinHandler(coins))                       // Add coin endpoint
	auth.GET("/coins/:id", api.GetCoinHandler(coins))                    // Get coin endpoint
	auth.POST("/trades/sell", api.SellHandler(trades))                   // Sell order endpoint
	auth.GET("/trades/orders/:coinId", api.GetOpenOrdersHandler(trades)) // Order book endpoint
	auth.POST("/trades/buy", api.BuyHandler(trades))                     // Buy endpoint
	auth.GET("/ws/price/:coinId", api.StreamPriceHandler(feed))          // Streaming quote endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
