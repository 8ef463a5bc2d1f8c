package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/shanegrouber/meow-bank-api/internal/config"
	"github.com/shanegrouber/meow-bank-api/internal/handler"
	"github.com/shanegrouber/meow-bank-api/internal/middleware"
	"github.com/shanegrouber/meow-bank-api/internal/models"
	redisclient "github.com/shanegrouber/meow-bank-api/internal/redis"
	"github.com/shanegrouber/meow-bank-api/internal/repository"
	"github.com/shanegrouber/meow-bank-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := newLogger(cfg)

	// Database connection (source of truth)
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis (optional read-view cache; the service runs without it)
	var transferCache *redisclient.ViewCache[models.Transfer]
	var customerCache *redisclient.ViewCache[models.Customer]
	redis, err := redisclient.NewClient(cfg.RedisAddr, "", 0)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without read cache")
	} else {
		defer redis.Close()
		transferCache = redisclient.NewViewCache[models.Transfer](redis.Client, log, 0)
		customerCache = redisclient.NewViewCache[models.Customer](redis.Client, log, 0)
	}

	// --- service wiring ---
	store := repository.NewPostgresStore(db)

	balanceSvc := service.NewBalanceService(store)
	transferSvc := service.NewTransferService(store, log, transferCache)
	accountSvc := service.NewAccountService(store, transferSvc, balanceSvc, log)
	customerSvc := service.NewCustomerService(store, accountSvc, log, customerCache)

	customerHandler := handler.NewCustomerHandler(customerSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)

	// Setup router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(cfg.APIKey)

	customers := router.Group("/customers", auth)
	{
		customers.POST("", customerHandler.CreateCustomer)
		customers.GET("/:customerId", customerHandler.GetCustomer)
		customers.GET("/:customerId/accounts", customerHandler.GetCustomerWithAccounts)
	}

	accounts := router.Group("/accounts", auth)
	{
		accounts.POST("", accountHandler.CreateAccount)
		accounts.GET("/:accountId", accountHandler.GetAccount)
		accounts.GET("/:accountId/transfers", accountHandler.GetAccountWithTransfers)
	}

	transfers := router.Group("/transfers", auth)
	{
		transfers.POST("", transferHandler.CreateTransfer)
		transfers.GET("/:transferId", transferHandler.GetTransfer)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if !cfg.IsDevelopment() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
