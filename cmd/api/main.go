package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/stripe-payments/internal/api"
	"github.com/example/stripe-payments/internal/auth"
	"github.com/example/stripe-payments/internal/config"
	"github.com/example/stripe-payments/internal/infrastructure/kafka"
	"github.com/example/stripe-payments/internal/infrastructure/store"
	"github.com/example/stripe-payments/internal/notification"
	"github.com/example/stripe-payments/internal/payment"
	"github.com/example/stripe-payments/internal/stripegw"
	"github.com/example/stripe-payments/internal/webhook"
)

func main() {
	cfg := config.FromEnv()
	if cfg.JWTSecret == "" {
		log.Fatal("[API] JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[API] JWT_SECRET must be at least 32 characters long")
	}
	if cfg.SecretKey() == "" {
		log.Fatal("[API] Stripe secret key for the active mode is required")
	}

	log.Println("[API] ========================================")
	log.Println("[API] Stripe Payments - Webhook Reconciliation")
	log.Println("[API] ========================================")
	log.Printf("[API] Addr: %s", cfg.Addr)
	log.Printf("[API] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[API] Topic: %s", cfg.KafkaTopic)
	log.Printf("[API] Test mode: %v", cfg.TestMode)

	// Kafka producer for the notification re-broadcast
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	// PostgreSQL
	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := store.EnsureSchema(db); err != nil {
		log.Fatalf("[API] Failed to ensure schema: %v", err)
	}
	log.Println("[API] Connected to PostgreSQL")

	orders := store.NewPostgresOrderStore(db)
	customers := store.NewPostgresCustomerStore(db)
	forms := store.NewPostgresFormStore(db)
	messages := store.NewPostgresMessageStore(db)

	// Notification sink: observers run in registration order
	hub := notification.NewHub()
	hub.Subscribe("kafka", notification.KafkaObserver(producer))

	gateway := stripegw.NewClient(cfg.SecretKey())
	engine := payment.NewEngine(gateway, orders, customers, forms, hub, cfg.TestMode)

	verifier := webhook.NewVerifier(cfg.WebhookSecret())
	dispatcher := webhook.NewDispatcher(orders, messages, engine, hub)
	webhookHandler := webhook.NewHandler(verifier, dispatcher)

	jwtService := auth.NewJWTService(cfg.JWTSecret, 24*time.Hour)

	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(engine, orders, messages),
		AuthHandlers: api.NewAuthHandlers(jwtService, cfg.AdminEmail, cfg.AdminPasswordHash),
		JWTService:   jwtService,
		Webhook:      webhookHandler,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("[API] Listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}
