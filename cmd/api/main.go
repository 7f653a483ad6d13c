package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quiprentals/lead-market/internal/infra/database"
	"github.com/quiprentals/lead-market/internal/infra/http/handlers"
	"github.com/quiprentals/lead-market/internal/infra/http/middleware"
	"github.com/quiprentals/lead-market/internal/infra/integration/stripe"
	"github.com/quiprentals/lead-market/internal/infra/mail"
	"github.com/quiprentals/lead-market/internal/infra/queue"
	"github.com/quiprentals/lead-market/internal/infra/worker"
	"github.com/quiprentals/lead-market/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		getEnv("RABBITMQ_USER", "guest"),
		getEnv("RABBITMQ_PASS", "guest"),
		getEnv("RABBITMQ_HOST", "localhost"),
		getEnv("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	intentRepo := database.NewPurchaseIntentRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	eventRepo := database.NewProcessedEventRepository(db)

	// 2. Gateways and adapters
	gateway := stripe.NewClient(os.Getenv("STRIPE_SECRET_KEY"), os.Getenv("STRIPE_API_URL"))
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		getEnv("MAIL_FROM", "no-reply@quiprentals.com"),
		getEnv("SUPPORT_EMAIL", "support@quiprentals.com"),
	)

	priceCents := getEnvInt64("LEAD_PRICE_CENTS", 500)
	expiryWindow := time.Duration(getEnvInt64("INTENT_EXPIRY_MINUTES", 30)) * time.Minute

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Workers
	reconcileWorker := queue.NewReconciliationWorker(rabbitMQ.Ch, gateway, mailSender)
	go reconcileWorker.Start(queue.ReconciliationQ)

	expiryWorker := worker.NewIntentExpirationWorker(db, expiryWindow)
	go expiryWorker.Start(ctx)

	// 4. UseCases
	createLeadUC := usecase.NewCreateLeadUseCase(leadRepo, producer)
	pipelineUC := usecase.NewSetPipelineStatusUseCase(leadRepo, producer)
	initiateUC := usecase.NewInitiatePurchaseUseCase(leadRepo, intentRepo, gateway, priceCents)
	settleUC := usecase.NewSettlePurchaseUseCase(leadRepo, intentRepo, paymentRepo, eventRepo, producer, priceCents)

	// 5. Handlers
	leadHandler := handlers.NewLeadHandler(createLeadUC, pipelineUC, leadRepo)
	checkoutHandler := handlers.NewCheckoutHandler(initiateUC)
	webhookHandler := handlers.NewWebhookHandler(settleUC, os.Getenv("STRIPE_WEBHOOK_SECRET"))
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.Identity)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Account-ID", "X-Account-Role"},
	}))

	r.Post("/leads", leadHandler.HandleSubmit)
	r.Get("/leads", leadHandler.HandleList)
	r.Put("/leads/{leadId}/status", leadHandler.HandleUpdateStatus)
	r.Post("/checkout", checkoutHandler.Handle)
	r.Post("/webhook", webhookHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + getEnv("PORT", "8080")
	log.Printf("🔥 Lead market API running on %s (lead price $%.2f)", port, float64(priceCents)/100.0)

	server := &http.Server{Addr: port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return parsed
}
