package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tourbooking/internal/config"
	"tourbooking/internal/database"
	"tourbooking/internal/domain"
	"tourbooking/internal/events"
	"tourbooking/internal/middleware"
	"tourbooking/internal/modules/admin"
	"tourbooking/internal/modules/auth"
	"tourbooking/internal/modules/booking"
	"tourbooking/internal/modules/catalog"
	"tourbooking/internal/modules/payment"
	jwtsvc "tourbooking/internal/pkg/jwt"
	"tourbooking/internal/repository"
)

type eventPublisher interface {
	booking.BookingPublisher
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	tourRepo := repository.NewTourRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	issueRepo := repository.NewReconciliationIssueRepository(db)

	var publisher eventPublisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("events: %v", err)
		}
		publisher = p
	}
	defer publisher.Close()

	// interfaces stay nil when Stripe is not configured
	var (
		sessions booking.SessionProvider
		checkout *payment.StripeProvider
	)
	if cfg.StripeSecretKey != "" {
		checkout = payment.NewStripeProvider(cfg.StripeSecretKey)
		sessions = checkout
	} else {
		log.Println("STRIPE_SECRET_KEY is empty: checkout and billing portal are disabled")
	}
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	reconciler := booking.NewReconciler(userRepo, bookingRepo, sessions, issueRepo, publisher, cfg.ReconcileTimeout, log.Printf)

	adminHandler := admin.NewHandler(admin.NewService(issueRepo, reconciler), log.Printf)
	authHandler := auth.NewHandler(auth.NewService(userRepo, j), log.Printf)
	catalogHandler := catalog.NewHandler(catalog.NewService(tourRepo), log.Printf)
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, userRepo), reconciler, cfg.RedirectFallbackEnabled(), log.Printf)

	paymentService := newPaymentService(cfg, tourRepo, userRepo, checkout)
	paymentHandler := payment.NewHandler(paymentService, cfg.PublicBaseURL, log.Printf)

	webhookHandler := payment.NewWebhookHandler(nil, reconciler, log.Printf)
	if cfg.StripeWebhookSecret != "" {
		webhookHandler = payment.NewWebhookHandler(payment.NewStripeVerifier(cfg.StripeWebhookSecret), reconciler, log.Printf)
	} else {
		log.Println("STRIPE_WEBHOOK_SECRET is empty: webhook deliveries will be refused")
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())

	// the provider may be configured with the legacy top-level path
	r.POST("/webhook-checkout", webhookHandler.WebhookCheckout)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		webhookHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterProtectedRoutes(protected)
			paymentHandler.RegisterProtectedRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.RequireRole(string(domain.RoleAdmin)))
			adminHandler.RegisterRoutes(adminGroup)
		}
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func newPaymentService(cfg *config.Config, tours *repository.TourRepository, users *repository.UserRepository, stripe *payment.StripeProvider) *payment.Service {
	svcCfg := payment.ServiceConfig{
		Currency:            cfg.Currency,
		PortalConfiguration: cfg.StripePortalConfiguration,
	}
	if stripe == nil {
		return payment.NewService(tours, users, nil, nil, svcCfg, log.Printf)
	}
	return payment.NewService(tours, users, stripe, stripe, svcCfg, log.Printf)
}
