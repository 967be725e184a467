package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"tourbooking/internal/config"
	"tourbooking/internal/database"
	"tourbooking/internal/events"
	"tourbooking/internal/modules/booking"
	"tourbooking/internal/modules/payment"
	"tourbooking/internal/repository"
)

func main() {
	limit := flag.Int("limit", 100, "maximum number of open issues to replay")
	purgeAfter := flag.Duration("purge-resolved-after", 30*24*time.Hour, "delete issues resolved longer ago than this; 0 disables")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.StripeSecretKey == "" {
		log.Fatal("STRIPE_SECRET_KEY is required")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var publisher booking.BookingPublisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("events: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	issues := repository.NewReconciliationIssueRepository(db)
	reconciler := booking.NewReconciler(
		repository.NewUserRepository(db),
		repository.NewBookingRepository(db),
		payment.NewStripeProvider(cfg.StripeSecretKey),
		issues,
		publisher,
		cfg.ReconcileTimeout,
		log.Printf,
	)

	ctx := context.Background()
	stats, err := booking.ReplayOpenIssues(ctx, issues, reconciler, *limit, log.Printf)
	if err != nil {
		log.Fatalf("replay failed: %v", err)
	}

	var purged int64
	if *purgeAfter > 0 {
		purged, err = issues.PurgeResolved(ctx, time.Now().UTC().Add(-*purgeAfter))
		if err != nil {
			log.Fatalf("purge resolved issues failed: %v", err)
		}
	}

	log.Printf("reconcile completed: replayed=%d resolved=%d still_open=%d purged=%d", stats.Replayed, stats.Resolved, stats.StillOpen, purged)
}
