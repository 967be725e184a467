package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"tourbooking/internal/config"
	"tourbooking/internal/database"
	"tourbooking/internal/domain"
	"tourbooking/internal/modules/auth"
	"tourbooking/internal/repository"
)

type seedTour struct {
	name     string
	duration int
	price    float64
	summary  string
}

var tours = []seedTour{
	{"The Forest Hiker", 5, 397, "Breathtaking hike through the Canadian Banff National Park"},
	{"The Sea Explorer", 7, 497, "Exploring the jaw-dropping US east coast by foot and by boat"},
	{"The Snow Adventurer", 4, 997, "Exciting adventure in the snow with snowboarding and skiing"},
	{"The City Wanderer", 9, 1197, "Living the life of Wanderlust in the US' most beautiful cities"},
	{"The Park Camper", 10, 1497, "Breathing in Nature in America's most spectacular National Parks"},
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
		log.Fatal("refusing to seed a production database")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data
	log.Println("Cleaning old data...")
	for _, table := range []string{"reconciliation_issues", "bookings", "tours", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s failed: %v", table, err)
		}
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	tourRepo := repository.NewTourRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")
	adminHash, err := auth.HashPassword("admin1234")
	if err != nil {
		log.Fatal(err)
	}
	if err := users.Create(ctx, &domain.User{Email: "admin@natours.io", PasswordHash: adminHash, Role: domain.RoleAdmin, Name: "Admin"}); err != nil {
		log.Fatal(err)
	}

	userHash, err := auth.HashPassword("test1234")
	if err != nil {
		log.Fatal(err)
	}
	for i, name := range []string{"Laura Wilson", "Ben Hadley", "Sophie Louise"} {
		u := &domain.User{
			Email:        fmt.Sprintf("user%d@example.com", i+1),
			PasswordHash: userHash,
			Role:         domain.RoleUser,
			Name:         name,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatal(err)
		}
	}
	guide := &domain.User{Email: "guide@example.com", PasswordHash: userHash, Role: domain.RoleGuide, Name: "Leo Gillespie"}
	if err := users.Create(ctx, guide); err != nil {
		log.Fatal(err)
	}

	// ================== TOURS ==================
	log.Println("Creating tours...")
	for i, t := range tours {
		tour := &domain.Tour{
			Name:       t.name,
			Slug:       slugify(t.name),
			Summary:    t.summary,
			ImageCover: fmt.Sprintf("tour-%d-cover.jpg", i+1),
			Duration:   t.duration,
			Price:      t.price,
		}
		if err := tourRepo.Create(ctx, tour); err != nil {
			log.Fatal(err)
		}
		log.Printf("tour %s id=%s", tour.Slug, tour.ID)
	}

	log.Println("Seed completed!")
	log.Println("Test accounts:")
	log.Println("Admin: admin@natours.io / admin1234")
	log.Println("Users: user1@example.com ... user3@example.com / test1234")
	log.Println("Guide: guide@example.com / test1234")
}

func slugify(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case c == ' ' || c == '-':
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	return string(out)
}
