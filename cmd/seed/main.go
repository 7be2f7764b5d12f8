package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/joho/godotenv"

	"voiceagent/internal/config"
	"voiceagent/internal/database"
	"voiceagent/internal/domain"
	"voiceagent/internal/repository"
)

// Seeds the demo tenant used by non-production deployments as the tenant
// fallback, plus one sample customer and booking to poke the tool endpoints
// with. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	businesses := repository.NewBusinessRepository(db)
	store := repository.NewBookingStore(db)

	demo, err := businesses.GetByExternalID(ctx, "demo")
	if err != nil {
		if !repository.IsNotFound(err) {
			log.Fatal(err)
		}
		policies, _ := json.Marshal(map[string]any{
			"default_booking_duration_minutes": domain.DefaultBookingDurationMinutes,
			"max_total_guests_per_15min":       domain.DefaultMaxGuestsPer15Min,
			"agent_id":                         "demo-agent",
		})
		hours, _ := json.Marshal(map[string]any{
			"mon-sun": []string{"11:00-22:00"},
		})
		demo = &domain.Business{
			ExternalID: "demo",
			Name:       "Demo Restaurant",
			Timezone:   "UTC",
			Phone:      "+15550100",
			Hours:      hours,
			Policies:   policies,
		}
		if err := businesses.Create(ctx, demo); err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded business id=%d external_id=%s", demo.ID, demo.ExternalID)
	} else {
		log.Printf("demo business exists id=%d", demo.ID)
	}

	customers, err := store.ListCustomers(ctx, demo.ID)
	if err != nil {
		log.Fatal(err)
	}
	if len(customers) > 0 {
		log.Printf("demo data exists, nothing to do")
		return
	}

	customer := &domain.Customer{BusinessID: demo.ID, Name: "Alex Morgan", Phone: "+1 555 010 0001"}
	if err := store.SaveCustomer(ctx, customer); err != nil {
		log.Fatal(err)
	}

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(15 * time.Minute)
	sample := &domain.Booking{
		BusinessID: demo.ID,
		CustomerID: customer.ID,
		StartTime:  start,
		EndTime:    start.Add(domain.DefaultBookingDurationMinutes * time.Minute),
		PartySize:  2,
		Status:     domain.BookingConfirmed,
		Source:     "seed",
	}
	if err := store.CreateBooking(ctx, sample); err != nil {
		log.Fatal(err)
	}
	log.Printf("seeded booking id=%d start=%s", sample.ID, sample.StartTime.Format(time.RFC3339))
}
