package main

import (
	"context"

	"github.com/joho/godotenv"

	"slotbook/internal/slots/events"
	"slotbook/internal/slots/repository"
	"slotbook/internal/slots/service"
	"slotbook/internal/slots/validator"
	"slotbook/pkg/config"
)

const ServiceName = "seed"

// Out-of-band seeding entrypoint, meant to run as a deployment hook.
// Re-running is a no-op for slots that already exist.
func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	slotValidator := validator.NewSlotValidator(cfg.Log)
	slotStore := repository.NewMongoSlotStore(cfg)
	slotService := service.NewSlotService(slotStore, slotValidator, events.NewNoopPublisher(), cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	count, err := slotService.Seed(ctx)
	if err != nil {
		cfg.Log.Fatal("Seeding failed", "created", count, "error", err)
	}

	cfg.Log.Info("Seeding finished", "created", count)
}
