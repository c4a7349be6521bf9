package main

import (
	"github.com/joho/godotenv"

	"slotbook/internal/slots/events"
	"slotbook/internal/slots/handler"
	"slotbook/internal/slots/repository"
	"slotbook/internal/slots/service"
	"slotbook/internal/slots/validator"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
)

const ServiceName = "slots"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	if cfg.JWTSecret == "" {
		cfg.Log.Fatal("JWT_SECRET must be set for the slots service")
	}

	cfg.SetMongo()

	cfg.Log.Info("Starting slots service")
	slotService, publisher := initServices(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.AddOpsPath("/api/v1/admin/seed")
	serverApp.SetApp(
		handler.NewSlotHandler(slotService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewSeedHandler(slotService, cfg.SeedSecret, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.SlotService, events.Publisher) {
	publisher := initPublisher(cfg)

	slotValidator := validator.NewSlotValidator(cfg.Log)
	slotStore := repository.NewMongoSlotStore(cfg)
	slotService := service.NewSlotService(slotStore, slotValidator, publisher, cfg)

	cfg.Log.Info("Slot service initialized", "database", cfg.MongoDatabaseName)
	return slotService, publisher
}

func initPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("No Kafka brokers configured, slot events disabled")
		return events.NewNoopPublisher()
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize slot event publisher", "error", err)
	}
	return publisher
}
