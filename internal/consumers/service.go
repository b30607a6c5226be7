package consumers

import (
	"context"
	"log"
	"log/slog"

	"tribuna/internal/config"
	"tribuna/internal/database"
	"tribuna/internal/messaging"
	"tribuna/internal/models"
	"tribuna/internal/pricing"
	"tribuna/internal/repository"
	"tribuna/internal/search"
	"tribuna/internal/service"
)

// ConsumerService runs the background side of the engine: the
// payment.received queue consumer and the hold expiry sweep. It shares
// the service layer with the API binary but holds its own connections.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	services *service.Services
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	esClient, err := search.NewElasticsearchClient(config.LoadElasticsearchConfig())
	if err != nil {
		log.Printf("Elasticsearch unavailable, review indexing disabled: %v", err)
		esClient = nil
	}

	repos := repository.NewRepositories(db)

	var review service.ReviewIndexer
	if esClient != nil {
		review = esClient
	}
	engine := pricing.NewEngine(pricing.TablesFromConfig(cfg.Pricing))
	services := service.NewServices(repos, natsClient, nil, review, engine, cfg)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		services: services,
		handlers: NewHandlers(services),
	}, nil
}

func (cs *ConsumerService) Start(ctx context.Context) error {
	slog.Info("Starting NATS consumers...")

	// Inbound payments arrive at-least-once; the reconciler deduplicates
	// on transaction ID so redeliveries are harmless.
	_, err := cs.nats.SubscribeQueue(models.EventPaymentReceived, "reconcilers", cs.handlers.HandlePaymentReceived)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventBookingConfirmed, "consumers", cs.handlers.HandleBookingConfirmed)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventHoldExpired, "consumers", cs.handlers.HandleHoldExpired)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

// Services exposes the wired service layer for the background jobs.
func (cs *ConsumerService) Services() *service.Services {
	return cs.services
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
