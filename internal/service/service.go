package service

import (
	"context"
	"time"

	"tribuna/internal/cache"
	"tribuna/internal/config"
	"tribuna/internal/models"
	"tribuna/internal/pricing"
	"tribuna/internal/repository"
)

// Store interfaces consumed by the services. The Postgres
// implementations live in internal/repository; each method that spans
// multiple rows is atomic there, so the services never see a partial
// transition. Tests substitute in-memory fakes.

type HoldStore interface {
	CreateHold(ctx context.Context, hold *models.Hold) error
	GetByID(ctx context.Context, id string) (*models.Hold, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Hold, error)
	Extend(ctx context.Context, id string, until, now time.Time) (*models.Hold, error)
	Release(ctx context.Context, id, terminalStatus string) (*models.Hold, bool, error)
	ExpireDue(ctx context.Context, now time.Time) ([]models.Hold, error)
	MarkPaid(ctx context.Context, id, paymentRef string, now time.Time) (*models.Hold, error)
	FindActiveByPaymentRef(ctx context.Context, ref string) (*models.Hold, error)
	FindPaidByPaymentRef(ctx context.Context, ref string) (*models.Hold, error)
	FindActiveByAmount(ctx context.Context, amount, tolerance int64, since time.Time) ([]models.Hold, error)
}

type SeatUnitStore interface {
	CreateSeatsForMatch(ctx context.Context, matchID int64, stands []models.Stand) error
	GetByID(ctx context.Context, id string) (*models.SeatUnit, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.SeatUnit, error)
	GetByMatchID(ctx context.Context, matchID int64, page, pageSize int, sectionID, status *string) ([]models.SeatUnit, error)
	SectionBasePrice(ctx context.Context, matchID int64, sectionID string) (int64, error)
	Block(ctx context.Context, id string) error
	Unblock(ctx context.Context, id string) error
}

type MatchStore interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int64) (*models.Match, error)
	List(ctx context.Context, page, pageSize int) ([]models.Match, error)
	SetDemandMultiplier(ctx context.Context, id int64, multiplier float64) error
}

type PaymentStore interface {
	Insert(ctx context.Context, rec *models.PaymentRecord) (bool, *models.PaymentRecord, error)
	RecordOutcome(ctx context.Context, transactionID, outcome string, holdID, detail *string) error
	GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error)
	ListByOutcome(ctx context.Context, outcome string, page, pageSize int) ([]models.PaymentRecord, error)
}

type BookingStore interface {
	FinalizeFromHold(ctx context.Context, holdID string, now time.Time) (*models.Booking, bool, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error)
}

// EventPublisher is the outbound fire-and-forget event channel.
// Publish failures are logged, never propagated.
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// ReviewIndexer receives payment records that need a human decision.
type ReviewIndexer interface {
	IndexPaymentReview(ctx context.Context, rec *models.PaymentRecord) error
}

type Services struct {
	Matches      *MatchService
	Quotes       *QuoteService
	Reservations *ReservationService
	Reconciler   *ReconcilerService
	Finalizer    *FinalizerService
}

func NewServices(repos *repository.Repositories, nats EventPublisher, valkey *cache.ValkeyClient, review ReviewIndexer, engine *pricing.Engine, cfg *config.Config) *Services {
	matchService := NewMatchService(repos.Matches, repos.SeatUnits, valkey)
	quoteService := NewQuoteService(matchService, repos.SeatUnits, engine, valkey)
	reservationService := NewReservationService(repos.Holds, repos.SeatUnits, matchService, engine, nats, cfg.Reservation)
	reconcilerService := NewReconcilerService(repos.Payments, repos.Holds, reservationService, review, nats, cfg.Reconcile)
	finalizerService := NewFinalizerService(repos.Bookings, nats)

	return &Services{
		Matches:      matchService,
		Quotes:       quoteService,
		Reservations: reservationService,
		Reconciler:   reconcilerService,
		Finalizer:    finalizerService,
	}
}
