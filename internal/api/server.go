package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tribuna/internal/cache"
	"tribuna/internal/config"
	"tribuna/internal/database"
	"tribuna/internal/handlers"
	"tribuna/internal/messaging"
	"tribuna/internal/middleware"
	"tribuna/internal/pricing"
	"tribuna/internal/repository"
	"tribuna/internal/search"
	"tribuna/internal/service"
)

// Server is the HTTP API server
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer wires the full stack: Postgres, NATS, Valkey, Elasticsearch,
// the pricing engine and the services on top. Valkey and Elasticsearch
// are optional: the service degrades to uncached reads and the database
// review queue when they are unreachable.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Cache)
	if err != nil {
		log.Printf("Valkey unavailable, running without cache: %v", err)
		valkeyClient = nil
	}

	esClient, err := search.NewElasticsearchClient(config.LoadElasticsearchConfig())
	if err != nil {
		log.Printf("Elasticsearch unavailable, review queue served from database: %v", err)
		esClient = nil
	}

	engine := pricing.NewEngine(pricing.TablesFromConfig(cfg.Pricing))

	repos := repository.NewRepositories(db)

	var review service.ReviewIndexer
	if esClient != nil {
		review = esClient
	}
	services := service.NewServices(repos, natsClient, valkeyClient, review, engine, cfg)

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes(esClient)

	return server
}

func (s *Server) setupRoutes(esClient *search.ElasticsearchClient) {
	h := handlers.NewHandlers(s.services, esClient)

	api := s.router.Group("/api")
	api.Use(middleware.Identity())
	{
		matches := api.Group("/matches")
		{
			matches.POST("", h.CreateMatch)
			matches.GET("", h.ListMatches)
			matches.GET("/:id", h.GetMatch)
			matches.PATCH("/:id/demand", h.SetDemandMultiplier)
		}

		holds := api.Group("/holds")
		{
			holds.POST("", h.CreateHold)
			holds.GET("", h.ListHolds)
			holds.GET("/:id", h.GetHold)
			holds.PATCH("/extend", h.ExtendHold)
			holds.PATCH("/release", h.ReleaseHold)
		}

		seats := api.Group("/seats")
		{
			seats.GET("", h.ListSeats)
			seats.PATCH("/block", h.BlockSeat)
			seats.PATCH("/unblock", h.UnblockSeat)
		}

		quotes := api.Group("/quotes")
		{
			quotes.GET("", h.GetQuote)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("/finalize", h.FinalizeBooking)
			bookings.GET("", h.ListBookings)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/notifications", h.OnPaymentNotification)
			payments.GET("/review", h.ListPaymentReview)
			payments.GET("/:transactionId", h.GetPayment)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", middleware.PrometheusHandler())
}

func (s *Server) healthCheck(c *gin.Context) {
	check := s.db.HealthCheck(c.Request.Context())
	if check.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": check,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "tribuna-api",
		"version":  "1.0.0",
		"database": check,
	})
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Services exposes the wired services for background jobs
func (s *Server) Services() *service.Services {
	return s.services
}

// Cleanup closes the outbound connections
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Printf("Error closing Valkey connection: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
			return err
		}
	}

	return nil
}
