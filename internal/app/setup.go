// Package app contains the application setup for the shop backend.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	bookingrest "github.com/vinkj/autoshop/internal/booking/rest"
	bookingservice "github.com/vinkj/autoshop/internal/booking/service"
	bookingstore "github.com/vinkj/autoshop/internal/booking/store"
	catalogrest "github.com/vinkj/autoshop/internal/catalog/rest"
	catalogservice "github.com/vinkj/autoshop/internal/catalog/service"
	catalogstore "github.com/vinkj/autoshop/internal/catalog/store"
	"github.com/vinkj/autoshop/internal/config"
	"github.com/vinkj/autoshop/internal/messaging"
	orderrest "github.com/vinkj/autoshop/internal/order/rest"
	orderservice "github.com/vinkj/autoshop/internal/order/service"
	orderstore "github.com/vinkj/autoshop/internal/order/store"
	"github.com/vinkj/autoshop/internal/payment/mpesa"
	paymentrest "github.com/vinkj/autoshop/internal/payment/rest"
	paymentservice "github.com/vinkj/autoshop/internal/payment/service"
	paymentstore "github.com/vinkj/autoshop/internal/payment/store"
	"github.com/vinkj/autoshop/internal/platform/server"
)

type Dependencies struct {
	CatalogService catalogservice.CatalogService
	OrderService   orderservice.OrderService
	BookingService bookingservice.BookingService
	PaymentService paymentservice.PaymentService
	Logger         *slog.Logger
}

// SetupDependencies wires the stores and services of every domain onto the
// shared connection pool.
func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	catStore := catalogstore.NewPgStore(dbPool)
	ordStore := orderstore.NewPgStore(dbPool)

	mpesaClient := mpesa.NewClient(cfg.Daraja, logger)

	return &Dependencies{
		CatalogService: catalogservice.NewService(catStore),
		OrderService:   orderservice.NewService(ordStore, publisher),
		BookingService: bookingservice.NewService(bookingstore.NewPgStore(dbPool), catStore),
		PaymentService: paymentservice.NewService(paymentstore.NewPgStore(dbPool), ordStore, mpesaClient, logger),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the shop backend.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the shop backend.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogrest.NewHandler(deps.CatalogService, deps.Logger).RegisterRoutes(mux)
	orderrest.NewHandler(deps.OrderService, deps.Logger).RegisterRoutes(mux)
	bookingrest.NewHandler(deps.BookingService, deps.Logger).RegisterRoutes(mux)
	paymentrest.NewHandler(deps.PaymentService, deps.Logger).RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the shop backend.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
