// Package rest provides HTTP handlers for catalog-related operations.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	caterrors "github.com/vinkj/autoshop/internal/catalog/errors"
	"github.com/vinkj/autoshop/internal/catalog/service"
	"github.com/vinkj/autoshop/internal/platform/web"
)

type Handler struct {
	service service.CatalogService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the catalog handler with the provided service.
func NewHandler(service service.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/services", func(r chi.Router) {
		r.Get("/", h.FindServices)
		r.Get("/{id}/", h.FindServiceByID)
	})
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.FindProducts)
		r.Get("/{id}/", h.FindProductByID)
	})
	r.Get("/api/gallery/", h.FindGallery)
	r.Get("/healthz", h.HealthCheck)
}

// FindServices retrieves the list of all services.
func (h *Handler) FindServices(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindServices(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving service list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch services")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved service list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindServiceByID retrieves a service by its ID.
func (h *Handler) FindServiceByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindServiceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, caterrors.ErrServiceNotFound) {
			mLogger.WarnContext(r.Context(), "Service not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Service with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving service", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve service with ID %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindProducts retrieves the list of all products.
func (h *Handler) FindProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindProducts(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindProductByID retrieves a product by its ID.
func (h *Handler) FindProductByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, caterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindGallery retrieves the list of gallery images.
func (h *Handler) FindGallery(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindGallery(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving gallery", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch gallery")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// HealthCheck responds with a simple status payload.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// loggerWithReqID returns a logger enriched with the request ID from the request context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", middleware.GetReqID(r.Context()))
}
