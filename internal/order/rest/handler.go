// Package rest provides HTTP handlers for order-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	ordererrors "github.com/vinkj/autoshop/internal/order/errors"
	"github.com/vinkj/autoshop/internal/order/service"
	"github.com/vinkj/autoshop/internal/platform/web"
)

type Handler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the order API with the provided service.
func NewHandler(service service.OrderService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),

		logger: logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the order endpoints.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/create/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Post("/cancel/", h.Cancel)
		})
	})
}

// FindByID retrieves an order by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	// Parse the order ID from the request URL.
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find order by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ordererrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve order with ID %d", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved order", slog.Int64("ID", found.ID))
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves a list of all orders.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseValidateGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}
	offset, ok := web.ParseValidateGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find all orders", "limit", limit, "offset", offset)
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving order list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved order list", "count", len(*list))
	web.RespondJSON(w, mLogger, http.StatusOK, *list)
}

// Create handles the creation of a new order.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var orderCreateDto service.OrderCreateDto
	if err := json.NewDecoder(r.Body).Decode(&orderCreateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to create order", "order", orderCreateDto)
	if err := h.validate.Struct(orderCreateDto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// If the error is a validation error, we can extract field-specific errors.
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "max", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		// If it's not a validation error, we can return a generic error.
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	newOrder, err := h.service.Create(r.Context(), orderCreateDto)
	if err != nil {
		if errors.Is(err, ordererrors.ErrInsufficientStock) || errors.Is(err, ordererrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Order rejected", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating order", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create order")
		return
	}
	mLogger.InfoContext(r.Context(), "Order created successfully", slog.Int64("ID", newOrder.ID))
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]any{
		"order_id":    newOrder.ID,
		"total_price": newOrder.TotalPrice,
		"message":     "Order placed successfully",
	})
}

// Cancel marks an order as cancelled and restores its reserved stock.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to cancel order", "ID", id)
	cancelled, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, ordererrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found for cancel", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %d not found", id))
			return
		} else if errors.Is(err, ordererrors.ErrOrderAlreadyCancelled) {
			mLogger.WarnContext(r.Context(), "Order already cancelled", "ID", id)
			web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("Order with ID %d is already cancelled", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error cancelling order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to cancel order with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Order cancelled successfully", slog.Int64("ID", cancelled.ID))
	web.RespondJSON(w, mLogger, http.StatusOK, cancelled)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
