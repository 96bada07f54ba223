// Package rest provides HTTP handlers for booking-related operations.
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
	bookingerrors "github.com/vinkj/autoshop/internal/booking/errors"
	"github.com/vinkj/autoshop/internal/booking/service"
	"github.com/vinkj/autoshop/internal/platform/web"
)

type Handler struct {
	service  service.BookingService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the booking API with the provided service.
func NewHandler(service service.BookingService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),

		logger: logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the booking endpoints.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/bookings", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/create/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Post("/cancel/", h.Cancel)
		})
	})
}

// FindByID retrieves a booking by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find booking by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrBookingNotFound) {
			mLogger.WarnContext(r.Context(), "Booking not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Booking with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving booking", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve booking with ID %d", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved booking", slog.Int64("ID", found.ID))
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves a list of all bookings.
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

	mLogger.DebugContext(r.Context(), "Received request to find all bookings", "limit", limit, "offset", offset)
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving booking list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved booking list", "count", len(*list))
	web.RespondJSON(w, mLogger, http.StatusOK, *list)
}

// Create handles the creation of a new booking.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var bookingCreateDto service.BookingCreateDto
	if err := json.NewDecoder(r.Body).Decode(&bookingCreateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to create booking", "booking", bookingCreateDto)
	if err := h.validate.Struct(bookingCreateDto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	newBooking, err := h.service.Create(r.Context(), bookingCreateDto)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrServiceNotFound) {
			mLogger.WarnContext(r.Context(), "Service not found for booking", "serviceID", bookingCreateDto.ServiceID)
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Service with ID %d not found", bookingCreateDto.ServiceID))
			return
		} else if errors.Is(err, bookingerrors.ErrInvalidBookingSlot) {
			mLogger.WarnContext(r.Context(), "Invalid booking slot", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating booking", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create booking")
		return
	}
	mLogger.InfoContext(r.Context(), "Booking created successfully", slog.Int64("ID", newBooking.ID))
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]any{
		"booking_id":  newBooking.ID,
		"total_price": newBooking.TotalPrice,
		"message":     "Booking confirmed",
	})
}

// Cancel cancels a booking if the appointment is still far enough away.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to cancel booking", "ID", id)
	cancelled, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrBookingNotFound) {
			mLogger.WarnContext(r.Context(), "Booking not found for cancel", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Booking with ID %d not found", id))
			return
		} else if errors.Is(err, bookingerrors.ErrBookingAlreadyCancelled) {
			mLogger.WarnContext(r.Context(), "Booking already cancelled", "ID", id)
			web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("Booking with ID %d is already cancelled", id))
			return
		} else if errors.Is(err, bookingerrors.ErrBookingCompleted) {
			mLogger.WarnContext(r.Context(), "Booking already completed", "ID", id)
			web.RespondError(w, mLogger, http.StatusConflict, "Completed bookings cannot be cancelled")
			return
		} else if errors.Is(err, bookingerrors.ErrCancellationTooLate) {
			mLogger.WarnContext(r.Context(), "Booking cancellation window closed", "ID", id)
			web.RespondError(w, mLogger, http.StatusConflict, "Bookings can only be cancelled up to 2 hours before the appointment")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error cancelling booking", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to cancel booking with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Booking cancelled successfully", slog.Int64("ID", cancelled.ID))
	web.RespondJSON(w, mLogger, http.StatusOK, cancelled)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
