// Package rest provides HTTP handlers for payment-related operations.
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
	paymenterrors "github.com/vinkj/autoshop/internal/payment/errors"
	"github.com/vinkj/autoshop/internal/payment/service"
	"github.com/vinkj/autoshop/internal/platform/web"
)

type Handler struct {
	service  service.PaymentService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the payment API with the provided service.
func NewHandler(service service.PaymentService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),

		logger: logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the payment endpoints.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/initiate-mpesa/{id}/", h.InitiateMpesa)
		r.Post("/mpesa-callback/", h.MpesaCallback)
	})
}

// InitiateMpesa pushes an STK prompt for the order in the URL.
func (h *Handler) InitiateMpesa(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	orderID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	var dto service.InitiateMpesaDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
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

	mLogger.DebugContext(r.Context(), "Received request to initiate M-Pesa payment", "orderID", orderID)
	payment, err := h.service.InitiateMpesa(r.Context(), orderID, dto.PhoneNumber)
	if err != nil {
		if errors.Is(err, paymenterrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found for payment", "orderID", orderID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %d not found", orderID))
			return
		} else if errors.Is(err, paymenterrors.ErrStkPushFailed) {
			mLogger.WarnContext(r.Context(), "STK push failed", "orderID", orderID, "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to initiate M-Pesa payment")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error initiating payment", "orderID", orderID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to initiate payment")
		return
	}
	mLogger.InfoContext(r.Context(), "Payment initiated successfully", slog.Int64("paymentID", payment.PaymentID))
	web.RespondJSON(w, mLogger, http.StatusOK, payment)
}

// MpesaCallback receives Daraja's asynchronous STK push result. Daraja
// expects a 200 with a zero ResultCode even when the payment failed, so
// only an unknown transaction is reported as an error.
func (h *Handler) MpesaCallback(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var callback service.CallbackDto
	if err := json.NewDecoder(r.Body).Decode(&callback); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding callback body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid callback body")
		return
	}

	if err := h.service.HandleCallback(r.Context(), callback); err != nil {
		if errors.Is(err, paymenterrors.ErrPaymentNotFound) {
			mLogger.WarnContext(r.Context(), "Callback for unknown payment",
				"transactionID", callback.Body.StkCallback.CheckoutRequestID)
			web.RespondError(w, mLogger, http.StatusNotFound, "Payment not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error handling callback", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to process callback")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
