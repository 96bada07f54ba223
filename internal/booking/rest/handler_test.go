package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	bookingerrors "github.com/vinkj/autoshop/internal/booking/errors"
	"github.com/vinkj/autoshop/internal/booking/service"
)

// mockBookingService is a mock implementation of the BookingService interface
type mockBookingService struct {
	booking  *service.BookingDto
	bookings []service.BookingDto
	error    error
}

func (m *mockBookingService) FindByID(_ context.Context, _ int64) (*service.BookingDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.booking, nil
}

func (m *mockBookingService) FindAll(_ context.Context, _, _ int32) (*[]service.BookingDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.bookings, nil
}

func (m *mockBookingService) Create(_ context.Context, _ service.BookingCreateDto) (*service.BookingDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.booking, nil
}

func (m *mockBookingService) Cancel(_ context.Context, _ int64) (*service.BookingDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.booking, nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	ValidationErrors map[string]string `json:"validation_errors"`
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func newTestHandler(svc service.BookingService) *Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(svc, logger)
}

func bookingDto() *service.BookingDto {
	return &service.BookingDto{
		ID:          1,
		ServiceID:   1,
		TotalPrice:  2500,
		BookingDate: "2026-09-03",
		BookingTime: "10:00:00",
		FullName:    "Jane Wanjiru",
		PhoneNumber: "254700000000",
		Status:      "pending",
		CreatedAt:   time.Now().Format(time.RFC3339),
	}
}

func Test_BookingAPI_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockBookingService
		bookingID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - booking found",
			mockService:  mockBookingService{booking: bookingDto()},
			bookingID:    "1",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, bookingDto()),
		},
		{
			name:         "Error - booking not found",
			mockService:  mockBookingService{error: bookingerrors.ErrBookingNotFound},
			bookingID:    "99",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Booking with ID 99 not found"}),
		},
		{
			name:         "Error - service error",
			mockService:  mockBookingService{error: errors.New("db down")},
			bookingID:    "1",
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to retrieve booking with ID 1"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+tc.bookingID+"/", nil)
			req.SetPathValue("id", tc.bookingID)
			rr := httptest.NewRecorder()

			// when
			api.FindByID(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_BookingAPI_Create(t *testing.T) {
	validBody := `{
		"service_id": 1,
		"booking_date": "2026-09-03",
		"booking_time": "10:00",
		"full_name": "Jane Wanjiru",
		"phone_number": "254700000000",
		"vehicle_model": "Toyota Axio",
		"number_plate": "KDA 123X"
	}`

	testCases := []struct {
		name         string
		mockService  mockBookingService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - booking created",
			mockService:  mockBookingService{booking: bookingDto()},
			body:         validBody,
			expectedCode: http.StatusCreated,
			expectedBody: `{"booking_id": 1, "total_price": 2500, "message": "Booking confirmed"}`,
		},
		{
			name:         "Error - invalid JSON",
			mockService:  mockBookingService{},
			body:         `{not json`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid request body"}),
		},
		{
			name:         "Error - missing required fields",
			mockService:  mockBookingService{},
			body:         `{"service_id": 1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{ValidationErrors: map[string]string{
				"BookingDate": "failed on rule: required",
				"BookingTime": "failed on rule: required",
				"FullName":    "failed on rule: required",
				"PhoneNumber": "failed on rule: required",
			}}),
		},
		{
			name:         "Error - unknown service",
			mockService:  mockBookingService{error: bookingerrors.ErrServiceNotFound},
			body:         validBody,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Service with ID 1 not found"}),
		},
		{
			name:         "Error - slot in the past",
			mockService:  mockBookingService{error: bookingerrors.ErrInvalidBookingSlot},
			body:         validBody,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: bookingerrors.ErrInvalidBookingSlot.Error()}),
		},
		{
			name:         "Error - service error",
			mockService:  mockBookingService{error: errors.New("db down")},
			body:         validBody,
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to create booking"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/bookings/create/", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_BookingAPI_Cancel(t *testing.T) {
	cancelled := bookingDto()
	cancelled.Status = "cancelled"

	testCases := []struct {
		name         string
		mockService  mockBookingService
		bookingID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - booking cancelled",
			mockService:  mockBookingService{booking: cancelled},
			bookingID:    "1",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, cancelled),
		},
		{
			name:         "Error - booking not found",
			mockService:  mockBookingService{error: bookingerrors.ErrBookingNotFound},
			bookingID:    "99",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Booking with ID 99 not found"}),
		},
		{
			name:         "Error - already cancelled",
			mockService:  mockBookingService{error: bookingerrors.ErrBookingAlreadyCancelled},
			bookingID:    "1",
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: "Booking with ID 1 is already cancelled"}),
		},
		{
			name:         "Error - already completed",
			mockService:  mockBookingService{error: bookingerrors.ErrBookingCompleted},
			bookingID:    "1",
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: "Completed bookings cannot be cancelled"}),
		},
		{
			name:         "Error - window closed",
			mockService:  mockBookingService{error: bookingerrors.ErrCancellationTooLate},
			bookingID:    "1",
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: "Bookings can only be cancelled up to 2 hours before the appointment"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/bookings/"+tc.bookingID+"/cancel/", nil)
			req.SetPathValue("id", tc.bookingID)
			rr := httptest.NewRecorder()

			// when
			api.Cancel(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}
