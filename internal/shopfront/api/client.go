// Package api is the storefront's REST client for the shop backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Service is a bookable service row from the catalog.
type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Product is a purchasable product row from the catalog.
type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	IsAvailable   bool   `json:"is_available"`
	StockQuantity int32  `json:"stock_quantity"`
}

// GalleryImage is one gallery entry.
type GalleryImage struct {
	Image    string `json:"image"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
}

// OrderItem is one (product, quantity) pair of an order submission.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

// OrderRequest is the order submission payload.
type OrderRequest struct {
	Items         []OrderItem `json:"items"`
	FullName      string      `json:"full_name"`
	PhoneNumber   string      `json:"phone_number"`
	Estate        string      `json:"estate"`
	StreetAddress string      `json:"street_address"`
	PaymentMethod string      `json:"payment_method"`
}

// OrderResponse is the created-order reply.
type OrderResponse struct {
	OrderID    int64  `json:"order_id"`
	TotalPrice int64  `json:"total_price"`
	Message    string `json:"message"`
}

// BookingRequest is the booking submission payload.
type BookingRequest struct {
	ServiceID       int64  `json:"service_id"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	VehicleModel    string `json:"vehicle_model"`
	NumberPlate     string `json:"number_plate"`
	BookingDate     string `json:"booking_date"`
	BookingTime     string `json:"booking_time"`
	AdditionalNotes string `json:"additional_notes"`
}

// BookingResponse is the created-booking reply.
type BookingResponse struct {
	BookingID  int64  `json:"booking_id"`
	TotalPrice int64  `json:"total_price"`
	Message    string `json:"message"`
}

// PaymentResponse is the payment-initiation reply. Its shape is taken on
// trust from the backend; only the fields the client reads are decoded.
type PaymentResponse struct {
	PaymentID       int64  `json:"payment_id"`
	CustomerMessage string `json:"customer_message"`
}

// Client talks to the shop backend over JSON/HTTP. Requests are sequential;
// no retries are attempted on failure.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	galleryTimeout time.Duration
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string, timeout, galleryTimeout time.Duration) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		galleryTimeout: galleryTimeout,
	}
}

// FetchServices retrieves the service catalog.
func (c *Client) FetchServices(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := c.get(ctx, "/api/services/", &services); err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}
	return services, nil
}

// FetchProducts retrieves the product catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.get(ctx, "/api/products/", &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// FetchGallery retrieves the gallery listing. Unlike the other calls it is
// guarded by its own short timeout so a slow gallery never blocks startup.
func (c *Client) FetchGallery(ctx context.Context) ([]GalleryImage, error) {
	galleryCtx, cancel := context.WithTimeout(ctx, c.galleryTimeout)
	defer cancel()

	var images []GalleryImage
	if err := c.get(galleryCtx, "/api/gallery/", &images); err != nil {
		return nil, fmt.Errorf("failed to fetch gallery: %w", err)
	}
	return images, nil
}

// CreateOrder submits an order.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	var resp OrderResponse
	if err := c.post(ctx, "/api/orders/create/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBooking submits a booking.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResponse, error) {
	var resp BookingResponse
	if err := c.post(ctx, "/api/bookings/create/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InitiateMpesaPayment asks the backend to push an STK prompt for the order.
func (c *Client) InitiateMpesaPayment(ctx context.Context, orderID int64, phoneNumber string) (*PaymentResponse, error) {
	var resp PaymentResponse
	path := fmt.Sprintf("/api/payments/initiate-mpesa/%d/", orderID)
	if err := c.post(ctx, path, map[string]string{"phone_number": phoneNumber}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError extracts the backend's {"error": ...} message, falling back to a
// default string when the body carries no usable message.
func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s", body.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
