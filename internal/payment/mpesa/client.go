// Package mpesa implements a client for the Safaricom Daraja API.
package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vinkj/autoshop/internal/platform/config"
)

// Client talks to the Daraja OAuth and STK push endpoints. It caches the
// access token until shortly before it expires.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	shortCode      string
	passKey        string
	callbackURL    string
	httpClient     *http.Client
	logger         *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
	now         func() time.Time
}

// NewClient creates a Daraja client from the given configuration.
func NewClient(cfg config.DarajaConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		shortCode:      cfg.ShortCode,
		passKey:        cfg.PassKey,
		callbackURL:    cfg.CallbackURL,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logger.With("component", "mpesa"),
		now:            time.Now,
	}
}

// StkPushResponse is Daraja's reply to an STK push request. A ResponseCode
// of "0" means the prompt was accepted for delivery.
type StkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// StkPush asks Daraja to prompt the phone for a payment of amount whole
// shillings. accountRef appears on the customer's statement.
func (c *Client) StkPush(ctx context.Context, phoneNumber string, amount int64, accountRef, transactionDesc string) (*StkPushResponse, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.shortCode + c.passKey + timestamp))

	payload := stkPushRequest{
		BusinessShortCode: c.shortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            phoneNumber,
		PartyB:            c.shortCode,
		PhoneNumber:       phoneNumber,
		CallBackURL:       c.callbackURL,
		AccountReference:  sanitizeAccountRef(accountRef),
		TransactionDesc:   truncate(transactionDesc, 20),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stk push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/mpesa/stkpush/v1/processrequest", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.InfoContext(ctx, "Initiating STK push",
		"phone", phoneNumber, "amount", amount, "ref", payload.AccountReference)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stk push request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stk push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "Daraja rejected STK push", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("daraja returned status %d", resp.StatusCode)
	}

	var pushResp StkPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return nil, fmt.Errorf("failed to decode stk push response: %w", err)
	}
	c.logger.InfoContext(ctx, "Daraja response",
		"code", pushResp.ResponseCode, "message", pushResp.CustomerMessage)
	return &pushResp, nil
}

// token returns a cached access token, fetching a fresh one when the
// cached token is within a minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	// Daraja reports expiry in seconds as a string, typically "3599".
	ttl := time.Hour
	if d, err := time.ParseDuration(tr.ExpiresIn + "s"); err == nil {
		ttl = d
	}
	c.accessToken = tr.AccessToken
	c.tokenExpiry = c.now().Add(ttl)
	c.logger.DebugContext(ctx, "Obtained Daraja access token", "expires_in", ttl)
	return c.accessToken, nil
}

// sanitizeAccountRef enforces Daraja's 12 character alphanumeric limit.
func sanitizeAccountRef(ref string) string {
	ref = truncate(ref, 12)
	ref = strings.ReplaceAll(ref, " ", "")
	return strings.ReplaceAll(ref, "-", "")
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
