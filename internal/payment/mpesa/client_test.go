package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinkj/autoshop/internal/platform/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// darajaStub fakes the OAuth and STK push endpoints, counting token fetches
// and recording the last push payload.
type darajaStub struct {
	tokenCalls int
	pushCalls  int
	lastPush   stkPushRequest
	lastAuth   string
}

func (d *darajaStub) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		d.tokenCalls++
		d.lastAuth = r.Header.Get("Authorization")
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "test-token",
			"expires_in":   "3599",
		})
	})
	mux.HandleFunc("POST /mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		d.pushCalls++
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d.lastPush))
		_ = json.NewEncoder(w).Encode(StkPushResponse{
			MerchantRequestID:   "29115-34620561-1",
			CheckoutRequestID:   "ws_CO_010920261005123456",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
			CustomerMessage:     "Success. Request accepted for processing",
		})
	})
	return mux
}

func newTestClient(t *testing.T, stub *darajaStub) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(stub.handler(t))
	client := NewClient(config.DarajaConfig{
		BaseURL:        srv.URL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		PassKey:        "passkey",
		CallbackURL:    "https://shop.example.com/api/payments/mpesa-callback/",
		Timeout:        2 * time.Second,
	}, testLogger())
	return client, srv
}

func Test_Client_StkPush(t *testing.T) {
	// given
	stub := &darajaStub{}
	client, srv := newTestClient(t, stub)
	defer srv.Close()
	pinned := time.Date(2026, 9, 1, 10, 5, 0, 0, time.UTC)
	client.now = func() time.Time { return pinned }

	// when
	resp, err := client.StkPush(context.Background(), "254700000000", 3000, "ORDER42", "Auto shop order")

	// then
	require.NoError(t, err)
	assert.Equal(t, "0", resp.ResponseCode)
	assert.Equal(t, "ws_CO_010920261005123456", resp.CheckoutRequestID)

	push := stub.lastPush
	assert.Equal(t, "174379", push.BusinessShortCode)
	assert.Equal(t, "174379", push.PartyB)
	assert.Equal(t, "254700000000", push.PartyA)
	assert.Equal(t, "254700000000", push.PhoneNumber)
	assert.Equal(t, int64(3000), push.Amount)
	assert.Equal(t, "CustomerPayBillOnline", push.TransactionType)
	assert.Equal(t, "ORDER42", push.AccountReference)
	assert.Equal(t, "https://shop.example.com/api/payments/mpesa-callback/", push.CallBackURL)
	assert.Equal(t, "20260901100500", push.Timestamp)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("174379passkey20260901100500")), push.Password)

	// basic auth on the token fetch
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("key:secret")), stub.lastAuth)
}

func Test_Client_StkPush_TokenCaching(t *testing.T) {
	// given
	stub := &darajaStub{}
	client, srv := newTestClient(t, stub)
	defer srv.Close()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	// when: two pushes back to back
	_, err := client.StkPush(context.Background(), "254700000000", 1500, "ORDER1", "Auto shop order")
	require.NoError(t, err)
	_, err = client.StkPush(context.Background(), "254700000000", 1500, "ORDER2", "Auto shop order")
	require.NoError(t, err)

	// then: the token was fetched once
	assert.Equal(t, 1, stub.tokenCalls)
	assert.Equal(t, 2, stub.pushCalls)

	// when: the clock moves within a minute of expiry
	now = now.Add(59 * time.Minute)
	_, err = client.StkPush(context.Background(), "254700000000", 1500, "ORDER3", "Auto shop order")
	require.NoError(t, err)

	// then: a fresh token was fetched
	assert.Equal(t, 2, stub.tokenCalls)
}

func Test_Client_StkPush_SanitizesFields(t *testing.T) {
	// given
	stub := &darajaStub{}
	client, srv := newTestClient(t, stub)
	defer srv.Close()

	// when
	_, err := client.StkPush(context.Background(), "254700000000", 1500,
		"ORDER 42-EXTRA-LONG-REF", "a very long transaction description")

	// then: ref capped at 12 then stripped, description capped at 20
	require.NoError(t, err)
	assert.Equal(t, "ORDER42EXT", stub.lastPush.AccountReference)
	assert.Equal(t, "a very long transact", stub.lastPush.TransactionDesc)
}

func Test_Client_StkPush_TokenError(t *testing.T) {
	// given: OAuth endpoint rejects the credentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	client := NewClient(config.DarajaConfig{
		BaseURL: srv.URL, ConsumerKey: "key", ConsumerSecret: "bad",
		ShortCode: "174379", PassKey: "passkey", Timeout: 2 * time.Second,
	}, testLogger())

	// when
	resp, err := client.StkPush(context.Background(), "254700000000", 1500, "ORDER1", "Auto shop order")

	// then
	assert.Error(t, err)
	assert.Nil(t, resp)
}
