package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestClient(server *httptest.Server) *FinancialModelingPrepClient {
	client := NewFMPClient("test-key")
	client.baseURL = server.URL
	return client
}

func TestFetchQuote_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote-short/AAPL", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol": "AAPL", "price": 131.55}]`))
	}))
	defer server.Close()

	price, err := newTestClient(server).FetchQuote(context.Background(), "AAPL")
	assert.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("131.55")))
}

func TestFetchQuote_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchQuote(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestFetchQuote_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchQuote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestFetchMonthlyClose_TakesNewestRowInRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/historical-price-full/AAPL", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-02-29", r.URL.Query().Get("to"))
		// FMP returns the series newest first.
		w.Write([]byte(`{"symbol": "AAPL", "historical": [
			{"date": "2024-02-29", "close": 112.5},
			{"date": "2024-02-28", "close": 111.0}
		]}`))
	}))
	defer server.Close()

	price, err := newTestClient(server).FetchMonthlyClose(context.Background(), "AAPL", 2024, time.February)
	assert.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("112.5")))
}

func TestFetchMonthlyClose_NoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol": "AAPL", "historical": []}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchMonthlyClose(context.Background(), "AAPL", 2024, time.February)
	assert.Error(t, err)
}
