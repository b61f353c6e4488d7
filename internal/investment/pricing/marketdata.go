package pricing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"context"

	"github.com/shopspring/decimal"
)

// FinancialModelingPrepClient talks to the FMP REST API for current quotes
// and historical month-end closes. It owns the request timeout; callers only
// see a price or an error.
type FinancialModelingPrepClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewFMPClient(apiKey string) *FinancialModelingPrepClient {
	return &FinancialModelingPrepClient{
		apiKey:     apiKey,
		baseURL:    "https://financialmodelingprep.com/api/v3",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *FinancialModelingPrepClient) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/quote-short/%s?apikey=%s", c.baseURL, symbol, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("error querying API: %s", resp.Status)
	}

	var results []struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return decimal.Zero, err
	}
	if len(results) == 0 {
		return decimal.Zero, fmt.Errorf("no quote for symbol %s", symbol)
	}
	return decimal.NewFromFloat(results[0].Price), nil
}

// FetchMonthlyClose returns the last close of the given month. FMP returns
// the historical series newest first, so the first row inside the range is
// the month-end close.
func (c *FinancialModelingPrepClient) FetchMonthlyClose(ctx context.Context, symbol string, year int, month time.Month) (decimal.Decimal, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	url := fmt.Sprintf("%s/historical-price-full/%s?from=%s&to=%s&serietype=line&apikey=%s",
		c.baseURL, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"), c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("error querying API: %s", resp.Status)
	}

	var result struct {
		Symbol     string `json:"symbol"`
		Historical []struct {
			Date  string  `json:"date"`
			Close float64 `json:"close"`
		} `json:"historical"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, err
	}
	if len(result.Historical) == 0 {
		return decimal.Zero, fmt.Errorf("no historical price for symbol %s in %d-%02d", symbol, year, int(month))
	}
	return decimal.NewFromFloat(result.Historical[0].Close), nil
}
