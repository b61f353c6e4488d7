package investments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	investErrors "github.com/mkostecki/PortfolioManager/internal/investment/errors"
	"github.com/mkostecki/PortfolioManager/internal/investment/models"
	"github.com/mkostecki/PortfolioManager/internal/investment/performance"
	portfolios "github.com/mkostecki/PortfolioManager/internal/investment/portfolio"
	transactions "github.com/mkostecki/PortfolioManager/internal/investment/transaction"
)

type InvestmentHandler struct {
	portfolioService   portfolios.Service
	transactionService transactions.Service
	performanceService performance.Service
	respondJSON        func(w http.ResponseWriter, status int, payload interface{})
	respondError       func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewInvestmentHandler(
	portfolioService portfolios.Service,
	transactionService transactions.Service,
	performanceService performance.Service,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *InvestmentHandler {
	return &InvestmentHandler{
		portfolioService:   portfolioService,
		transactionService: transactionService,
		performanceService: performanceService,
		respondJSON:        respondJSON,
		respondError:       respondError,
	}
}

type createPortfolioRequest struct {
	Name string `json:"name"`
}

type createTransactionRequest struct {
	Symbol          string          `json:"symbol"`
	Quantity        int64           `json:"quantity"`
	TransactionType string          `json:"transaction_type"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Date            string          `json:"date"`
	Currency        string          `json:"currency"`
}

func (h *InvestmentHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "Portfolio name is required")
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNameTaken) {
			h.respondError(w, http.StatusConflict, "Portfolio name already exists")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to create portfolio")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Portfolio successfully created.",
		"data":    portfolio,
	})
}

func (h *InvestmentHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	// checked by investment_middleware, always present here
	portfolioID := r.Context().Value("portfolioID").(uuid.UUID)
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), portfolioID)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			h.respondError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve portfolio")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Portfolio retrieved successfully.",
		"data":    portfolio,
	})
}

func (h *InvestmentHandler) GetAllPortfolios(w http.ResponseWriter, r *http.Request) {
	portfoliosList, err := h.portfolioService.GetAllPortfolios(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve portfolios list")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "List of portfolios retrieved successfully.",
		"data":    portfoliosList,
	})
}

func (h *InvestmentHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.Context().Value("portfolioID").(uuid.UUID)

	var req createPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "Portfolio name cannot be empty")
		return
	}

	err := h.portfolioService.RenamePortfolio(r.Context(), portfolioID, req.Name)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			h.respondError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		if errors.Is(err, portfolios.ErrPortfolioNameTaken) {
			h.respondError(w, http.StatusConflict, "Portfolio with this name already exists")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to update portfolio")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Portfolio successfully updated.",
	})
}

func (h *InvestmentHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.Context().Value("portfolioID").(uuid.UUID)

	err := h.portfolioService.DeletePortfolio(r.Context(), portfolioID)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			h.respondError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to delete portfolio")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Portfolio deleted successfully.",
	})
}

func (h *InvestmentHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.Context().Value("portfolioID").(uuid.UUID)
	if _, err := h.portfolioService.GetPortfolio(r.Context(), portfolioID); err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			h.respondError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve portfolio")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction := models.Transaction{
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		Type:      models.TransactionType(req.TransactionType),
		UnitPrice: req.UnitPrice,
		Currency:  req.Currency,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		transaction.Date = date
	}

	err := h.transactionService.CreateTransaction(r.Context(), portfolioID, &transaction)
	if err != nil {
		var validationErrors *investErrors.ValidationErrors
		if errors.As(err, &validationErrors) {
			h.respondError(w, http.StatusBadRequest, "Invalid transaction", validationErrors.Messages())
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully created.",
		"data":    transaction,
	})
}

func (h *InvestmentHandler) GetAllTransactions(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.Context().Value("portfolioID").(uuid.UUID)
	if _, err := h.portfolioService.GetPortfolio(r.Context(), portfolioID); err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			h.respondError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve portfolio")
		return
	}

	transactionList, err := h.transactionService.ListByPortfolio(r.Context(), portfolioID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions retrieved successfully.",
		"data":    transactionList,
	})
}

func (h *InvestmentHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.Context().Value("portfolioID").(uuid.UUID)
	transactionID := r.Context().Value("transactionID").(uuid.UUID)

	err := h.transactionService.DeleteTransaction(r.Context(), portfolioID, transactionID)
	if err != nil {
		if errors.Is(err, transactions.ErrTransactionNotFound) {
			h.respondError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction deleted successfully.",
	})
}

// GetHoldings returns the per-symbol holdings of a portfolio, recomputed from
// the ledger on every request. Symbols without a current price are included
// with the price_unavailable flag; the diagnostics array tells the caller
// which parts of the result are degraded.
func (h *InvestmentHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.Context().Value("portfolioID").(uuid.UUID)
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), portfolioID)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			h.respondError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve portfolio")
		return
	}

	holdings, diagnostics, err := h.performanceService.GetHoldings(r.Context(), portfolioID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to compute holdings")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Holdings computed successfully.",
		"data": map[string]interface{}{
			"portfolio_id":   portfolio.ID,
			"portfolio_name": portfolio.Name,
			"holdings":       holdings,
		},
		"diagnostics": diagnostics,
	})
}

// GetMonthlyPerformance returns the chronological month-by-month valuation of
// a portfolio. An empty ledger yields an empty series, not an error.
func (h *InvestmentHandler) GetMonthlyPerformance(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.Context().Value("portfolioID").(uuid.UUID)
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), portfolioID)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			h.respondError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve portfolio")
		return
	}

	series, diagnostics, err := h.performanceService.GetMonthlyPerformance(r.Context(), portfolioID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to compute monthly performance")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Monthly performance computed successfully.",
		"data": map[string]interface{}{
			"portfolio_id":   portfolio.ID,
			"portfolio_name": portfolio.Name,
			"series":         series,
		},
		"diagnostics": diagnostics,
	})
}
