package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	database "github.com/mkostecki/PortfolioManager/internal/db"
	investments "github.com/mkostecki/PortfolioManager/internal/investment"
	"github.com/mkostecki/PortfolioManager/internal/investment/performance"
	portfolios "github.com/mkostecki/PortfolioManager/internal/investment/portfolio"
	"github.com/mkostecki/PortfolioManager/internal/investment/pricing"
	transactions "github.com/mkostecki/PortfolioManager/internal/investment/transaction"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errorsList ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errorsList) > 0 {
		payload["errors"] = errorsList[0]
	}
	respondJSON(w, status, payload)
}

type Server struct {
	router             *http.ServeMux
	investmentsHandler *investments.InvestmentHandler
}

func NewServer(investmentHandler *investments.InvestmentHandler) *Server {
	return &Server{
		investmentsHandler: investmentHandler,
		router:             http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("DB_CONNECTION_STRING") == "" {
		return errors.New("no DB_CONNECTION_STRING provided")
	}
	if os.Getenv("MARKET_DATA_API_KEY") == "" {
		return errors.New("no MARKET_DATA_API_KEY provided")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func (s *Server) RegisterRoutes() {
	router := http.NewServeMux()

	router.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// PORTFOLIOS API
	router.Handle("POST /api/portfolios", http.HandlerFunc(s.investmentsHandler.CreatePortfolio))
	router.Handle("GET /api/portfolios", http.HandlerFunc(s.investmentsHandler.GetAllPortfolios))

	router.Handle("GET /api/portfolios/{portfolioID}",
		s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.GetPortfolio), "portfolioID"))

	router.Handle("PUT /api/portfolios/{portfolioID}",
		s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.UpdatePortfolio), "portfolioID"))

	router.Handle("DELETE /api/portfolios/{portfolioID}",
		s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.DeletePortfolio), "portfolioID"))

	// TRANSACTIONS API
	router.Handle("POST /api/portfolios/{portfolioID}/transactions",
		s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.CreateTransaction), "portfolioID"))

	router.Handle("GET /api/portfolios/{portfolioID}/transactions",
		s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.GetAllTransactions), "portfolioID"))

	router.Handle("DELETE /api/portfolios/{portfolioID}/transactions/{transactionID}",
		s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.DeleteTransaction), "portfolioID", "transactionID"))

	// DERIVED VIEWS (read-only, recomputed on every request)
	router.Handle("GET /api/portfolios/{portfolioID}/holdings",
		s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.GetHoldings), "portfolioID"))

	router.Handle("GET /api/portfolios/{portfolioID}/performance/monthly",
		s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.GetMonthlyPerformance), "portfolioID"))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", router)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	apiKey := os.Getenv("MARKET_DATA_API_KEY")
	marketDataClient := pricing.NewFMPClient(apiKey)

	transactionRepo := transactions.NewTransactionRepository(dbService.DB)
	transactionService := transactions.NewTransactionService(transactionRepo)

	priceRepo := pricing.NewPriceRepository(dbService.DB)
	pricingService := pricing.NewPricingService(priceRepo, marketDataClient, transactionService)

	portfolioRepo := portfolios.NewPortfolioRepository(dbService.DB)
	portfolioService := portfolios.NewPortfolioService(portfolioRepo)

	performanceService := performance.NewService(transactionService, pricingService)

	investmentsHandler := investments.NewInvestmentHandler(portfolioService, transactionService, performanceService, respondJSON, respondError)
	server := NewServer(investmentsHandler)

	server.RegisterRoutes()

	if err := StartPriceRefreshScheduler(pricingService); err != nil {
		log.Fatalf("Scheduler didn't start, stopping the app ...")
	}

	handler := loggingMiddleware(server.router)
	log.Println("Server starting on port 8080...")
	if err := http.ListenAndServe(":8080", handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// StartPriceRefreshScheduler keeps the price store warm so holdings requests
// rarely have to wait on the market-data API.
func StartPriceRefreshScheduler(pricingService pricing.Service) error {
	c := cron.New()
	_, err := c.AddFunc("@every 15m", func() {
		err := pricingService.RefreshPrices(context.Background())
		if err != nil {
			log.Printf("Error refreshing prices: %v", err)
		} else {
			log.Println("Prices refreshed successfully.")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
