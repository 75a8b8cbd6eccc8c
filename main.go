package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/cfolens/backend/src/config"
	"github.com/username/cfolens/backend/src/database"
	"github.com/username/cfolens/backend/src/handlers"
	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/security"
	"github.com/username/cfolens/backend/src/services"
	"github.com/username/cfolens/backend/src/store"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":    true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("CFOLens backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		stdlog.Fatal("JWT_SECRET configuration invalid: must be at least 32 characters.")
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	db, err := database.Open(config.Cfg.DatabasePath)
	if err != nil {
		stdlog.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	database.RunMigrations(db, config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)

	ledgerStore := store.NewLedgerStore(db, config.Cfg.StatementTimeout)
	reportService := services.NewReportService(ledgerStore, reportCache)
	queryService := services.NewQueryService(db, config.Cfg.ReportAllowlist, config.Cfg.StatementTimeout)
	summaryService := services.NewSummaryService(config.Cfg.GeminiModel, config.Cfg.SummaryTimeout)

	reportHandler := handlers.NewReportHandler(reportService)
	txHandler := handlers.NewTransactionHandler(ledgerStore)
	queryHandler := handlers.NewQueryHandler(queryService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	balanceHandler := handlers.NewBalanceHandler(ledgerStore, reportService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "CFOLens Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(handlers.AuthMiddleware(authService))

			r.Get("/reports/balance-sheet", reportHandler.HandleGetBalanceSheet)
			r.Get("/reports/income-statement", reportHandler.HandleGetIncomeStatement)
			r.Get("/reports/trend", reportHandler.HandleGetTrend)
			r.Get("/reports/compare", reportHandler.HandleGetCompare)
			r.Post("/reports/run", queryHandler.HandleRunQuery)
			r.Post("/reports/summarize", summaryHandler.HandleSummarize)

			r.Get("/transactions/search", txHandler.HandleSearch)
			r.Get("/transactions/export", txHandler.HandleExport)

			r.Get("/balances/manual", balanceHandler.HandleListManualBalances)
			r.Post("/balances/manual", balanceHandler.HandleUpsertManualBalance)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
