// Package http exposes the ledger's read/write surface as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"finledger/internal/analytics"
	"finledger/internal/cache"
	"finledger/internal/ledger"
)

type Server struct {
	http.Server
	ledger    *ledger.Service
	analytics *analytics.Service

	rateLimiter *rateLimiter
	rateLimit   int

	// Derived views are cached between writes; every successful ledger
	// write clears the cache.
	analyticsCache cache.Cache[any]

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type Options struct {
	RateLimitPerMinute int
	AnalyticsCacheTTL  time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, lg *ledger.Service, an *analytics.Service, opts Options) *Server {
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 120
	}
	if opts.AnalyticsCacheTTL <= 0 {
		opts.AnalyticsCacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		ledger:         lg,
		analytics:      an,
		rateLimiter:    newRateLimiter(),
		rateLimit:      opts.RateLimitPerMinute,
		analyticsCache: cache.NewLRU[any](100, opts.AnalyticsCacheTTL),
		stopCleanup:    make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/accounts", s.wrap(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts", s.wrap(s.handleListAccounts))
	mux.HandleFunc("GET /api/accounts/{id}", s.wrap(s.handleGetAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.wrap(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.wrap(s.handleDeleteAccount))
	mux.HandleFunc("GET /api/balance", s.wrap(s.handleTotalBalance))

	mux.HandleFunc("POST /api/categories", s.wrap(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories", s.wrap(s.handleListCategories))
	mux.HandleFunc("DELETE /api/categories/{id}", s.wrap(s.handleDeleteCategory))

	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleRecordTransaction))
	mux.HandleFunc("GET /api/transactions", s.wrap(s.handleListTransactions))

	mux.HandleFunc("POST /api/debts", s.wrap(s.handleCreateDebt))
	mux.HandleFunc("GET /api/debts", s.wrap(s.handleListDebts))
	mux.HandleFunc("POST /api/debts/{id}/repay", s.wrap(s.handleRepayDebt))
	mux.HandleFunc("DELETE /api/debts/{id}", s.wrap(s.handleDeleteDebt))

	mux.HandleFunc("GET /api/analytics/monthly", s.wrap(s.handleMonthlyData))
	mux.HandleFunc("GET /api/analytics/current-month", s.wrap(s.handleCurrentMonth))
	mux.HandleFunc("GET /api/analytics/daily", s.wrap(s.handleDailyChart))
	mux.HandleFunc("GET /api/analytics/categories", s.wrap(s.handleCategorySpending))
	mux.HandleFunc("GET /api/analytics/advanced", s.wrap(s.handleAdvancedAnalytics))

	mux.HandleFunc("GET /api/settings/{key}", s.wrap(s.handleGetSetting))
	mux.HandleFunc("PUT /api/settings/{key}", s.wrap(s.handlePutSetting))

	return s
}

// wrap adds security headers, rate limiting, request ids and request
// logging around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		if !s.rateLimiter.allow(clientIP, s.rateLimit) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "path", r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: errorDetail{
				Code:    "rate_limited",
				Message: "too many requests",
			}})
			return
		}

		next(w, r)

		slog.InfoContext(r.Context(), "Request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// invalidateAnalytics drops cached derived views after a ledger write.
func (s *Server) invalidateAnalytics() {
	s.analyticsCache.Clear()
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.analyticsCache.CleanExpired(); n > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", n)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines along with the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
