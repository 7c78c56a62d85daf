// Package http exposes the tracker over a JSON API plus server-rendered
// chart PNGs.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"nexo/internal/cache"
	applog "nexo/internal/log"
	"nexo/internal/payment"
	"nexo/internal/report"
	"nexo/internal/services"
)

type Server struct {
	http.Server
	tracker     *services.Tracker
	simulator   *payment.Simulator
	rateLimiter *rateLimiter

	// Month summaries are cached and purged wholesale on any mutation, since
	// every mutation can move the total balance.
	summaryCache *cache.LRUCache[report.MonthSummary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, tracker *services.Tracker, simulator *payment.Simulator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		tracker:      tracker,
		simulator:    simulator,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[report.MonthSummary](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /accounts", s.withMiddleware(s.handleListAccounts))
	mux.HandleFunc("POST /accounts", s.withMiddleware(s.handleCreateAccount))
	mux.HandleFunc("PUT /accounts/{id}/balance", s.withMiddleware(s.handleSetAccountBalance))

	mux.HandleFunc("GET /summary", s.withMiddleware(s.handleMonthSummary))
	mux.HandleFunc("GET /summary/categories", s.withMiddleware(s.handleCategorySummary))
	mux.HandleFunc("GET /summary/week", s.withMiddleware(s.handleWeekSummary))
	mux.HandleFunc("GET /summary/history", s.withMiddleware(s.handleHistorySummary))

	mux.HandleFunc("GET /charts/categories.png", s.withMiddleware(s.handleCategoryChart))
	mux.HandleFunc("GET /charts/week.png", s.withMiddleware(s.handleWeekChart))
	mux.HandleFunc("GET /charts/history.png", s.withMiddleware(s.handleHistoryChart))

	mux.HandleFunc("POST /register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("POST /login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("GET /profile", s.withMiddleware(s.handleGetProfile))
	mux.HandleFunc("PUT /profile", s.withMiddleware(s.handleUpdateProfile))

	mux.HandleFunc("POST /payment/start", s.withMiddleware(s.handlePaymentStart))
	mux.HandleFunc("GET /payment/status", s.withMiddleware(s.handlePaymentStatus))
	mux.HandleFunc("POST /payment/cancel", s.withMiddleware(s.handlePaymentCancel))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		// Mutations are rate limited per client.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger := applog.FromContext(ctx).With(applog.FieldRequestID, requestID)
		applog.LogHTTPEnd(ctx, logger, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type contextKey string

const requestIDKey contextKey = "request_id"

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) summaryCacheKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// invalidateSummaries drops every cached summary; any mutation can change
// account balances and therefore all of them.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Purge()
}
