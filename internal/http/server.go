package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tally/internal/auth"
	"tally/internal/reports"
	"tally/internal/services"
)

type Server struct {
	http.Server
	expenses *services.ExpenseService
	reports  *reports.Engine
	jwt      *auth.JWTManager

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once

	// clock supplies "now" for the report handlers so tests can pin it.
	clock func() time.Time
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, expenses *services.ExpenseService, engine *reports.Engine, jwt *auth.JWTManager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		expenses:    expenses,
		reports:     engine,
		jwt:         jwt,
		rateLimiter: newRateLimiter(),
		clock:       func() time.Time { return time.Now().UTC() },
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Report routes use fixed segments, so they take precedence over the
	// /api/expenses/{id} wildcard.
	mux.HandleFunc("GET /api/expenses/current/preview",
		s.withMiddleware("preview", s.requireUser(s.handleCurrentPreview)))
	mux.HandleFunc("GET /api/expenses/by/category",
		s.withMiddleware("category_merge", s.requireUser(s.handleCategoryMerge)))
	mux.HandleFunc("GET /api/expenses/category/averages",
		s.withMiddleware("category_averages", s.requireUser(s.handleCategoryAverages)))
	mux.HandleFunc("GET /api/expenses/yearly",
		s.withMiddleware("yearly", s.requireUser(s.handleYearlyTotals)))
	mux.HandleFunc("GET /api/expenses/plot",
		s.withMiddleware("plot", s.requireUser(s.handleDailyScatter)))

	mux.HandleFunc("POST /api/expenses",
		s.withMiddleware("create_expense", s.requireUser(s.handleCreateExpense)))
	mux.HandleFunc("GET /api/expenses",
		s.withMiddleware("list_expenses", s.requireUser(s.handleListExpenses)))
	mux.HandleFunc("GET /api/expenses/{id}",
		s.withMiddleware("get_expense", s.requireUser(s.handleGetExpense)))
	mux.HandleFunc("PUT /api/expenses/{id}",
		s.withMiddleware("update_expense", s.requireUser(s.handleUpdateExpense)))
	mux.HandleFunc("DELETE /api/expenses/{id}",
		s.withMiddleware("delete_expense", s.requireUser(s.handleDeleteExpense)))

	return s
}

// Shutdown stops the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
