// Package api serves the ledger and its derived views over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures a Server.
type Options struct {
	Logger      *slog.Logger
	Today       func() model.Date
	CORSOrigins []string
}

// Server answers API requests from the current ledger snapshot. Writes go to
// the store and are followed by a snapshot refresh.
type Server struct {
	store  service.LedgerStore
	source *ledger.Source
	engine *finance.Engine
	logger *slog.Logger
	today  func() model.Date
	router *gin.Engine
}

// NewServer builds the router. The source should already hold a loaded
// snapshot; the server never refreshes on reads.
func NewServer(store service.LedgerStore, source *ledger.Source, engine *finance.Engine, opts Options) *Server {
	s := &Server{
		store:  store,
		source: source,
		engine: engine,
		logger: opts.Logger,
		today:  opts.Today,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.today == nil {
		s.today = model.Today
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	s.routes(r)
	s.router = r
	return s
}

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", s.health)
	api.POST("/refresh", s.refresh)

	api.GET("/accounts", s.accounts)
	api.GET("/kpis", s.kpis)
	api.GET("/cashflow", s.cashFlow)
	api.GET("/structure", s.structure)
	api.GET("/dashboard", s.dashboard)

	reports := api.Group("/reports")
	reports.GET("/pnl", s.profitAndLoss)
	reports.GET("/cash-flow", s.cashFlowStatement)
	reports.GET("/balance-sheet", s.balanceSheet)
	reports.GET("/dynamics", s.dynamics)

	api.GET("/projects/financials", s.projectFinancials)
	api.GET("/counterparties/balances", s.counterpartyBalances)

	api.GET("/collections/:name", s.listCollection)
	api.DELETE("/collections/:name/:id", s.deleteRecord)
	api.POST("/transactions", s.createTransaction)
	api.PATCH("/transactions/:id/status", s.setTransactionStatus)
	api.POST("/planned-payments", s.createPlannedPayment)
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.logger.Info("API server stopped")
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
