package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) health(c *gin.Context) {
	snap := s.source.Current()
	hits, misses := s.engine.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"snapshot_version": snap.Version,
		"loaded_at":        snap.LoadedAt,
		"failed":           snap.Failed,
		"memo_hits":        hits,
		"memo_misses":      misses,
	})
}

func (s *Server) refresh(c *gin.Context) {
	snap, err := s.source.Refresh(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot_version": snap.Version,
		"failed":           snap.Failed,
	})
}

// withDashboard parses the request and hands the memoised dashboard to f.
func (s *Server) withDashboard(f func(c *gin.Context, d *finance.Dashboard)) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := s.dashboardRequest(c)
		if err != nil {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
		f(c, s.engine.Dashboard(s.source.Current(), req))
	}
}

func (s *Server) accounts(c *gin.Context) {
	snap := s.source.Current()
	c.JSON(http.StatusOK, finance.CalculatedAccounts(snap.Accounts, snap.Transactions))
}

func (s *Server) kpis(c *gin.Context) {
	s.withDashboard(func(c *gin.Context, d *finance.Dashboard) {
		c.JSON(http.StatusOK, gin.H{
			"kpis":          d.KPIs,
			"profitability": d.Profitability,
			"liabilities":   d.Liabilities,
		})
	})(c)
}

func (s *Server) cashFlow(c *gin.Context) {
	s.withDashboard(func(c *gin.Context, d *finance.Dashboard) {
		c.JSON(http.StatusOK, d.CashFlow)
	})(c)
}

func (s *Server) structure(c *gin.Context) {
	typ, err := transactionType(c, model.Expense)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.withDashboard(func(c *gin.Context, d *finance.Dashboard) {
		if typ == model.Income {
			c.JSON(http.StatusOK, d.IncomeStructure)
			return
		}
		c.JSON(http.StatusOK, d.ExpenseStructure)
	})(c)
}

func (s *Server) dashboard(c *gin.Context) {
	s.withDashboard(func(c *gin.Context, d *finance.Dashboard) {
		c.JSON(http.StatusOK, d)
	})(c)
}

func (s *Server) profitAndLoss(c *gin.Context) {
	window, err := dateRange(c, s.today())
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	snap := s.source.Current()
	c.JSON(http.StatusOK, finance.BuildProfitAndLoss(snap.Transactions, snap.Categories, window))
}

func (s *Server) cashFlowStatement(c *gin.Context) {
	window, err := dateRange(c, s.today())
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	snap := s.source.Current()
	c.JSON(http.StatusOK, finance.BuildCashFlowStatement(snap.Transactions, snap.Categories, snap.Accounts, window))
}

func (s *Server) balanceSheet(c *gin.Context) {
	snap := s.source.Current()
	c.JSON(http.StatusOK, finance.BuildBalanceSheet(
		finance.CalculatedAccounts(snap.Accounts, snap.Transactions),
		snap.Counterparties,
		snap.Transactions,
	))
}

func (s *Server) dynamics(c *gin.Context) {
	typ, err := transactionType(c, model.Expense)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	window, err := dateRange(c, s.today())
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	snap := s.source.Current()
	months, categories := finance.CategoryDynamics(snap.Transactions, snap.Categories, window, typ)
	c.JSON(http.StatusOK, gin.H{
		"type":       typ,
		"months":     months,
		"categories": categories,
	})
}

func (s *Server) projectFinancials(c *gin.Context) {
	snap := s.source.Current()
	c.JSON(http.StatusOK, finance.ProjectFinancials(snap.Projects, snap.Transactions))
}

func (s *Server) counterpartyBalances(c *gin.Context) {
	snap := s.source.Current()
	c.JSON(http.StatusOK, finance.CounterpartyBalances(snap.Counterparties, snap.Transactions))
}

func (s *Server) listCollection(c *gin.Context) {
	collection, err := model.ParseCollection(c.Param("name"))
	if err != nil {
		s.fail(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, s.source.Current().Records(collection))
}

func (s *Server) deleteRecord(c *gin.Context) {
	collection, err := model.ParseCollection(c.Param("name"))
	if err != nil {
		s.fail(c, http.StatusNotFound, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.store.Delete(ctx, collection, c.Param("id")); err != nil {
		s.storeError(c, err)
		return
	}
	s.refreshAfterWrite(ctx)
	c.Status(http.StatusNoContent)
}

func (s *Server) createTransaction(c *gin.Context) {
	var txn model.Transaction
	if err := c.ShouldBindJSON(&txn); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.Status == "" {
		txn.Status = model.StatusApproved
	}

	ctx := c.Request.Context()
	if err := s.store.SaveTransaction(ctx, &txn); err != nil {
		s.storeError(c, err)
		return
	}
	s.refreshAfterWrite(ctx)
	c.JSON(http.StatusCreated, txn)
}

func (s *Server) setTransactionStatus(c *gin.Context) {
	var body struct {
		Status model.TransactionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.store.SetTransactionStatus(ctx, c.Param("id"), body.Status); err != nil {
		s.storeError(c, err)
		return
	}
	s.refreshAfterWrite(ctx)
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": body.Status})
}

func (s *Server) createPlannedPayment(c *gin.Context) {
	var payment model.PlannedPayment
	if err := c.ShouldBindJSON(&payment); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}

	ctx := c.Request.Context()
	if err := s.store.SavePlannedPayment(ctx, &payment); err != nil {
		s.storeError(c, err)
		return
	}
	s.refreshAfterWrite(ctx)
	c.JSON(http.StatusCreated, payment)
}

// refreshAfterWrite reloads the snapshot so the next read sees the write. A
// failed reload leaves the old snapshot in place.
func (s *Server) refreshAfterWrite(ctx context.Context) {
	if _, err := s.source.Refresh(ctx); err != nil {
		s.logger.Warn("Snapshot refresh after write failed", "error", err)
	}
}

func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		s.fail(c, http.StatusNotFound, err)
	case isValidationError(err):
		s.fail(c, http.StatusBadRequest, err)
	default:
		s.fail(c, http.StatusInternalServerError, err)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		storage.ErrEmptyString,
		storage.ErrNilParameter,
		model.ErrInvalidTransaction,
		model.ErrInvalidPlannedPayment,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
