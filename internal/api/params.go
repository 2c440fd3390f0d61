package api

import (
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/model"
	"github.com/gin-gonic/gin"
)

var errBadQuery = errors.New("bad query")

// dashboardRequest reads from, to, account, project and today. A missing
// range defaults to the calendar quarter containing today.
func (s *Server) dashboardRequest(c *gin.Context) (finance.DashboardRequest, error) {
	today := s.today()
	if raw := c.Query("today"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return finance.DashboardRequest{}, fmt.Errorf("%w: today: %w", errBadQuery, err)
		}
		today = d
	}

	window, err := dateRange(c, today)
	if err != nil {
		return finance.DashboardRequest{}, err
	}

	return finance.DashboardRequest{
		Range: window,
		Today: today,
		Filter: finance.Filter{
			AccountID: c.Query("account"),
			ProjectID: c.Query("project"),
		},
	}, nil
}

func dateRange(c *gin.Context, today model.Date) (model.DateRange, error) {
	window := model.QuarterOf(today)
	if raw := c.Query("from"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return window, fmt.Errorf("%w: from: %w", errBadQuery, err)
		}
		window.From = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return window, fmt.Errorf("%w: to: %w", errBadQuery, err)
		}
		window.To = d
	}
	if err := window.Validate(); err != nil {
		return window, fmt.Errorf("%w: %w", errBadQuery, err)
	}
	return window, nil
}

// transactionType reads ?type=, defaulting to def.
func transactionType(c *gin.Context, def model.TransactionType) (model.TransactionType, error) {
	raw := c.Query("type")
	if raw == "" {
		return def, nil
	}
	typ, err := model.ParseTransactionType(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errBadQuery, err)
	}
	if typ == model.Transfer {
		return "", fmt.Errorf("%w: type must be INCOME or EXPENSE", errBadQuery)
	}
	return typ, nil
}
