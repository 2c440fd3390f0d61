package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

// Project is a budgeted piece of work that transactions can be tagged with.
type Project struct {
	CreatedAt      time.Time       `json:"created_at"`
	PlannedIncome  decimal.Decimal `json:"planned_income"`
	PlannedExpense decimal.Decimal `json:"planned_expense"`
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Status         ProjectStatus   `json:"status"`
}

// Validate checks the project is named, has a known status and
// non-negative plans.
func (p *Project) Validate() error {
	if p.ID == "" || strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidProject)
	}
	switch p.Status {
	case ProjectActive, ProjectCompleted, ProjectArchived:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidProject, p.Status)
	}
	if p.PlannedIncome.IsNegative() || p.PlannedExpense.IsNegative() {
		return fmt.Errorf("%w: planned amounts must not be negative", ErrInvalidProject)
	}
	return nil
}

// CounterpartyType classifies who the business deals with.
type CounterpartyType string

const (
	CounterpartyClient     CounterpartyType = "CLIENT"
	CounterpartyVendor     CounterpartyType = "VENDOR"
	CounterpartyContractor CounterpartyType = "CONTRACTOR"
)

// CounterpartyStatus is ACTIVE unless the counterparty has been retired.
type CounterpartyStatus string

const (
	CounterpartyActive   CounterpartyStatus = "ACTIVE"
	CounterpartyInactive CounterpartyStatus = "INACTIVE"
)

// Counterparty is a client, vendor or contractor.
type Counterparty struct {
	CreatedAt time.Time          `json:"created_at"`
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      CounterpartyType   `json:"type"`
	Email     string             `json:"email,omitempty"`
	Phone     string             `json:"phone,omitempty"`
	Status    CounterpartyStatus `json:"status"`
}

// Validate checks the counterparty is named and has a known type.
func (c *Counterparty) Validate() error {
	if c.ID == "" || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidCounterparty)
	}
	switch c.Type {
	case CounterpartyClient, CounterpartyVendor, CounterpartyContractor:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCounterparty, c.Type)
	}
	switch c.Status {
	case CounterpartyActive, CounterpartyInactive:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidCounterparty, c.Status)
	}
	return nil
}
