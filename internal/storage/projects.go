package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/tally/internal/model"
)

// SaveProject inserts or replaces a project.
func (s *Store) SaveProject(ctx context.Context, project *model.Project) error {
	if err := validateRecord(ctx, project, "project"); err != nil {
		return err
	}

	_, err := s.exec(ctx,
		upsert("projects", "id", "name", "planned_income", "planned_expense", "status", "created_at"),
		project.ID,
		project.Name,
		project.PlannedIncome.String(),
		project.PlannedExpense.String(),
		string(project.Status),
		s.createdAt(&project.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}
	return nil
}

// ListProjects returns projects, oldest first.
func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT id, name, planned_income, planned_expense, status, created_at
		FROM projects
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	return scanAll(rows, func(row rowScanner) (model.Project, error) {
		var (
			p      model.Project
			status string
		)
		if err := row.Scan(&p.ID, &p.Name, &p.PlannedIncome, &p.PlannedExpense, &status, &p.CreatedAt); err != nil {
			return p, fmt.Errorf("failed to scan project: %w", err)
		}
		p.Status = model.ProjectStatus(status)
		return p, nil
	})
}

// SaveCounterparty inserts or replaces a counterparty.
func (s *Store) SaveCounterparty(ctx context.Context, counterparty *model.Counterparty) error {
	if err := validateRecord(ctx, counterparty, "counterparty"); err != nil {
		return err
	}

	_, err := s.exec(ctx,
		upsert("counterparties", "id", "name", "type", "email", "phone", "status", "created_at"),
		counterparty.ID,
		counterparty.Name,
		string(counterparty.Type),
		nullable(counterparty.Email),
		nullable(counterparty.Phone),
		string(counterparty.Status),
		s.createdAt(&counterparty.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save counterparty %s: %w", counterparty.ID, err)
	}
	return nil
}

// ListCounterparties returns counterparties, oldest first.
func (s *Store) ListCounterparties(ctx context.Context) ([]model.Counterparty, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT id, name, type, email, phone, status, created_at
		FROM counterparties
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query counterparties: %w", err)
	}
	return scanAll(rows, func(row rowScanner) (model.Counterparty, error) {
		var (
			c            model.Counterparty
			typ, status  string
			email, phone sql.NullString
		)
		if err := row.Scan(&c.ID, &c.Name, &typ, &email, &phone, &status, &c.CreatedAt); err != nil {
			return c, fmt.Errorf("failed to scan counterparty: %w", err)
		}
		c.Type = model.CounterpartyType(typ)
		c.Status = model.CounterpartyStatus(status)
		c.Email = email.String
		c.Phone = phone.String
		return c, nil
	})
}
