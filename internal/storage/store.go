package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Dialect selects the SQL flavour a Store speaks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configured driver name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDialect, name)
}

// Store implements service.LedgerStore on database/sql. Queries are written
// with ? placeholders and rebound for PostgreSQL.
type Store struct {
	db      *sql.DB
	now     func() time.Time
	dialect Dialect
	dsn     string
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect reports which database the store talks to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// DB exposes the underlying handle for maintenance commands.
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL. Question
// marks inside single-quoted literals are left alone.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// upsert builds an INSERT that replaces every non-key column on id conflict.
// Both SQLite and PostgreSQL accept this form.
func upsert(table string, columns ...string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	updates := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == "id" || c == "created_at" {
			continue
		}
		updates = append(updates, c+" = excluded."+c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		table, strings.Join(columns, ", "), placeholders, strings.Join(updates, ", "))
}

// createdAt stamps a record the first time it is saved.
func (s *Store) createdAt(t *time.Time) time.Time {
	if t.IsZero() {
		*t = s.now().UTC()
	}
	return *t
}

// Delete removes the record with id from collection. Nothing cascades.
func (s *Store) Delete(ctx context.Context, collection model.Collection, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	table, err := model.ParseCollection(string(collection))
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrRecordNotFound, table, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// nullable stores empty optional references as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanAll drains rows through scan.
func scanAll[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer func() { _ = rows.Close() }()
	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}
