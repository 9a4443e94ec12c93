package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/signalscope/pkg/domain"
)

// SearchRepository handles saved-search database operations
type SearchRepository struct {
	db *sqlx.DB
}

// NewSearchRepository creates a new saved-search repository
func NewSearchRepository(database *sqlx.DB) *SearchRepository {
	return &SearchRepository{db: database}
}

// savedSearchSQL represents a saved search for SQL operations
type savedSearchSQL struct {
	ID         int64        `db:"id"`
	Name       string       `db:"name"`
	Query      string       `db:"query"`
	Platforms  platformsSQL `db:"platforms"`
	TimeRange  string       `db:"time_range"`
	MaxResults int          `db:"max_results"`
	CreatedAt  time.Time    `db:"created_at"`
}

// platformsSQL is a JSON array of platform names for SQL operations
type platformsSQL []domain.Platform

// Value implements driver.Valuer for database storage
func (p platformsSQL) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *platformsSQL) Scan(value interface{}) error {
	if value == nil {
		*p = platformsSQL{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return json.Unmarshal([]byte("[]"), p)
	}

	return json.Unmarshal(data, p)
}

// CreateSearch inserts a new saved search and sets its ID
func (r *SearchRepository) CreateSearch(ctx context.Context, s *domain.SavedSearch) error {
	sqlSearch := &savedSearchSQL{
		Name:       s.Name,
		Query:      s.Query,
		Platforms:  platformsSQL(s.Platforms),
		TimeRange:  s.TimeRange,
		MaxResults: s.Limit,
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO saved_searches (name, query, platforms, time_range, max_results)
			VALUES (:name, :query, :platforms, :time_range, :max_results)
		`
		result, err := r.db.NamedExecContext(ctx, query, sqlSearch)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("create saved search: %w", err)}
		}

		id, err := result.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get saved search id: %w", err)}
		}
		s.ID = id
		return nil
	})
}

// GetSearches returns saved searches, newest first
func (r *SearchRepository) GetSearches(ctx context.Context, limit int) ([]domain.SavedSearch, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []savedSearchSQL
	query := `SELECT id, name, query, platforms, time_range, max_results, created_at
		FROM saved_searches ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get saved searches: %w", err)
	}

	searches := make([]domain.SavedSearch, len(rows))
	for i, row := range rows {
		searches[i] = domain.SavedSearch{
			ID:        row.ID,
			Name:      row.Name,
			Query:     row.Query,
			Platforms: row.Platforms,
			TimeRange: row.TimeRange,
			Limit:     row.MaxResults,
			CreatedAt: row.CreatedAt,
		}
	}
	return searches, nil
}

// DeleteSearch removes a saved search by ID
func (r *SearchRepository) DeleteSearch(ctx context.Context, id int64) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		result, err := r.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, id)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("delete saved search: %w", err)}
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("check deleted rows: %w", err)}
		}
		if affected == 0 {
			return &criticalError{err: fmt.Errorf("saved search %d not found", id)}
		}
		return nil
	})
}
