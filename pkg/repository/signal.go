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

// SignalRepository handles saved-signal database operations
type SignalRepository struct {
	db *sqlx.DB
}

// NewSignalRepository creates a new saved-signal repository
func NewSignalRepository(database *sqlx.DB) *SignalRepository {
	return &SignalRepository{db: database}
}

// savedSignalSQL represents a saved signal for SQL operations
type savedSignalSQL struct {
	ID               int64         `db:"id"`
	Platform         string        `db:"platform"`
	Title            string        `db:"title"`
	Snippet          string        `db:"snippet"`
	URL              string        `db:"url"`
	Source           string        `db:"source"`
	SignalType       string        `db:"signal_type"`
	RelevanceScore   float64       `db:"relevance_score"`
	UrgencyLevel     string        `db:"urgency_level"`
	Engagement       engagementSQL `db:"engagement"`
	ContentCreatedAt *time.Time    `db:"content_created_at"`
	SavedAt          time.Time     `db:"saved_at"`
}

// engagementSQL is a JSON engagement record for SQL operations
type engagementSQL domain.Engagement

// Value implements driver.Valuer for database storage
func (e engagementSQL) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for database retrieval
func (e *engagementSQL) Scan(value interface{}) error {
	if value == nil {
		*e = engagementSQL{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return json.Unmarshal([]byte("{}"), e)
	}

	return json.Unmarshal(data, e)
}

// CreateSignal inserts a new saved signal and sets its ID
func (r *SignalRepository) CreateSignal(ctx context.Context, s *domain.SavedSignal) error {
	sqlSignal := &savedSignalSQL{
		Platform:       string(s.Signal.Platform),
		Title:          s.Signal.Title,
		Snippet:        s.Signal.Snippet,
		URL:            s.Signal.URL,
		Source:         s.Signal.Source,
		SignalType:     s.Signal.SignalType,
		RelevanceScore: s.Signal.RelevanceScore,
		UrgencyLevel:   string(s.Signal.Urgency),
		Engagement:     engagementSQL(s.Signal.Engagement),
	}
	if !s.Signal.CreatedAt.IsZero() {
		created := s.Signal.CreatedAt
		sqlSignal.ContentCreatedAt = &created
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO saved_signals (
				platform, title, snippet, url, source, signal_type,
				relevance_score, urgency_level, engagement, content_created_at
			) VALUES (
				:platform, :title, :snippet, :url, :source, :signal_type,
				:relevance_score, :urgency_level, :engagement, :content_created_at
			)
		`
		result, err := r.db.NamedExecContext(ctx, query, sqlSignal)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("create saved signal: %w", err)}
		}

		id, err := result.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get saved signal id: %w", err)}
		}
		s.ID = id
		return nil
	})
}

// GetSignals returns saved signals, newest first
func (r *SignalRepository) GetSignals(ctx context.Context, limit int) ([]domain.SavedSignal, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []savedSignalSQL
	query := `SELECT id, platform, title, snippet, url, source, signal_type,
			relevance_score, urgency_level, engagement, content_created_at, saved_at
		FROM saved_signals ORDER BY saved_at DESC, id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get saved signals: %w", err)
	}

	signals := make([]domain.SavedSignal, len(rows))
	for i, row := range rows {
		sig := domain.Signal{
			Platform:       domain.Platform(row.Platform),
			Title:          row.Title,
			Snippet:        row.Snippet,
			URL:            row.URL,
			Source:         row.Source,
			SignalType:     row.SignalType,
			RelevanceScore: row.RelevanceScore,
			Urgency:        domain.Urgency(row.UrgencyLevel),
			Engagement:     domain.Engagement(row.Engagement),
		}
		if row.ContentCreatedAt != nil {
			sig.CreatedAt = *row.ContentCreatedAt
		}
		signals[i] = domain.SavedSignal{ID: row.ID, Signal: sig, SavedAt: row.SavedAt}
	}
	return signals, nil
}

// DeleteSignal removes a saved signal by ID
func (r *SignalRepository) DeleteSignal(ctx context.Context, id int64) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		result, err := r.db.ExecContext(ctx, `DELETE FROM saved_signals WHERE id = ?`, id)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("delete saved signal: %w", err)}
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("check deleted rows: %w", err)}
		}
		if affected == 0 {
			return &criticalError{err: fmt.Errorf("saved signal %d not found", id)}
		}
		return nil
	})
}
