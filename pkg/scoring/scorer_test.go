package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/umputun/signalscope/pkg/domain"
)

// fixed evaluation instant keeps recency bonuses deterministic
var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(fixedNow)

	t.Run("base score for no matches and no extras", func(t *testing.T) {
		sig := &domain.Signal{Title: "unrelated", Snippet: "nothing here"}
		score := scorer.Score(sig, "quantum blockchain")
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("full keyword overlap adds 0.3", func(t *testing.T) {
		sig := &domain.Signal{Title: "Why project management tools fail", Snippet: ""}
		score := scorer.Score(sig, "project management")
		assert.InDelta(t, 0.8, score, 1e-9)
	})

	t.Run("partial keyword overlap adds proportional bonus", func(t *testing.T) {
		sig := &domain.Signal{Title: "project planning", Snippet: ""}
		score := scorer.Score(sig, "project management tool")
		// 1 of 3 tokens matches
		assert.InDelta(t, 0.5+0.3/3, score, 1e-9)
	})

	t.Run("keyword match is case-insensitive substring", func(t *testing.T) {
		sig := &domain.Signal{Title: "PROJECTS are hard", Snippet: ""}
		score := scorer.Score(sig, "project")
		assert.InDelta(t, 0.8, score, 1e-9)
	})

	t.Run("snippet counts toward keyword matching", func(t *testing.T) {
		sig := &domain.Signal{Title: "weekly rant", Snippet: "my project fell apart"}
		score := scorer.Score(sig, "project")
		assert.InDelta(t, 0.8, score, 1e-9)
	})

	t.Run("engagement contribution capped at 0.2", func(t *testing.T) {
		sig := &domain.Signal{
			Title:      "unrelated",
			Engagement: domain.Engagement{Upvotes: 100000, Comments: 5000, Views: 1000000},
		}
		score := scorer.Score(sig, "zzz")
		assert.InDelta(t, 0.7, score, 1e-9)
	})

	t.Run("views discounted by factor of 100", func(t *testing.T) {
		sig := &domain.Signal{Title: "unrelated", Engagement: domain.Engagement{Views: 10000}}
		// 10000/100 = 100 engagement units -> 100/1000 = 0.1
		score := scorer.Score(sig, "zzz")
		assert.InDelta(t, 0.6, score, 1e-9)
	})

	t.Run("recency bonus within a week", func(t *testing.T) {
		sig := &domain.Signal{Title: "unrelated", CreatedAt: testNow.Add(-3 * 24 * time.Hour)}
		score := scorer.Score(sig, "zzz")
		assert.InDelta(t, 0.6, score, 1e-9)
	})

	t.Run("recency bonus within a month", func(t *testing.T) {
		sig := &domain.Signal{Title: "unrelated", CreatedAt: testNow.Add(-20 * 24 * time.Hour)}
		score := scorer.Score(sig, "zzz")
		assert.InDelta(t, 0.55, score, 1e-9)
	})

	t.Run("no recency bonus for old content", func(t *testing.T) {
		sig := &domain.Signal{Title: "unrelated", CreatedAt: testNow.Add(-60 * 24 * time.Hour)}
		score := scorer.Score(sig, "zzz")
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("no recency bonus when creation time unknown", func(t *testing.T) {
		sig := &domain.Signal{Title: "project stuff"}
		score := scorer.Score(sig, "project")
		assert.InDelta(t, 0.8, score, 1e-9)
	})

	t.Run("score clamped to 1", func(t *testing.T) {
		sig := &domain.Signal{
			Title:      "project management tool",
			Engagement: domain.Engagement{Upvotes: 100000},
			CreatedAt:  testNow.Add(-time.Hour),
		}
		score := scorer.Score(sig, "project management tool")
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("fresh engaged signal scenario", func(t *testing.T) {
		// titled match, engagement capped, 12 hours old
		sig := &domain.Signal{
			Title:      "Why project management tools fail",
			Snippet:    "",
			Engagement: domain.Engagement{Upvotes: 200, Comments: 80, Views: 500},
			CreatedAt:  testNow.Add(-12 * time.Hour),
		}
		score := scorer.Score(sig, "project management tool")
		// base 0.5 + overlap 0.3 + engagement min(285/1000, 0.2) + recency 0.1 = 1.1, clamped
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("empty query yields base plus extras only", func(t *testing.T) {
		sig := &domain.Signal{Title: "anything"}
		score := scorer.Score(sig, "   ")
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("score always in bounds", func(t *testing.T) {
		signals := []domain.Signal{
			{},
			{Title: "x", Engagement: domain.Engagement{Upvotes: 1 << 30}},
			{CreatedAt: testNow.Add(-time.Minute)},
		}
		for _, sig := range signals {
			score := scorer.Score(&sig, "x y z")
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})
}

func TestNewScorer_DefaultClock(t *testing.T) {
	scorer := NewScorer(nil)
	sig := &domain.Signal{Title: "test", CreatedAt: time.Now().Add(-time.Hour)}
	score := scorer.Score(sig, "test")
	// recent content with a full match
	assert.InDelta(t, 0.9, score, 1e-9)
}
