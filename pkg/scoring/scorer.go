// Package scoring computes relevance scores and urgency levels for signals.
// Both components are pure functions of their inputs plus a clock, injected
// to keep results deterministic in tests.
package scoring

import (
	"strings"
	"time"

	"github.com/umputun/signalscope/pkg/domain"
)

// scoring weights, matched to the ranking behavior users already rely on
const (
	baseScore        = 0.5
	keywordWeight    = 0.3
	engagementWeight = 0.2
	engagementNorm   = 1000.0
	viewsDivisor     = 100.0
	weekBonus        = 0.1
	monthBonus       = 0.05
)

// Scorer computes a relevance score in [0,1] for a signal against a query
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer using the provided clock, or time.Now when nil
func NewScorer(now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{now: now}
}

// Score computes the relevance of a signal for the given query text.
// Starts at 0.5, adds up to 0.3 for query-token overlap with title+snippet,
// up to 0.2 for engagement and up to 0.1 for recency. Always in [0,1].
func (s *Scorer) Score(sig *domain.Signal, query string) float64 {
	score := baseScore

	// keyword matching, case-insensitive substring per token
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) > 0 {
		content := strings.ToLower(sig.Title + " " + sig.Snippet)
		matches := 0
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				matches++
			}
		}
		score += float64(matches) / float64(len(keywords)) * keywordWeight
	}

	// engagement contribution, views discounted by 100x
	total := float64(sig.Engagement.Upvotes) + float64(sig.Engagement.Comments) +
		float64(sig.Engagement.Views)/viewsDivisor
	score += min(total/engagementNorm, engagementWeight)

	// recency bonus
	if !sig.CreatedAt.IsZero() {
		age := s.now().Sub(sig.CreatedAt)
		switch {
		case age <= 7*24*time.Hour:
			score += weekBonus
		case age <= 30*24*time.Hour:
			score += monthBonus
		}
	}

	return min(max(score, 0), 1)
}
