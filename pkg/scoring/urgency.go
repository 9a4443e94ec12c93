package scoring

import (
	"time"

	"github.com/umputun/signalscope/pkg/domain"
)

// unknownAgeDays is assumed when a signal has no creation time,
// forcing urgency to the lowest tier
const unknownAgeDays = 365.0

// Classifier assigns a categorical urgency level based on how fresh a signal
// is and how much discussion it attracts
type Classifier struct {
	now func() time.Time
}

// NewClassifier creates a classifier using the provided clock, or time.Now when nil
func NewClassifier(now func() time.Time) *Classifier {
	if now == nil {
		now = time.Now
	}
	return &Classifier{now: now}
}

// Classify returns the urgency level for a signal. Rules are checked in
// order, first match wins. Engagement here counts upvotes and comments only.
// The timeRange hint is accepted for interface parity with the search
// request but does not influence the rules.
func (c *Classifier) Classify(sig *domain.Signal, timeRange string) domain.Urgency {
	_ = timeRange

	days := unknownAgeDays
	if !sig.CreatedAt.IsZero() {
		days = c.now().Sub(sig.CreatedAt).Hours() / 24
	}

	engagement := sig.TotalEngagement()

	switch {
	case days <= 1 && engagement > 100:
		return domain.UrgencyCritical
	case days <= 7 && engagement > 50:
		return domain.UrgencyHigh
	case days <= 30 && engagement > 20:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}
