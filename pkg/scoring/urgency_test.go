package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/umputun/signalscope/pkg/domain"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier(fixedNow)

	tests := []struct {
		name       string
		age        time.Duration
		noCreated  bool
		engagement domain.Engagement
		want       domain.Urgency
	}{
		{
			name:       "fresh and hot is critical",
			age:        12 * time.Hour,
			engagement: domain.Engagement{Upvotes: 200, Comments: 80},
			want:       domain.UrgencyCritical,
		},
		{
			name:       "fresh but quiet is low",
			age:        12 * time.Hour,
			engagement: domain.Engagement{Upvotes: 5},
			want:       domain.UrgencyLow,
		},
		{
			name:       "week old with decent engagement is high",
			age:        5 * 24 * time.Hour,
			engagement: domain.Engagement{Upvotes: 40, Comments: 20},
			want:       domain.UrgencyHigh,
		},
		{
			name:       "day old but engagement just above high threshold",
			age:        20 * time.Hour,
			engagement: domain.Engagement{Upvotes: 60},
			want:       domain.UrgencyHigh,
		},
		{
			name:       "month old with some engagement is medium",
			age:        20 * 24 * time.Hour,
			engagement: domain.Engagement{Upvotes: 15, Comments: 10},
			want:       domain.UrgencyMedium,
		},
		{
			name:       "old content is low regardless of engagement",
			age:        90 * 24 * time.Hour,
			engagement: domain.Engagement{Upvotes: 10000, Comments: 5000},
			want:       domain.UrgencyLow,
		},
		{
			name:       "views do not count toward urgency",
			age:        12 * time.Hour,
			engagement: domain.Engagement{Views: 1000000},
			want:       domain.UrgencyLow,
		},
		{
			name:       "engagement at threshold boundary is not critical",
			age:        12 * time.Hour,
			engagement: domain.Engagement{Upvotes: 100},
			want:       domain.UrgencyHigh, // 100 is not >100 but is >50 within 7 days
		},
		{
			name:      "unknown creation time forces low",
			noCreated: true,
			engagement: domain.Engagement{
				Upvotes: 500, Comments: 300,
			},
			want: domain.UrgencyLow,
		},
		{
			name:      "no engagement and no timestamp is low",
			noCreated: true,
			want:      domain.UrgencyLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := &domain.Signal{Engagement: tt.engagement}
			if !tt.noCreated {
				sig.CreatedAt = testNow.Add(-tt.age)
			}
			assert.Equal(t, tt.want, classifier.Classify(sig, "week"))
		})
	}
}

func TestClassifier_TimeRangeIgnored(t *testing.T) {
	classifier := NewClassifier(fixedNow)
	sig := &domain.Signal{
		Engagement: domain.Engagement{Upvotes: 200},
		CreatedAt:  testNow.Add(-6 * time.Hour),
	}

	for _, timeRange := range []string{"", "day", "week", "month", "garbage"} {
		assert.Equal(t, domain.UrgencyCritical, classifier.Classify(sig, timeRange))
	}
}
