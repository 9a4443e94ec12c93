package domain

import "time"

// Platform identifies the social platform a signal came from
type Platform string

// supported platforms
const (
	PlatformReddit  Platform = "reddit"
	PlatformYouTube Platform = "youtube"
	PlatformTwitter Platform = "twitter"
)

// Valid reports whether the platform is one of the supported values
func (p Platform) Valid() bool {
	return p == PlatformReddit || p == PlatformYouTube || p == PlatformTwitter
}

// Urgency is a categorical freshness+engagement tier assigned by the classifier
type Urgency string

// urgency levels, highest first
const (
	UrgencyCritical Urgency = "Critical"
	UrgencyHigh     Urgency = "High"
	UrgencyMedium   Urgency = "Medium"
	UrgencyLow      Urgency = "Low"
)

// Engagement holds interaction counters for a signal, zero when unknown
type Engagement struct {
	Upvotes  int `json:"upvotes"`
	Comments int `json:"comments"`
	Views    int `json:"views"`
}

// Signal represents one normalized unit of externally-sourced content.
// Adapters produce signals without RelevanceScore and Urgency; the scoring
// pipeline fills both in and the signal is read-only afterwards.
type Signal struct {
	ID             string     `json:"id"`
	Platform       Platform   `json:"platform"`
	Title          string     `json:"title"`
	Snippet        string     `json:"snippet"`
	URL            string     `json:"url"`
	Source         string     `json:"source"`
	SignalType     string     `json:"signalType"`
	Engagement     Engagement `json:"engagement"`
	CreatedAt      time.Time  `json:"createdAt"`
	RelevanceScore float64    `json:"relevanceScore"`
	Urgency        Urgency    `json:"urgencyLevel"`
}

// TotalEngagement returns upvotes + comments, the measure used by the
// urgency classifier. Views are deliberately excluded there.
func (s *Signal) TotalEngagement() int {
	return s.Engagement.Upvotes + s.Engagement.Comments
}
