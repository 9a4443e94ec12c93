package domain

import "time"

// SearchRequest describes one search pipeline invocation
type SearchRequest struct {
	Query     string     `json:"query"`
	Platforms []Platform `json:"platforms"`
	Limit     int        `json:"limit"`
	TimeRange string     `json:"timeRange,omitempty"`
}

// SavedSearch is a named search a user keeps for re-running later
type SavedSearch struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Query     string     `json:"query"`
	Platforms []Platform `json:"platforms"`
	TimeRange string     `json:"timeRange"`
	Limit     int        `json:"limit"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SavedSignal is a signal snapshot a user pinned from search results,
// scores included
type SavedSignal struct {
	ID      int64     `json:"id"`
	Signal  Signal    `json:"signal"`
	SavedAt time.Time `json:"savedAt"`
}
