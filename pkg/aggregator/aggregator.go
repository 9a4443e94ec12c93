// Package aggregator orchestrates the search pipeline: fan out to platform
// adapters, score and classify every signal, merge, rank and truncate.
package aggregator

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/signalscope/pkg/domain"
)

//go:generate moq -out mocks/searcher.go -pkg mocks -skip-ensure -fmt goimports . Searcher

// defaultLimit caps the result set when neither the request nor the
// configured limits ask for a size
const defaultLimit = 20

// Limits bounds per-request result counts. Zero values fall back to the
// built-in default and no cap respectively.
type Limits struct {
	Default int // result count when the request doesn't specify one
	Max     int // hard cap on the requested count
}

// Searcher is a platform search adapter
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Signal, error)
}

// Scorer computes a relevance score for a signal against the query
type Scorer interface {
	Score(sig *domain.Signal, query string) float64
}

// Classifier assigns an urgency level to a signal
type Classifier interface {
	Classify(sig *domain.Signal, timeRange string) domain.Urgency
}

// PlatformFailure records an adapter that produced no results because it
// failed, as opposed to finding nothing. Kept for diagnostics, the merged
// result itself treats both the same way.
type PlatformFailure struct {
	Platform domain.Platform `json:"platform"`
	Reason   string          `json:"reason"`
}

// Result is the outcome of one aggregate call
type Result struct {
	Signals  []domain.Signal   `json:"signals"`
	Failures []PlatformFailure `json:"failures,omitempty"`
}

// Aggregator fans a search request out to the configured platform adapters
// and turns their raw results into a single ranked list
type Aggregator struct {
	searchers  map[domain.Platform]Searcher
	scorer     Scorer
	classifier Classifier
	limits     Limits
}

// New creates an aggregator over the given adapters
func New(searchers map[domain.Platform]Searcher, scorer Scorer, classifier Classifier, limits Limits) *Aggregator {
	return &Aggregator{searchers: searchers, scorer: scorer, classifier: classifier, limits: limits}
}

// Aggregate runs the full pipeline for one request. Adapters are queried
// concurrently and independently; a failed platform degrades to an empty
// list recorded in Result.Failures and never aborts the call. Zero overall
// results is a valid outcome, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, req domain.SearchRequest) (*Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if len(req.Platforms) == 0 {
		return nil, fmt.Errorf("at least one platform is required")
	}
	for _, p := range req.Platforms {
		if !p.Valid() {
			return nil, fmt.Errorf("unknown platform %q", p)
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = a.limits.Default
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if a.limits.Max > 0 && limit > a.limits.Max {
		limit = a.limits.Max
	}

	// per-platform slots keep concatenation order deterministic regardless
	// of which adapter responds first
	perPlatform := make([][]domain.Signal, len(req.Platforms))
	failures := make([]*PlatformFailure, len(req.Platforms))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range req.Platforms {
		searcher, ok := a.searchers[p]
		if !ok {
			failures[i] = &PlatformFailure{Platform: p, Reason: "platform not configured"}
			continue
		}
		g.Go(func() error {
			signals, err := searcher.Search(gctx, req.Query, limit)
			if err != nil {
				lgr.Printf("[WARN] %s search failed: %v", p, err)
				failures[i] = &PlatformFailure{Platform: p, Reason: err.Error()}
				return nil // best effort, other platforms still count
			}
			perPlatform[i] = signals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search platforms: %w", err)
	}

	res := &Result{Signals: []domain.Signal{}}
	for _, signals := range perPlatform {
		res.Signals = append(res.Signals, signals...)
	}
	for _, f := range failures {
		if f != nil {
			res.Failures = append(res.Failures, *f)
		}
	}

	// enrich in place, then rank
	for i := range res.Signals {
		res.Signals[i].RelevanceScore = a.scorer.Score(&res.Signals[i], req.Query)
		res.Signals[i].Urgency = a.classifier.Classify(&res.Signals[i], req.TimeRange)
	}

	// stable sort keeps adapter-concatenation order on equal scores
	sort.SliceStable(res.Signals, func(i, j int) bool {
		return res.Signals[i].RelevanceScore > res.Signals[j].RelevanceScore
	})

	if len(res.Signals) > limit {
		res.Signals = res.Signals[:limit]
	}

	lgr.Printf("[DEBUG] aggregated %d signals for %q across %d platforms, %d failed",
		len(res.Signals), req.Query, len(req.Platforms), len(res.Failures))
	return res, nil
}
