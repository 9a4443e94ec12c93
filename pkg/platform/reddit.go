package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/umputun/signalscope/pkg/domain"
)

// redditMaxLimit is the largest page size the listing API accepts
const redditMaxLimit = 100

// Reddit searches reddit posts via the public search listing endpoint.
// No credential is needed but reddit rejects requests without a real
// User-Agent, so one is always set.
type Reddit struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	snippetLen int
}

// NewReddit creates a reddit search adapter. Zero snippetLen picks the
// default preview length.
func NewReddit(timeout time.Duration, userAgent string, snippetLen int) *Reddit {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if snippetLen <= 0 {
		snippetLen = defaultSnippetLength
	}
	return &Reddit{
		client:     newHTTPClient(timeout),
		baseURL:    "https://www.reddit.com",
		userAgent:  userAgent,
		snippetLen: snippetLen,
	}
}

// redditListing mirrors the parts of the reddit search response we read
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title         string  `json:"title"`
				SelfText      string  `json:"selftext"`
				Permalink     string  `json:"permalink"`
				Subreddit     string  `json:"subreddit_name_prefixed"`
				Ups           int     `json:"ups"`
				NumComments   int     `json:"num_comments"`
				ViewCount     int     `json:"view_count"`
				CreatedUTC    float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search issues one search call and maps posts into signals
func (r *Reddit) Search(ctx context.Context, query string, limit int) ([]domain.Signal, error) {
	if limit > redditMaxLimit {
		limit = redditMaxLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "relevance")
	params.Set("t", "week")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.baseURL+"/search.json?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create reddit request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit search: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit search: unexpected status code %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	signals := make([]domain.Signal, 0, len(listing.Data.Children))
	for i, child := range listing.Data.Children {
		post := child.Data
		var created time.Time
		if post.CreatedUTC > 0 {
			created = time.Unix(int64(post.CreatedUTC), 0).UTC()
		}
		signals = append(signals, domain.Signal{
			ID:         signalID("reddit", i),
			Platform:   domain.PlatformReddit,
			Title:      post.Title,
			Snippet:    makeSnippet(post.SelfText, "No content preview available", r.snippetLen),
			URL:        "https://reddit.com" + post.Permalink,
			Source:     post.Subreddit,
			SignalType: "Discussion",
			Engagement: domain.Engagement{
				Upvotes:  post.Ups,
				Comments: post.NumComments,
				Views:    post.ViewCount,
			},
			CreatedAt: created,
		})
	}

	return signals, nil
}
