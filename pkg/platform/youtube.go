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

// youtubeMaxLimit is the largest maxResults the search API accepts
const youtubeMaxLimit = 50

// YouTube searches videos via the YouTube Data API v3. Requires an API key.
// The search window is limited to the last week to keep results fresh.
type YouTube struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	snippetLen int
	now        func() time.Time
}

// NewYouTube creates a youtube search adapter. Zero snippetLen picks the
// default preview length.
func NewYouTube(apiKey string, timeout time.Duration, snippetLen int) *YouTube {
	if snippetLen <= 0 {
		snippetLen = defaultSnippetLength
	}
	return &YouTube{
		client:     newHTTPClient(timeout),
		baseURL:    "https://www.googleapis.com/youtube/v3",
		apiKey:     apiKey,
		snippetLen: snippetLen,
		now:        time.Now,
	}
}

// youtubeSearchResponse mirrors the parts of the search response we read
type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search issues one search call and maps videos into signals. View counts
// are not part of the search response and stay zero; fetching them would
// cost one more API unit per video.
func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]domain.Signal, error) {
	if y.apiKey == "" {
		return nil, fmt.Errorf("youtube api key not configured")
	}
	if limit > youtubeMaxLimit {
		limit = youtubeMaxLimit
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("publishedAfter", y.now().Add(-7*24*time.Hour).UTC().Format(time.RFC3339))
	params.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		y.baseURL+"/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create youtube request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube search: unexpected status code %d", resp.StatusCode)
	}

	var result youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode youtube response: %w", err)
	}

	signals := make([]domain.Signal, 0, len(result.Items))
	for i, video := range result.Items {
		var created time.Time
		if ts, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
			created = ts
		}
		signals = append(signals, domain.Signal{
			ID:         signalID("youtube", i),
			Platform:   domain.PlatformYouTube,
			Title:      video.Snippet.Title,
			Snippet:    makeSnippet(video.Snippet.Description, "No description available", y.snippetLen),
			URL:        "https://youtube.com/watch?v=" + video.ID.VideoID,
			Source:     video.Snippet.ChannelTitle,
			SignalType: "Video Content",
			CreatedAt:  created,
		})
	}

	return signals, nil
}
