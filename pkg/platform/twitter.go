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

// recent search accepts max_results between 10 and 100
const (
	twitterMinLimit = 10
	twitterMaxLimit = 100
)

// twitterTitleLength is how much of the tweet text goes into the title
const twitterTitleLength = 100

// Twitter searches recent tweets via the v2 recent search endpoint.
// Requires a bearer token. Retweets and non-English tweets are filtered
// out at the API level.
type Twitter struct {
	client      *http.Client
	baseURL     string
	bearerToken string
	snippetLen  int
}

// NewTwitter creates a twitter search adapter. Zero snippetLen picks the
// default preview length.
func NewTwitter(bearerToken string, timeout time.Duration, snippetLen int) *Twitter {
	if snippetLen <= 0 {
		snippetLen = defaultSnippetLength
	}
	return &Twitter{
		client:      newHTTPClient(timeout),
		baseURL:     "https://api.twitter.com/2",
		bearerToken: bearerToken,
		snippetLen:  snippetLen,
	}
}

// twitterSearchResponse mirrors the parts of the search response we read
type twitterSearchResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount       int `json:"like_count"`
			ReplyCount      int `json:"reply_count"`
			ImpressionCount int `json:"impression_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// Search issues one recent-search call and maps tweets into signals. Tweets
// have no separate title, so the first part of the text serves as one.
func (t *Twitter) Search(ctx context.Context, query string, limit int) ([]domain.Signal, error) {
	if t.bearerToken == "" {
		return nil, fmt.Errorf("twitter bearer token not configured")
	}
	if limit > twitterMaxLimit {
		limit = twitterMaxLimit
	}
	if limit < twitterMinLimit {
		limit = twitterMinLimit
	}

	params := url.Values{}
	params.Set("query", query+" -is:retweet lang:en")
	params.Set("max_results", strconv.Itoa(limit))
	params.Set("tweet.fields", "author_id,created_at,public_metrics")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.baseURL+"/tweets/search/recent?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create twitter request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.bearerToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter search: unexpected status code %d", resp.StatusCode)
	}

	var result twitterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode twitter response: %w", err)
	}

	signals := make([]domain.Signal, 0, len(result.Data))
	for i, tweet := range result.Data {
		var created time.Time
		if ts, err := time.Parse(time.RFC3339, tweet.CreatedAt); err == nil {
			created = ts
		}

		title := tweet.Text
		if runes := []rune(title); len(runes) > twitterTitleLength {
			title = string(runes[:twitterTitleLength]) + "..."
		}

		signals = append(signals, domain.Signal{
			ID:         signalID("twitter", i),
			Platform:   domain.PlatformTwitter,
			Title:      title,
			Snippet:    makeSnippet(tweet.Text, "No content available", t.snippetLen),
			URL:        "https://twitter.com/user/status/" + tweet.ID,
			Source:     "Twitter",
			SignalType: "Social Media",
			Engagement: domain.Engagement{
				Upvotes:  tweet.PublicMetrics.LikeCount,
				Comments: tweet.PublicMetrics.ReplyCount,
				Views:    tweet.PublicMetrics.ImpressionCount,
			},
			CreatedAt: created,
		})
	}

	return signals, nil
}
