// Package platform implements search adapters for the supported social
// platforms. Each adapter translates a free-text query into one call to the
// platform's search API and normalizes the response into domain signals.
// Adapters return errors to the caller; degrading a failed platform to an
// empty result set is the aggregator's policy, not theirs.
package platform

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// defaultSnippetLength is the preview length used when config leaves it unset
const defaultSnippetLength = 200

// defaultUserAgent identifies outbound requests when config leaves it empty
const defaultUserAgent = "SignalScope/1.0"

// stripPolicy removes all markup from platform-provided text
var stripPolicy = bluemonday.StrictPolicy()

// newHTTPClient creates an HTTP client tuned for short-lived API calls
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// makeSnippet sanitizes platform text and truncates it to maxLen runes
// with an ellipsis marker. Empty text yields the placeholder.
func makeSnippet(text, placeholder string, maxLen int) string {
	clean := html.UnescapeString(stripPolicy.Sanitize(text))
	if clean == "" {
		return placeholder
	}
	runes := []rune(clean)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return string(runes) + "..."
}

// signalID builds the deterministic per-call identifier for the n-th result
func signalID(platform string, index int) string {
	return fmt.Sprintf("%s_%d", platform, index+1)
}

// drainClose discards the remaining body and closes it so the underlying
// connection can be reused
func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
