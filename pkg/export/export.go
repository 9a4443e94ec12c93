// Package export renders signal lists for download. Formatting only, the
// caller owns the transport and headers.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/umputun/signalscope/pkg/domain"
)

// csvHeader is the fixed column set, order matters for consumers
var csvHeader = []string{
	"Platform", "Title", "Snippet", "URL", "Source",
	"Relevance Score", "Urgency Level", "Signal Type",
	"Upvotes", "Comments", "Views",
}

// CSV renders signals as CSV in the order given. Title and snippet are
// double-quoted with internal quotes doubled since they carry free text.
// An empty list yields an empty string, no header row.
func CSV(signals []domain.Signal) string {
	if len(signals) == 0 {
		return ""
	}

	rows := make([]string, 0, len(signals)+1)
	rows = append(rows, strings.Join(csvHeader, ","))

	for _, s := range signals {
		row := []string{
			string(s.Platform),
			quote(s.Title),
			quote(s.Snippet),
			s.URL,
			s.Source,
			formatScore(s.RelevanceScore),
			string(s.Urgency),
			s.SignalType,
			strconv.Itoa(s.Engagement.Upvotes),
			strconv.Itoa(s.Engagement.Comments),
			strconv.Itoa(s.Engagement.Views),
		}
		rows = append(rows, strings.Join(row, ","))
	}

	return strings.Join(rows, "\n")
}

// envelope wraps exported signals with the export timestamp
type envelope struct {
	Signals    []domain.Signal `json:"signals"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// JSON renders signals as a JSON document with an export timestamp
func JSON(signals []domain.Signal, now time.Time) ([]byte, error) {
	if signals == nil {
		signals = []domain.Signal{}
	}
	data, err := json.Marshal(envelope{Signals: signals, ExportedAt: now})
	if err != nil {
		return nil, fmt.Errorf("marshal signals: %w", err)
	}
	return data, nil
}

// quote applies standard CSV quoting
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatScore renders the score without trailing zeros
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}
