package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/signalscope/pkg/aggregator"
	"github.com/umputun/signalscope/pkg/domain"
)

func TestSearchHandler(t *testing.T) {
	agg := &fakeAggregator{result: &aggregator.Result{
		Signals: []domain.Signal{
			{
				ID:             "reddit_1",
				Platform:       domain.PlatformReddit,
				Title:          "Looking for a CRM recommendation",
				URL:            "https://reddit.com/r/sales/1",
				RelevanceScore: 0.9,
				Urgency:        domain.UrgencyHigh,
			},
		},
	}}
	ts := testServer(t, agg, &fakeSearchStore{}, &fakeSignalStore{})

	t.Run("successful search", func(t *testing.T) {
		body := `{"query": "crm software", "platforms": ["reddit"], "limit": 10}`
		resp, err := http.Post(ts.URL+"/api/v1/search", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result aggregator.Result
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Signals, 1)
		assert.Equal(t, "reddit_1", result.Signals[0].ID)
		assert.Equal(t, domain.UrgencyHigh, result.Signals[0].Urgency)

		assert.Equal(t, "crm software", agg.lastReq.Query)
		assert.Equal(t, []domain.Platform{domain.PlatformReddit}, agg.lastReq.Platforms)
		assert.Equal(t, 10, agg.lastReq.Limit)
	})

	t.Run("missing query", func(t *testing.T) {
		body := `{"platforms": ["reddit"]}`
		resp, err := http.Post(ts.URL+"/api/v1/search", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing platforms", func(t *testing.T) {
		body := `{"query": "crm software"}`
		resp, err := http.Post(ts.URL+"/api/v1/search", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/search", "application/json", strings.NewReader("not json"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("aggregator error", func(t *testing.T) {
		failing := &fakeAggregator{err: fmt.Errorf("unsupported platform: myspace")}
		tsFail := testServer(t, failing, &fakeSearchStore{}, &fakeSignalStore{})

		body := `{"query": "crm", "platforms": ["reddit"]}`
		resp, err := http.Post(tsFail.URL+"/api/v1/search", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var errResp map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Contains(t, errResp["error"], "myspace")
	})
}

func TestExportHandler(t *testing.T) {
	ts := testServer(t, &fakeAggregator{}, &fakeSearchStore{}, &fakeSignalStore{})

	signals := []domain.Signal{
		{
			ID:             "reddit_1",
			Platform:       domain.PlatformReddit,
			Title:          "Best CRM for startups",
			Snippet:        "We switched last month",
			URL:            "https://reddit.com/r/startups/1",
			Source:         "r/startups",
			SignalType:     "Discussion",
			Engagement:     domain.Engagement{Upvotes: 42, Comments: 7, Views: 100},
			CreatedAt:      time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC),
			RelevanceScore: 0.85,
			Urgency:        domain.UrgencyMedium,
		},
	}

	t.Run("csv export", func(t *testing.T) {
		payload, err := json.Marshal(map[string]interface{}{"signals": signals, "format": "csv"})
		require.NoError(t, err)

		resp, err := http.Post(ts.URL+"/api/v1/export", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="signals-export.csv"`, resp.Header.Get("Content-Disposition"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		lines := strings.Split(string(body), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "Platform,Title,Snippet"))
		assert.Contains(t, lines[1], `"Best CRM for startups"`)
	})

	t.Run("json export", func(t *testing.T) {
		payload, err := json.Marshal(map[string]interface{}{"signals": signals, "format": "json"})
		require.NoError(t, err)

		resp, err := http.Post(ts.URL+"/api/v1/export", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="signals-export.json"`, resp.Header.Get("Content-Disposition"))

		var envelope struct {
			Signals    []domain.Signal `json:"signals"`
			ExportedAt time.Time       `json:"exportedAt"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		require.Len(t, envelope.Signals, 1)
		assert.Equal(t, "reddit_1", envelope.Signals[0].ID)
		assert.False(t, envelope.ExportedAt.IsZero())
	})

	t.Run("missing signals", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/export", "application/json", strings.NewReader(`{"format": "csv"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty signals list is valid", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/export", "application/json", strings.NewReader(`{"signals": [], "format": "csv"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Empty(t, string(body))
	})
}

func TestSavedSearchHandlers(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		store := &fakeSearchStore{}
		ts := testServer(t, &fakeAggregator{}, store, &fakeSignalStore{})

		body := `{"name": "weekly crm scan", "query": "crm software", "platforms": ["reddit", "twitter"], "limit": 25}`
		resp, err := http.Post(ts.URL+"/api/v1/searches", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var created struct {
			Search domain.SavedSearch `json:"search"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, int64(1), created.Search.ID)
		assert.Equal(t, "weekly crm scan", created.Search.Name)

		listResp, err := http.Get(ts.URL + "/api/v1/searches")
		require.NoError(t, err)
		defer listResp.Body.Close()

		assert.Equal(t, http.StatusOK, listResp.StatusCode)
		var list struct {
			Searches []domain.SavedSearch `json:"searches"`
		}
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
		require.Len(t, list.Searches, 1)
		assert.Equal(t, "crm software", list.Searches[0].Query)
	})

	t.Run("create validation", func(t *testing.T) {
		ts := testServer(t, &fakeAggregator{}, &fakeSearchStore{}, &fakeSignalStore{})

		resp, err := http.Post(ts.URL+"/api/v1/searches", "application/json", strings.NewReader(`{"query": "no name"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		store := &fakeSearchStore{searches: []domain.SavedSearch{{ID: 1, Name: "old", Query: "old query"}}}
		ts := testServer(t, &fakeAggregator{}, store, &fakeSignalStore{})

		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/searches/1", http.NoBody)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, store.searches)
	})

	t.Run("delete with invalid id", func(t *testing.T) {
		ts := testServer(t, &fakeAggregator{}, &fakeSearchStore{}, &fakeSignalStore{})

		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/searches/abc", http.NoBody)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeSearchStore{err: fmt.Errorf("disk full")}
		ts := testServer(t, &fakeAggregator{}, store, &fakeSignalStore{})

		resp, err := http.Get(ts.URL + "/api/v1/searches")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestSavedSignalHandlers(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		store := &fakeSignalStore{}
		ts := testServer(t, &fakeAggregator{}, &fakeSearchStore{}, store)

		body := `{"signal": {"id": "reddit_1", "platform": "reddit", "title": "CRM thread", "url": "https://reddit.com/r/sales/1"}}`
		resp, err := http.Post(ts.URL+"/api/v1/signals", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var created struct {
			Signal domain.SavedSignal `json:"signal"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, int64(1), created.Signal.ID)
		assert.Equal(t, "CRM thread", created.Signal.Signal.Title)

		listResp, err := http.Get(ts.URL + "/api/v1/signals")
		require.NoError(t, err)
		defer listResp.Body.Close()

		assert.Equal(t, http.StatusOK, listResp.StatusCode)
		var list struct {
			Signals []domain.SavedSignal `json:"signals"`
		}
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
		require.Len(t, list.Signals, 1)
	})

	t.Run("create without title", func(t *testing.T) {
		ts := testServer(t, &fakeAggregator{}, &fakeSearchStore{}, &fakeSignalStore{})

		body := `{"signal": {"url": "https://reddit.com/r/sales/1"}}`
		resp, err := http.Post(ts.URL+"/api/v1/signals", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		store := &fakeSignalStore{signals: []domain.SavedSignal{{ID: 1, Signal: domain.Signal{Title: "pinned"}}}}
		ts := testServer(t, &fakeAggregator{}, &fakeSearchStore{}, store)

		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/signals/1", http.NoBody)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, store.signals)
	})

	t.Run("delete missing returns server error", func(t *testing.T) {
		ts := testServer(t, &fakeAggregator{}, &fakeSearchStore{}, &fakeSignalStore{})

		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/signals/42", http.NoBody)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}
