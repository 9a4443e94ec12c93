package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/signalscope/pkg/domain"
	"github.com/umputun/signalscope/pkg/export"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// searchHandler runs the search pipeline and returns ranked signals
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if req.Query == "" || len(req.Platforms) == 0 {
		renderError(w, r, fmt.Errorf("query and platforms are required"), http.StatusBadRequest)
		return
	}

	result, err := s.aggregator.Aggregate(r.Context(), req)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	renderJSON(w, r, http.StatusOK, result)
}

// exportRequest is the payload for the export endpoint
type exportRequest struct {
	Signals []domain.Signal `json:"signals"`
	Format  string          `json:"format"`
}

// exportHandler renders a signal list as a CSV or JSON download
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if req.Signals == nil {
		renderError(w, r, fmt.Errorf("signals array is required"), http.StatusBadRequest)
		return
	}

	if req.Format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="signals-export.csv"`)
		if _, err := w.Write([]byte(export.CSV(req.Signals))); err != nil {
			lgr.Printf("[ERROR] can't write CSV export: %v", err)
		}
		return
	}

	data, err := export.JSON(req.Signals, time.Now().UTC())
	if err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="signals-export.json"`)
	if _, err := w.Write(data); err != nil {
		lgr.Printf("[ERROR] can't write JSON export: %v", err)
	}
}

// listSearchesHandler returns saved searches
func (s *Server) listSearchesHandler(w http.ResponseWriter, r *http.Request) {
	searches, err := s.searchStore.GetSearches(r.Context(), 0)
	if err != nil {
		lgr.Printf("[ERROR] failed to get saved searches: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"searches": searches})
}

// createSearchHandler saves a named search
func (s *Server) createSearchHandler(w http.ResponseWriter, r *http.Request) {
	var search domain.SavedSearch
	if err := json.NewDecoder(r.Body).Decode(&search); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if search.Name == "" || search.Query == "" {
		renderError(w, r, fmt.Errorf("name and query are required"), http.StatusBadRequest)
		return
	}

	if err := s.searchStore.CreateSearch(r.Context(), &search); err != nil {
		lgr.Printf("[ERROR] failed to create saved search: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusCreated, map[string]interface{}{"search": search})
}

// deleteSearchHandler removes a saved search
func (s *Server) deleteSearchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid search ID"), http.StatusBadRequest)
		return
	}

	if err := s.searchStore.DeleteSearch(r.Context(), id); err != nil {
		lgr.Printf("[ERROR] failed to delete saved search: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusOK, map[string]string{"message": "search deleted"})
}

// listSignalsHandler returns saved signals
func (s *Server) listSignalsHandler(w http.ResponseWriter, r *http.Request) {
	signals, err := s.signalStore.GetSignals(r.Context(), 0)
	if err != nil {
		lgr.Printf("[ERROR] failed to get saved signals: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"signals": signals})
}

// createSignalHandler pins a signal from search results
func (s *Server) createSignalHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Signal domain.Signal `json:"signal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if payload.Signal.Title == "" || payload.Signal.URL == "" {
		renderError(w, r, fmt.Errorf("signal title and url are required"), http.StatusBadRequest)
		return
	}

	saved := domain.SavedSignal{Signal: payload.Signal}
	if err := s.signalStore.CreateSignal(r.Context(), &saved); err != nil {
		lgr.Printf("[ERROR] failed to create saved signal: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusCreated, map[string]interface{}{"signal": saved})
}

// deleteSignalHandler removes a saved signal
func (s *Server) deleteSignalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid signal ID"), http.StatusBadRequest)
		return
	}

	if err := s.signalStore.DeleteSignal(r.Context(), id); err != nil {
		lgr.Printf("[ERROR] failed to delete saved signal: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusOK, map[string]string{"message": "signal deleted"})
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
