package assistant

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"coursefinder-backend/lib/query"
)

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type searchRequest struct {
	Keywords   []string `json:"keywords"`
	Mode       string   `json:"mode"`
	Status     string   `json:"status"`
	Instructor string   `json:"instructor"`
	Day        string   `json:"day"`
	Time       string   `json:"time"`
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s Service) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeJson(w, http.StatusBadRequest, askResponse{Error: "no query provided"})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeJson(w, http.StatusBadRequest, askResponse{Error: "empty query"})
		return
	}

	response, err := s.Ask(r.Context(), req.Query)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to answer query", "err", err)
		writeJson(w, http.StatusInternalServerError, askResponse{
			Error: "an error occurred processing your request",
		})
		return
	}
	writeJson(w, http.StatusOK, askResponse{Success: true, Response: response})
}

// handleSearch exposes the structured engine directly, skipping the
// parser and formatter collaborators.
func (s Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeJson(w, http.StatusBadRequest, askResponse{Error: "malformed request body"})
		return
	}
	if len(req.Keywords) == 0 {
		writeJson(w, http.StatusBadRequest, askResponse{Error: "keywords are required"})
		return
	}

	results := s.engine.Search(r.Context(), query.Request{
		Keywords:   query.NormalizeKeywords(req.Keywords),
		Mode:       query.NormalizeMode(req.Mode),
		Status:     query.NormalizeStatus(req.Status),
		Instructor: query.NormalizeInstructor(req.Instructor),
		Day:        query.NormalizeDay(req.Day),
		Time:       query.NormalizeTime(req.Time),
	})
	if results == nil {
		results = []query.Result{}
	}
	writeJson(w, http.StatusOK, results)
}

func (s Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"courses_loaded": s.store.Len(),
	})
}

func (s Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /health", s.handleHealth)
}
