package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/ppiankov/claimscope/internal/graph"
	"github.com/ppiankov/claimscope/internal/retrieval"
	"github.com/ppiankov/claimscope/internal/vector"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req retrieval.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Query == "" || req.TargetUserID == "" || req.ViewerID == "" {
		writeError(w, http.StatusBadRequest, "query, target_user_id and viewer_id are required")
		return
	}

	res, err := s.engine.Query(r.Context(), req)
	if err != nil {
		// An unavailable collaborator is a 503, never an empty 200;
		// callers must be able to tell "nothing visible" from "down".
		if errors.Is(err, vector.ErrUnavailable) || errors.Is(err, graph.ErrUnavailable) {
			s.log.WithError(err).Error("collaborator unavailable")
			writeError(w, http.StatusServiceUnavailable, "retrieval temporarily unavailable")
			return
		}
		s.log.WithError(err).Error("query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// scopeResponse is the JSON shape of a resolved access scope. Sets are
// sorted so responses are stable.
type scopeResponse struct {
	ViewerID      string   `json:"viewer_id"`
	TargetID      string   `json:"target_id"`
	Relationships []string `json:"relationships"`
	AllowedTags   []string `json:"allowed_tags"`
	IsSelf        bool     `json:"is_self"`
}

func (s *Server) handleScope(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")
	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		writeError(w, http.StatusBadRequest, "viewer_id query parameter is required")
		return
	}

	scope := s.resolver.Scope(r.Context(), viewerID, targetID)

	rels := make([]string, 0, scope.Relationships.Cardinality())
	for rel := range scope.Relationships.Iter() {
		rels = append(rels, string(rel))
	}
	sort.Strings(rels)

	tags := scope.AllowedTags.ToSlice()
	sort.Strings(tags)

	writeJSON(w, http.StatusOK, scopeResponse{
		ViewerID:      scope.ViewerID,
		TargetID:      scope.TargetID,
		Relationships: rels,
		AllowedTags:   tags,
		IsSelf:        scope.IsSelf,
	})
}

type claimResponse struct {
	ID         string   `json:"id"`
	Topic      string   `json:"topic"`
	Summary    string   `json:"summary"`
	AccessTags []string `json:"access_tags"`
	Status     string   `json:"status"`
	Confidence float64  `json:"confidence"`
	CreatedAt  string   `json:"created_at"`
	VerifiedAt string   `json:"verified_at,omitempty"`
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		writeError(w, http.StatusBadRequest, "viewer_id query parameter is required")
		return
	}

	list, err := s.claims.List(r.Context(), userID, viewerID)
	if err != nil {
		if errors.Is(err, graph.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "claim store temporarily unavailable")
			return
		}
		s.log.WithError(err).Error("list claims failed")
		writeError(w, http.StatusInternalServerError, "list claims failed")
		return
	}

	out := make([]claimResponse, 0, len(list))
	for _, c := range list {
		cr := claimResponse{
			ID:         c.ID,
			Topic:      string(c.Topic),
			Summary:    c.Summary,
			AccessTags: c.AccessTags,
			Status:     string(c.Status),
			Confidence: c.EffectiveConfidence(),
			CreatedAt:  c.CreatedAt.Format(timeFormat),
		}
		if c.VerifiedAt != nil {
			cr.VerifiedAt = c.VerifiedAt.Format(timeFormat)
		}
		out = append(out, cr)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"claims":  out,
	})
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
