package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/freeeve/gridfire/api/internal/auth"
	"github.com/freeeve/gridfire/api/internal/model"
	"github.com/freeeve/gridfire/api/internal/service"
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// MatchHandler handles match lifecycle endpoints.
type MatchHandler struct {
	matchSvc *service.MatchService
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matchSvc *service.MatchService) *MatchHandler {
	return &MatchHandler{matchSvc: matchSvc}
}

// InitiateGame handles POST /initiate_game
func (h *MatchHandler) InitiateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed       string `json:"seed,omitempty"`
		Width      int    `json:"width,omitempty"`
		Height     int    `json:"height,omitempty"`
		Elo        int    `json:"elo,omitempty"`
		FirstActor string `json:"firstActor,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.matchSvc.Initiate(r.Context(),
		auth.UserIDFromContext(r.Context()), auth.HandleFromContext(r.Context()),
		service.InitiateParams{Seed: req.Seed, GridW: req.Width, GridH: req.Height, Elo: req.Elo, FirstActor: req.FirstActor})
	if err != nil {
		if errors.Is(err, engine.ErrInvalidAction) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMatch handles GET /matches/{id}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.matchSvc.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMatch handles POST /update
func (h *MatchHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MatchID         string        `json:"matchId"`
		SnapshotVersion *int64        `json:"snapshotVersion,omitempty"`
		Action          engine.Action `json:"action"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MatchID == "" || req.Action.Type == "" {
		writeError(w, http.StatusBadRequest, "matchId and action are required")
		return
	}

	m, res, err := h.matchSvc.Update(r.Context(), req.MatchID,
		auth.UserIDFromContext(r.Context()), req.SnapshotVersion, req.Action)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"match": m, "result": res})
}

// EndGame handles POST /end_game
func (h *MatchHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MatchID string `json:"matchId"`
		Reason  string `json:"reason,omitempty"`
		Winner  string `json:"winner,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil || req.MatchID == "" {
		writeError(w, http.StatusBadRequest, "matchId is required")
		return
	}

	hist, err := h.matchSvc.EndGame(r.Context(), req.MatchID, auth.UserIDFromContext(r.Context()), req.Winner, req.Reason)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// Resign handles POST /matches/{id}/resign. The body is optional; an empty
// or absent side means the human player concedes.
func (h *MatchHandler) Resign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side string `json:"side,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	hist, err := h.matchSvc.Resign(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context()), req.Side)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// pagedResponse is the envelope for the profile listing endpoints.
type pagedResponse struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
	Items any `json:"items"`
}

// ActiveMatches handles GET /profile/active-matches
func (h *MatchHandler) ActiveMatches(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	matches, total, err := h.matchSvc.ActiveMatches(r.Context(), auth.UserIDFromContext(r.Context()), skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if matches == nil {
		matches = []*engine.Match{}
	}
	writeJSON(w, http.StatusOK, pagedResponse{Total: total, Limit: limit, Skip: skip, Items: matches})
}

// HistoricMatches handles GET /profile/historic-matches
func (h *MatchHandler) HistoricMatches(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	matches, total, err := h.matchSvc.HistoricMatches(r.Context(), auth.UserIDFromContext(r.Context()), skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if matches == nil {
		matches = []model.HistoricalMatch{}
	}
	writeJSON(w, http.StatusOK, pagedResponse{Total: total, Limit: limit, Skip: skip, Items: matches})
}

// writeMatchError maps service and engine errors to HTTP status codes.
func writeMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, "match not found")
	case errors.Is(err, service.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version conflict")
	case errors.Is(err, service.ErrWrongTurn):
		writeError(w, http.StatusConflict, "not your turn")
	case errors.Is(err, service.ErrMatchEnded):
		writeError(w, http.StatusConflict, "match already ended")
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "you are not in this match")
	case errors.Is(err, engine.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func pageParams(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return skip, limit
}
