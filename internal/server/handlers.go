package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pmurley/afl-trade-bot/internal/models"
	"github.com/pmurley/afl-trade-bot/internal/service"
	"github.com/pmurley/afl-trade-bot/internal/storage"
)

const maxBodyBytes = 1 << 20

type recommendRequest struct {
	CurrentTeam    []models.Player `json:"currentTeam"`
	MaxRookiePrice *int            `json:"maxRookiePrice"`
	UseSavedTeam   bool            `json:"useSavedTeam"`
	UsePlayerPool  bool            `json:"usePlayerPool"`
}

type teamRequest struct {
	Players []models.Player `json:"players"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecommend answers 200 for every recommender outcome, including its
// failures, and 4xx only when the request itself cannot be used.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.MaxRookiePrice != nil && *req.MaxRookiePrice <= 0 {
		s.writeError(w, http.StatusBadRequest, "maxRookiePrice must be positive")
		return
	}

	sreq := service.RecommendRequest{
		CurrentTeam:   req.CurrentTeam,
		UseSavedTeam:  req.UseSavedTeam,
		UsePlayerPool: req.UsePlayerPool,
		Source:        service.SourceHTTP,
	}
	if req.MaxRookiePrice != nil {
		sreq.MaxRookiePrice = *req.MaxRookiePrice
	}

	result, err := s.svc.Recommend(r.Context(), sreq)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.log.Debug().
		Str("status", result.Status).
		Int("combinations", len(result.Combinations)).
		Msg("Recommendation served")
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.svc.LoadTeam(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  service.StatusOK,
		"players": team,
	})
}

// handlePutTeam accepts either {"players":[...]} or a bare array
func (s *Server) handlePutTeam(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeBody(w, r, &raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var players []models.Player
	var err error
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &players)
	} else {
		var req teamRequest
		err = json.Unmarshal(raw, &req)
		players = req.Players
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.svc.SaveTeam(r.Context(), players); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": service.StatusOK,
		"saved":  len(players),
	})
}

func (s *Server) handleCaptain(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", 3)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestion, err := s.svc.Captain(r.Context(), n)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     service.StatusOK,
		"suggestion": suggestion,
	})
}

func (s *Server) handlePoolStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.PoolStats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   service.StatusOK,
		"stats":    stats,
		"loadedAt": s.svc.PoolLoadedAt(),
	})
}

func (s *Server) handlePoolSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	players, err := s.svc.SearchPool(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  service.StatusOK,
		"players": players,
	})
}

func (s *Server) handlePoolPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.svc.PoolPlayer(r.Context(), models.PlayerID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": service.StatusOK,
		"player": player,
	})
}

func (s *Server) handlePoolReload(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.ReloadPool(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  service.StatusOK,
		"players": len(result.Players),
		"skipped": result.Skipped,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.svc.History(limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  service.StatusOK,
		"entries": entries,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return n, nil
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidPlayer), errors.Is(err, service.ErrBadRequest):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrTeamNotFound):
		s.writeError(w, http.StatusNotFound, "No saved team. PUT /api/team first")
	case errors.Is(err, service.ErrPlayerNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPoolUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error().Err(err).Msg("Request failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"status":  service.StatusError,
		"message": message,
	})
}
