package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/go-chi/chi/v5"
)

// addTrackRequest is the body of POST /playlist/tracks. Persisted ids are never accepted from clients.
type addTrackRequest struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Duration     int    `json:"duration"`
	Service      string `json:"service"`
	ThumbnailURL string `json:"thumbnailUrl"`
	SourceID     string `json:"sourceId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "mixtape",
	})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	var req addTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	service, err := models.ParseService(req.Service)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	track := models.NewTrack(strings.TrimSpace(req.Title), strings.TrimSpace(req.Artist), req.Duration, service)
	track.ThumbnailURL = req.ThumbnailURL
	track.SourceID = req.SourceID

	if _, err := s.editor.AddTrack(r.Context(), track); err != nil {
		s.writeEditError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.editor.Snapshot())
}

func (s *Server) handleAddRandomTrack(w http.ResponseWriter, r *http.Request) {
	if _, err := s.editor.AddRandomTrack(r.Context()); err != nil {
		s.writeEditError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.editor.Snapshot())
}

func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	if err := s.editor.DeleteTrack(r.Context(), index); err != nil {
		s.writeEditError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.ClearAll(r.Context()); err != nil {
		s.writeEditError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.editor.Undo(r.Context())
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.editor.Redo(r.Context())
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not configured")
		return
	}

	tracks, err := s.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.logger.Error("catalog search failed", "catalog", s.catalog.Name(), "error", err)
		writeError(w, http.StatusBadGateway, "catalog search failed")
		return
	}
	if tracks == nil {
		tracks = []*models.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"catalog": s.catalog.Name(),
		"tracks":  tracks,
	})
}

func (s *Server) writeEditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrTrackNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("edit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
