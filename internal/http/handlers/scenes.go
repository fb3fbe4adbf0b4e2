package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/matching"
)

type manualResolutionRequest struct {
	AssetID   string `json:"asset_id"`
	LocalPath string `json:"local_path"`
}

type resolutionResponse struct {
	SceneID    string  `json:"scene_id"`
	AssetID    string  `json:"asset_id"`
	LocalPath  string  `json:"local_path"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Review     bool    `json:"needs_review"`
}

// SceneResolve applies an operator override to one scene. The override wins
// over any automatic match and repeating it is a no-op.
func (a *App) SceneResolve(w http.ResponseWriter, r *http.Request) {
	storyboardID := chi.URLParam(r, "id")
	sceneID := chi.URLParam(r, "sceneID")

	var req manualResolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.AssetID) == "" || strings.TrimSpace(req.LocalPath) == "" {
		a.error(w, http.StatusUnprocessableEntity, "invalid_resolution", "asset_id and local_path are required")
		return
	}

	sb, err := a.Storyboards.GetByID(r.Context(), storyboardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "storyboard not found")
			return
		}
		a.Logger.Error().Err(err).Str("storyboard_id", storyboardID).Msg("http: storyboard load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load storyboard")
		return
	}
	scene := sb.SceneByID(sceneID)
	if scene == nil {
		a.error(w, http.StatusNotFound, "not_found", "scene not found")
		return
	}

	resolved := matching.ManualResolution(scene, req.AssetID, req.LocalPath)
	if err := a.Matches.Save(r.Context(), sb.ID, resolved); err != nil {
		a.Logger.Error().Err(err).Str("scene_id", sceneID).Msg("http: manual match write failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record resolution")
		return
	}
	if err := a.Storyboards.UpdateScenes(r.Context(), sb); err != nil {
		a.Logger.Error().Err(err).Str("storyboard_id", sb.ID).Msg("http: scene update failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update storyboard")
		return
	}

	a.json(w, http.StatusOK, resolutionResponse{
		SceneID:    resolved.SceneID,
		AssetID:    resolved.AssetID,
		LocalPath:  resolved.LocalPath,
		Source:     string(resolved.Source),
		Confidence: resolved.Confidence,
		Review:     resolved.Review,
	})
}
