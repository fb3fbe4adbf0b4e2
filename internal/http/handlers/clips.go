package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/pkg/zip"
)

// ClipsDownload bundles the resolved clips of a storyboard into one zip for
// offline review. Scenes without a resolution are skipped.
func (a *App) ClipsDownload(w http.ResponseWriter, r *http.Request) {
	storyboardID := chi.URLParam(r, "id")
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

	matches, err := a.Matches.ListByStoryboard(r.Context(), sb.ID)
	if err != nil {
		a.Logger.Error().Err(err).Str("storyboard_id", sb.ID).Msg("http: match history load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load resolutions")
		return
	}
	byScene := make(map[string]domain.ResolvedAsset, len(matches))
	for _, m := range matches {
		byScene[m.SceneID] = m
	}

	var clips []zip.Clip
	for _, scene := range sb.Scenes {
		res, ok := byScene[scene.ID]
		if !ok {
			continue
		}
		data, err := os.ReadFile(res.LocalPath)
		if err != nil {
			a.Logger.Warn().Err(err).Str("scene_id", scene.ID).Msg("http: clip unreadable, skipping")
			continue
		}
		clips = append(clips, zip.Clip{
			Filename: fmt.Sprintf("%02d_%s.mp4", scene.Position, scene.ID),
			Data:     data,
		})
	}
	if len(clips) == 0 {
		a.error(w, http.StatusConflict, "not_ready", "no resolved clips to bundle")
		return
	}

	archive := zip.ArchiveClips(clips)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sb.ID+"-clips.zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
