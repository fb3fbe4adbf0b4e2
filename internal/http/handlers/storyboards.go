package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/domain/storyboardcfg"
)

const maxStoryboardBody = 1 << 20

type storyboardResponse struct {
	ID string `json:"id"`
	*storyboardcfg.StoryboardDoc
}

// StoryboardCreate accepts a storyboard document as JSON or YAML, validates
// it and persists it. Scene ids are assigned here when the document omits
// them.
func (a *App) StoryboardCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxStoryboardBody))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}

	var doc *storyboardcfg.StoryboardDoc
	if isYAMLContent(r.Header.Get("Content-Type")) {
		doc, err = storyboardcfg.DecodeYAML(body)
	} else {
		doc, err = storyboardcfg.DecodeJSON(body)
	}
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	doc.Normalize()
	if err := doc.Validate(); err != nil {
		a.error(w, http.StatusUnprocessableEntity, "invalid_storyboard", err.Error())
		return
	}
	for i := range doc.Scenes {
		if doc.Scenes[i].ID == "" {
			doc.Scenes[i].ID = uuid.NewString()
		}
	}

	sb := doc.ToDomain(uuid.NewString())
	if err := a.Storyboards.Create(r.Context(), sb); err != nil {
		a.Logger.Error().Err(err).Msg("http: storyboard create failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store storyboard")
		return
	}
	a.json(w, http.StatusCreated, storyboardResponse{ID: sb.ID, StoryboardDoc: storyboardcfg.FromDomain(sb)})
}

// StoryboardGet returns the storyboard with its current per-scene resolution
// state.
func (a *App) StoryboardGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sb, err := a.Storyboards.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "storyboard not found")
			return
		}
		a.Logger.Error().Err(err).Str("storyboard_id", id).Msg("http: storyboard load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load storyboard")
		return
	}
	a.json(w, http.StatusOK, storyboardResponse{ID: sb.ID, StoryboardDoc: storyboardcfg.FromDomain(sb)})
}

func isYAMLContent(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "yaml") || strings.Contains(ct, "yml")
}
