package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/production"
	"github.com/arthurelgindell/storyreel/internal/providers/videogen"
	"github.com/arthurelgindell/storyreel/internal/storage"
)

// App carries the handlers' collaborators. One instance serves all routes.
type App struct {
	Storyboards domain.StoryboardRepository
	Jobs        domain.ProductionJobRepository
	Matches     domain.MatchRepository
	Producer    *production.Producer
	Store       *storage.FileStore
	Gen         videogen.Generator
	Logger      zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": slug, "message": message},
	})
}
