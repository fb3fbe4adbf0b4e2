package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/arthurelgindell/storyreel/internal/http/handlers"
	"github.com/arthurelgindell/storyreel/internal/infra/geoip"
	"github.com/arthurelgindell/storyreel/internal/middleware"
)

// RouterOptions configures the API surface around the handlers.
type RouterOptions struct {
	AllowedOrigins []string
	GeoIP          geoip.CountryResolver
	// RateLimit caps requests per client IP per minute; zero disables it.
	RateLimit int
	Logger    zerolog.Logger
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
	)
	// Country annotation precedes the logger so the log line can carry it.
	if opts.GeoIP != nil {
		r.Use(middleware.GeoCountry(opts.GeoIP))
	}
	r.Use(middleware.Logger(opts.Logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/storyboards", func(r chi.Router) {
		r.Post("/", app.StoryboardCreate)
		r.Get("/{id}", app.StoryboardGet)
		r.Post("/{id}/productions", app.ProductionStart)
		r.Post("/{id}/scenes/{sceneID}/resolution", app.SceneResolve)
		r.Get("/{id}/clips", app.ClipsDownload)
	})

	r.Route("/v1/productions", func(r chi.Router) {
		r.Get("/{id}", app.ProductionStatus)
		r.Get("/{id}/download", app.ProductionDownload)
	})

	return r
}
