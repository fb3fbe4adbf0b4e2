package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports service liveness plus the reachability of the generation
// service, since productions cannot start without it.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	generation := "ok"
	if a.Gen != nil {
		if err := a.Gen.Healthy(ctx); err != nil {
			generation = "unreachable"
		}
	}
	a.json(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"generation": generation,
	})
}
