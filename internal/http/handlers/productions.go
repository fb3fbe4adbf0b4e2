package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arthurelgindell/storyreel/internal/domain"
)

type jobResponse struct {
	ID           string    `json:"id"`
	StoryboardID string    `json:"storyboard_id"`
	Status       string    `json:"status"`
	Progress     float64   `json:"progress"`
	OutputPath   string    `json:"output_path,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toJobResponse(job *domain.ProductionJob) jobResponse {
	return jobResponse{
		ID:           job.ID,
		StoryboardID: job.StoryboardID,
		Status:       string(job.Status),
		Progress:     job.Progress,
		OutputPath:   job.OutputPath,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

// ProductionStart queues a production run for the storyboard. The job is
// accepted only while the generation service answers its health check, so a
// refusal leaves no job behind.
func (a *App) ProductionStart(w http.ResponseWriter, r *http.Request) {
	storyboardID := chi.URLParam(r, "id")
	job, err := a.Producer.Start(r.Context(), storyboardID)
	switch {
	case err == nil:
		a.json(w, http.StatusAccepted, toJobResponse(job))
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "storyboard not found")
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusUnprocessableEntity, "invalid_storyboard", err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		a.error(w, http.StatusServiceUnavailable, "generation_unavailable", "generation service is not reachable")
	default:
		a.Logger.Error().Err(err).Str("storyboard_id", storyboardID).Msg("http: production start failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue production")
	}
}

// ProductionStatus reports the job's state and progress.
func (a *App) ProductionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := a.Jobs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "production job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", id).Msg("http: production load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load production job")
		return
	}
	a.json(w, http.StatusOK, toJobResponse(job))
}

// ProductionDownload streams the rendered video of a completed job.
func (a *App) ProductionDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := a.Jobs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "production job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", id).Msg("http: production load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load production job")
		return
	}
	if job.Status != domain.JobCompleted || job.OutputPath == "" {
		a.error(w, http.StatusConflict, "not_ready", "production has not completed")
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, job.OutputPath)
}
