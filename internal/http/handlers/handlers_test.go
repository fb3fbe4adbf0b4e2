package handlers_test

import (
	archivezip "archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/http/handlers"
	"github.com/arthurelgindell/storyreel/internal/http/httpapi"
	"github.com/arthurelgindell/storyreel/internal/production"
	"github.com/arthurelgindell/storyreel/internal/providers/videogen"
)

type memStoryboards struct {
	boards map[string]*domain.Storyboard
}

func (m *memStoryboards) Create(_ context.Context, sb *domain.Storyboard) error {
	m.boards[sb.ID] = sb
	return nil
}

func (m *memStoryboards) GetByID(_ context.Context, id string) (*domain.Storyboard, error) {
	sb, ok := m.boards[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sb, nil
}

func (m *memStoryboards) UpdateScenes(_ context.Context, sb *domain.Storyboard) error {
	if _, ok := m.boards[sb.ID]; !ok {
		return domain.ErrNotFound
	}
	m.boards[sb.ID] = sb
	return nil
}

type memJobs struct {
	jobs map[string]*domain.ProductionJob
}

func (m *memJobs) Create(_ context.Context, job *domain.ProductionJob) error {
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobs) GetByID(_ context.Context, id string) (*domain.ProductionJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

func (m *memJobs) Update(_ context.Context, job *domain.ProductionJob) error {
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobs) ClaimQueued(context.Context) (*domain.ProductionJob, error) {
	return nil, domain.ErrNotFound
}

type memMatches struct {
	saved []domain.ResolvedAsset
}

func (m *memMatches) Save(_ context.Context, _ string, res *domain.ResolvedAsset) error {
	m.saved = append(m.saved, *res)
	return nil
}

func (m *memMatches) ListByStoryboard(context.Context, string) ([]domain.ResolvedAsset, error) {
	return m.saved, nil
}

type stubGen struct {
	healthErr error
}

func (s *stubGen) Submit(context.Context, videogen.Request) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubGen) Status(context.Context, string) (videogen.JobStatus, error) {
	return videogen.JobStatus{}, errors.New("not implemented")
}

func (s *stubGen) Download(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *stubGen) Healthy(context.Context) error { return s.healthErr }

type apiHarness struct {
	handler http.Handler
	boards  *memStoryboards
	jobs    *memJobs
	matches *memMatches
	gen     *stubGen
}

func newAPI(t *testing.T) *apiHarness {
	t.Helper()
	boards := &memStoryboards{boards: map[string]*domain.Storyboard{}}
	jobs := &memJobs{jobs: map[string]*domain.ProductionJob{}}
	matches := &memMatches{}
	gen := &stubGen{}

	producer := production.NewProducer(production.Options{
		Storyboards: boards,
		Jobs:        jobs,
		Matches:     matches,
		Gen:         gen,
		Logger:      zerolog.Nop(),
	})
	app := &handlers.App{
		Storyboards: boards,
		Jobs:        jobs,
		Matches:     matches,
		Producer:    producer,
		Gen:         gen,
		Logger:      zerolog.Nop(),
	}
	handler := httpapi.NewRouter(app, httpapi.RouterOptions{Logger: zerolog.Nop()})
	return &apiHarness{handler: handler, boards: boards, jobs: jobs, matches: matches, gen: gen}
}

func (h *apiHarness) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	return rr
}

const storyboardJSON = `{
	"title": "product teaser",
	"scenes": [
		{"description": "sunrise over the city", "duration": 4, "keywords": ["city", "sunrise"]},
		{"description": "office interior", "duration": 3, "transition_in": "fade"}
	]
}`

func TestStoryboardCreateAppliesDefaults(t *testing.T) {
	h := newAPI(t)
	rr := h.do("POST", "/v1/storyboards", "application/json", storyboardJSON)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	var resp struct {
		ID     string `json:"id"`
		Width  int    `json:"width"`
		FPS    int    `json:"fps"`
		Scenes []struct {
			ID            string `json:"id"`
			Position      int    `json:"position"`
			TransitionIn  string `json:"transition_in"`
			TransitionOut string `json:"transition_out"`
		} `json:"scenes"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Width != 1920 || resp.FPS != 30 {
		t.Fatalf("defaults not applied: %+v", resp)
	}
	if len(resp.Scenes) != 2 {
		t.Fatalf("scenes = %d", len(resp.Scenes))
	}
	for i, scene := range resp.Scenes {
		if scene.ID == "" {
			t.Fatalf("scene %d has no id", i)
		}
		if scene.Position != i+1 {
			t.Fatalf("scene %d position = %d", i, scene.Position)
		}
	}
	if resp.Scenes[0].TransitionOut != "cut" || resp.Scenes[1].TransitionIn != "fade" {
		t.Fatalf("transitions mangled: %+v", resp.Scenes)
	}
	if _, ok := h.boards.boards[resp.ID]; !ok {
		t.Fatal("storyboard not persisted")
	}
}

func TestStoryboardCreateYAML(t *testing.T) {
	h := newAPI(t)
	body := "title: yaml board\nscenes:\n  - description: a quiet lake\n    duration: 5\n"
	rr := h.do("POST", "/v1/storyboards", "application/yaml", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
}

func TestStoryboardCreateRejectsMissingTitle(t *testing.T) {
	h := newAPI(t)
	rr := h.do("POST", "/v1/storyboards", "application/json", `{"scenes":[{"description":"x","duration":1}]}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestStoryboardCreateRejectsBadTransition(t *testing.T) {
	h := newAPI(t)
	body := `{"title":"t","scenes":[{"description":"x","duration":1,"transition_out":"sparkle"}]}`
	rr := h.do("POST", "/v1/storyboards", "application/json", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestProductionStartAccepted(t *testing.T) {
	h := newAPI(t)
	created := h.do("POST", "/v1/storyboards", "application/json", storyboardJSON)
	var sb struct {
		ID string `json:"id"`
	}
	_ = json.NewDecoder(created.Body).Decode(&sb)

	rr := h.do("POST", "/v1/storyboards/"+sb.ID+"/productions", "application/json", "")
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.Status != "pending" {
		t.Fatalf("status = %s, want pending", job.Status)
	}
	if _, ok := h.jobs.jobs[job.ID]; !ok {
		t.Fatal("job not persisted")
	}
}

func TestProductionStartRefusedWhenGeneratorDown(t *testing.T) {
	h := newAPI(t)
	created := h.do("POST", "/v1/storyboards", "application/json", storyboardJSON)
	var sb struct {
		ID string `json:"id"`
	}
	_ = json.NewDecoder(created.Body).Decode(&sb)

	h.gen.healthErr = errors.New("dial tcp: connection refused")
	rr := h.do("POST", "/v1/storyboards/"+sb.ID+"/productions", "application/json", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if len(h.jobs.jobs) != 0 {
		t.Fatal("refused start must not create a job")
	}
}

func TestProductionStartUnknownStoryboard(t *testing.T) {
	h := newAPI(t)
	rr := h.do("POST", "/v1/storyboards/nope/productions", "application/json", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestProductionDownloadNotReady(t *testing.T) {
	h := newAPI(t)
	h.jobs.jobs["job-1"] = &domain.ProductionJob{ID: "job-1", Status: domain.JobMatching}

	rr := h.do("GET", "/v1/productions/job-1/download", "", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}

func TestSceneResolveManualOverride(t *testing.T) {
	h := newAPI(t)
	created := h.do("POST", "/v1/storyboards", "application/json", storyboardJSON)
	var sb struct {
		ID     string `json:"id"`
		Scenes []struct {
			ID string `json:"id"`
		} `json:"scenes"`
	}
	_ = json.NewDecoder(created.Body).Decode(&sb)
	sceneID := sb.Scenes[0].ID

	body := `{"asset_id":"lib-42","local_path":"/assets/lib-42.mp4"}`
	rr := h.do("POST", "/v1/storyboards/"+sb.ID+"/scenes/"+sceneID+"/resolution", "application/json", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	var resp struct {
		Source     string  `json:"source"`
		Confidence float64 `json:"confidence"`
		Review     bool    `json:"needs_review"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Source != "manual" || resp.Confidence != 1.0 || resp.Review {
		t.Fatalf("unexpected resolution: %+v", resp)
	}

	scene := h.boards.boards[sb.ID].SceneByID(sceneID)
	if scene.MatchedAssetID != "lib-42" || scene.AssetSource != domain.SourceManual {
		t.Fatalf("scene not updated: %+v", scene)
	}
	if len(h.matches.saved) != 1 {
		t.Fatalf("match history = %d, want 1", len(h.matches.saved))
	}
}

func TestSceneResolveRequiresFields(t *testing.T) {
	h := newAPI(t)
	created := h.do("POST", "/v1/storyboards", "application/json", storyboardJSON)
	var sb struct {
		ID     string `json:"id"`
		Scenes []struct {
			ID string `json:"id"`
		} `json:"scenes"`
	}
	_ = json.NewDecoder(created.Body).Decode(&sb)

	rr := h.do("POST", "/v1/storyboards/"+sb.ID+"/scenes/"+sb.Scenes[0].ID+"/resolution", "application/json", `{"asset_id":""}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestHealthReportsGeneration(t *testing.T) {
	h := newAPI(t)
	h.gen.healthErr = errors.New("timeout")

	rr := h.do("GET", "/v1/healthz", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp["status"] != "ok" || resp["generation"] != "unreachable" {
		t.Fatalf("unexpected health payload: %v", resp)
	}
}

func TestClipsDownloadBundlesResolvedScenes(t *testing.T) {
	h := newAPI(t)
	created := h.do("POST", "/v1/storyboards", "application/json", storyboardJSON)
	var sb struct {
		ID     string `json:"id"`
		Scenes []struct {
			ID string `json:"id"`
		} `json:"scenes"`
	}
	_ = json.NewDecoder(created.Body).Decode(&sb)

	clipPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(clipPath, []byte("fake mp4 payload"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	body := `{"asset_id":"lib-1","local_path":"` + clipPath + `"}`
	if rr := h.do("POST", "/v1/storyboards/"+sb.ID+"/scenes/"+sb.Scenes[0].ID+"/resolution", "application/json", body); rr.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", rr.Code)
	}

	rr := h.do("GET", "/v1/storyboards/"+sb.ID+"/clips", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %s", ct)
	}
	zr, err := archivezip.NewReader(bytes.NewReader(rr.Body.Bytes()), int64(rr.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("archive entries = %d, want 1 resolved scene", len(zr.File))
	}
}

func TestClipsDownloadEmpty(t *testing.T) {
	h := newAPI(t)
	created := h.do("POST", "/v1/storyboards", "application/json", storyboardJSON)
	var sb struct {
		ID string `json:"id"`
	}
	_ = json.NewDecoder(created.Body).Decode(&sb)

	rr := h.do("GET", "/v1/storyboards/"+sb.ID+"/clips", "", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}
