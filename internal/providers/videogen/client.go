// Package videogen is a typed HTTP client for the video generation service.
// Generation is asynchronous: a submitted request yields a job id which is
// polled until the service reports a terminal state.
package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// JobState enumerates the generation service's job states.
type JobState string

const (
	StatePending    JobState = "pending"
	StateProcessing JobState = "processing"
	StateCompleted  JobState = "completed"
	StateFailed     JobState = "failed"
)

// Request carries one text-to-video generation request.
type Request struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Seed           int64   `json:"seed"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	NumFrames      int     `json:"num_frames"`
	FrameRate      float64 `json:"frame_rate"`
	Steps          int     `json:"num_inference_steps"`
	GuidanceScale  float64 `json:"cfg_guidance_scale"`
}

// JobStatus is the service's view of a generation job.
type JobStatus struct {
	JobID     string   `json:"job_id"`
	Status    JobState `json:"status"`
	OutputURL string   `json:"output_url,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Generator is the surface the orchestrator depends on.
type Generator interface {
	Submit(ctx context.Context, req Request) (string, error)
	Status(ctx context.Context, jobID string) (JobStatus, error)
	Download(ctx context.Context, jobID string) ([]byte, error)
	Healthy(ctx context.Context) error
}

// Service defaults mirroring the generation server's model limits.
const (
	DefaultWidth    = 768
	DefaultHeight   = 512
	DefaultFPS      = 25.0
	DefaultSteps    = 40
	DefaultGuidance = 3.0
	MaxFrames       = 241
)

// Options controls how the generation client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the generation service over REST.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a generation client. A nil HTTP client gets a reusable
// one whose timeout covers the slow submission path.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// Submit enqueues a generation request and returns the service's job id.
func (c *Client) Submit(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/text-to-video", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("videogen: submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("videogen: submit: %s", readError(resp))
	}
	var status JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("videogen: submit: decode: %w", err)
	}
	if status.JobID == "" {
		return "", fmt.Errorf("videogen: submit: missing job id")
	}
	return status.JobID, nil
}

// Status fetches the current state of a generation job.
func (c *Client) Status(ctx context.Context, jobID string) (JobStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/status/"+url.PathEscape(jobID), nil)
	if err != nil {
		return JobStatus{}, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return JobStatus{}, fmt.Errorf("videogen: status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return JobStatus{}, fmt.Errorf("videogen: status: %s", readError(resp))
	}
	var status JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return JobStatus{}, fmt.Errorf("videogen: status: decode: %w", err)
	}
	return status, nil
}

// Download fetches the finished clip for a completed job.
func (c *Client) Download(ctx context.Context, jobID string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/download/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("videogen: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("videogen: download: %s", readError(resp))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("videogen: download: read: %w", err)
	}
	return data, nil
}

// Healthy probes the service's health endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("videogen: health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("videogen: health: status %d", resp.StatusCode)
	}
	return nil
}

func readError(resp *http.Response) string {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	text := strings.TrimSpace(string(msg))
	if text == "" {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, text)
}

var _ Generator = (*Client)(nil)
