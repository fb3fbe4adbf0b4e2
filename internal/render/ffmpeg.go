// Package render executes assembly plans with ffmpeg. The plan is declarative;
// this package is the only place that knows ffmpeg's filter syntax.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthurelgindell/storyreel/internal/assembly"
	"github.com/arthurelgindell/storyreel/internal/domain"
)

// Renderer turns a rendering plan into an output file.
type Renderer interface {
	Render(ctx context.Context, plan *assembly.Plan) error
}

// FFmpeg is a Renderer backed by the ffmpeg binary.
type FFmpeg struct {
	binary string
	prober *Prober
	logger zerolog.Logger
}

// NewFFmpeg constructs an ffmpeg renderer. Empty binary paths use $PATH.
func NewFFmpeg(binary, probeBinary string, logger zerolog.Logger) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary, prober: NewProber(probeBinary), logger: logger}
}

// Render runs ffmpeg over the plan as one blocking call. Failure is terminal
// for the enclosing job.
func (f *FFmpeg) Render(ctx context.Context, plan *assembly.Plan) error {
	args, err := BuildArgs(plan)
	if err != nil {
		return err
	}

	f.logger.Info().
		Int("inputs", len(plan.Inputs)).
		Int("junctions", len(plan.Junctions)).
		Str("output", plan.OutputPath).
		Msg("render: starting ffmpeg")

	cmd := exec.CommandContext(ctx, f.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg: %v: %s", domain.ErrRenderFailed, err, tail(stderr.String(), 512))
	}

	if info, err := f.prober.Probe(ctx, plan.OutputPath); err == nil {
		f.logger.Info().
			Float64("duration", info.Duration).
			Int("width", info.Width).
			Int("height", info.Height).
			Str("output", plan.OutputPath).
			Msg("render: output written")
	}
	return nil
}

// BuildArgs translates a plan into the ffmpeg argument list.
func BuildArgs(plan *assembly.Plan) ([]string, error) {
	if plan == nil || len(plan.Inputs) == 0 {
		return nil, fmt.Errorf("%w: empty render plan", domain.ErrRenderFailed)
	}

	args := []string{"-y"}
	for _, input := range plan.Inputs {
		args = append(args, "-i", input)
	}

	filter, err := buildFilterGraph(plan)
	if err != nil {
		return nil, err
	}
	args = append(args,
		"-filter_complex", filter,
		"-map", "["+plan.FinalLabel+"]",
		"-r", fmt.Sprintf("%d", plan.FPS),
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-an",
		plan.OutputPath,
	)
	return args, nil
}

func buildFilterGraph(plan *assembly.Plan) (string, error) {
	var parts []string
	for _, n := range plan.Normalize {
		parts = append(parts, fmt.Sprintf(
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,trim=duration=%.3f,setpts=PTS-STARTPTS[%s]",
			n.InputIndex, n.Width, n.Height, n.Width, n.Height, n.FPS, n.Duration, n.OutputLabel,
		))
	}

	switch {
	case len(plan.Normalize) == 1:
		// Normalize-and-output: nothing to join.
	case plan.Concat:
		var b strings.Builder
		for _, n := range plan.Normalize {
			b.WriteString("[" + n.OutputLabel + "]")
		}
		fmt.Fprintf(&b, "concat=n=%d:v=1:a=0[%s]", len(plan.Normalize), plan.FinalLabel)
		parts = append(parts, b.String())
	default:
		for _, j := range plan.Junctions {
			if j.Kind == domain.TransitionCut {
				parts = append(parts, fmt.Sprintf(
					"[%s][%s]concat=n=2:v=1:a=0[%s]",
					j.FirstLabel, j.SecondLabel, j.OutputLabel,
				))
				continue
			}
			name, err := xfadeName(j.Kind)
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf(
				"[%s][%s]xfade=transition=%s:duration=%.3f:offset=%.3f[%s]",
				j.FirstLabel, j.SecondLabel, name, assembly.TransitionDuration, j.Offset, j.OutputLabel,
			))
		}
	}
	return strings.Join(parts, ";"), nil
}

func xfadeName(kind domain.TransitionKind) (string, error) {
	switch kind {
	case domain.TransitionFade:
		return "fade", nil
	case domain.TransitionDissolve:
		return "dissolve", nil
	case domain.TransitionWipe:
		return "wiperight", nil
	default:
		return "", fmt.Errorf("%w: unsupported transition %q", domain.ErrRenderFailed, kind)
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

var _ Renderer = (*FFmpeg)(nil)
