package render

import (
	"strings"
	"testing"

	"github.com/arthurelgindell/storyreel/internal/assembly"
	"github.com/arthurelgindell/storyreel/internal/domain"
)

func singlePlan() *assembly.Plan {
	return &assembly.Plan{
		Inputs: []string{"/clips/a.mp4"},
		Normalize: []assembly.NormalizeOp{
			{InputIndex: 0, OutputLabel: "v0", Width: 1920, Height: 1080, FPS: 30, Duration: 5},
		},
		FinalLabel: "v0",
		OutputPath: "/out/final.mp4",
		Width:      1920, Height: 1080, FPS: 30,
	}
}

func TestBuildArgsSingleInput(t *testing.T) {
	args, err := BuildArgs(singlePlan())
	if err != nil {
		t.Fatalf("build args: %v", err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-i /clips/a.mp4") {
		t.Fatalf("missing input flag in %q", joined)
	}
	if !strings.Contains(joined, "-map [v0]") {
		t.Fatalf("missing final map in %q", joined)
	}
	if strings.Contains(joined, "xfade") || strings.Contains(joined, "concat") {
		t.Fatalf("single input must not join streams: %q", joined)
	}
	if args[len(args)-1] != "/out/final.mp4" {
		t.Fatalf("output path must be the last argument, got %q", args[len(args)-1])
	}
}

func TestFilterGraphNormalization(t *testing.T) {
	filter, err := buildFilterGraph(singlePlan())
	if err != nil {
		t.Fatalf("filter graph: %v", err)
	}
	want := "[0:v]scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=30,trim=duration=5.000,setpts=PTS-STARTPTS[v0]"
	if filter != want {
		t.Fatalf("filter = %q, want %q", filter, want)
	}
}

func TestFilterGraphConcatPath(t *testing.T) {
	plan := &assembly.Plan{
		Inputs: []string{"/a.mp4", "/b.mp4", "/c.mp4"},
		Normalize: []assembly.NormalizeOp{
			{InputIndex: 0, OutputLabel: "v0", Width: 1280, Height: 720, FPS: 25, Duration: 2},
			{InputIndex: 1, OutputLabel: "v1", Width: 1280, Height: 720, FPS: 25, Duration: 3},
			{InputIndex: 2, OutputLabel: "v2", Width: 1280, Height: 720, FPS: 25, Duration: 4},
		},
		Concat:     true,
		FinalLabel: "vout",
		OutputPath: "/out.mp4",
		Width:      1280, Height: 720, FPS: 25,
	}
	filter, err := buildFilterGraph(plan)
	if err != nil {
		t.Fatalf("filter graph: %v", err)
	}
	if !strings.Contains(filter, "[v0][v1][v2]concat=n=3:v=1:a=0[vout]") {
		t.Fatalf("missing concat stage in %q", filter)
	}
}

func TestFilterGraphTransitions(t *testing.T) {
	plan := &assembly.Plan{
		Inputs: []string{"/a.mp4", "/b.mp4", "/c.mp4"},
		Normalize: []assembly.NormalizeOp{
			{InputIndex: 0, OutputLabel: "v0", Width: 1920, Height: 1080, FPS: 30, Duration: 6},
			{InputIndex: 1, OutputLabel: "v1", Width: 1920, Height: 1080, FPS: 30, Duration: 4},
			{InputIndex: 2, OutputLabel: "v2", Width: 1920, Height: 1080, FPS: 30, Duration: 5},
		},
		Junctions: []assembly.JunctionOp{
			{Kind: domain.TransitionWipe, FirstLabel: "v0", SecondLabel: "v1", OutputLabel: "j1", Offset: 5.5},
			{Kind: domain.TransitionCut, FirstLabel: "j1", SecondLabel: "v2", OutputLabel: "j2", Offset: 9.5},
		},
		FinalLabel: "j2",
		OutputPath: "/out.mp4",
		Width:      1920, Height: 1080, FPS: 30,
	}
	filter, err := buildFilterGraph(plan)
	if err != nil {
		t.Fatalf("filter graph: %v", err)
	}
	if !strings.Contains(filter, "[v0][v1]xfade=transition=wiperight:duration=0.500:offset=5.500[j1]") {
		t.Fatalf("missing wipe stage in %q", filter)
	}
	if !strings.Contains(filter, "[j1][v2]concat=n=2:v=1:a=0[j2]") {
		t.Fatalf("missing cut stage in %q", filter)
	}
}

func TestBuildArgsRejectsEmptyPlan(t *testing.T) {
	if _, err := BuildArgs(&assembly.Plan{}); err == nil {
		t.Fatal("empty plan should be rejected")
	}
}

func TestParseProbe(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "audio", "duration": "12.0"},
			{"codec_type": "video", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001", "duration": "11.97"}
		],
		"format": {"duration": "12.012"}
	}`)
	info, err := parseProbe(raw)
	if err != nil {
		t.Fatalf("parse probe: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Fatalf("dimensions = %dx%d, want 1920x1080", info.Width, info.Height)
	}
	if info.Duration != 12.012 {
		t.Fatalf("duration = %v, want 12.012", info.Duration)
	}
	if info.FPS < 29.96 || info.FPS > 29.98 {
		t.Fatalf("fps = %v, want ~29.97", info.FPS)
	}
}

func TestParseFrameRate(t *testing.T) {
	if got := parseFrameRate("25/1"); got != 25 {
		t.Fatalf("parseFrameRate(25/1) = %v", got)
	}
	if got := parseFrameRate("30"); got != 30 {
		t.Fatalf("parseFrameRate(30) = %v", got)
	}
	if got := parseFrameRate("bad/0"); got != 0 {
		t.Fatalf("parseFrameRate(bad/0) = %v", got)
	}
}
