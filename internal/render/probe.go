package render

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// MediaInfo summarizes the stream properties of a media file.
type MediaInfo struct {
	Width    int
	Height   int
	Duration float64
	FPS      float64
}

// Prober measures media files with ffprobe.
type Prober struct {
	binary string
}

// NewProber constructs a prober. An empty binary path uses $PATH.
func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Probe returns the first video stream's dimensions, frame rate and the
// container duration.
func (p *Prober) Probe(ctx context.Context, path string) (MediaInfo, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return MediaInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe(out)
}

func parseProbe(data []byte) (MediaInfo, error) {
	if !gjson.ValidBytes(data) {
		return MediaInfo{}, fmt.Errorf("ffprobe: invalid json output")
	}
	doc := gjson.ParseBytes(data)

	var info MediaInfo
	stream := doc.Get(`streams.#(codec_type=="video")`)
	if stream.Exists() {
		info.Width = int(stream.Get("width").Int())
		info.Height = int(stream.Get("height").Int())
		info.FPS = parseFrameRate(stream.Get("r_frame_rate").String())
	}
	info.Duration = doc.Get("format.duration").Float()
	if info.Duration == 0 && stream.Exists() {
		info.Duration = stream.Get("duration").Float()
	}
	return info, nil
}

// parseFrameRate converts ffprobe's rational "30000/1001" notation.
func parseFrameRate(raw string) float64 {
	num, den, ok := strings.Cut(raw, "/")
	if !ok {
		v, _ := strconv.ParseFloat(raw, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
