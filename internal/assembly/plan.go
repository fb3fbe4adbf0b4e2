// Package assembly turns a sequence of resolved clips plus per-scene
// transition directives into a declarative rendering plan.
package assembly

import "github.com/arthurelgindell/storyreel/internal/domain"

// TransitionDuration is the fixed overlap applied at non-cut junctions.
const TransitionDuration = 0.5

// NormalizeOp conforms one input clip to the target frame: scale to fit
// preserving aspect ratio, pad centered, conform frame rate, trim to the
// scene's duration.
type NormalizeOp struct {
	InputIndex  int
	OutputLabel string
	Width       int
	Height      int
	FPS         int
	Duration    float64
}

// JunctionOp joins two intermediate streams. A cut junction is plain
// concatenation; any other kind is a cross-transition of TransitionDuration
// starting at Offset seconds into the combined earlier stream.
type JunctionOp struct {
	Kind        domain.TransitionKind
	FirstLabel  string
	SecondLabel string
	OutputLabel string
	Offset      float64
}

// Plan is the full rendering plan consumed once by the renderer. It always
// has exactly one final output stream.
type Plan struct {
	// Inputs are local clip paths in scene sequence order.
	Inputs    []string
	Normalize []NormalizeOp
	Junctions []JunctionOp
	// Concat marks the degenerate path: all normalized inputs are joined by
	// one concatenation instead of pairwise junctions.
	Concat     bool
	FinalLabel string
	OutputPath string
	Width      int
	Height     int
	FPS        int
}
