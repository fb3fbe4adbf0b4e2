package assembly

import (
	"fmt"

	"github.com/arthurelgindell/storyreel/internal/domain"
)

// Planner builds rendering plans. It is stateless; one Plan call per
// production job.
type Planner struct{}

// NewPlanner constructs a planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// BuildPlan assembles the rendering plan for the resolved clips. resolved and
// scenes are parallel slices in scene sequence order.
func (p *Planner) BuildPlan(resolved []domain.ResolvedAsset, scenes []domain.Scene, width, height, fps int, outputPath string) (*Plan, error) {
	if len(resolved) == 0 {
		return nil, fmt.Errorf("%w: no resolved clips to assemble", domain.ErrValidation)
	}
	if len(resolved) != len(scenes) {
		return nil, fmt.Errorf("%w: %d resolved clips for %d scenes", domain.ErrValidation, len(resolved), len(scenes))
	}

	plan := &Plan{
		Inputs:     make([]string, len(resolved)),
		Normalize:  make([]NormalizeOp, len(resolved)),
		OutputPath: outputPath,
		Width:      width,
		Height:     height,
		FPS:        fps,
	}
	for i, clip := range resolved {
		plan.Inputs[i] = clip.LocalPath
		plan.Normalize[i] = NormalizeOp{
			InputIndex:  i,
			OutputLabel: fmt.Sprintf("v%d", i),
			Width:       width,
			Height:      height,
			FPS:         fps,
			Duration:    scenes[i].Duration,
		}
	}

	if len(resolved) == 1 {
		plan.FinalLabel = plan.Normalize[0].OutputLabel
		return plan, nil
	}

	if !hasTransitions(scenes) {
		plan.Concat = true
		plan.FinalLabel = "vout"
		return plan, nil
	}

	buildJunctions(plan, scenes)
	if !chainTerminates(plan) {
		// Safe default: a concatenation of every normalized input is always
		// a valid plan.
		plan.Junctions = nil
		plan.Concat = true
		plan.FinalLabel = "vout"
	}
	return plan, nil
}

// hasTransitions reports whether any junction in the sequence is non-cut.
// The transitionOut of the final scene has no junction to consume it.
func hasTransitions(scenes []domain.Scene) bool {
	for i := 0; i < len(scenes)-1; i++ {
		if scenes[i].TransitionOut != domain.TransitionCut && scenes[i].TransitionOut != "" {
			return true
		}
	}
	return false
}

// buildJunctions chains the clips pairwise. Each junction consumes the
// transitionOut of the earlier scene. Offsets accumulate the full duration of
// every prior scene minus the overlap consumed by every prior transition, not
// just the immediately preceding one.
func buildJunctions(plan *Plan, scenes []domain.Scene) {
	current := plan.Normalize[0].OutputLabel
	elapsed := 0.0
	overlapped := 0.0
	for i := 1; i < len(scenes); i++ {
		kind := scenes[i-1].TransitionOut
		if kind == "" {
			kind = domain.TransitionCut
		}
		elapsed += scenes[i-1].Duration
		offset := elapsed - overlapped
		if kind != domain.TransitionCut {
			offset -= TransitionDuration
			overlapped += TransitionDuration
		}
		out := fmt.Sprintf("j%d", i)
		plan.Junctions = append(plan.Junctions, JunctionOp{
			Kind:        kind,
			FirstLabel:  current,
			SecondLabel: plan.Normalize[i].OutputLabel,
			OutputLabel: out,
			Offset:      offset,
		})
		current = out
	}
	plan.FinalLabel = current
}

// chainTerminates verifies the junction chain consumes every normalized
// stream exactly once and ends in a single labeled output.
func chainTerminates(plan *Plan) bool {
	if len(plan.Junctions) != len(plan.Normalize)-1 {
		return false
	}
	consumed := map[string]bool{}
	current := plan.Normalize[0].OutputLabel
	consumed[current] = true
	for i, j := range plan.Junctions {
		if j.FirstLabel != current {
			return false
		}
		if consumed[j.SecondLabel] {
			return false
		}
		consumed[j.SecondLabel] = true
		current = j.OutputLabel
		if i == len(plan.Junctions)-1 && current != plan.FinalLabel {
			return false
		}
	}
	for _, n := range plan.Normalize {
		if !consumed[n.OutputLabel] {
			return false
		}
	}
	return plan.FinalLabel != ""
}
