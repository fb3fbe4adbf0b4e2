// Package storyboardcfg defines the storyboard document schema exchanged over
// the API and persisted as JSON. The in-memory working copy is always fully
// typed; validation happens here, at the boundary, before any state mutation.
package storyboardcfg

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthurelgindell/storyreel/internal/domain"
)

// SceneDoc is the wire/storage shape of a single scene.
type SceneDoc struct {
	ID             string   `json:"id" yaml:"id"`
	Position       int      `json:"position" yaml:"position"`
	Duration       float64  `json:"duration" yaml:"duration"`
	Description    string   `json:"description" yaml:"description"`
	Keywords       []string `json:"keywords" yaml:"keywords"`
	StyleHint      string   `json:"style_hint" yaml:"style_hint"`
	TransitionIn   string   `json:"transition_in" yaml:"transition_in"`
	TransitionOut  string   `json:"transition_out" yaml:"transition_out"`
	MatchedAssetID string   `json:"matched_asset_id,omitempty" yaml:"matched_asset_id,omitempty"`
	MatchScore     float64  `json:"match_score,omitempty" yaml:"match_score,omitempty"`
	AssetSource    string   `json:"asset_source,omitempty" yaml:"asset_source,omitempty"`
	NeedsReview    bool     `json:"needs_review,omitempty" yaml:"needs_review,omitempty"`
}

// StoryboardDoc is the wire/storage shape of a storyboard.
type StoryboardDoc struct {
	Title  string     `json:"title" yaml:"title"`
	Width  int        `json:"width" yaml:"width"`
	Height int        `json:"height" yaml:"height"`
	FPS    int        `json:"fps" yaml:"fps"`
	Scenes []SceneDoc `json:"scenes" yaml:"scenes"`
}

const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	DefaultFPS    = 30
)

// DecodeJSON parses a storyboard document from JSON bytes.
func DecodeJSON(data []byte) (*StoryboardDoc, error) {
	var doc StoryboardDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return &doc, nil
}

// DecodeYAML parses a storyboard document from YAML bytes.
func DecodeYAML(data []byte) (*StoryboardDoc, error) {
	var doc StoryboardDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return &doc, nil
}

// Normalize fills in defaults the document may omit.
func (d *StoryboardDoc) Normalize() {
	if d == nil {
		return
	}
	if d.Width <= 0 {
		d.Width = DefaultWidth
	}
	if d.Height <= 0 {
		d.Height = DefaultHeight
	}
	if d.FPS <= 0 {
		d.FPS = DefaultFPS
	}
	for i := range d.Scenes {
		if d.Scenes[i].Position == 0 {
			d.Scenes[i].Position = i + 1
		}
		if d.Scenes[i].TransitionIn == "" {
			d.Scenes[i].TransitionIn = string(domain.TransitionCut)
		}
		if d.Scenes[i].TransitionOut == "" {
			d.Scenes[i].TransitionOut = string(domain.TransitionCut)
		}
	}
}

// Validate checks the document against the schema contract.
func (d StoryboardDoc) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(d.Scenes) == 0 {
		return fmt.Errorf("%w: at least one scene is required", domain.ErrValidation)
	}
	seen := make(map[int]struct{}, len(d.Scenes))
	for i, scene := range d.Scenes {
		if strings.TrimSpace(scene.Description) == "" {
			return fmt.Errorf("%w: scene %d description is required", domain.ErrValidation, i)
		}
		if scene.Duration <= 0 {
			return fmt.Errorf("%w: scene %d duration must be positive", domain.ErrValidation, i)
		}
		if _, dup := seen[scene.Position]; dup {
			return fmt.Errorf("%w: scene %d position %d is not unique", domain.ErrValidation, i, scene.Position)
		}
		seen[scene.Position] = struct{}{}
		if !domain.ValidTransition(domain.TransitionKind(scene.TransitionIn)) {
			return fmt.Errorf("%w: scene %d transition_in %q is not supported", domain.ErrValidation, i, scene.TransitionIn)
		}
		if !domain.ValidTransition(domain.TransitionKind(scene.TransitionOut)) {
			return fmt.Errorf("%w: scene %d transition_out %q is not supported", domain.ErrValidation, i, scene.TransitionOut)
		}
	}
	return nil
}

// ToDomain converts a validated document into the typed working copy.
// Scenes are ordered by position.
func (d StoryboardDoc) ToDomain(id string) *domain.Storyboard {
	sb := &domain.Storyboard{
		ID:     id,
		Title:  d.Title,
		Width:  d.Width,
		Height: d.Height,
		FPS:    d.FPS,
		Scenes: make([]domain.Scene, len(d.Scenes)),
	}
	for i, doc := range d.Scenes {
		sb.Scenes[i] = domain.Scene{
			ID:             doc.ID,
			Position:       doc.Position,
			Duration:       doc.Duration,
			Description:    doc.Description,
			Keywords:       append([]string(nil), doc.Keywords...),
			StyleHint:      doc.StyleHint,
			TransitionIn:   domain.TransitionKind(doc.TransitionIn),
			TransitionOut:  domain.TransitionKind(doc.TransitionOut),
			MatchedAssetID: doc.MatchedAssetID,
			MatchScore:     doc.MatchScore,
			AssetSource:    domain.SourceKind(doc.AssetSource),
			NeedsReview:    doc.NeedsReview,
		}
	}
	sortScenes(sb.Scenes)
	return sb
}

// FromDomain converts the typed working copy back into its storage shape.
func FromDomain(sb *domain.Storyboard) *StoryboardDoc {
	doc := &StoryboardDoc{
		Title:  sb.Title,
		Width:  sb.Width,
		Height: sb.Height,
		FPS:    sb.FPS,
		Scenes: make([]SceneDoc, len(sb.Scenes)),
	}
	for i, scene := range sb.Scenes {
		doc.Scenes[i] = SceneDoc{
			ID:             scene.ID,
			Position:       scene.Position,
			Duration:       scene.Duration,
			Description:    scene.Description,
			Keywords:       append([]string(nil), scene.Keywords...),
			StyleHint:      scene.StyleHint,
			TransitionIn:   string(scene.TransitionIn),
			TransitionOut:  string(scene.TransitionOut),
			MatchedAssetID: scene.MatchedAssetID,
			MatchScore:     scene.MatchScore,
			AssetSource:    string(scene.AssetSource),
			NeedsReview:    scene.NeedsReview,
		}
	}
	return doc
}

// MustMarshal serializes a value to JSON, panicking on failure. Only used for
// shapes this package controls.
func MustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func sortScenes(scenes []domain.Scene) {
	sort.SliceStable(scenes, func(i, j int) bool {
		return scenes[i].Position < scenes[j].Position
	})
}
