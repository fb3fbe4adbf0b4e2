package domain

// TransitionKind enumerates supported junction styles between adjacent scenes.
type TransitionKind string

const (
	TransitionCut      TransitionKind = "cut"
	TransitionFade     TransitionKind = "fade"
	TransitionDissolve TransitionKind = "dissolve"
	TransitionWipe     TransitionKind = "wipe"
)

var allowedTransitions = map[TransitionKind]struct{}{
	TransitionCut:      {},
	TransitionFade:     {},
	TransitionDissolve: {},
	TransitionWipe:     {},
}

// ValidTransition reports whether the kind is one of the supported transitions.
func ValidTransition(kind TransitionKind) bool {
	_, ok := allowedTransitions[kind]
	return ok
}

// SourceKind identifies how a scene's clip was obtained.
type SourceKind string

const (
	SourceExisting  SourceKind = "existing"
	SourceGenerated SourceKind = "generated"
	SourceManual    SourceKind = "manual"
)

// Scene is one timed unit of a storyboard requiring exactly one resolved clip.
// Position is unique within a storyboard and defines assembly order.
type Scene struct {
	ID            string
	Position      int
	Duration      float64
	Description   string
	Keywords      []string
	StyleHint     string
	TransitionIn  TransitionKind
	TransitionOut TransitionKind

	// Resolution fields, mutated only by the resolution step.
	MatchedAssetID string
	MatchScore     float64
	AssetSource    SourceKind
	NeedsReview    bool
}

// Resolved reports whether the scene already carries a resolution.
func (s *Scene) Resolved() bool {
	return s.AssetSource != ""
}

// Storyboard owns an ordered sequence of scenes plus the output target. Scene
// count and order are fixed after creation; only per-scene resolution fields
// change afterwards.
type Storyboard struct {
	ID     string
	Title  string
	Scenes []Scene
	Width  int
	Height int
	FPS    int
}

// SceneByID returns a pointer into the storyboard's scene slice, or nil.
func (sb *Storyboard) SceneByID(sceneID string) *Scene {
	for i := range sb.Scenes {
		if sb.Scenes[i].ID == sceneID {
			return &sb.Scenes[i]
		}
	}
	return nil
}
