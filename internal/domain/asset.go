package domain

// MediaKind enumerates asset media types in the catalog.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
)

// CandidateAsset is a read-only snapshot of a catalog record returned by the
// search collaborator. It is never persisted by this service.
type CandidateAsset struct {
	ID        string
	Path      string
	Embedding []float32
	Tags      []string
	Style     string
	UseCase   string
	Kind      MediaKind
	Width     int
	Height    int
	Duration  float64
	FPS       float64
}

// ResolvedAsset binds a scene to a concrete local clip. Produced once per
// scene during orchestration and immutable afterwards.
type ResolvedAsset struct {
	SceneID    string
	AssetID    string
	LocalPath  string
	Source     SourceKind
	Confidence float64
	Review     bool
}

// GeneratedAssetRecord describes a freshly generated clip submitted for
// catalog ingestion.
type GeneratedAssetRecord struct {
	ID         string
	SceneID    string
	StorageKey string
	Width      int
	Height     int
	Duration   float64
	FPS        float64
	Prompt     string
}
