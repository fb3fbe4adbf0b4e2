package scoring

// Config carries the matching weights and thresholds. It is constructed once
// at process start and passed explicitly into the engine and orchestrator;
// there is no ambient global lookup. Weights must sum to 1.0.
type Config struct {
	SemanticWeight float64
	StyleWeight    float64
	UseCaseWeight  float64
	QualityWeight  float64
	DurationWeight float64

	// SemanticFloor drops candidates before full scoring.
	SemanticFloor float64
	// CompositeFloor is the minimum composite for an acceptable match.
	CompositeFloor float64
	// ExcellentMatch is the composite above which no human review is needed.
	ExcellentMatch float64
}

// DefaultConfig returns the static production weights and thresholds.
func DefaultConfig() Config {
	return Config{
		SemanticWeight: 0.50,
		StyleWeight:    0.20,
		UseCaseWeight:  0.15,
		QualityWeight:  0.10,
		DurationWeight: 0.05,
		SemanticFloor:  0.72,
		CompositeFloor: 0.78,
		ExcellentMatch: 0.90,
	}
}
