package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrCandidateFetch    = errors.New("candidate fetch failed")
	ErrGenerationFailed  = errors.New("generation failed")
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrCatalogIngest     = errors.New("catalog ingest failed")
	ErrRenderFailed      = errors.New("render failed")
	ErrUnavailable       = errors.New("service unavailable")
)
