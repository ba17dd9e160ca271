package entities

import "errors"

// Error taxonomy for the pipeline. Build-time failures (data, index,
// embedding) are fatal and all-or-nothing; generation failures are
// recovered inside the synthesizer and never propagate.
var (
	// ErrData marks missing or malformed required source fields.
	ErrData = errors.New("data error")

	// ErrIndex marks an unreachable or corrupt vector store.
	ErrIndex = errors.New("index error")

	// ErrEmbedding marks an unavailable embedding provider.
	ErrEmbedding = errors.New("embedding error")

	// ErrGeneration marks a generation provider failure.
	ErrGeneration = errors.New("generation error")
)
