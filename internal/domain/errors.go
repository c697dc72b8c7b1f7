package domain

import "errors"

var (
	// ErrUnavailable means the vector store could not be reached; callers
	// must distinguish it from "no matches" so the chat orchestrator can
	// degrade instead of hanging.
	ErrUnavailable = errors.New("vector store unavailable")

	// ErrRunLocked means another ingestion run holds the exclusive lock
	// for this collection.
	ErrRunLocked = errors.New("another ingestion run is in progress")

	// ErrDimensionMismatch means the collection exists with a vector size
	// different from the configured encoder's. Mixing model versions in
	// one collection invalidates similarity scores; a model change needs
	// a new collection generation.
	ErrDimensionMismatch = errors.New("collection vector dimension mismatch")
)
