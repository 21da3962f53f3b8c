package controller

import "errors"

// Sentinel errors for controller operations.
var (
	// ErrUnknownCoverType indicates a cover config with an unrecognised type.
	ErrUnknownCoverType = errors.New("controller: unknown cover type")

	// ErrNoCovers indicates the configuration defines no covers.
	ErrNoCovers = errors.New("controller: no covers configured")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("controller: already started")

	// ErrUnknownCover indicates a state report for a cover not in the config.
	ErrUnknownCover = errors.New("controller: unknown cover")
)
