package domain

import "errors"

var (
	// ErrSourceUnavailable marks a per-source collection failure.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrClassification marks a failed sentiment classification for one post-ticker pair.
	ErrClassification = errors.New("classification failed")

	// ErrInvalidConfiguration is fatal at startup.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
