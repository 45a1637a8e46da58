package engine

import (
	"errors"
	"fmt"

	"quill/internal/document"
	"quill/internal/lang"
)

var (
	// ErrNotInitialized is returned by phases and engines used before Build.
	ErrNotInitialized = errors.New("engine: used before initialization")
	// ErrAlreadyInitialized is returned when a builder or phase is initialized twice.
	ErrAlreadyInitialized = errors.New("engine: already initialized")
	// ErrNilDocument is returned when RunPhases is given no document.
	ErrNilDocument = errors.New("engine: nil code document")
)

// MissingFeatureError names a component whose required feature was never
// registered.
type MissingFeatureError struct {
	Requester string
	Feature   string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("%s requires feature %s, which is not registered", e.Requester, e.Feature)
}

// MissingArtifactError is returned when a phase runs before the phase that
// produces its input.
type MissingArtifactError = document.MissingArtifactError

// ConflictingOptionsError reports mutually exclusive options enabled together.
type ConflictingOptionsError = lang.ConflictingOptionsError

// inPhase stamps the phase name on artifact errors.
func inPhase(phase string, err error) error {
	var missing *MissingArtifactError
	if errors.As(err, &missing) {
		return &MissingArtifactError{Phase: phase, Artifact: missing.Artifact}
	}
	return err
}
