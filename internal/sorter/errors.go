package sorter

import (
	"errors"
	"fmt"
)

// Kind classifies sorter failures. Values are string codes so they read well
// in logs and JSON.
type Kind string

const (
	// KindConfiguration is raised before any destination mutation and is never retried.
	KindConfiguration Kind = "CONFIGURATION_ERROR"
	// KindMetadata is recovered locally; it only appears in logs.
	KindMetadata Kind = "METADATA_ERROR"
	// KindIO aborts the current phase, leaving partially sorted state on disk.
	KindIO Kind = "IO_ERROR"
)

// Phase names a pipeline stage for error context.
type Phase string

const (
	PhasePreflight Phase = "preflight"
	PhaseRoute     Phase = "route"
	PhaseCluster   Phase = "cluster"
	PhaseBucket    Phase = "bucket"
	PhaseSplit     Phase = "split"
	PhaseCleanup   Phase = "cleanup"
	PhaseManifest  Phase = "manifest"
)

// Configuration failures. Match with errors.Is.
var (
	ErrSourceMissing         = errors.New("source directory does not exist")
	ErrInsufficientFiles     = errors.New("there are not enough files to process")
	ErrDestinationNotEmpty   = errors.New("destination directory is not empty")
	ErrDestinationInSource   = errors.New("destination directory lies inside the source")
	ErrManifestInDestination = errors.New("manifest path lies inside the destination")
	ErrRunActive             = errors.New("a sort is already running for this destination")
)

// Error carries the kind, phase and file of a failed pipeline step.
type Error struct {
	Kind  Kind
	Phase Phase
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Phase, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func configError(path string, err error) error {
	return &Error{Kind: KindConfiguration, Phase: PhasePreflight, Path: path, Err: err}
}

func ioError(phase Phase, path string, err error) error {
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Kind: KindIO, Phase: phase, Path: path, Err: err}
}

// IsConfiguration reports whether err was raised by pre-flight validation.
func IsConfiguration(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindConfiguration
}
