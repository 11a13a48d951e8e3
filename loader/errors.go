package loader

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/moffa90/go-sahara/protocol"
)

// AccessDeniedError indicates that the modem asked to sync a file that is not on the allow-list.
type AccessDeniedError struct {
	Filename [protocol.FilenameSize]byte
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access to requested file %q is not allowed", protocol.FilenameString(e.Filename))
}

// PeerStatusError indicates a nonzero or unknown status reported by the modem.
type PeerStatusError struct {
	// Message names the message that carried the status
	Message string

	// ImageID is the image the status refers to, when known
	ImageID uint32

	Status uint32
}

func (e *PeerStatusError) Error() string {
	return fmt.Sprintf("%s for image %d reported status %d", e.Message, e.ImageID, e.Status)
}

// TimeoutError indicates that no EFS data arrived within the chunk wait.
type TimeoutError struct {
	Wait time.Duration
	Read uint32
	Want uint32
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no data within %s: %d of %d bytes read so far", e.Wait, e.Read, e.Want)
}

// LocalIOError indicates that a local image file or the EFS sink failed.
type LocalIOError struct {
	Op  string
	Err error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LocalIOError) Unwrap() error {
	return e.Err
}

// PhaseError attaches the conversation phase to an error.
// Every error returned by Loader methods is a *PhaseError.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// inPhase wraps err in a PhaseError unless it already carries one.
func inPhase(phase Phase, err error) error {
	if err == nil {
		return nil
	}
	var pe *PhaseError
	if errors.As(err, &pe) {
		return err
	}
	return &PhaseError{Phase: phase, Err: err}
}

// ErrorPhase returns the phase recorded in err, or an empty Phase.
func ErrorPhase(err error) Phase {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return ""
}
