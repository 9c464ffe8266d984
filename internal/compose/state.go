package compose

import (
	"errors"
	"fmt"
)

// State is the composer's position in one run
type State string

const (
	StateAwaitingImages State = "AwaitingImages"
	StateAwaitingClips  State = "AwaitingClips"
	StateAwaitingAudio  State = "AwaitingAudio"
	StateComposing      State = "Composing"
	StateEncoding       State = "Encoding"
	StateDone           State = "Done"
	StateFailed         State = "Failed"
)

// FailureReason classifies why a run ended in StateFailed
type FailureReason string

const (
	// NoImagesGenerated: image generation produced an empty set
	NoImagesGenerated FailureReason = "NoImagesGenerated"
	// NoClipsGenerated: every animation attempt failed or was skipped
	NoClipsGenerated FailureReason = "NoClipsGenerated"
	// CompositionFailed: normalization, concatenation or overlay raised
	CompositionFailed FailureReason = "CompositionFailed"
	// EncodingFailed: the final encode raised
	EncodingFailed FailureReason = "EncodingFailed"
)

// RunError is the typed failure outcome of one composer run
type RunError struct {
	State  State
	Reason FailureReason
	Err    error
}

func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("run failed in %s (%s): %v", e.State, e.Reason, e.Err)
	}
	return fmt.Sprintf("run failed in %s (%s)", e.State, e.Reason)
}

func (e *RunError) Unwrap() error { return e.Err }

// ReasonOf extracts the failure reason from an error returned by Run, or ""
// when the error is not a composer failure.
func ReasonOf(err error) FailureReason {
	var re *RunError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
