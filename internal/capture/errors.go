package capture

import (
	"errors"
	"fmt"
)

// OpenErrorKind classifies camera acquisition failures so the caller can
// show the right message.
type OpenErrorKind int

const (
	OpenOtherFailure OpenErrorKind = iota
	OpenPermissionDenied
	OpenDeviceNotFound
	OpenDeviceBusy
	OpenConstraintsUnsupported
)

func (k OpenErrorKind) String() string {
	switch k {
	case OpenPermissionDenied:
		return "permission-denied"
	case OpenDeviceNotFound:
		return "device-not-found"
	case OpenDeviceBusy:
		return "device-busy"
	case OpenConstraintsUnsupported:
		return "constraints-unsupported"
	default:
		return "other"
	}
}

// Message returns the user-visible message for this failure kind.
func (k OpenErrorKind) Message() string {
	switch k {
	case OpenPermissionDenied:
		return "Unable to access camera. Permission denied. Please allow camera access."
	case OpenDeviceNotFound:
		return "Unable to access camera. No camera found."
	case OpenDeviceBusy:
		return "Unable to access camera. The camera is in use by another application."
	case OpenConstraintsUnsupported:
		return "Unable to access camera. The camera does not support the requested settings."
	default:
		return "Unable to access camera."
	}
}

// OpenError is a classified camera acquisition failure.
type OpenError struct {
	Kind OpenErrorKind
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("camera open failed (%s): %v", e.Kind, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Sentinel errors a FrameSource implementation can return (possibly
// wrapped) to signal a specific failure kind.
var (
	ErrPermissionDenied       = errors.New("camera permission denied")
	ErrDeviceNotFound         = errors.New("camera device not found")
	ErrDeviceBusy             = errors.New("camera device busy")
	ErrConstraintsUnsupported = errors.New("camera constraints unsupported")
)

func classifyOpenError(err error) *OpenError {
	var openErr *OpenError
	if errors.As(err, &openErr) {
		return openErr
	}
	kind := OpenOtherFailure
	switch {
	case errors.Is(err, ErrPermissionDenied):
		kind = OpenPermissionDenied
	case errors.Is(err, ErrDeviceNotFound):
		kind = OpenDeviceNotFound
	case errors.Is(err, ErrDeviceBusy):
		kind = OpenDeviceBusy
	case errors.Is(err, ErrConstraintsUnsupported):
		kind = OpenConstraintsUnsupported
	}
	return &OpenError{Kind: kind, Err: err}
}
