package experiment

import "errors"

var (
	// ErrAnchorCreationFailed is matched by every *AnchorError.
	ErrAnchorCreationFailed = errors.New("anchor creation failed")

	// ErrInvalidTransition is returned when an operation is not valid in the
	// session's current phase. Hosts log it and otherwise ignore it.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNoIntersection is returned by Tap when no candidate is selectable.
	ErrNoIntersection = errors.New("no selectable object intersected")

	// ErrAnchorExists is returned by SelectPlacement once objects are placed.
	ErrAnchorExists = errors.New("anchor already exists")

	// ErrAnchorPending is returned by SelectPlacement while a request is in flight.
	ErrAnchorPending = errors.New("anchor request already in flight")

	// ErrStageOutOfRange is returned for stage indexes outside the sequence.
	ErrStageOutOfRange = errors.New("stage out of range")
)

// AnchorError reports a rejected anchor request.
type AnchorError struct {
	Cause error
}

func (e *AnchorError) Error() string {
	if e.Cause == nil {
		return "could not create anchor"
	}
	return "could not create anchor: " + e.Cause.Error()
}

func (e *AnchorError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrAnchorCreationFailed) hold for any AnchorError.
func (e *AnchorError) Is(target error) bool {
	return target == ErrAnchorCreationFailed
}
