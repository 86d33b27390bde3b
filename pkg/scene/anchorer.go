package scene

import (
	"context"
	"errors"
	"sync"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/google/uuid"
)

// ErrTrackingLost is what the simulated anchorer reports when told to fail.
var ErrTrackingLost = errors.New("tracking lost")

// Anchorer creates anchors exactly where asked. FailNext makes the following
// request fail once, to exercise the failure path.
type Anchorer struct {
	mu       sync.Mutex
	failNext bool
	created  int
}

// NewAnchorer returns a simulated anchorer.
func NewAnchorer() *Anchorer {
	return &Anchorer{}
}

// FailNext arms or disarms a one-shot failure.
func (a *Anchorer) FailNext(fail bool) {
	a.mu.Lock()
	a.failNext = fail
	a.mu.Unlock()
}

// Armed reports whether the next request will fail.
func (a *Anchorer) Armed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failNext
}

// Created returns the number of anchors handed out.
func (a *Anchorer) Created() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.created
}

// CreateAnchor implements experiment.Anchorer.
func (a *Anchorer) CreateAnchor(ctx context.Context, pose experiment.Pose) (experiment.Anchor, error) {
	if err := ctx.Err(); err != nil {
		return experiment.Anchor{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failNext {
		a.failNext = false
		return experiment.Anchor{}, ErrTrackingLost
	}
	a.created++
	return experiment.Anchor{ID: uuid.New().String(), Pose: pose}, nil
}
