package market

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSource is returned by a live producer that has no source configured
var ErrNoSource = errors.New("no live source configured")

// Producer holds the ways of building one result.
//
// Live fetches from an external source. Fallback builds a substitute after
// Live failed. Simulated builds the result when live calls are disabled; when
// nil, Fallback is used for that case too.
type Producer[T any] struct {
	Live      func(ctx context.Context) (T, error)
	Fallback  func(err error) T
	Simulated func() T
}

// Resolve runs the producer for mode and always returns a result. A live
// error or panic is passed to onFailure (when non-nil) and replaced by the
// fallback result.
func Resolve[T any](ctx context.Context, mode Mode, p Producer[T], onFailure func(error)) T {
	if mode == ModeSimulated || p.Live == nil {
		if p.Simulated != nil {
			return p.Simulated()
		}
		return p.Fallback(nil)
	}

	v, err := runLive(ctx, p.Live)
	if err != nil {
		if onFailure != nil {
			onFailure(err)
		}
		return p.Fallback(err)
	}
	return v
}

func runLive[T any](ctx context.Context, live func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("live source panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return v, err
	}
	return live(ctx)
}
