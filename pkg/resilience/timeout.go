package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/ravindradesineni/Movie-recommendation/pkg/errors"
)

// WithTimeout bounds a blocking phase such as a dataset load. fn gets a
// context that expires after limit; WithTimeout returns when fn does or
// when the limit passes, whichever is first. An expired limit is reported
// as ErrUnavailable wrapping context.DeadlineExceeded. fn may still be
// running at that point and must honour its context. limit <= 0 means no
// bound.
func WithTimeout(ctx context.Context, limit time.Duration, phase string, fn func(ctx context.Context) error) error {
	if limit <= 0 {
		return fn(ctx)
	}
	bounded, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- fn(bounded) }()

	select {
	case err := <-result:
		return err
	case <-bounded.Done():
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s abandoned: %w", phase, err)
	}
	return fmt.Errorf("%s exceeded %v: %w: %w", phase, limit, apperrors.ErrUnavailable, context.DeadlineExceeded)
}
