// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled reports whether the context has been canceled or passed its
// deadline, returning the context error if so and nil otherwise. The repair
// loop calls this at every iteration boundary so cancellation is cooperative
// and never observed mid-classification.
//
// ctx.Err() already returns nil while the context is live, so no select is
// needed.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
