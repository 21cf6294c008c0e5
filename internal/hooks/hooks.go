// Package hooks runs user-supplied callbacks at task boundaries.
package hooks

import (
	"context"
	"fmt"

	"github.com/arloliu/popbal/types"
)

// Call invokes a user hook and converts a panic into an error.
//
// A nil fn is a no-op. Hook errors never fail the surrounding operation;
// they are logged here and returned so callers can forward them.
//
// Parameters:
//   - ctx: Context handed to the hook
//   - logger: Logger for hook failures
//   - name: Hook name used in log messages (e.g., "OnNeighborhoodBalanced")
//   - fn: Hook invocation
//
// Returns:
//   - error: The hook's error, or a panic converted to an error
func Call(ctx context.Context, logger types.Logger, name string, fn func(context.Context) error) (err error) {
	if fn == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook %s panicked: %v", name, r)
		}
		if err != nil {
			logger.Error("hook failed", "hook", name, "error", err)
		}
	}()

	return fn(ctx)
}
