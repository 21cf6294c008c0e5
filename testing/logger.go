package testing

import (
	"testing"

	"github.com/arloliu/popbal/internal/logging"
	"github.com/arloliu/popbal/types"
)

// NewTestLogger creates a logger that writes to the test log.
// This is useful for seeing balancer and synthesizer output during test runs.
func NewTestLogger(t testing.TB) types.Logger {
	return logging.NewTest(t)
}
