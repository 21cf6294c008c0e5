package kvreport

import (
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Common errors for report publishing.
var (
	ErrReportNotFound   = errors.New("report not found")
	ErrStoreUnavailable = errors.New("report store unavailable")
)

var unavailable = []error{
	nats.ErrTimeout,
	nats.ErrNoServers,
	nats.ErrDisconnected,
	nats.ErrConnectionClosed,
	nats.ErrNoResponders,
	jetstream.ErrNoStreamResponse,
}

// isUnavailable reports whether err means the store could not be reached,
// as opposed to a write it rejected.
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range unavailable {
		if errors.Is(err, target) {
			return true
		}
	}
	msg := err.Error()

	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "i/o timeout")
}
