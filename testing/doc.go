// Package testing provides test utilities for the popbal library.
//
// This package offers helpers for setting up test environments: an embedded
// NATS server for the KV report publisher, a logger that writes through
// testing.T, and small synthetic population fixtures. It follows Go's
// convention of providing testing utilities in a dedicated package (similar
// to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - NewJetStream, CreateJetStreamKV: JetStream context and in-memory KV buckets
//   - NewTestLogger: types.Logger backed by testing.TB
//   - NewBinaryPopulation: Elements split between two categories
//
// Example usage:
//
//	import (
//	    "testing"
//	    popbaltest "github.com/arloliu/popbal/testing"
//	)
//
//	func TestMyPublisher(t *testing.T) {
//	    _, nc := popbaltest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
