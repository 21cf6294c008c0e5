// Package heartbeat periodically writes a snapshot value to a NATS KV key.
//
// A Publisher calls a snapshot function on every tick and stores the result
// under one key, so another process can follow a long-running job by reading
// or watching that key. Stop writes one last snapshot, leaving the final
// state in the bucket.
//
// Example:
//
//	publisher := heartbeat.New(kv, "progress.neighborhood", time.Second, func() ([]byte, error) {
//	    return json.Marshal(synth.Progress())
//	})
//	if err := publisher.Start(ctx); err != nil {
//	    return err
//	}
//	defer publisher.Stop()
//
// The Publisher is safe for concurrent use.
package heartbeat
