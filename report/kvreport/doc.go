// Package kvreport publishes neighborhood reports to a NATS JetStream
// key-value bucket.
//
// Each neighborhood report is stored as JSON under "<prefix>.<id>", so a
// long-running synthesis can be followed from another process by watching
// the bucket. A Publisher plugs into a run through Hook, which adapts it to
// the OnNeighborhoodBalanced callback:
//
//	pub, err := kvreport.NewPublisher(ctx, js, kvreport.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	inputs.Hooks = &popbal.Hooks[Row]{
//	    OnNeighborhoodBalanced: kvreport.Hook[Row](pub),
//	}
//
// StartProgress additionally writes the run's Progress to "progress.<prefix>"
// at a fixed interval while Run is in progress.
package kvreport
