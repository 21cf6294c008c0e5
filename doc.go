// Package popbal synthesizes weighted populations that match control totals.
//
// popbal implements entropy-maximizing iterative proportional fitting (IPF)
// over several classification dimensions and several, possibly overlapping,
// geographic levels. Sample units (balance elements) are repeatedly rescaled
// per dimension by the ratio of target to achieved total, raised to their
// participation, until every dimension converges or its iteration budget
// runs out. The balanced weights are finally discretized into integer counts.
//
// # Quick Start
//
//	cfg := popbal.DefaultConfig()
//	synth, err := popbal.NewSynthesizer(&cfg, popbal.Inputs[Row]{
//	    Base:     blockGroups,                // geography.Geography
//	    Controls: []popbal.ControlSet[Row]{{ // one per control level
//	        Mapping:     tracts,
//	        Classifiers: []popbal.Classifier[Row]{householdSize, workers},
//	    }},
//	    Targets:  targetRows, // TargetSource[Row]
//	    Elements: seedPools,  // ElementSource[Row]
//	    Totals:   households, // TotalSource
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := synth.Run(ctx)
//	fmt.Print(result.Summary())
//
// # How a run works
//
//   - Partition: the base geography is split into neighborhoods, the
//     connected components under every control mapping. Neighborhoods share
//     no base element and are balanced independently.
//   - Per neighborhood: a representative sample is drawn per base element,
//     one balancer is built per target element of each control set, and all
//     of them are balanced together by a CompositeBalancer. An attempt that
//     does not converge is retried with a fresh sample, up to Retries+1
//     attempts; the attempt with the lowest weighted total relative error is
//     kept. The kept weights are discretized per base element.
//   - Parallelism: neighborhoods run on a fixed pool of Workers. Each one
//     owns a random stream derived from Seed and its id, so results do not
//     depend on scheduling.
//
// Non-convergence is not an error; the best attempt is kept and reported.
// A failing neighborhood (collaborator error or panic) is recorded on its
// result without affecting the others.
//
// # Packages
//
//   - balance: elements, groups, sampling, convergence bookkeeping, balancers
//   - geography: neighborhood partition
//   - discretize: integer realization of weights
//   - source: static in-memory collaborators
//   - report/kvreport: publishes neighborhood reports to NATS JetStream KV
//
// See the examples/ directory for a complete working example.
package popbal
