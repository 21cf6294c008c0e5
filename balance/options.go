package balance

import (
	"github.com/arloliu/popbal/internal/logging"
	"github.com/arloliu/popbal/types"
)

const defaultWeightLimitFactor = 1.0

// BalancerOption configures a Balancer.
type BalancerOption func(*balancerOptions)

type balancerOptions struct {
	weightLimitFactor float64
	logger            types.Logger
}

func newBalancerOptions(opts []BalancerOption) balancerOptions {
	o := balancerOptions{
		weightLimitFactor: defaultWeightLimitFactor,
		logger:            logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	return o
}

// WithWeightLimitFactor sets the ceiling factor applied to weights after every update.
//
// Weights are clipped to factor × the largest target of the balancer. A
// factor ≤ 0 disables clipping. Default: 1.0.
func WithWeightLimitFactor(factor float64) BalancerOption {
	return func(o *balancerOptions) {
		o.weightLimitFactor = factor
	}
}

// WithBalancerLogger sets the logger used for per-sweep debug diagnostics.
func WithBalancerLogger(logger types.Logger) BalancerOption {
	return func(o *balancerOptions) {
		o.logger = logger
	}
}
