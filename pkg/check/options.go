package check

import "fmt"

// LagConvention selects which time difference the lag window bounds
type LagConvention int

const (
	EndToStart   LagConvention = iota // s_j - c_i
	StartToStart                      // s_j - s_i
)

const (
	DefaultTolerance    = 1e-4
	DefaultRoundingBand = 0.5
)

type options struct {
	tolerance     float64
	roundingBand  float64
	lagConvention LagConvention
	strictSetups  bool
}

type Option func(*options)

// WithTolerance sets the slack allowed before a constraint counts as violated
func WithTolerance(tolerance float64) Option {
	if tolerance < 0 {
		panic(fmt.Sprintf("tolerance must be non-negative: %v", tolerance))
	}
	return func(o *options) { o.tolerance = tolerance }
}

// WithRoundingBand sets the largest margin still classified as a numeric near miss
func WithRoundingBand(band float64) Option {
	if band < 0 {
		panic(fmt.Sprintf("rounding band must be non-negative: %v", band))
	}
	return func(o *options) { o.roundingBand = band }
}

func WithLagConvention(convention LagConvention) Option {
	return func(o *options) { o.lagConvention = convention }
}

// WithStrictSetups flags immediate successions on a machine that has no setup defined for the pair
func WithStrictSetups() Option {
	return func(o *options) { o.strictSetups = true }
}

func gatherOptions(opts []Option) options {
	gathered := options{
		tolerance:     DefaultTolerance,
		roundingBand:  DefaultRoundingBand,
		lagConvention: EndToStart,
	}
	for _, opt := range opts {
		opt(&gathered)
	}
	return gathered
}
