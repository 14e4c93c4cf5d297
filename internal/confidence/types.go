// Package confidence implements the Beta-distribution posterior scorer
// over aggregated patterns: a five-factor evidence model feeds
// alpha/beta adjustments on top of a file-spread base posterior, with
// optional temporal decay and momentum tracking (spec §4.5).
package confidence

// Tier classifies a posterior mean into one of four bands (spec §4.5
// step 4).
type Tier string

const (
	TierEstablished Tier = "established"
	TierEmerging    Tier = "emerging"
	TierTentative   Tier = "tentative"
	TierUncertain   Tier = "uncertain"
)

// TierFromPosteriorMean applies the fixed thresholds: Established >=
// 0.85, Emerging >= 0.65, Tentative >= 0.40, else Uncertain.
func TierFromPosteriorMean(mean float64) Tier {
	switch {
	case mean >= 0.85:
		return TierEstablished
	case mean >= 0.65:
		return TierEmerging
	case mean >= 0.40:
		return TierTentative
	default:
		return TierUncertain
	}
}

// Momentum is the trend direction derived from a sliding observation
// window.
type Momentum string

const (
	MomentumRising  Momentum = "rising"
	MomentumStable  Momentum = "stable"
	MomentumFalling Momentum = "falling"
)

func (m Momentum) factor() float64 {
	switch m {
	case MomentumRising:
		return 0.8
	case MomentumFalling:
		return 0.2
	default:
		return 0.5
	}
}

// Interval is a credible interval [Low, High].
type Interval struct {
	Low  float64
	High float64
}

// Score is the scorer's output for one aggregated pattern.
type Score struct {
	Alpha            float64
	Beta             float64
	PosteriorMean    float64
	CredibleInterval Interval
	Tier             Tier
	Momentum         Momentum
}

// FromParams builds a Score from final alpha/beta parameters.
func FromParams(alpha, beta float64, momentum Momentum) Score {
	mean := PosteriorMean(alpha, beta)
	return Score{
		Alpha:            alpha,
		Beta:             beta,
		PosteriorMean:    mean,
		CredibleInterval: CredibleInterval(alpha, beta, 0.95),
		Tier:             TierFromPosteriorMean(mean),
		Momentum:         momentum,
	}
}
