package confidence

import "math"

// PosteriorParams derives base Beta parameters from observed successes
// out of total trials, with a uniform prior (alpha0=beta0=1): spec §4.5
// step 1.
func PosteriorParams(successes, total uint64) (alpha, beta float64) {
	if successes > total {
		successes = total
	}
	alpha = 1 + float64(successes)
	beta = 1 + float64(total-successes)
	return alpha, beta
}

// PosteriorMean is alpha / (alpha + beta).
func PosteriorMean(alpha, beta float64) float64 {
	if alpha+beta == 0 {
		return 0
	}
	return alpha / (alpha + beta)
}

// CredibleInterval returns the equal-tailed credible interval at the
// given level (e.g. 0.95) for Beta(alpha, beta), via the quantile
// function of the Beta distribution.
func CredibleInterval(alpha, beta, level float64) Interval {
	tail := (1 - level) / 2
	return Interval{
		Low:  betaQuantile(tail, alpha, beta),
		High: betaQuantile(1-tail, alpha, beta),
	}
}

// betaQuantile inverts the regularized incomplete beta function via
// bisection. Bisection over Ix(a,b) is monotone non-decreasing in x, so
// this always converges; it is slower than Newton's method but immune
// to the derivative singularities Ix has near 0 and 1 for a,b < 1,
// which patterns with very few observations (alpha or beta close to 1)
// routinely produce.
func betaQuantile(p, a, b float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if regularizedIncompleteBeta(mid, a, b) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// regularizedIncompleteBeta computes I_x(a, b) using the continued
// fraction expansion (Numerical Recipes §6.4), the standard
// stdlib-only technique for this function absent a statistics library.
func regularizedIncompleteBeta(x, a, b float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lbeta := lgammaSum(a, b)
	front := math.Exp(lbeta + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(x, a, b) / a
	}
	return 1 - front*betaContinuedFraction(1-x, b, a)/b
}

func lgammaSum(a, b float64) float64 {
	lgA, _ := math.Lgamma(a)
	lgB, _ := math.Lgamma(b)
	lgAB, _ := math.Lgamma(a + b)
	return lgAB - lgA - lgB
}

// betaContinuedFraction evaluates the Lentz continued fraction used by
// the incomplete beta function.
func betaContinuedFraction(x, a, b float64) float64 {
	const maxIter = 200
	const eps = 1e-12
	const tiny = 1e-300

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		m2 := float64(2 * m)

		aa := float64(m) * (b - float64(m)) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + float64(m)) * (qab + float64(m)) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
