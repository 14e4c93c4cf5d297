package convention

import "github.com/driftlang/drift/internal/confidence"

// PromotionConfig tunes auto-promotion criteria.
type PromotionConfig struct {
	MinTier confidence.Tier
}

// DefaultPromotionConfig requires Established tier (spec §4.7).
func DefaultPromotionConfig() PromotionConfig {
	return PromotionConfig{MinTier: confidence.TierEstablished}
}

var tierRank = map[confidence.Tier]int{
	confidence.TierUncertain:   0,
	confidence.TierTentative:   1,
	confidence.TierEmerging:    2,
	confidence.TierEstablished: 3,
}

// CheckPromotion reports whether a Discovered convention qualifies for
// auto-promotion to Approved: current status must be Discovered, the
// confidence tier must meet or exceed the configured minimum, and the
// posterior mean must be at least 0.85 (spec §4.7).
func CheckPromotion(c Convention, cfg PromotionConfig) bool {
	if c.State != StateDiscovered {
		return false
	}
	if tierRank[c.Score.Tier] < tierRank[cfg.MinTier] {
		return false
	}
	return c.Score.PosteriorMean >= 0.85
}

// PromoteBatch applies CheckPromotion to every convention in place,
// setting State to Approved where it qualifies, and returns the count
// promoted.
func PromoteBatch(conventions []Convention, cfg PromotionConfig) int {
	promoted := 0
	for i := range conventions {
		if CheckPromotion(conventions[i], cfg) {
			conventions[i].State = StateApproved
			promoted++
		}
	}
	return promoted
}

// ExpireStale sets State to Expired for any non-terminal convention
// whose LastSeen is more than expiryDays before now (spec §4.7:
// "Expired is set when last-seen age exceeds a configured window,
// default 90 days").
func ExpireStale(conventions []Convention, now int64, expiryDays uint64) int {
	const secondsPerDay = 24 * 60 * 60
	window := int64(expiryDays) * secondsPerDay

	expired := 0
	for i := range conventions {
		c := &conventions[i]
		if c.State == StateRejected || c.State == StateExpired {
			continue
		}
		if now-c.LastSeen > window {
			c.State = StateExpired
			expired++
		}
	}
	return expired
}
