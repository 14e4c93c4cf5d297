// Package convention discovers project conventions from aggregated,
// confidence-scored patterns and tracks their promotion lifecycle (spec
// §4.7).
package convention

import "github.com/driftlang/drift/internal/confidence"

// Category classifies a discovered convention.
type Category string

const (
	CategoryUniversal       Category = "universal"
	CategoryProjectSpecific Category = "project_specific"
	CategoryEmerging        Category = "emerging"
	CategoryLegacy          Category = "legacy"
	CategoryContested       Category = "contested"
)

// Scope names where a convention applies.
type Scope string

const ScopeProject Scope = "project"

func DirectoryScope(dir string) Scope { return Scope("directory:" + dir) }
func PackageScope(pkg string) Scope   { return Scope("package:" + pkg) }

// LifecycleState is a convention's promotion status.
type LifecycleState string

const (
	StateDiscovered LifecycleState = "discovered"
	StateApproved   LifecycleState = "approved"
	StateRejected   LifecycleState = "rejected"
	StateExpired    LifecycleState = "expired"
)

// Convention is a discovered project convention, derived from one
// aggregated pattern (spec §3).
type Convention struct {
	ID             string
	PatternID      string
	Category       Category
	Scope          Scope
	Score          confidence.Score
	DominanceRatio float64
	DiscoveredAt   int64 // unix seconds
	LastSeen       int64 // unix seconds
	State          LifecycleState
}

// Config tunes discovery and promotion thresholds (spec §4.7).
type Config struct {
	MinOccurrences          uint64
	MinFiles                uint64
	DominanceThreshold      float64
	UniversalSpreadThreshold float64
	ContestedThreshold      float64
	ExpiryDays              uint64
	// PromotionMinTier is the minimum confidence tier required for
	// auto-promotion; default Established.
	PromotionMinTier confidence.Tier
}

// DefaultConfig mirrors the spec's stated defaults.
func DefaultConfig() Config {
	return Config{
		MinOccurrences:           3,
		MinFiles:                 2,
		DominanceThreshold:       0.60,
		UniversalSpreadThreshold: 0.80,
		ContestedThreshold:       0.15,
		ExpiryDays:               90,
		PromotionMinTier:         confidence.TierEstablished,
	}
}
