package runtime

import (
	"context"

	"github.com/driftlang/drift/internal/storage"
)

// Patterns returns a keyset-paginated page of detections, optionally
// filtered by category (spec §6 "patterns(category?, after_id?,
// limit?)").
func (r *Runtime) Patterns(ctx context.Context, category, afterID string, limit int) (*storage.Page, error) {
	where := ""
	var args []any
	if category != "" {
		where = "category = ?"
		args = append(args, category)
	}
	return r.store.QueryPage(ctx, "detections", "id", where, args, afterID, limit)
}

// Confidence returns a keyset-paginated page of pattern confidence
// rows, optionally filtered by tier (spec §6 "confidence(tier?,
// after_id?, limit?)").
func (r *Runtime) Confidence(ctx context.Context, tier, afterCursor string, limit int) (*storage.Page, error) {
	where := ""
	var args []any
	if tier != "" {
		where = "tier = ?"
		args = append(args, tier)
	}
	return r.store.QueryPage(ctx, "pattern_confidence", "pattern_id", where, args, afterCursor, limit)
}

// Outliers returns a keyset-paginated page of outlier rows, optionally
// filtered by pattern ID (spec §6 "outliers(pattern_id?, after_id?,
// limit?)").
func (r *Runtime) Outliers(ctx context.Context, patternID, afterID string, limit int) (*storage.Page, error) {
	where := ""
	var args []any
	if patternID != "" {
		where = "pattern_id = ?"
		args = append(args, patternID)
	}
	return r.store.QueryPage(ctx, "outliers", "id", where, args, afterID, limit)
}

// Conventions returns a keyset-paginated page of convention rows,
// optionally filtered by category (spec §6 "conventions(category?,
// after_id?, limit?)").
func (r *Runtime) Conventions(ctx context.Context, category, afterCursor string, limit int) (*storage.Page, error) {
	where := ""
	var args []any
	if category != "" {
		where = "category = ?"
		args = append(args, category)
	}
	return r.store.QueryPage(ctx, "conventions", "pattern_id", where, args, afterCursor, limit)
}
