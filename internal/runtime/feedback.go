package runtime

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/driftlang/drift/internal/storage"
)

// feedbackSeq disambiguates feedback IDs recorded within the same
// second against the same violation.
var feedbackSeq atomic.Uint64

// FeedbackResult reports the outcome of a feedback mutator, mirroring
// the foreign-language bridge's JsFeedbackResult shape (spec §6
// "feedback mutators").
type FeedbackResult struct {
	Success bool
	Message string
}

// DismissViolation records a dismiss action against violationID and
// marks the stored violation row suppressed (spec §6
// "dismiss_violation"). The mark lasts only until the next Violations()
// call (Gates, Audit and Check each make one), which re-evaluates from
// the stored outliers and replaces every stored violation row.
func (r *Runtime) DismissViolation(ctx context.Context, violationID string) (FeedbackResult, error) {
	if err := r.recordFeedback(ctx, violationID, "dismiss", ""); err != nil {
		return FeedbackResult{}, err
	}
	if err := r.store.Enqueue(ctx, storage.UpdateViolationSuppressed{ViolationID: violationID, Suppressed: true}); err != nil {
		return FeedbackResult{}, err
	}
	return FeedbackResult{Success: true, Message: fmt.Sprintf("violation %s dismissed", violationID)}, nil
}

// FixViolation records that violationID has been addressed. The row
// itself is left for the evaluator to drop on its own once a rescan no
// longer reproduces the underlying outlier (spec §6 "fix_violation").
func (r *Runtime) FixViolation(ctx context.Context, violationID string) (FeedbackResult, error) {
	if err := r.recordFeedback(ctx, violationID, "fix", ""); err != nil {
		return FeedbackResult{}, err
	}
	return FeedbackResult{Success: true, Message: fmt.Sprintf("violation %s marked as fixed", violationID)}, nil
}

// SuppressViolation records a suppression with reason and marks the
// stored violation row suppressed, a mark that lasts only as long as
// DismissViolation's (spec §6 "suppress_violation"). Unlike
// DismissViolation, the reason is kept in the feedback row alongside
// the violation ID.
func (r *Runtime) SuppressViolation(ctx context.Context, violationID, reason string) (FeedbackResult, error) {
	if err := r.recordFeedback(ctx, violationID, "suppress", reason); err != nil {
		return FeedbackResult{}, err
	}
	if err := r.store.Enqueue(ctx, storage.UpdateViolationSuppressed{ViolationID: violationID, Suppressed: true}); err != nil {
		return FeedbackResult{}, err
	}
	return FeedbackResult{Success: true, Message: fmt.Sprintf("violation %s suppressed: %s", violationID, reason)}, nil
}

func (r *Runtime) recordFeedback(ctx context.Context, violationID, action, reason string) error {
	id := fmt.Sprintf("%s-%s-%d", action, violationID, feedbackSeq.Add(1))
	return r.store.Enqueue(ctx, storage.InsertFeedback{
		ID:          id,
		ViolationID: violationID,
		Action:      action,
		Reason:      reason,
		CreatedAt:   time.Now().Unix(),
	})
}
