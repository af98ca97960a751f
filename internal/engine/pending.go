package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ReachPilot/internal/metrics"
	"ReachPilot/internal/models"
)

// PendingStats summarizes one pending-email pass.
type PendingStats struct {
	Sent int `json:"sent"`
}

// ProcessPending sweeps leads whose scheduled email is due, sends it,
// and clears the pending marker together with the implied stage change
// in one write. A lead whose send fails, or whose template does not
// resolve, keeps its pending fields and is retried on the next sweep.
func (e *Engine) ProcessPending(ctx context.Context) (PendingStats, error) {
	var stats PendingStats

	due, err := e.store.ListPendingDue(ctx, e.now())
	if err != nil {
		return stats, fmt.Errorf("list pending leads: %w", err)
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		lead := due[i]
		if lead.PendingEmailType == nil || lead.PendingEmailTime == nil {
			// The store should never hand these back; skip defensively.
			e.log.Warn("due lead without pending pair", zap.String("email", lead.Email))
			continue
		}

		pt := *lead.PendingEmailType
		content, ok := e.templates.ForPendingType(pt, &lead)
		if !ok {
			e.log.Warn("no template for pending email",
				zap.String("email", lead.Email),
				zap.String("type", string(pt)),
			)
			continue
		}

		if err := e.dispatch.Send(ctx, models.Outbound{
			To:      lead.Email,
			Subject: content.Subject,
			Body:    content.Body,
		}); err != nil {
			// Pending fields stay intact; the next sweep retries.
			e.log.Error("pending send failed",
				zap.String("email", lead.Email),
				zap.String("type", string(pt)),
				zap.Error(err),
			)
			continue
		}

		stats.Sent++
		metrics.PendingSent.Inc()

		target := pt.ImpliedStage(lead.Stage)
		if _, err := e.store.UpsertLead(ctx, models.LeadPatch{
			Email:        lead.Email,
			Stage:        &target,
			ClearPending: true,
			AppendNote:   fmt.Sprintf("pending %s sent", pt),
		}); err != nil {
			e.log.Error("pending clear failed",
				zap.String("email", lead.Email),
				zap.String("type", string(pt)),
				zap.Error(err),
			)
			continue
		}
	}

	return stats, nil
}
