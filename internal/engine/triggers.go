package engine

import (
	"context"
	"fmt"

	"ReachPilot/internal/models"
	"ReachPilot/internal/stage"
)

// External triggers (candidate-facing site, payment provider) jump a
// lead directly to a stage through the manual transition constructors.
// They never consult the reply-transition table, and the reply path
// never calls them.

// RecordAssessment marks the website assessment as completed, stores
// the quiz score, and schedules the skill assessment offer.
func (e *Engine) RecordAssessment(ctx context.Context, email, name string, score float64) error {
	email = models.NormalizeEmail(email)
	target := stage.JumpAssessmentCompleted().Target()
	done := true

	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	_, err := e.store.UpsertLead(ctx, models.LeadPatch{
		Email:               email,
		Name:                namePtr,
		Stage:               &target,
		QuizScore:           &score,
		AssessmentCompleted: &done,
		AppendNote:          fmt.Sprintf("assessment completed, score %.1f", score),
		SetPending: &models.PendingEmail{
			Type: models.PendingSkillAssessmentOffer,
			At:   e.now().Add(e.opts.SkillOfferDelay),
		},
	})
	if err != nil {
		return fmt.Errorf("record assessment: %w", err)
	}
	return nil
}

// RecordSkillAssessment marks the skill assessment as completed and
// schedules the assessment review email.
func (e *Engine) RecordSkillAssessment(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	target := stage.JumpSkillAssessmentCompleted().Target()
	done := true

	_, err := e.store.UpsertLead(ctx, models.LeadPatch{
		Email:                    email,
		Stage:                    &target,
		SkillAssessmentCompleted: &done,
		AppendNote:               "skill assessment completed",
		SetPending: &models.PendingEmail{
			Type: models.PendingAssessmentReview,
			At:   e.now().Add(e.opts.ReviewDelay),
		},
	})
	if err != nil {
		return fmt.Errorf("record skill assessment: %w", err)
	}
	return nil
}

// RecordPayment moves a lead to the terminal paid stage and cancels
// any scheduled email.
func (e *Engine) RecordPayment(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	target := stage.JumpPaid().Target()
	status := models.PaymentCompleted

	_, err := e.store.UpsertLead(ctx, models.LeadPatch{
		Email:         email,
		Stage:         &target,
		PaymentStatus: &status,
		ClearPending:  true,
		AppendNote:    "payment completed",
	})
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

// RecordRejection schedules the rejection email. The lead drops out of
// the funnel when that email actually goes out, so the scheduler owns
// the stage change.
func (e *Engine) RecordRejection(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)

	_, err := e.store.UpsertLead(ctx, models.LeadPatch{
		Email:      email,
		AppendNote: "rejection scheduled",
		SetPending: &models.PendingEmail{
			Type: models.PendingRejection,
			At:   e.now().Add(e.opts.RejectDelay),
		},
	})
	if err != nil {
		return fmt.Errorf("record rejection: %w", err)
	}
	return nil
}

// ImportLeads seeds leads from an external list (CSV upload). Existing
// records keep their stage; new ones start at the initial stage waiting
// for their first inquiry. Returns how many rows were written.
func (e *Engine) ImportLeads(ctx context.Context, rows []models.ImportRow) (int, error) {
	imported := 0
	for _, row := range rows {
		email := models.NormalizeEmail(row.Email)
		if email == "" {
			continue
		}

		var namePtr *string
		if row.Name != "" {
			namePtr = &row.Name
		}

		if _, err := e.store.UpsertLead(ctx, models.LeadPatch{
			Email:      email,
			Name:       namePtr,
			AppendNote: "imported from list",
		}); err != nil {
			return imported, fmt.Errorf("import %s: %w", email, err)
		}
		imported++
	}
	return imported, nil
}
