package models

import (
	"strings"
	"time"

	"ReachPilot/internal/stage"
)

// PendingEmailType names a delayed send attached to a lead. Type and
// send time are always set and cleared together.
type PendingEmailType string

const (
	PendingAssessmentOffer      PendingEmailType = "assessment_offer"
	PendingSkillAssessmentOffer PendingEmailType = "skill_assessment_offer"
	PendingAssessmentReview     PendingEmailType = "assessment_review"
	PendingRejection            PendingEmailType = "rejection"
)

func ParsePendingEmailType(raw string) (PendingEmailType, bool) {
	t := PendingEmailType(raw)
	switch t {
	case PendingAssessmentOffer, PendingSkillAssessmentOffer,
		PendingAssessmentReview, PendingRejection:
		return t, true
	}
	return "", false
}

// ImpliedStage is the stage a lead lands in once the pending email of
// this type has actually been sent. skill_assessment_offer leaves the
// stage where it is.
func (t PendingEmailType) ImpliedStage(current stage.Stage) stage.Stage {
	switch t {
	case PendingAssessmentOffer:
		return stage.AssessmentCompleted
	case PendingAssessmentReview:
		return stage.SoftPitchSent
	case PendingRejection:
		return stage.Dropped
	}
	return current
}

// PaymentCompleted is the payment_status value that makes a lead
// terminal regardless of its stage.
const PaymentCompleted = "completed"

// Lead is one tracked candidate, keyed by lowercased email.
type Lead struct {
	Email          string      `json:"email"`
	Name           string      `json:"name,omitempty"`
	Stage          stage.Stage `json:"stage"`
	FirstContactAt time.Time   `json:"first_contact_at"`
	LastContactAt  time.Time   `json:"last_contact_at"`

	QuizScore     *float64 `json:"quiz_score,omitempty"`
	PaymentStatus string   `json:"payment_status"`

	// Notes is an append-only log; every write adds a timestamped line.
	Notes string `json:"notes,omitempty"`

	// Sticky flags: once true they stay true across upserts.
	AssessmentCompleted      bool `json:"assessment_completed"`
	SkillAssessmentCompleted bool `json:"skill_assessment_completed"`

	PendingEmailType *PendingEmailType `json:"pending_email_type,omitempty"`
	PendingEmailTime *time.Time        `json:"pending_email_time,omitempty"`
}

// Terminal reports whether the lead must never receive another
// engine-driven email.
func (l *Lead) Terminal() bool {
	return l.Stage == stage.Paid ||
		l.Stage == stage.Dropped ||
		l.PaymentStatus == PaymentCompleted
}

// PendingEmail is a scheduled delayed send.
type PendingEmail struct {
	Type PendingEmailType `json:"type"`
	At   time.Time        `json:"at"`
}

// LeadPatch is a partial lead write with merge semantics: nil fields
// keep their stored value, boolean flags are OR'd, AppendNote adds one
// timestamped line to the notes log. SetPending and ClearPending write
// both pending columns in the same statement so the pairing invariant
// cannot be broken by a partial write.
type LeadPatch struct {
	Email string

	Name          *string
	Stage         *stage.Stage
	QuizScore     *float64
	PaymentStatus *string

	AssessmentCompleted      *bool
	SkillAssessmentCompleted *bool

	AppendNote string

	SetPending   *PendingEmail
	ClearPending bool
}

// ImportRow is one candidate from an uploaded list.
type ImportRow struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// NormalizeEmail lowercases and trims an address for use as a store key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
