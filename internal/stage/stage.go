// Package stage owns the funnel stage enum and its two transition
// mechanisms: the reply-transition table consulted when a tracked lead
// writes back, and the manual transition constructors used by external
// triggers to jump a lead directly to a stage. A call site uses one
// mechanism or the other, never both.
package stage

// Stage is a lead's position in the outreach funnel.
type Stage string

const (
	JobsListSent             Stage = "JOBS_LIST_SENT"
	AssessmentCompleted      Stage = "ASSESSMENT_COMPLETED"
	SkillAssessmentCompleted Stage = "SKILL_ASSESSMENT_COMPLETED"
	SoftPitchSent            Stage = "SOFT_PITCH_SENT"
	TrainingOffered          Stage = "TRAINING_OFFERED"
	Paid                     Stage = "PAID"
	FollowUp                 Stage = "FOLLOW_UP"
	Dropped                  Stage = "DROPPED"
)

// Initial is the stage every new lead starts in.
func Initial() Stage { return JobsListSent }

var all = map[Stage]bool{
	JobsListSent:             true,
	AssessmentCompleted:      true,
	SkillAssessmentCompleted: true,
	SoftPitchSent:            true,
	TrainingOffered:          true,
	Paid:                     true,
	FollowUp:                 true,
	Dropped:                  true,
}

// Parse validates a raw stage value read from storage. Unrecognized
// values are reported rather than passed through, so callers can treat
// a corrupted record as a fresh lead.
func Parse(raw string) (Stage, bool) {
	s := Stage(raw)
	return s, all[s]
}

func (s Stage) Valid() bool { return all[s] }

func (s Stage) String() string { return string(s) }

// Terminal stages never receive another engine-driven email.
func (s Stage) Terminal() bool { return s == Paid || s == Dropped }

// replyNext is the auto-advance table for inbound replies. Stages not
// listed (including both terminal stages) stay where they are.
var replyNext = map[Stage]Stage{
	JobsListSent:  AssessmentCompleted,
	SoftPitchSent: TrainingOffered,
	FollowUp:      JobsListSent,
}

// NextOnReply returns the stage a reply advances s to, or s itself
// when no reply transition exists.
func NextOnReply(s Stage) Stage {
	if next, ok := replyNext[s]; ok {
		return next
	}
	return s
}

// advanceOnReply is the allow-list of stages where an inbound reply by
// itself triggers progression. Every other stage needs an external
// trigger to move.
var advanceOnReply = map[Stage]bool{
	JobsListSent:  true,
	SoftPitchSent: true,
}

func AdvancesOnReply(s Stage) bool { return advanceOnReply[s] }

// Manual is a direct stage jump produced by one of the constructors
// below. External triggers (website events, payment confirmations) are
// the only legal way to reach a stage out of the reply sequence.
type Manual struct {
	target Stage
}

func (m Manual) Target() Stage { return m.target }

func JumpJobsListSent() Manual { return Manual{JobsListSent} }

func JumpAssessmentCompleted() Manual { return Manual{AssessmentCompleted} }

func JumpSkillAssessmentCompleted() Manual { return Manual{SkillAssessmentCompleted} }

func JumpSoftPitchSent() Manual { return Manual{SoftPitchSent} }

func JumpTrainingOffered() Manual { return Manual{TrainingOffered} }

func JumpPaid() Manual { return Manual{Paid} }

func JumpFollowUp() Manual { return Manual{FollowUp} }

func JumpDropped() Manual { return Manual{Dropped} }
