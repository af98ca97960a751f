package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStages = []Stage{
	JobsListSent,
	AssessmentCompleted,
	SkillAssessmentCompleted,
	SoftPitchSent,
	TrainingOffered,
	Paid,
	FollowUp,
	Dropped,
}

func TestParse(t *testing.T) {
	for _, s := range allStages {
		parsed, ok := Parse(string(s))
		assert.True(t, ok, "stage %s must parse", s)
		assert.Equal(t, s, parsed)
	}

	_, ok := Parse("BOGUS_VALUE")
	assert.False(t, ok)
	_, ok = Parse("")
	assert.False(t, ok)
	// Stage values are exact, not case-folded.
	_, ok = Parse("jobs_list_sent")
	assert.False(t, ok)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, JobsListSent, Initial())
	assert.True(t, Initial().Valid())
}

func TestNextOnReply(t *testing.T) {
	assert.Equal(t, AssessmentCompleted, NextOnReply(JobsListSent))
	assert.Equal(t, TrainingOffered, NextOnReply(SoftPitchSent))
	assert.Equal(t, JobsListSent, NextOnReply(FollowUp))

	// Stages without a reply transition stay put, terminals included.
	for _, s := range []Stage{AssessmentCompleted, SkillAssessmentCompleted, TrainingOffered, Paid, Dropped} {
		assert.Equal(t, s, NextOnReply(s), "stage %s must not move on reply", s)
	}
}

func TestNextOnReplyClosure(t *testing.T) {
	for _, s := range allStages {
		assert.True(t, NextOnReply(s).Valid(), "reply from %s must land on a known stage", s)
	}
}

func TestAdvancesOnReply(t *testing.T) {
	assert.True(t, AdvancesOnReply(JobsListSent))
	assert.True(t, AdvancesOnReply(SoftPitchSent))

	for _, s := range []Stage{AssessmentCompleted, SkillAssessmentCompleted, TrainingOffered, Paid, FollowUp, Dropped} {
		assert.False(t, AdvancesOnReply(s), "stage %s must be gated", s)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, Paid.Terminal())
	assert.True(t, Dropped.Terminal())

	for _, s := range []Stage{JobsListSent, AssessmentCompleted, SkillAssessmentCompleted, SoftPitchSent, TrainingOffered, FollowUp} {
		assert.False(t, s.Terminal())
	}
}

func TestManualTransitions(t *testing.T) {
	cases := map[Stage]Manual{
		JobsListSent:             JumpJobsListSent(),
		AssessmentCompleted:      JumpAssessmentCompleted(),
		SkillAssessmentCompleted: JumpSkillAssessmentCompleted(),
		SoftPitchSent:            JumpSoftPitchSent(),
		TrainingOffered:          JumpTrainingOffered(),
		Paid:                     JumpPaid(),
		FollowUp:                 JumpFollowUp(),
		Dropped:                  JumpDropped(),
	}

	for want, m := range cases {
		assert.Equal(t, want, m.Target())
		assert.True(t, m.Target().Valid())
	}
}
