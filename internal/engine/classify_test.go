package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsJobInquiry(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		body    string
		want    bool
	}{
		{"keyword in subject", "Job inquiry", "hello", true},
		{"keyword in body", "hello", "I'm interested in the position", true},
		{"case insensitive", "RE: OPEN ROLES", "SEND ME THE JOB LIST", true},
		{"keyword split across fields", "about the", "opportunity you posted", true},
		{"no keywords", "lunch tomorrow?", "are we still on for noon", false},
		{"empty message", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isJobInquiry(tc.subject, tc.body))
		})
	}
}
