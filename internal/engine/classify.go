package engine

import "strings"

// inquiryKeywords is the fixed set matched against subject+body to
// decide whether an inbound message is a job inquiry. One hit is
// enough; matching is case-insensitive substring.
var inquiryKeywords = []string{
	"job",
	"position",
	"opportunity",
	"opening",
	"interested",
	"apply",
	"application",
	"resume",
	"cv",
	"hiring",
	"role",
	"assessment",
}

// isJobInquiry classifies a message by keyword match. Messages that
// match nothing are skipped entirely: no send, no stage change.
func isJobInquiry(subject, body string) bool {
	text := strings.ToLower(subject + " " + body)
	for _, kw := range inquiryKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
