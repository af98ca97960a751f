package models

import "time"

// Message is one unread inbound email as seen during a sweep. It is
// never persisted; the sweep consumes it and marks it read.
type Message struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id,omitempty"`
	SenderEmail string    `json:"sender_email"`
	Name        string    `json:"name,omitempty"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Date        time.Time `json:"date"`
	Snippet     string    `json:"snippet,omitempty"`
}

// Content is a resolved subject/body pair.
type Content struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Outbound is a message handed to the dispatcher. ThreadID, when set,
// asks the mailbox to keep the reply in the sender's thread.
type Outbound struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	ThreadID string `json:"thread_id,omitempty"`
}
