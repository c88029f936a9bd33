package models

import "time"

// MailKind identifies which notification a queued mail job carries.
type MailKind string

const (
	MailKindVerification  MailKind = "verification"
	MailKindPasswordReset MailKind = "password_reset"
	MailKindDeletion      MailKind = "deletion"
)

// MailJob is the unit of work on the mail queue. Jobs are fire-and-forget
// from the API's point of view: the mutation that enqueued one has already
// committed and is never rolled back on delivery failure.
type MailJob struct {
	ID         string    `json:"id"`
	Kind       MailKind  `json:"kind"`
	To         string    `json:"to"`
	Username   string    `json:"username"`
	Token      string    `json:"token,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
