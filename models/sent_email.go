package models

import "time"

// SentEmail is the append-only audit record of every dispatched
// notification. Rows are written once per dispatch, before transport
// starts, and never mutated or deleted.
type SentEmail struct {
	SentEmailID         int       `gorm:"primaryKey;column:sent_email_id" json:"sent_email_id"`
	SubmissionID        *int      `gorm:"column:submission_id" json:"submission_id,omitempty"`
	RefereeAssignmentID *int      `gorm:"column:referee_assignment_id" json:"referee_assignment_id,omitempty"`
	Action              string    `gorm:"column:action" json:"action"`
	Subject             string    `gorm:"column:subject" json:"subject"`
	To                  string    `gorm:"column:to_addresses" json:"to"`
	Cc                  string    `gorm:"column:cc_addresses" json:"cc"`
	Body                string    `gorm:"column:body" json:"body"`
	Attachments         string    `gorm:"column:attachments" json:"attachments"` // filename manifest, comma separated
	CreateAt            time.Time `gorm:"column:create_at" json:"create_at"`
}

func (SentEmail) TableName() string {
	return "sent_emails"
}
