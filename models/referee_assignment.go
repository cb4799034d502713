package models

import "time"

// Recommendation values stored on referee_assignments.recommendation.
const (
	RecommendationReject = "reject"
	RecommendationMajor  = "major_revisions"
	RecommendationMinor  = "minor_revisions"
	RecommendationAccept = "accept"
)

// RefereeAssignment ties one referee to one submission. Agreed is
// tri-state: nil while the invitation is unanswered.
type RefereeAssignment struct {
	AssignmentID   int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubmissionID   int        `gorm:"column:submission_id" json:"submission_id"`
	RefereeID      int        `gorm:"column:referee_id" json:"referee_id"`
	RefereeLetter  string     `gorm:"column:referee_letter" json:"referee_letter"` // display label, e.g. "Referee A"
	Agreed         *bool      `gorm:"column:agreed" json:"agreed"`
	DeclineComment *string    `gorm:"column:decline_comment" json:"decline_comment,omitempty"`
	AssignedAt     time.Time  `gorm:"column:assigned_at" json:"assigned_at"`
	AgreedAt       *time.Time `gorm:"column:agreed_at" json:"agreed_at,omitempty"`
	DeclinedAt     *time.Time `gorm:"column:declined_at" json:"declined_at,omitempty"`

	ResponseDueAt         *time.Time `gorm:"column:response_due_at" json:"response_due_at,omitempty"`
	ReportDueAt           *time.Time `gorm:"column:report_due_at" json:"report_due_at,omitempty"`
	ReportOriginallyDueAt *time.Time `gorm:"column:report_originally_due_at" json:"report_originally_due_at,omitempty"`

	Canceled          bool       `gorm:"column:canceled" json:"canceled"`
	ReportCompleted   bool       `gorm:"column:report_completed" json:"report_completed"`
	ReportCompletedAt *time.Time `gorm:"column:report_completed_at" json:"report_completed_at,omitempty"`
	Recommendation    *string    `gorm:"column:recommendation" json:"recommendation,omitempty"`
	CommentsForEditor *string    `gorm:"column:comments_for_editor" json:"comments_for_editor,omitempty"`
	CommentsForAuthor *string    `gorm:"column:comments_for_author" json:"comments_for_author,omitempty"`

	AttachmentForEditorFileID *int `gorm:"column:attachment_for_editor_file_id" json:"attachment_for_editor_file_id,omitempty"`
	AttachmentForAuthorFileID *int `gorm:"column:attachment_for_author_file_id" json:"attachment_for_author_file_id,omitempty"`

	// Reminder bookkeeping for the response/report sweeps.
	ResponseRemindedAt       *time.Time `gorm:"column:response_reminded_at" json:"-"`
	InvitationFollowupSentAt *time.Time `gorm:"column:invitation_followup_sent_at" json:"-"`
	ReportDueSoonRemindedAt  *time.Time `gorm:"column:report_due_soon_reminded_at" json:"-"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`

	// Relations
	Submission          *Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	Referee             *User       `gorm:"foreignKey:RefereeID" json:"referee,omitempty"`
	AttachmentForEditor *FileUpload `gorm:"foreignKey:AttachmentForEditorFileID" json:"attachment_for_editor,omitempty"`
	AttachmentForAuthor *FileUpload `gorm:"foreignKey:AttachmentForAuthorFileID" json:"attachment_for_author,omitempty"`
}

func (RefereeAssignment) TableName() string {
	return "referee_assignments"
}

// Pending reports whether the invitation is still unanswered.
func (a RefereeAssignment) Pending() bool {
	return a.Agreed == nil && !a.Canceled
}

// Active reports whether an agreed assignment still owes a report.
// Canceled and completed assignments are terminal.
func (a RefereeAssignment) Active() bool {
	return a.Agreed != nil && *a.Agreed && !a.Canceled && !a.ReportCompleted
}
