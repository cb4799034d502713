package models

import "time"

// Decision values stored on submissions.decision.
const (
	DecisionNone           = ""
	DecisionReject         = "reject"
	DecisionMajorRevisions = "major_revisions"
	DecisionMinorRevisions = "minor_revisions"
	DecisionAccept         = "accept"
)

type Submission struct {
	SubmissionID         int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	Title                string     `gorm:"column:title" json:"title"`
	AuthorID             int        `gorm:"column:author_id" json:"author_id"`
	Area                 string     `gorm:"column:area" json:"area"`
	AreaEditorID         *int       `gorm:"column:area_editor_id" json:"area_editor_id,omitempty"`
	AreaEditorAssignedAt *time.Time `gorm:"column:area_editor_assigned_at" json:"area_editor_assigned_at,omitempty"`
	Decision             string     `gorm:"column:decision" json:"decision"`
	DecisionApproved     bool       `gorm:"column:decision_approved" json:"decision_approved"`
	DecisionEnteredAt    *time.Time `gorm:"column:decision_entered_at" json:"decision_entered_at,omitempty"`
	Archived             bool       `gorm:"column:archived" json:"archived"`
	Withdrawn            bool       `gorm:"column:withdrawn" json:"withdrawn"`
	RevisionNumber       int        `gorm:"column:revision_number" json:"revision_number"`
	OriginalID           *int       `gorm:"column:original_id" json:"original_id,omitempty"`
	ManuscriptFileID     *int       `gorm:"column:manuscript_file_id" json:"manuscript_file_id,omitempty"`

	// Reminder bookkeeping; each field records the last time the matching
	// sweep notified someone about this submission.
	InternalReviewRemindedAt *time.Time `gorm:"column:internal_review_reminded_at" json:"-"`
	AssignmentRemindedAt     *time.Time `gorm:"column:assignment_reminded_at" json:"-"`
	ApprovalRemindedAt       *time.Time `gorm:"column:approval_reminded_at" json:"-"`
	ExternalReviewRemindedAt *time.Time `gorm:"column:external_review_reminded_at" json:"-"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`

	// Relations
	Author     *User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AreaEditor *User       `gorm:"foreignKey:AreaEditorID" json:"area_editor,omitempty"`
	Manuscript *FileUpload `gorm:"foreignKey:ManuscriptFileID" json:"manuscript,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// HasDecision reports whether an editorial decision has been entered.
func (s Submission) HasDecision() bool {
	return s.Decision != DecisionNone
}

// Live reports whether the submission still needs editorial action.
func (s Submission) Live() bool {
	return !s.Archived && !s.Withdrawn
}
