package models

import "time"

// JournalSettings is the single-row policy table driving all reminder
// windows. Every field is a number of days unless noted otherwise.
type JournalSettings struct {
	SettingsID   int    `gorm:"primaryKey;column:settings_id" json:"settings_id"`
	JournalEmail string `gorm:"column:journal_email" json:"journal_email"` // sender/reply-to identity

	DaysForInitialReview                      int `gorm:"column:days_for_initial_review" json:"days_for_initial_review"`
	DaysToRespondToRefereeRequest             int `gorm:"column:days_to_respond_to_referee_request" json:"days_to_respond_to_referee_request"`
	DaysToRemindUnansweredInvitation          int `gorm:"column:days_to_remind_unanswered_invitation" json:"days_to_remind_unanswered_invitation"`
	DaysForExternalReview                     int `gorm:"column:days_for_external_review" json:"days_for_external_review"`
	DaysToRemindOverdueReferee                int `gorm:"column:days_to_remind_overdue_referee" json:"days_to_remind_overdue_referee"`
	DaysToRemindAreaEditor                    int `gorm:"column:days_to_remind_area_editor" json:"days_to_remind_area_editor"`
	DaysToAssignAreaEditor                    int `gorm:"column:days_to_assign_area_editor" json:"days_to_assign_area_editor"`
	DaysBeforeDeadlineToRemindReferee         int `gorm:"column:days_before_deadline_to_remind_referee" json:"days_before_deadline_to_remind_referee"`
	NumberOfReportsExpected                   int `gorm:"column:number_of_reports_expected" json:"number_of_reports_expected"`
	DaysToRemindOverdueDecisionApproval       int `gorm:"column:days_to_remind_overdue_decision_approval" json:"days_to_remind_overdue_decision_approval"`
	DaysAfterReportsCompletedToSubmitDecision int `gorm:"column:days_after_reports_completed_to_submit_decision" json:"days_after_reports_completed_to_submit_decision"`
	DaysToExtendMissedReportDeadlines         int `gorm:"column:days_to_extend_missed_report_deadlines" json:"days_to_extend_missed_report_deadlines"`
	DaysToWaitAfterInvitationReminder         int `gorm:"column:days_to_wait_after_invitation_reminder" json:"days_to_wait_after_invitation_reminder"`

	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
}

func (JournalSettings) TableName() string {
	return "journal_settings"
}
