package services

import "strings"

// Audience selects the primary recipient rule for an action.
type Audience int

const (
	// AudienceManagingEditors sends to every user with the managing
	// editor flag.
	AudienceManagingEditors Audience = iota
	// AudienceAreaEditorOrElse sends to the submission's area editor,
	// falling back to all managing editors when none is assigned. The
	// fallback guarantees no action-required notification is dropped.
	AudienceAreaEditorOrElse
	// AudienceReferee sends to the assignment's referee.
	AudienceReferee
	// AudienceAuthor sends to the submission's author.
	AudienceAuthor
)

// CcPolicy is the static cc overlay applied after primary resolution.
// Cc is additive: it never removes a user who is already a primary
// recipient.
type CcPolicy struct {
	CcManagingEditors bool
	CcAreaEditor      bool
}

// attachPolicy selects which files ride along with an action.
type attachPolicy int

const (
	attachNone attachPolicy = iota
	// attachManuscript attaches the submission's manuscript file.
	attachManuscript
	// attachTriggeringReport attaches the triggering assignment's
	// editor- and author-facing report files.
	attachTriggeringReport
	// attachCompletedAuthorReports attaches the author-facing report
	// file of every completed assignment except the triggering one, so
	// a referee never gets their own report echoed back.
	attachCompletedAuthorReports
)

// Notification action identifiers. The prefix encodes the audience:
// me = managing editors, ae = area editor (or managing editors as a
// fallback), re = referee, au = author.
const (
	ActionNewSubmission           = "notify_me_new_submission"
	ActionAssignmentOverdue       = "remind_me_assignment_overdue"
	ActionDecisionNeedsApproval   = "notify_me_decision_needs_approval"
	ActionDecisionApprovalOverdue = "remind_me_decision_approval_overdue"
	ActionSubmissionUnarchived    = "notify_me_submission_unarchived"

	ActionNewAssignment          = "notify_ae_new_assignment"
	ActionInternalReviewOverdue  = "remind_ae_internal_review_overdue"
	ActionRefereeRequestDeclined = "notify_ae_referee_request_declined"
	ActionUnansweredInvitation   = "notify_ae_unanswered_invitation"
	ActionReportCompleted        = "notify_ae_report_completed"
	ActionAllReportsCompleted    = "notify_ae_all_reports_completed"
	ActionDecisionOverdue        = "remind_ae_decision_overdue"
	ActionDecisionApproved       = "notify_ae_decision_approved"

	ActionRefereeRequest          = "notify_re_referee_request"
	ActionResponseOverdue         = "remind_re_response_overdue"
	ActionRefereeRequestWithdrawn = "notify_re_referee_request_withdrawn"
	ActionReportDueSoon           = "notify_re_report_due_soon"
	ActionReportOverdue           = "remind_re_report_overdue"
	ActionRefereeOutcome          = "notify_re_outcome"

	ActionDecisionReached = "notify_au_decision_reached"
)

type actionSpec struct {
	Audience Audience
	Cc       CcPolicy
	Subject  string
	Body     string
	Attach   attachPolicy
}

// actionCatalog is the exhaustive action policy table: audience rule,
// cc overlay, subject/body templates and attachment policy per action.
var actionCatalog = map[string]actionSpec{
	ActionNewSubmission: {
		Audience: AudienceManagingEditors,
		Subject:  `New Submission: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"{{author_name}} has submitted \"{{title}}\" in the area {{area}}. " +
			"Please assign an area editor.",
	},
	ActionAssignmentOverdue: {
		Audience: AudienceManagingEditors,
		Subject:  `Reminder: Assignment Needed for "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"The submission \"{{title}}\" still has no area editor. " +
			"Please assign one.",
	},
	ActionDecisionNeedsApproval: {
		Audience: AudienceManagingEditors,
		Subject:  `Decision Needs Approval: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"A decision of {{decision}} has been entered for \"{{title}}\" " +
			"and awaits your approval.",
	},
	ActionDecisionApprovalOverdue: {
		Audience: AudienceManagingEditors,
		Subject:  `Overdue Decision Approval: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"The decision of {{decision}} entered for \"{{title}}\" is still " +
			"awaiting approval.",
	},
	ActionSubmissionUnarchived: {
		Audience: AudienceManagingEditors,
		Cc:       CcPolicy{CcAreaEditor: true},
		Subject:  `Unarchived Submission: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"The submission \"{{title}}\" has been restored from the archive " +
			"and needs editorial attention again.",
	},

	ActionNewAssignment: {
		Audience: AudienceAreaEditorOrElse,
		Subject:  `New Assignment: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"You have been assigned \"{{title}}\" for initial review. The " +
			"manuscript is attached.",
		Attach: attachManuscript,
	},
	ActionInternalReviewOverdue: {
		Audience: AudienceAreaEditorOrElse,
		Cc:       CcPolicy{CcManagingEditors: true},
		Subject:  `Overdue Internal Review: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"The initial review of \"{{title}}\" is overdue. Please send the " +
			"submission out for review or enter a desk decision.",
	},
	ActionRefereeRequestDeclined: {
		Audience: AudienceAreaEditorOrElse,
		Subject:  `Referee Request Declined: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"{{referee_name}} has declined to review \"{{title}}\"." +
			"{{decline_comment}}",
	},
	ActionUnansweredInvitation: {
		Audience: AudienceAreaEditorOrElse,
		Subject:  `Unanswered Referee Request: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"{{referee_name}} has not responded to the request to review " +
			"\"{{title}}\" despite a reminder. Consider inviting another " +
			"referee.",
	},
	ActionReportCompleted: {
		Audience: AudienceAreaEditorOrElse,
		Subject:  `Referee Report Completed for "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"{{referee_letter}} ({{referee_name}}) has completed their report " +
			"on \"{{title}}\" with a recommendation of {{recommendation}}.",
		Attach: attachTriggeringReport,
	},
	ActionAllReportsCompleted: {
		Audience: AudienceAreaEditorOrElse,
		Cc:       CcPolicy{CcManagingEditors: true},
		Subject:  `All Reports Complete for "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"All expected referee reports for \"{{title}}\" are complete. " +
			"Please enter a decision.",
	},
	ActionDecisionOverdue: {
		Audience: AudienceAreaEditorOrElse,
		Cc:       CcPolicy{CcManagingEditors: true},
		Subject:  `Overdue Decision: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"The referee reports for \"{{title}}\" are in, but no decision " +
			"has been entered yet.",
	},
	ActionDecisionApproved: {
		Audience: AudienceAreaEditorOrElse,
		Cc:       CcPolicy{CcManagingEditors: true},
		Subject:  `Decision Approved: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"Your decision of {{decision}} for \"{{title}}\" has been " +
			"approved, and the author has been notified.",
	},

	ActionRefereeRequest: {
		Audience: AudienceReferee,
		Cc:       CcPolicy{CcAreaEditor: true},
		Subject:  `Referee Request: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"You are invited to review \"{{title}}\". Please respond by " +
			"{{response_due_date}}; if you agree, the report will be due by " +
			"{{report_due_date}}. The manuscript is attached.",
		Attach: attachManuscript,
	},
	ActionResponseOverdue: {
		Audience: AudienceReferee,
		Cc:       CcPolicy{CcAreaEditor: true},
		Subject:  `Reminder: Referee Request for "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"This is a reminder about the request to review \"{{title}}\". " +
			"Please agree or decline at your earliest convenience.",
	},
	ActionRefereeRequestWithdrawn: {
		Audience: AudienceReferee,
		Cc:       CcPolicy{CcAreaEditor: true},
		Subject:  `Referee Request Withdrawn: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"The request to review \"{{title}}\" has been withdrawn. No " +
			"further action is needed.",
	},
	ActionReportDueSoon: {
		Audience: AudienceReferee,
		Cc:       CcPolicy{CcAreaEditor: true},
		Subject:  `Report Due {{report_due_date}}: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"A friendly reminder that your report on \"{{title}}\" is due by " +
			"{{report_due_date}}.",
	},
	ActionReportOverdue: {
		Audience: AudienceReferee,
		Cc:       CcPolicy{CcAreaEditor: true},
		Subject:  `Overdue Report: "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"Your report on \"{{title}}\" was due by {{report_due_date}}. " +
			"Please complete it as soon as possible.",
	},
	ActionRefereeOutcome: {
		Audience: AudienceReferee,
		Cc:       CcPolicy{CcAreaEditor: true},
		Subject:  `Outcome and Reports for "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"Thank you for reviewing \"{{title}}\". The decision was " +
			"{{decision}}. The other referees' comments for the author are " +
			"attached for your information.",
		Attach: attachCompletedAuthorReports,
	},

	ActionDecisionReached: {
		Audience: AudienceAuthor,
		Cc:       CcPolicy{CcManagingEditors: true},
		Subject:  `Decision Regarding "{{title}}"`,
		Body: "Dear {{recipient_names}},\n\n" +
			"A decision has been reached on your submission \"{{title}}\": " +
			"{{decision}}. The referees' comments for the author are attached.",
		Attach: attachCompletedAuthorReports,
	},
}

// CcManagingEditorsActions lists every action whose cc overlay includes
// the managing editors.
func CcManagingEditorsActions() []string {
	return actionsWithCc(func(p CcPolicy) bool { return p.CcManagingEditors })
}

// CcAreaEditorActions lists every action whose cc overlay includes the
// area editor when one is assigned.
func CcAreaEditorActions() []string {
	return actionsWithCc(func(p CcPolicy) bool { return p.CcAreaEditor })
}

func actionsWithCc(match func(CcPolicy) bool) []string {
	out := make([]string, 0, len(actionCatalog))
	for name, spec := range actionCatalog {
		if match(spec.Cc) {
			out = append(out, name)
		}
	}
	return out
}

// applyTemplatePlaceholders substitutes {{key}} markers in a subject or
// body template.
func applyTemplatePlaceholders(text string, data map[string]string) string {
	result := text
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
