package services

import (
	"fmt"
	"log"
	"strings"

	"journal-management-api/config"
	"journal-management-api/models"
	"journal-management-api/utils"

	"gorm.io/gorm"
)

// Notification is the ephemeral message built per dispatch and handed
// to the delivery channel.
type Notification struct {
	Action      string
	To          []models.User
	Cc          []models.User
	Subject     string
	Body        string
	Attachments []config.MailAttachment

	SubmissionID        *int
	RefereeAssignmentID *int
}

// NotificationService resolves recipients, composes the message for an
// action and hands it to the delivery channel.
type NotificationService struct {
	db       *gorm.DB
	delivery *DeliveryService

	// RequireRecipients turns empty recipient resolution into an error.
	// Off by default: historically such notifications proceed with an
	// empty "to" line and only the ledger records them.
	RequireRecipients bool
}

func NewNotificationService(db *gorm.DB, delivery *DeliveryService) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{
		db:       db,
		delivery: delivery,
	}
}

// Dispatch builds and sends the notification for one action. The caller
// treats failures as best-effort: a failed notification never rolls back
// the domain action that triggered it.
func (s *NotificationService) Dispatch(action string, ctx DispatchContext) error {
	spec, ok := actionCatalog[action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	to, cc, err := ResolveRecipients(s.db, action, ctx)
	if err != nil {
		return err
	}
	if len(to) == 0 && s.RequireRecipients {
		return fmt.Errorf("%w: %s", ErrNoRecipients, action)
	}

	data, err := s.templateData(spec, ctx, to)
	if err != nil {
		return err
	}

	notification := &Notification{
		Action:      action,
		To:          to,
		Cc:          cc,
		Subject:     applyTemplatePlaceholders(spec.Subject, data),
		Body:        applyTemplatePlaceholders(spec.Body, data),
		Attachments: s.selectAttachments(spec.Attach, ctx),
	}
	if ctx.Submission != nil {
		id := ctx.Submission.SubmissionID
		notification.SubmissionID = &id
	}
	if ctx.Assignment != nil {
		id := ctx.Assignment.AssignmentID
		notification.RefereeAssignmentID = &id
	}

	return s.delivery.Send(notification)
}

// templateData collects the placeholder values available for the
// action's subject and body templates.
func (s *NotificationService) templateData(spec actionSpec, ctx DispatchContext, to []models.User) (map[string]string, error) {
	names := make([]string, 0, len(to))
	for _, u := range to {
		names = append(names, u.FullName())
	}

	data := map[string]string{
		"recipient_names": utils.JoinNames(names),
	}

	if sub := ctx.Submission; sub != nil {
		data["title"] = sub.Title
		data["area"] = sub.Area
		data["decision"] = humanizeDecision(sub.Decision)

		if spec.Audience == AudienceManagingEditors && strings.Contains(spec.Body, "{{author_name}}") {
			author, err := loadUser(s.db, sub.AuthorID)
			if err != nil {
				return nil, err
			}
			data["author_name"] = author.FullName()
		}
	}

	if a := ctx.Assignment; a != nil {
		data["referee_letter"] = a.RefereeLetter
		if a.ResponseDueAt != nil {
			data["response_due_date"] = utils.FormatDate(*a.ResponseDueAt)
		}
		if a.ReportDueAt != nil {
			data["report_due_date"] = utils.FormatDate(*a.ReportDueAt)
		}
		if a.Recommendation != nil {
			data["recommendation"] = humanizeDecision(*a.Recommendation)
		}

		data["decline_comment"] = ""
		if a.DeclineComment != nil && strings.TrimSpace(*a.DeclineComment) != "" {
			data["decline_comment"] = "\n\nComment: " + strings.TrimSpace(*a.DeclineComment)
		}

		// Referee-directed bodies address the referee via
		// recipient_names; only editor-directed ones name the referee.
		if spec.Audience != AudienceReferee {
			referee, err := loadUser(s.db, a.RefereeID)
			if err != nil {
				return nil, err
			}
			data["referee_name"] = referee.FullName()
		}
	}

	return data, nil
}

// selectAttachments resolves the action's attachment policy into
// providers and loads them. Missing or unreadable files are skipped.
func (s *NotificationService) selectAttachments(policy attachPolicy, ctx DispatchContext) []config.MailAttachment {
	var providers []AttachmentProvider

	switch policy {
	case attachNone:
		return nil

	case attachManuscript:
		providers = append(providers, manuscriptOf{submission: ctx.Submission})

	case attachTriggeringReport:
		providers = append(providers,
			editorReportOf{assignment: ctx.Assignment},
			authorReportOf{assignment: ctx.Assignment},
		)

	case attachCompletedAuthorReports:
		if ctx.Submission == nil {
			return nil
		}
		completed, err := s.completedAssignments(ctx.Submission.SubmissionID)
		if err != nil {
			log.Printf("skipping report attachments: %v", err)
			return nil
		}
		for i := range completed {
			a := completed[i]
			if ctx.Assignment != nil && a.AssignmentID == ctx.Assignment.AssignmentID {
				// Never echo the triggering referee's own report back.
				continue
			}
			providers = append(providers, authorReportOf{assignment: &a})
		}
	}

	return collectAttachments(s.db, providers)
}

func (s *NotificationService) completedAssignments(submissionID int) ([]models.RefereeAssignment, error) {
	var assignments []models.RefereeAssignment
	err := s.db.Where("submission_id = ? AND report_completed = ? AND canceled = ?", submissionID, true, false).
		Order("assignment_id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load completed assignments: %w", err)
	}
	return assignments, nil
}

// humanizeDecision turns stored enum values into prose ("minor_revisions"
// becomes "minor revisions").
func humanizeDecision(decision string) string {
	if decision == models.DecisionNone {
		return "none"
	}
	return strings.ReplaceAll(decision, "_", " ")
}
