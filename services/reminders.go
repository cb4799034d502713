package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

// ErrSweepAlreadyRunning is returned when the advisory lock for a sweep
// run is already held by another process.
var ErrSweepAlreadyRunning = errors.New("reminder sweeps already running")

// ErrUnknownSweep is returned for an unrecognized sweep kind.
var ErrUnknownSweep = errors.New("unknown sweep kind")

// SweepSummary reports one sweep invocation.
type SweepSummary struct {
	Matched  int `json:"matched"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

// NamedSweep pairs a sweep kind with its runner.
type NamedSweep struct {
	Name string
	Run  func() (*SweepSummary, error)
}

// ReminderService holds the periodic sweep jobs. Each sweep is
// idempotent against immediate re-runs: matching entities carry either a
// reminded-at marker or a deadline that moves forward once acted upon.
// Sweeps of the same kind must not run concurrently; the scheduler
// guarantees non-overlapping cadence and the CLI takes an advisory lock.
type ReminderService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewReminderService(db *gorm.DB, delivery *DeliveryService) *ReminderService {
	if db == nil {
		db = config.DB
	}
	return &ReminderService{
		db:            db,
		notifications: NewNotificationService(db, delivery),
	}
}

// Sweeps lists every sweep in its scheduled order.
func (s *ReminderService) Sweeps() []NamedSweep {
	return []NamedSweep{
		{"overdue_assignments", s.RemindOverdueAssignments},
		{"overdue_internal_reviews", s.RemindOverdueInternalReviews},
		{"overdue_responses", s.RemindOverdueResponses},
		{"unanswered_invitation_followups", s.FollowUpUnansweredInvitations},
		{"reports_due_soon", s.RemindReportsDueSoon},
		{"overdue_reports", s.RemindOverdueReports},
		{"overdue_decisions_on_reports", s.RemindOverdueDecisionsOnReports},
		{"overdue_decision_approvals", s.RemindOverdueDecisionApprovals},
	}
}

// RunSweep runs a single sweep by kind.
func (s *ReminderService) RunSweep(kind string) (*SweepSummary, error) {
	for _, sweep := range s.Sweeps() {
		if sweep.Name == kind {
			return sweep.Run()
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSweep, kind)
}

// RunAll runs every sweep, continuing past individual sweep failures.
func (s *ReminderService) RunAll() map[string]*SweepSummary {
	results := make(map[string]*SweepSummary)
	for _, sweep := range s.Sweeps() {
		summary, err := sweep.Run()
		if err != nil {
			log.Printf("reminder sweep %s failed: %v", sweep.Name, err)
			continue
		}
		results[sweep.Name] = summary
	}
	return results
}

// RunAllWithLock wraps RunAll in a MySQL advisory lock so two reminder
// processes never sweep at the same time. An empty lock name disables
// locking.
func (s *ReminderService) RunAllWithLock(lockName string) (map[string]*SweepSummary, error) {
	if lockName == "" {
		return s.RunAll(), nil
	}

	var status int64
	if err := s.db.Raw("SELECT GET_LOCK(?, ?)", lockName, 0).Scan(&status).Error; err != nil {
		return nil, fmt.Errorf("failed to acquire reminder lock: %w", err)
	}
	if status != 1 {
		return nil, ErrSweepAlreadyRunning
	}
	defer func() {
		var released int64
		if err := s.db.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&released).Error; err != nil {
			log.Printf("failed to release reminder lock %s: %v", lockName, err)
		}
	}()

	return s.RunAll(), nil
}

// RemindOverdueAssignments nags the managing editors about live
// submissions that still have no area editor past the assignment window.
func (s *ReminderService) RemindOverdueAssignments() (*SweepSummary, error) {
	settings, err := GetJournalSettings(s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	var subs []models.Submission
	err = s.db.Where("area_editor_id IS NULL AND archived = ? AND withdrawn = ?", false, false).
		Where("create_at <= ?", now.AddDate(0, 0, -settings.DaysToAssignAreaEditor)).
		Where("assignment_reminded_at IS NULL OR assignment_reminded_at <= ?",
			now.AddDate(0, 0, -settings.DaysToRemindAreaEditor)).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unassigned submissions: %w", err)
	}

	summary := &SweepSummary{Matched: len(subs)}
	for i := range subs {
		sub := subs[i]
		if err := s.notifications.Dispatch(ActionAssignmentOverdue, DispatchContext{Submission: &sub}); err != nil {
			summary.Failed++
			log.Printf("assignment reminder failed for submission %d: %v", sub.SubmissionID, err)
			continue
		}
		s.markSubmission(sub.SubmissionID, "assignment_reminded_at", now)
		summary.Notified++
	}
	return summary, nil
}

// RemindOverdueInternalReviews nags the area editor (cc managing
// editors) when the initial review window has elapsed with no decision.
func (s *ReminderService) RemindOverdueInternalReviews() (*SweepSummary, error) {
	settings, err := GetJournalSettings(s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	var subs []models.Submission
	err = s.db.Where("area_editor_id IS NOT NULL AND decision = ? AND archived = ? AND withdrawn = ?",
		models.DecisionNone, false, false).
		Where("area_editor_assigned_at <= ?", now.AddDate(0, 0, -settings.DaysForInitialReview)).
		Where("internal_review_reminded_at IS NULL OR internal_review_reminded_at <= ?",
			now.AddDate(0, 0, -settings.DaysToRemindAreaEditor)).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue internal reviews: %w", err)
	}

	summary := &SweepSummary{Matched: len(subs)}
	for i := range subs {
		sub := subs[i]
		if err := s.notifications.Dispatch(ActionInternalReviewOverdue, DispatchContext{Submission: &sub}); err != nil {
			summary.Failed++
			log.Printf("internal review reminder failed for submission %d: %v", sub.SubmissionID, err)
			continue
		}
		s.markSubmission(sub.SubmissionID, "internal_review_reminded_at", now)
		summary.Notified++
	}
	return summary, nil
}

// RemindOverdueResponses sends one reminder to each referee whose
// invitation response is past due.
func (s *ReminderService) RemindOverdueResponses() (*SweepSummary, error) {
	now := time.Now()

	// The due date itself was seeded from the journal settings when the
	// invitation went out, so no window arithmetic is needed here.
	var assignments []models.RefereeAssignment
	err := s.db.Preload("Submission").
		Where("agreed IS NULL AND canceled = ?", false).
		Where("response_due_at <= ?", now).
		Where("response_reminded_at IS NULL").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue responses: %w", err)
	}

	summary := &SweepSummary{Matched: len(assignments)}
	for i := range assignments {
		a := assignments[i]
		ctx := DispatchContext{Submission: a.Submission, Assignment: &a}
		if err := s.notifications.Dispatch(ActionResponseOverdue, ctx); err != nil {
			summary.Failed++
			log.Printf("response reminder failed for assignment %d: %v", a.AssignmentID, err)
			continue
		}
		s.markAssignment(a.AssignmentID, map[string]interface{}{"response_reminded_at": now})
		summary.Notified++
	}
	return summary, nil
}

// FollowUpUnansweredInvitations escalates once to the area editor when a
// referee has ignored both the invitation and its reminder.
func (s *ReminderService) FollowUpUnansweredInvitations() (*SweepSummary, error) {
	settings, err := GetJournalSettings(s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	waitDays := settings.DaysToRemindUnansweredInvitation + settings.DaysToWaitAfterInvitationReminder

	var assignments []models.RefereeAssignment
	err = s.db.Preload("Submission").
		Where("agreed IS NULL AND canceled = ?", false).
		Where("response_reminded_at IS NOT NULL").
		Where("assigned_at <= ?", now.AddDate(0, 0, -waitDays)).
		Where("invitation_followup_sent_at IS NULL").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unanswered invitations: %w", err)
	}

	summary := &SweepSummary{Matched: len(assignments)}
	for i := range assignments {
		a := assignments[i]
		ctx := DispatchContext{Submission: a.Submission, Assignment: &a}
		if err := s.notifications.Dispatch(ActionUnansweredInvitation, ctx); err != nil {
			summary.Failed++
			log.Printf("invitation follow-up failed for assignment %d: %v", a.AssignmentID, err)
			continue
		}
		s.markAssignment(a.AssignmentID, map[string]interface{}{"invitation_followup_sent_at": now})
		summary.Notified++
	}
	return summary, nil
}

// RemindReportsDueSoon gives referees advance notice shortly before
// their report deadline.
func (s *ReminderService) RemindReportsDueSoon() (*SweepSummary, error) {
	settings, err := GetJournalSettings(s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	var assignments []models.RefereeAssignment
	err = s.db.Preload("Submission").
		Where("agreed = ? AND canceled = ? AND report_completed = ?", true, false, false).
		Where("report_due_at > ?", now).
		Where("report_due_at <= ?", now.AddDate(0, 0, settings.DaysBeforeDeadlineToRemindReferee)).
		Where("report_due_soon_reminded_at IS NULL").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find reports due soon: %w", err)
	}

	summary := &SweepSummary{Matched: len(assignments)}
	for i := range assignments {
		a := assignments[i]
		ctx := DispatchContext{Submission: a.Submission, Assignment: &a}
		if err := s.notifications.Dispatch(ActionReportDueSoon, ctx); err != nil {
			summary.Failed++
			log.Printf("due-soon reminder failed for assignment %d: %v", a.AssignmentID, err)
			continue
		}
		s.markAssignment(a.AssignmentID, map[string]interface{}{"report_due_soon_reminded_at": now})
		summary.Notified++
	}
	return summary, nil
}

// RemindOverdueReports nags referees whose report deadline has passed.
// After each reminder the deadline moves forward by the configured
// extension, which is what keeps the sweep idempotent: the entity only
// matches again once the extended deadline has also elapsed.
func (s *ReminderService) RemindOverdueReports() (*SweepSummary, error) {
	settings, err := GetJournalSettings(s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	var assignments []models.RefereeAssignment
	err = s.db.Preload("Submission").
		Where("agreed = ? AND canceled = ? AND report_completed = ?", true, false, false).
		Where("report_due_at <= ?", now.AddDate(0, 0, -settings.DaysToRemindOverdueReferee)).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue reports: %w", err)
	}

	summary := &SweepSummary{Matched: len(assignments)}
	for i := range assignments {
		a := assignments[i]
		ctx := DispatchContext{Submission: a.Submission, Assignment: &a}
		if err := s.notifications.Dispatch(ActionReportOverdue, ctx); err != nil {
			summary.Failed++
			log.Printf("overdue report reminder failed for assignment %d: %v", a.AssignmentID, err)
			continue
		}

		updates := map[string]interface{}{
			"report_due_at":               now.AddDate(0, 0, settings.DaysToExtendMissedReportDeadlines),
			"report_due_soon_reminded_at": nil,
		}
		if a.ReportOriginallyDueAt == nil && a.ReportDueAt != nil {
			updates["report_originally_due_at"] = *a.ReportDueAt
		}
		s.markAssignment(a.AssignmentID, updates)
		summary.Notified++
	}
	return summary, nil
}

// RemindOverdueDecisionsOnReports nags the area editor when enough
// reports are in but no decision has been entered.
func (s *ReminderService) RemindOverdueDecisionsOnReports() (*SweepSummary, error) {
	settings, err := GetJournalSettings(s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	completedCount := "(SELECT COUNT(*) FROM referee_assignments ra WHERE ra.submission_id = submissions.submission_id" +
		" AND ra.report_completed = 1 AND ra.canceled = 0)"
	lastCompleted := "(SELECT MAX(ra.report_completed_at) FROM referee_assignments ra WHERE ra.submission_id = submissions.submission_id" +
		" AND ra.report_completed = 1 AND ra.canceled = 0)"

	var subs []models.Submission
	err = s.db.Where("area_editor_id IS NOT NULL AND decision = ? AND archived = ? AND withdrawn = ?",
		models.DecisionNone, false, false).
		Where(completedCount+" >= ?", settings.NumberOfReportsExpected).
		Where(lastCompleted+" <= ?", now.AddDate(0, 0, -settings.DaysAfterReportsCompletedToSubmitDecision)).
		Where("external_review_reminded_at IS NULL OR external_review_reminded_at <= ?",
			now.AddDate(0, 0, -settings.DaysToRemindAreaEditor)).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue decisions: %w", err)
	}

	summary := &SweepSummary{Matched: len(subs)}
	for i := range subs {
		sub := subs[i]
		if err := s.notifications.Dispatch(ActionDecisionOverdue, DispatchContext{Submission: &sub}); err != nil {
			summary.Failed++
			log.Printf("decision reminder failed for submission %d: %v", sub.SubmissionID, err)
			continue
		}
		s.markSubmission(sub.SubmissionID, "external_review_reminded_at", now)
		summary.Notified++
	}
	return summary, nil
}

// RemindOverdueDecisionApprovals nags the managing editors about entered
// but unapproved decisions.
func (s *ReminderService) RemindOverdueDecisionApprovals() (*SweepSummary, error) {
	settings, err := GetJournalSettings(s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	window := settings.DaysToRemindOverdueDecisionApproval

	var subs []models.Submission
	err = s.db.Where("decision <> ? AND decision_approved = ? AND archived = ? AND withdrawn = ?",
		models.DecisionNone, false, false, false).
		Where("decision_entered_at <= ?", now.AddDate(0, 0, -window)).
		Where("approval_reminded_at IS NULL OR approval_reminded_at <= ?", now.AddDate(0, 0, -window)).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue decision approvals: %w", err)
	}

	summary := &SweepSummary{Matched: len(subs)}
	for i := range subs {
		sub := subs[i]
		if err := s.notifications.Dispatch(ActionDecisionApprovalOverdue, DispatchContext{Submission: &sub}); err != nil {
			summary.Failed++
			log.Printf("approval reminder failed for submission %d: %v", sub.SubmissionID, err)
			continue
		}
		s.markSubmission(sub.SubmissionID, "approval_reminded_at", now)
		summary.Notified++
	}
	return summary, nil
}

// markSubmission records that a reminder went out. A failed marker write
// is logged loudly: it risks a duplicate reminder on the next sweep but
// must not fail the sweep itself.
func (s *ReminderService) markSubmission(submissionID int, column string, at time.Time) {
	err := s.db.Model(&models.Submission{}).
		Where("submission_id = ?", submissionID).
		Update(column, at).Error
	if err != nil {
		log.Printf("failed to mark %s on submission %d: %v", column, submissionID, err)
	}
}

func (s *ReminderService) markAssignment(assignmentID int, updates map[string]interface{}) {
	err := s.db.Model(&models.RefereeAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Updates(updates).Error
	if err != nil {
		log.Printf("failed to mark reminder on assignment %d: %v", assignmentID, err)
	}
}
