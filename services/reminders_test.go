package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"journal-management-api/models"
)

func newTestReminderService(t *testing.T, steps []*queryStep) (*ReminderService, *capturingTransport, *scriptedDB, func()) {
	t.Helper()
	db, state, cleanup := newScriptedGormDB(t, steps)

	transport := &capturingTransport{}
	delivery := NewDeliveryService(db, DeliverySync)
	delivery.SetTransport(transport.send)

	return NewReminderService(db, delivery), transport, state, cleanup
}

func TestRemindOverdueInternalReviewsMarksAndSkipsOnRerun(t *testing.T) {
	primeSettingsCache(t, models.JournalSettings{
		JournalEmail:           "editors@example.edu",
		DaysForInitialReview:   30,
		DaysToRemindAreaEditor: 7,
	})

	overduePattern := regexp.MustCompile(`SELECT .* FROM .submissions. WHERE .*area_editor_id IS NOT NULL AND decision = \?.*area_editor_assigned_at <= \?.*internal_review_reminded_at IS NULL OR internal_review_reminded_at <= \?`)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: overduePattern,
			columns: []string{"submission_id", "title", "author_id", "area_editor_id", "decision"},
			rows:    [][]driver.Value{{int64(7), "On Widgets", int64(3), int64(5), ""}},
		},
		{
			kind:    kindQuery,
			pattern: userByIDPattern,
			columns: userColumns,
			rows:    [][]driver.Value{userRow(5, "Ines", "Duarte", "ines@example.edu")},
		},
		{
			kind:    kindQuery,
			pattern: managingEditorsPattern,
			columns: userColumns,
			rows:    [][]driver.Value{userRow(1, "Maya", "Chen", "maya@example.edu")},
		},
		{kind: kindExec, pattern: insertSentEmailPattern},
		{kind: kindExec, pattern: regexp.MustCompile(`UPDATE .submissions. SET .internal_review_reminded_at.=`)},
		{
			kind:    kindQuery,
			pattern: overduePattern,
			columns: []string{"submission_id"},
			rows:    [][]driver.Value{},
		},
	}
	svc, transport, state, cleanup := newTestReminderService(t, steps)
	defer cleanup()

	summary, err := svc.RemindOverdueInternalReviews()
	if err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if summary.Matched != 1 || summary.Notified != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	calls := transport.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transmit, got %d", len(calls))
	}
	if calls[0].Subject != `Overdue Internal Review: "On Widgets"` {
		t.Fatalf("unexpected subject: %s", calls[0].Subject)
	}
	if len(calls[0].To) != 1 || !strings.Contains(calls[0].To[0], "ines@example.edu") {
		t.Fatalf("expected the area editor as primary, got %v", calls[0].To)
	}
	if len(calls[0].Cc) != 1 || !strings.Contains(calls[0].Cc[0], "maya@example.edu") {
		t.Fatalf("expected the managing editors in cc, got %v", calls[0].Cc)
	}

	// The marker just written keeps the submission out of the next run.
	summary, err = svc.RemindOverdueInternalReviews()
	if err != nil {
		t.Fatalf("second sweep returned error: %v", err)
	}
	if summary.Matched != 0 {
		t.Fatalf("expected no matches on rerun, got %+v", summary)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRemindOverdueReportsExtendsDeadline(t *testing.T) {
	primeSettingsCache(t, models.JournalSettings{
		JournalEmail:                      "editors@example.edu",
		DaysToRemindOverdueReferee:        7,
		DaysToExtendMissedReportDeadlines: 14,
	})

	due := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .referee_assignments. WHERE .*agreed = \? AND canceled = \? AND report_completed = \?.*report_due_at <= \?`),
			columns: []string{"assignment_id", "submission_id", "referee_id", "referee_letter", "report_due_at"},
			rows:    [][]driver.Value{{int64(3), int64(7), int64(9), "Referee A", due}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .submissions. WHERE .submissions.\..submission_id`),
			columns: []string{"submission_id", "title", "author_id"},
			rows:    [][]driver.Value{{int64(7), "On Widgets", int64(3)}},
		},
		{
			kind:    kindQuery,
			pattern: userByIDPattern,
			columns: userColumns,
			rows:    [][]driver.Value{userRow(9, "Rami", "Haddad", "rami@example.edu")},
		},
		{kind: kindExec, pattern: insertSentEmailPattern},
		{kind: kindExec, pattern: regexp.MustCompile(`UPDATE .referee_assignments. SET .*report_due_at`)},
	}
	svc, transport, state, cleanup := newTestReminderService(t, steps)
	defer cleanup()

	summary, err := svc.RemindOverdueReports()
	if err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if summary.Matched != 1 || summary.Notified != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	calls := transport.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transmit, got %d", len(calls))
	}
	if calls[0].Subject != `Overdue Report: "On Widgets"` {
		t.Fatalf("unexpected subject: %s", calls[0].Subject)
	}
	if !strings.Contains(calls[0].Body, "due by Aug 1, 2026") {
		t.Fatalf("expected original due date in body, got:\n%s", calls[0].Body)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSweepIsolatesPerSubmissionFailures(t *testing.T) {
	primeSettingsCache(t, models.JournalSettings{
		JournalEmail:           "editors@example.edu",
		DaysToAssignAreaEditor: 14,
		DaysToRemindAreaEditor: 7,
	})

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .submissions. WHERE .*area_editor_id IS NULL AND archived = \? AND withdrawn = \?`),
			columns: []string{"submission_id", "title", "author_id"},
			rows: [][]driver.Value{
				{int64(7), "On Widgets", int64(3)},
				{int64(8), "On Gadgets", int64(4)},
			},
		},
		// First submission: recipient resolution fails.
		{
			kind:    kindQuery,
			pattern: managingEditorsPattern,
			err:     errors.New("connection reset"),
		},
		// Second submission proceeds normally.
		{
			kind:    kindQuery,
			pattern: managingEditorsPattern,
			columns: userColumns,
			rows:    [][]driver.Value{userRow(1, "Maya", "Chen", "maya@example.edu")},
		},
		{kind: kindExec, pattern: insertSentEmailPattern},
		{kind: kindExec, pattern: regexp.MustCompile(`UPDATE .submissions. SET .assignment_reminded_at.=`)},
	}
	svc, transport, state, cleanup := newTestReminderService(t, steps)
	defer cleanup()

	summary, err := svc.RemindOverdueAssignments()
	if err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if summary.Matched != 2 || summary.Notified != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	calls := transport.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transmit, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Subject, "On Gadgets") {
		t.Fatalf("expected the surviving submission's reminder, got %s", calls[0].Subject)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRunAllWithLockRefusesConcurrentRun(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT GET_LOCK\(\?, \?\)`),
			columns: []string{"GET_LOCK(?, ?)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
	}
	svc, _, state, cleanup := newTestReminderService(t, steps)
	defer cleanup()

	_, err := svc.RunAllWithLock("journal_reminders")
	if !errors.Is(err, ErrSweepAlreadyRunning) {
		t.Fatalf("expected ErrSweepAlreadyRunning, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRunSweepRejectsUnknownKind(t *testing.T) {
	svc, _, _, cleanup := newTestReminderService(t, nil)
	defer cleanup()

	_, err := svc.RunSweep("overdue_everything")
	if !errors.Is(err, ErrUnknownSweep) {
		t.Fatalf("expected ErrUnknownSweep, got %v", err)
	}
}
