package services

import (
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"journal-management-api/models"
)

var (
	completedAssignmentsPattern = regexp.MustCompile(`SELECT .* FROM .referee_assignments. WHERE submission_id = \? AND report_completed = \? AND canceled = \? ORDER BY assignment_id ASC`)
	fileUploadPattern           = regexp.MustCompile(`SELECT .* FROM .file_uploads. WHERE file_id = \?.*LIMIT`)
)

func newTestNotificationService(t *testing.T, steps []*queryStep) (*NotificationService, *capturingTransport, *scriptedDB, func()) {
	t.Helper()
	db, state, cleanup := newScriptedGormDB(t, steps)

	transport := &capturingTransport{}
	delivery := NewDeliveryService(db, DeliverySync)
	delivery.SetTransport(transport.send)

	return NewNotificationService(db, delivery), transport, state, cleanup
}

func TestDispatchComposesDeclineNotification(t *testing.T) {
	primeSettingsCache(t, models.JournalSettings{JournalEmail: "editors@example.edu"})

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userByIDPattern,
			columns: userColumns,
			rows:    [][]driver.Value{userRow(5, "Ines", "Duarte", "ines@example.edu")},
		},
		{
			kind:    kindQuery,
			pattern: userByIDPattern,
			columns: userColumns,
			rows:    [][]driver.Value{userRow(9, "Rami", "Haddad", "rami@example.edu")},
		},
		{kind: kindExec, pattern: insertSentEmailPattern},
	}
	svc, transport, state, cleanup := newTestNotificationService(t, steps)
	defer cleanup()

	aeID := 5
	comment := "too busy this semester"
	agreed := false
	sub := &models.Submission{SubmissionID: 7, Title: "On Widgets", AreaEditorID: &aeID}
	a := &models.RefereeAssignment{
		AssignmentID:   3,
		SubmissionID:   7,
		RefereeID:      9,
		RefereeLetter:  "Referee A",
		Agreed:         &agreed,
		DeclineComment: &comment,
	}

	if err := svc.Dispatch(ActionRefereeRequestDeclined, DispatchContext{Submission: sub, Assignment: a}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	calls := transport.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transmit, got %d", len(calls))
	}
	call := calls[0]
	if call.Subject != `Referee Request Declined: "On Widgets"` {
		t.Fatalf("unexpected subject: %s", call.Subject)
	}
	if !strings.Contains(call.Body, "Dear Ines Duarte,") {
		t.Fatalf("expected body to address the area editor, got:\n%s", call.Body)
	}
	if !strings.Contains(call.Body, "Rami Haddad has declined") {
		t.Fatalf("expected body to name the referee, got:\n%s", call.Body)
	}
	if !strings.Contains(call.Body, "Comment: too busy this semester") {
		t.Fatalf("expected decline comment in body, got:\n%s", call.Body)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRefereeOutcomeExcludesOwnReport(t *testing.T) {
	primeSettingsCache(t, models.JournalSettings{JournalEmail: "editors@example.edu"})

	dir := t.TempDir()
	reportPath := filepath.Join(dir, "stored-report-b")
	if err := os.WriteFile(reportPath, []byte("comments for the author"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userByIDPattern,
			columns: userColumns,
			rows:    [][]driver.Value{userRow(9, "Rami", "Haddad", "rami@example.edu")},
		},
		{
			kind:    kindQuery,
			pattern: completedAssignmentsPattern,
			columns: []string{"assignment_id", "attachment_for_author_file_id"},
			rows: [][]driver.Value{
				{int64(1), int64(11)},
				{int64(2), int64(22)},
			},
		},
		{
			kind:    kindQuery,
			pattern: fileUploadPattern,
			columns: []string{"file_id", "original_name", "stored_path"},
			rows:    [][]driver.Value{{int64(22), "report-b.pdf", reportPath}},
		},
		{kind: kindExec, pattern: insertSentEmailPattern},
	}
	svc, transport, state, cleanup := newTestNotificationService(t, steps)
	defer cleanup()

	sub := &models.Submission{SubmissionID: 7, Title: "On Widgets", Decision: models.DecisionAccept, DecisionApproved: true}
	a := &models.RefereeAssignment{AssignmentID: 1, SubmissionID: 7, RefereeID: 9, RefereeLetter: "Referee A"}

	if err := svc.Dispatch(ActionRefereeOutcome, DispatchContext{Submission: sub, Assignment: a}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	calls := transport.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transmit, got %d", len(calls))
	}
	call := calls[0]
	if !strings.Contains(call.Body, "The decision was accept") {
		t.Fatalf("expected decision in body, got:\n%s", call.Body)
	}
	if len(call.Attachments) != 1 {
		t.Fatalf("expected exactly the other referee's report attached, got %d attachments", len(call.Attachments))
	}
	if call.Attachments[0].Filename != "report-b.pdf" {
		t.Fatalf("unexpected attachment: %s", call.Attachments[0].Filename)
	}
	if string(call.Attachments[0].Content) != "comments for the author" {
		t.Fatalf("unexpected attachment content: %q", call.Attachments[0].Content)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestDispatchRequiresRecipientsWhenConfigured(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: managingEditorsPattern,
			columns: userColumns,
			rows:    [][]driver.Value{},
		},
	}
	svc, transport, state, cleanup := newTestNotificationService(t, steps)
	defer cleanup()
	svc.RequireRecipients = true

	sub := &models.Submission{SubmissionID: 7, Title: "On Widgets"}
	err := svc.Dispatch(ActionAssignmentOverdue, DispatchContext{Submission: sub})
	if !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}

	if calls := transport.sent(); len(calls) != 0 {
		t.Fatalf("expected no transmit, got %d", len(calls))
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
