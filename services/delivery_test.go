package services

import (
	"errors"
	"regexp"
	"testing"

	"journal-management-api/models"
)

var insertSentEmailPattern = regexp.MustCompile(`INSERT INTO .sent_emails.`)

func testNotification() *Notification {
	subID := 7
	return &Notification{
		Action:       ActionInternalReviewOverdue,
		To:           []models.User{{UserID: 5, FirstName: "Ines", LastName: "Duarte", Email: "ines@example.edu"}},
		Cc:           []models.User{{UserID: 1, FirstName: "Maya", LastName: "Chen", Email: "maya@example.edu"}},
		Subject:      `Overdue Internal Review: "On Widgets"`,
		Body:         "Dear Ines Duarte,\n\nThe initial review is overdue.",
		SubmissionID: &subID,
	}
}

func TestSendRecordsLedgerRowAndTransmits(t *testing.T) {
	primeSettingsCache(t, models.JournalSettings{JournalEmail: "editors@example.edu"})

	steps := []*queryStep{
		{kind: kindExec, pattern: insertSentEmailPattern},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	transport := &capturingTransport{}
	svc := NewDeliveryService(db, DeliverySync)
	svc.SetTransport(transport.send)

	if err := svc.Send(testNotification()); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	calls := transport.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transmit, got %d", len(calls))
	}
	call := calls[0]
	if len(call.To) != 1 || call.To[0] != `"Ines Duarte" <ines@example.edu>` {
		t.Fatalf("unexpected to list: %v", call.To)
	}
	if len(call.Cc) != 1 || call.Cc[0] != `"Maya Chen" <maya@example.edu>` {
		t.Fatalf("unexpected cc list: %v", call.Cc)
	}
	if call.ReplyTo != "editors@example.edu" {
		t.Fatalf("unexpected reply-to: %s", call.ReplyTo)
	}
	if call.Subject != `Overdue Internal Review: "On Widgets"` {
		t.Fatalf("unexpected subject: %s", call.Subject)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSendSurfacesTransportErrorInSyncMode(t *testing.T) {
	primeSettingsCache(t, models.JournalSettings{JournalEmail: "editors@example.edu"})

	steps := []*queryStep{
		{kind: kindExec, pattern: insertSentEmailPattern},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	wantErr := errors.New("smtp unreachable")
	transport := &capturingTransport{err: wantErr}
	svc := NewDeliveryService(db, DeliverySync)
	svc.SetTransport(transport.send)

	if err := svc.Send(testNotification()); !errors.Is(err, wantErr) {
		t.Fatalf("expected transport error, got %v", err)
	}

	// The ledger row was still written before the failed transmit.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSendSkipsTransmitWithoutRecipients(t *testing.T) {
	steps := []*queryStep{
		{kind: kindExec, pattern: insertSentEmailPattern},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	transport := &capturingTransport{}
	svc := NewDeliveryService(db, DeliverySync)
	svc.SetTransport(transport.send)

	n := testNotification()
	n.To = nil
	n.Cc = nil
	if err := svc.Send(n); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if calls := transport.sent(); len(calls) != 0 {
		t.Fatalf("expected no transmit for empty recipients, got %d", len(calls))
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSendDoesNotTransmitWhenLedgerWriteFails(t *testing.T) {
	steps := []*queryStep{
		{kind: kindExec, pattern: insertSentEmailPattern, err: errors.New("table is read only")},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	transport := &capturingTransport{}
	svc := NewDeliveryService(db, DeliverySync)
	svc.SetTransport(transport.send)

	if err := svc.Send(testNotification()); err == nil {
		t.Fatal("expected error when ledger write fails")
	}
	if calls := transport.sent(); len(calls) != 0 {
		t.Fatalf("expected no transmit after failed ledger write, got %d", len(calls))
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestDeferredDeliveryDrainsQueueOnStop(t *testing.T) {
	primeSettingsCache(t, models.JournalSettings{JournalEmail: "editors@example.edu"})

	steps := []*queryStep{
		{kind: kindExec, pattern: insertSentEmailPattern},
		{kind: kindExec, pattern: insertSentEmailPattern},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	transport := &capturingTransport{}
	svc := NewDeliveryService(db, DeliveryDeferred)
	svc.SetTransport(transport.send)

	if err := svc.Send(testNotification()); err != nil {
		t.Fatalf("first Send returned error: %v", err)
	}
	if err := svc.Send(testNotification()); err != nil {
		t.Fatalf("second Send returned error: %v", err)
	}

	svc.Stop()

	if calls := transport.sent(); len(calls) != 2 {
		t.Fatalf("expected 2 transmits after Stop, got %d", len(calls))
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
