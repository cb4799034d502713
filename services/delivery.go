package services

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"strings"
	"sync"
	"time"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

// DeliveryMode selects how the transport step runs.
type DeliveryMode int

const (
	// DeliverySync records and transmits on the calling goroutine,
	// surfacing transport errors to the caller. Used by tests and the
	// reminder CLI.
	DeliverySync DeliveryMode = iota
	// DeliveryDeferred records on the calling goroutine and transmits
	// on a bounded worker pool, so request handling and sweeps never
	// block on SMTP latency. Transport failures are logged only.
	DeliveryDeferred
)

// TransportFunc matches config.SendMail and can be swapped in tests.
type TransportFunc func(to, cc []string, replyTo, subject, body string, attachments []config.MailAttachment) error

const (
	deliveryWorkers   = 4
	deliveryQueueSize = 64
)

// DeliveryService implements send-and-record: every notification handed
// to Send produces exactly one sent_emails row, written before the
// transport step starts. There is no retry; a failed transmit leaves
// the ledger row as the audit trail.
type DeliveryService struct {
	db        *gorm.DB
	mode      DeliveryMode
	transport TransportFunc

	jobs     chan *Notification
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewDeliveryService(db *gorm.DB, mode DeliveryMode) *DeliveryService {
	if db == nil {
		db = config.DB
	}
	s := &DeliveryService{
		db:        db,
		mode:      mode,
		transport: config.SendMail,
	}
	if mode == DeliveryDeferred {
		s.jobs = make(chan *Notification, deliveryQueueSize)
		for i := 0; i < deliveryWorkers; i++ {
			s.wg.Add(1)
			go s.worker()
		}
	}
	return s
}

var (
	defaultDeliveryOnce sync.Once
	defaultDelivery     *DeliveryService
)

// DefaultDelivery returns the process-wide delivery channel used by the
// HTTP handlers. Deferred unless DELIVERY_MODE=sync.
func DefaultDelivery() *DeliveryService {
	defaultDeliveryOnce.Do(func() {
		mode := DeliveryDeferred
		if strings.EqualFold(os.Getenv("DELIVERY_MODE"), "sync") {
			mode = DeliverySync
		}
		defaultDelivery = NewDeliveryService(nil, mode)
	})
	return defaultDelivery
}

// SetTransport replaces the SMTP transport, for tests.
func (s *DeliveryService) SetTransport(fn TransportFunc) {
	s.transport = fn
}

// Send records the notification in the ledger and then transmits it.
// In deferred mode the transmit is queued and Send never reports
// transport failures; enqueueing blocks once the queue is full, which
// bounds memory under sweep bursts.
func (s *DeliveryService) Send(n *Notification) error {
	if err := s.record(n); err != nil {
		// Without a ledger row we do not transmit: the ledger must never
		// under-report what was sent.
		return err
	}

	if s.mode == DeliverySync {
		return s.transmit(n)
	}

	s.jobs <- n
	return nil
}

// Stop drains the deferred queue and waits for in-flight transmits.
func (s *DeliveryService) Stop() {
	if s.mode != DeliveryDeferred {
		return
	}
	s.stopOnce.Do(func() {
		close(s.jobs)
	})
	s.wg.Wait()
}

func (s *DeliveryService) worker() {
	defer s.wg.Done()
	for n := range s.jobs {
		if err := s.transmit(n); err != nil {
			log.Printf("notification email send failed (action=%s subject=%q): %v", n.Action, n.Subject, err)
		}
	}
}

func (s *DeliveryService) record(n *Notification) error {
	row := models.SentEmail{
		SubmissionID:        n.SubmissionID,
		RefereeAssignmentID: n.RefereeAssignmentID,
		Action:              n.Action,
		Subject:             n.Subject,
		To:                  joinAddresses(n.To),
		Cc:                  joinAddresses(n.Cc),
		Body:                n.Body,
		Attachments:         attachmentManifest(n.Attachments),
		CreateAt:            time.Now(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record sent email: %w", err)
	}
	return nil
}

func (s *DeliveryService) transmit(n *Notification) error {
	if len(n.To) == 0 && len(n.Cc) == 0 {
		return nil
	}
	return s.transport(
		addressList(n.To),
		addressList(n.Cc),
		s.replyTo(),
		n.Subject,
		n.Body,
		n.Attachments,
	)
}

// replyTo resolves the journal's sender identity; replies to any
// notification go back to the editorial office.
func (s *DeliveryService) replyTo() string {
	settings, err := GetJournalSettings(s.db)
	if err != nil {
		log.Printf("falling back to JOURNAL_EMAIL env: %v", err)
		return os.Getenv("JOURNAL_EMAIL")
	}
	return settings.JournalEmail
}

func addressList(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		addr := mail.Address{Name: u.FullName(), Address: u.Email}
		out = append(out, addr.String())
	}
	return out
}

func joinAddresses(users []models.User) string {
	return strings.Join(addressList(users), ", ")
}

func attachmentManifest(attachments []config.MailAttachment) string {
	names := make([]string, 0, len(attachments))
	for _, at := range attachments {
		names = append(names, at.Filename)
	}
	return strings.Join(names, ", ")
}
