package services

import (
	"log"
	"os"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService drives the reminder sweeps on a fixed daily cadence. The
// skip-if-still-running chain gives the sweeps their non-overlap
// guarantee: a slow run swallows the next slot instead of racing it.
type CronService struct {
	cron      *cron.Cron
	reminders *ReminderService
}

func NewCronService(db *gorm.DB, delivery *DeliveryService) *CronService {
	return &CronService{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		reminders: NewReminderService(db, delivery),
	}
}

// Start registers the sweep schedule and launches the scheduler.
// REMINDER_CRON overrides the default 07:30 daily slot.
func (s *CronService) Start() {
	schedule := os.Getenv("REMINDER_CRON")
	if schedule == "" {
		schedule = "30 7 * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		results := s.reminders.RunAll()
		for name, summary := range results {
			if summary.Matched > 0 {
				log.Printf("reminder sweep %s: matched=%d notified=%d failed=%d",
					name, summary.Matched, summary.Notified, summary.Failed)
			}
		}
	})
	if err != nil {
		log.Printf("failed to schedule reminder sweeps: %v", err)
		return
	}

	s.cron.Start()
	log.Printf("Reminder scheduler started (cron %q)", schedule)
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Reminder scheduler stopped")
}
