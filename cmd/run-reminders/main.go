package main

import (
	"flag"
	"fmt"
	"log"

	"journal-management-api/config"
	"journal-management-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	var (
		kind     string
		lockName string
	)

	flag.StringVar(&kind, "kind", "", "run a single sweep by name (optional, default runs all)")
	flag.StringVar(&lockName, "lock-name", "journal_reminders", "advisory lock name guarding concurrent runs")
	flag.Parse()

	// Sweeps finish before the process exits, so deliver inline.
	delivery := services.NewDeliveryService(config.DB, services.DeliverySync)
	svc := services.NewReminderService(config.DB, delivery)

	if kind != "" {
		summary, err := svc.RunSweep(kind)
		if err != nil {
			log.Fatalf("sweep %s failed: %v", kind, err)
		}
		printSummary(kind, summary)
		return
	}

	summaries, err := svc.RunAllWithLock(lockName)
	if err != nil {
		log.Fatalf("reminder run failed: %v", err)
	}
	for _, sweep := range svc.Sweeps() {
		if summary, ok := summaries[sweep.Name]; ok {
			printSummary(sweep.Name, summary)
		}
	}
}

func printSummary(kind string, s *services.SweepSummary) {
	fmt.Printf("%s: matched %d, notified %d, failed %d\n", kind, s.Matched, s.Notified, s.Failed)
}
