package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultOverdueScanCron runs the sweep every 10 minutes
const DefaultOverdueScanCron = "*/10 * * * *"

// OverdueService runs the scheduled sweep that moves ACTIVE borrows past
// their due date to OVERDUE
type OverdueService struct {
	borrowService *BorrowService
	schedule      string
	cron          *cron.Cron
}

// NewOverdueService creates a new overdue sweep service
func NewOverdueService(borrowService *BorrowService, schedule string) *OverdueService {
	if schedule == "" {
		schedule = DefaultOverdueScanCron
	}
	return &OverdueService{
		borrowService: borrowService,
		schedule:      schedule,
		cron:          cron.New(),
	}
}

// Start schedules the sweep and runs it once right away so a restart does
// not wait a full interval to catch up
func (s *OverdueService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("🚀 OverdueService started [schedule: %s]", s.schedule)

	go s.runSweep()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *OverdueService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 OverdueService stopped")
}

func (s *OverdueService) runSweep() {
	count, err := s.borrowService.ScanOverdue(context.Background(), time.Now())
	if err != nil {
		log.Printf("❌ Overdue sweep error: %v", err)
		return
	}
	if count > 0 {
		log.Printf("⏰ Overdue sweep: %d borrow(s) moved to OVERDUE", count)
	}
}
