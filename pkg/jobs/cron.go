package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/store"
)

// DefaultOverdueSchedule runs the overdue sweep daily at 1 AM
const DefaultOverdueSchedule = "0 1 * * *"

// CronManager manages scheduled jobs
type CronManager struct {
	cron    *cron.Cron
	store   *store.Store
	metrics *metrics.Metrics
	logger  *log.Logger
	now     func() time.Time
}

// NewCronManager creates a new cron manager
func NewCronManager(st *store.Store, m *metrics.Metrics, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:    cron.New(),
		store:   st,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// SetupJobs configures all scheduled jobs. An empty schedule uses
// DefaultOverdueSchedule.
func (cm *CronManager) SetupJobs(overdueSchedule string) error {
	if overdueSchedule == "" {
		overdueSchedule = DefaultOverdueSchedule
	}
	cm.logger.Println("Setting up cron jobs...")

	_, err := cm.cron.AddFunc(overdueSchedule, func() {
		cm.logger.Println("🕐 Running overdue invoice sweep...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		n, err := cm.SweepOverdue(ctx)
		if err != nil {
			cm.logger.Printf("❌ Overdue sweep failed: %v", err)
			return
		}
		cm.logger.Printf("✅ Overdue sweep completed (%d invoices marked)", n)
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Printf("  - %s: Mark sent invoices past due as overdue", overdueSchedule)
	return nil
}

// SweepOverdue marks every sent invoice whose due date has passed as
// overdue and returns how many changed
func (cm *CronManager) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := cm.store.Invoices().MarkOverdue(ctx, cm.now())
	if err != nil {
		return 0, err
	}
	cm.metrics.RecordOverdueMarked(n)
	return n, nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler and waits for a running sweep
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	<-cm.cron.Stop().Done()
}
