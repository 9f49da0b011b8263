/*
scheduler.go - Automated monthly roster computation

PURPOSE:
  Periodically checks whether the previous calendar month has been
  computed for the roster and runs it when it has not. Payroll pulls
  persisted summaries, so the previous month must be materialized
  shortly after it ends without anyone pressing a button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Targets the month before the current one (the last closed month)
  - Skips months that already have persisted summaries
  - Per-employee failures inside a run are logged, never fatal

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRosterScheduler(store)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunRoster endpoint (manual trigger)
  - report/assembler.go: The batch runner driven here
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/allowance-engine/report"
)

// RosterScheduler computes the last closed month automatically.
type RosterScheduler struct {
	Store         report.Store
	Assembler     *report.Assembler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRosterScheduler creates a new scheduler.
func NewRosterScheduler(store report.Store) *RosterScheduler {
	return &RosterScheduler{
		Store:         store,
		Assembler:     report.NewAssembler(store),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *RosterScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *RosterScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RosterScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAndProcess()

	for {
		select {
		case <-rs.ticker.C:
			rs.checkAndProcess()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RosterScheduler) checkAndProcess() {
	ctx := context.Background()
	month := previousMonth(time.Now())

	summaries, err := rs.Store.Summaries(ctx, month)
	if err != nil {
		log.Printf("[Scheduler] Error checking summaries for %s: %v", month, err)
		return
	}
	if len(summaries) > 0 {
		return
	}

	log.Printf("[Scheduler] Computing roster for %s", month)
	run, err := rs.Assembler.RunRoster(ctx, month, 0)
	if err != nil {
		log.Printf("[Scheduler] Roster run for %s failed: %v", month, err)
		return
	}

	for _, f := range run.Failures {
		log.Printf("[Scheduler] Employee %s rejected: %v", f.EmployeeID, f.Err)
	}
	log.Printf("[Scheduler] Completed %s: %d computed, %d failed",
		month, len(run.Results), len(run.Failures))
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *RosterScheduler) RunNow() {
	rs.checkAndProcess()
}

func previousMonth(now time.Time) report.Month {
	t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return report.MonthOf(t.Year(), t.Month())
}
