package interfaces

import (
	"context"
	"time"
)

// RollupOutcome is the result of one company's scheduled rollup
type RollupOutcome struct {
	Company string
	Status  string // built, skipped or failed
	Error   string
}

// SchedulerStatus describes the monthly schedule and its most recent pass
type SchedulerStatus struct {
	Schedule  string
	Companies []string
	Running   bool // cron started
	Busy      bool // a pass is in progress
	NextRun   *time.Time
	LastRun   *time.Time
	LastMonth string // YYYY-MM built by the last pass
	Outcomes  []RollupOutcome
}

// SchedulerService rebuilds last month's snapshots on a cron schedule
type SchedulerService interface {
	Start() error

	// Stop the scheduler, waiting for a scheduled pass to finish
	Stop() error

	IsRunning() bool

	// RunMonth builds the month for every configured company and blocks
	// until all of them are done
	RunMonth(ctx context.Context, year, month int) ([]RollupOutcome, error)

	// Trigger starts the previous month's pass now, in the background
	Trigger() error

	Status() SchedulerStatus
}
