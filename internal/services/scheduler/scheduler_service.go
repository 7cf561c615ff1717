package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/common"
	"github.com/ternarybob/monthlens/internal/interfaces"
)

// Outcome statuses of a company's scheduled rollup
const (
	OutcomeBuilt   = "built"
	OutcomeSkipped = "skipped" // snapshot already stored and force is off
	OutcomeFailed  = "failed"
)

// RunFunc builds one report for a company and month
type RunFunc func(ctx context.Context, company string, year, month int) error

// Service fires the monthly rollup pass over the configured companies
type Service struct {
	cron      *cron.Cron
	logger    arbor.ILogger
	loc       *time.Location
	schedule  string
	companies []string
	run       RunFunc
	now       func() time.Time

	passMu sync.Mutex // one pass at a time

	mu        sync.Mutex
	entryID   cron.EntryID
	running   bool
	busy      bool
	lastRun   *time.Time
	lastMonth string
	outcomes  []interfaces.RollupOutcome
}

var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates a scheduler firing schedule (5-field cron) in loc.
// Each company string may name several accounts separated by commas.
func NewService(logger arbor.ILogger, schedule string, companies []string, loc *time.Location, run RunFunc) (*Service, error) {
	if err := common.ValidateSchedule(schedule); err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("scheduler needs a rollup function")
	}
	if loc == nil {
		loc = time.Local
	}

	s := &Service{
		cron:      cron.New(cron.WithLocation(loc)),
		logger:    logger,
		loc:       loc,
		schedule:  schedule,
		companies: append([]string(nil), companies...),
		run:       run,
		now:       time.Now,
	}

	id, err := s.cron.AddFunc(schedule, s.runPreviousMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to add monthly rollup to cron: %w", err)
	}
	s.entryID = id
	return s, nil
}

// Start begins firing the schedule
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Int("companies", len(s.companies)).
		Msg("Monthly rollup scheduler started")
	return nil
}

// Stop halts the schedule and waits for a scheduled pass in flight
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Monthly rollup scheduler stopped")
	return nil
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Trigger runs the previous month's pass in the background
func (s *Service) Trigger() error {
	s.mu.Lock()
	busy := s.busy
	s.mu.Unlock()
	if busy {
		return fmt.Errorf("monthly rollup already in progress")
	}

	s.logger.Info().Msg("Manually triggering monthly rollup")
	common.SafeGo(s.logger, "scheduler.monthly_rollup", s.runPreviousMonth)
	return nil
}

func (s *Service) runPreviousMonth() {
	year, month := PreviousMonth(s.now(), s.loc)
	if _, err := s.RunMonth(context.Background(), year, month); err != nil {
		s.logger.Error().Err(err).Msg("Monthly rollup pass finished with failures")
	}
}

// RunMonth builds year-month for every company. A failing company does not
// stop the others; the error only counts them.
func (s *Service) RunMonth(ctx context.Context, year, month int) ([]interfaces.RollupOutcome, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	label := fmt.Sprintf("%04d-%02d", year, month)
	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	started := time.Now()
	s.logger.Info().
		Str("month", label).
		Strs("companies", s.companies).
		Msg("Monthly rollup pass started")

	outcomes := make([]interfaces.RollupOutcome, 0, len(s.companies))
	failed := 0
	for _, company := range s.companies {
		outcome := s.runCompany(ctx, company, year, month)
		if outcome.Status == OutcomeFailed {
			failed++
		}
		outcomes = append(outcomes, outcome)
	}

	completed := s.now()
	s.mu.Lock()
	s.busy = false
	s.lastRun = &completed
	s.lastMonth = label
	s.outcomes = outcomes
	s.mu.Unlock()

	s.logger.Info().
		Str("month", label).
		Int("failed", failed).
		Str("duration", time.Since(started).String()).
		Int64("goroutines_spawned", common.GetGoroutineCount()).
		Msg("Monthly rollup pass completed")

	if failed > 0 {
		return outcomes, fmt.Errorf("%d of %d scheduled rollups failed", failed, len(s.companies))
	}
	return outcomes, nil
}

// runCompany turns an error or panic into a failed outcome
func (s *Service) runCompany(ctx context.Context, company string, year, month int) (outcome interfaces.RollupOutcome) {
	outcome = interfaces.RollupOutcome{Company: company, Status: OutcomeBuilt}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("company", company).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scheduled rollup")
			outcome.Status = OutcomeFailed
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	err := s.run(ctx, company, year, month)
	switch {
	case errors.Is(err, interfaces.ErrSnapshotExists):
		outcome.Status = OutcomeSkipped
		s.logger.Info().Str("company", company).Int("year", year).Int("month", month).Msg("Snapshot already stored - skipped")
	case err != nil:
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		s.logger.Error().Err(err).Str("company", company).Int("year", year).Int("month", month).Msg("Scheduled rollup failed")
	default:
		s.logger.Info().Str("company", company).Int("year", year).Int("month", month).Msg("Scheduled rollup completed")
	}
	return outcome
}

// Status reports the schedule and the last pass
func (s *Service) Status() interfaces.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := interfaces.SchedulerStatus{
		Schedule:  s.schedule,
		Companies: append([]string(nil), s.companies...),
		Running:   s.running,
		Busy:      s.busy,
		LastRun:   s.lastRun,
		LastMonth: s.lastMonth,
		Outcomes:  append([]interfaces.RollupOutcome(nil), s.outcomes...),
	}
	if s.running {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}

// PreviousMonth returns the calendar month before now in loc
func PreviousMonth(now time.Time, loc *time.Location) (int, int) {
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
	return first.Year(), int(first.Month())
}
