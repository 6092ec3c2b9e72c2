package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerStatus is the operational view of the driver.
type SchedulerStatus struct {
	Running        bool
	CronExpression string
	Timezone       string
	NextRun        string
}

// SchedulerService drives the daily sweep pair off a cron timer. The timer
// path only logs failures; TriggerNow propagates them to the caller.
type SchedulerService struct {
	cron   *cron.Cron
	sweeps *SweepService
	spec   string
	expr   string // five-field form reported by Status
	loc    *time.Location

	mu      sync.Mutex
	entryID cron.EntryID
	running bool
}

func NewSchedulerService(sweeps *SweepService, timeStr string, loc *time.Location) (*SchedulerService, error) {
	spec, expr, err := buildDailySpec(timeStr)
	if err != nil {
		return nil, err
	}
	return &SchedulerService{
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		sweeps: sweeps,
		spec:   spec,
		expr:   expr,
		loc:    loc,
	}, nil
}

// Start installs the daily tick and starts the timer. Calling it while
// already running replaces the existing registration, so a restart never
// leaves two ticks behind.
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.cron.Remove(s.entryID)
	}
	id, err := s.cron.AddFunc(s.spec, s.tick)
	if err != nil {
		return fmt.Errorf("schedule sweeps: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true
	log.Printf("[info] scheduler started (%s %s)", s.expr, s.loc)
	return nil
}

// Stop cancels the pending timer registration. An in-flight tick runs to
// completion.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Remove(s.entryID)
	<-s.cron.Stop().Done()
	s.running = false
	log.Println("[info] scheduler stopped")
}

// TriggerNow runs both sweeps immediately and reports their outcome. Unlike
// the timer path, a failure here reaches the caller.
func (s *SchedulerService) TriggerNow(ctx context.Context) (recurring, autoClose SweepResult, err error) {
	return s.runSweeps(ctx)
}

func (s *SchedulerService) tick() {
	if _, _, err := s.runSweeps(context.Background()); err != nil {
		log.Printf("[error] scheduled sweep: %v", err)
	}
}

// runSweeps runs the recurring and auto-close passes concurrently and waits
// for both. The sweeps are independent and share nothing but storage.
func (s *SchedulerService) runSweeps(ctx context.Context) (SweepResult, SweepResult, error) {
	var (
		wg                 sync.WaitGroup
		recurring, closed  SweepResult
		recurErr, closeErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		recurring, recurErr = s.sweeps.RunRecurringSweep(ctx)
	}()
	go func() {
		defer wg.Done()
		closed, closeErr = s.sweeps.RunAutoCloseSweep(ctx)
	}()
	wg.Wait()
	return recurring, closed, errors.Join(recurErr, closeErr)
}

// Status reports whether the driver is running and when it fires next.
func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SchedulerStatus{
		Running:        s.running,
		CronExpression: s.expr,
		Timezone:       s.loc.String(),
		NextRun:        "not scheduled",
	}
	if s.running {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			status.NextRun = next.Format(time.RFC3339)
		}
	}
	return status
}

// buildDailySpec turns an HH:MM time into the six-field cron spec the timer
// consumes and the five-field expression reported by Status.
func buildDailySpec(timeStr string) (spec, expr string, err error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	spec = fmt.Sprintf("0 %d %d * * *", minute, hour)
	expr = fmt.Sprintf("%d %d * * *", minute, hour)
	return spec, expr, nil
}
