package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskcycle/internal/model"
	"taskcycle/internal/repository"
	"taskcycle/internal/schedule"
)

// SweepResult aggregates one sweep pass for logs and the status surface.
type SweepResult struct {
	RunID      string
	Processed  int
	Created    int
	Closed     int
	Errors     int
	Skipped    bool
	FinishedAt time.Time
}

func (r SweepResult) String() string {
	if r.Skipped {
		return "skipped (already running)"
	}
	return fmt.Sprintf("run %s: processed=%d created=%d closed=%d errors=%d",
		r.RunID, r.Processed, r.Created, r.Closed, r.Errors)
}

// SweepService runs the two background passes: generating instances for due
// recurrence templates and closing stale completed tasks. Each pass isolates
// per-item failures so one bad record never aborts the rest.
type SweepService struct {
	tasks          *repository.TaskRepository
	materializer   *Materializer
	clock          schedule.Clock
	autoCloseAfter time.Duration

	// Single-flight guards: an invocation that overlaps a running pass of
	// the same kind coalesces into a skipped result instead of
	// double-processing.
	recurringMu sync.Mutex
	autoCloseMu sync.Mutex

	mu            sync.Mutex
	lastRecurring *SweepResult
	lastAutoClose *SweepResult
}

func NewSweepService(tasks *repository.TaskRepository, materializer *Materializer, clock schedule.Clock, autoCloseAfter time.Duration) *SweepService {
	if autoCloseAfter <= 0 {
		autoCloseAfter = 24 * time.Hour
	}
	return &SweepService{
		tasks:          tasks,
		materializer:   materializer,
		clock:          clock,
		autoCloseAfter: autoCloseAfter,
	}
}

// RunRecurringSweep evaluates every active root template once and
// materializes an instance for each positive decision.
func (s *SweepService) RunRecurringSweep(ctx context.Context) (SweepResult, error) {
	if !s.recurringMu.TryLock() {
		return SweepResult{Skipped: true}, nil
	}
	defer s.recurringMu.Unlock()

	now := s.clock.Now()
	result := SweepResult{RunID: uuid.NewString()}

	templates, err := s.tasks.ListActiveTemplates(ctx, now)
	if err != nil {
		return result, fmt.Errorf("recurring sweep: %w", err)
	}

	for i := range templates {
		template := &templates[i]
		result.Processed++

		created, err := s.processTemplate(ctx, template, now)
		switch {
		case errors.Is(err, schedule.ErrInvalidConfig), errors.Is(err, schedule.ErrUnknownPattern):
			log.Printf("[warn] recurring sweep %s: template %d skipped: %v", result.RunID, template.ID, err)
		case err != nil:
			result.Errors++
			log.Printf("[error] recurring sweep %s: template %d: %v", result.RunID, template.ID, err)
		case created:
			result.Created++
		}
	}

	result.FinishedAt = s.clock.Now()
	log.Printf("[info] recurring sweep %s", result)
	s.remember(&s.lastRecurring, result)
	return result, nil
}

func (s *SweepService) processTemplate(ctx context.Context, template *model.Task, now time.Time) (bool, error) {
	snap, err := s.snapshot(ctx, template, now)
	if err != nil {
		return false, err
	}

	due, err := schedule.ShouldGenerate(template.Recurrence, snap, now)
	if err != nil || !due {
		return false, err
	}

	if _, err := s.materializer.CreateInstance(ctx, template); err != nil {
		return false, err
	}
	return true, nil
}

// snapshot gathers only the storage facts the template's pattern needs.
func (s *SweepService) snapshot(ctx context.Context, template *model.Task, now time.Time) (schedule.Snapshot, error) {
	var snap schedule.Snapshot

	latest, err := s.tasks.LatestInstance(ctx, template.ID)
	if err != nil {
		return snap, err
	}
	if latest != nil {
		createdAt := latest.CreatedAt
		snap.LastCreatedAt = &createdAt
	}

	if template.Recurrence.EndAfterCount > 0 {
		total, err := s.tasks.CountInstances(ctx, template.ID)
		if err != nil {
			return snap, err
		}
		snap.Total = total
	}

	if template.Recurrence.Pattern == model.PatternThreeDaysAWeek {
		week, err := s.tasks.CountInstancesSince(ctx, template.ID, schedule.WeekStart(now))
		if err != nil {
			return snap, err
		}
		snap.CreatedThisWeek = week
	}

	return snap, nil
}

// RunAutoCloseSweep closes completed tasks that have sat untouched for the
// grace window.
func (s *SweepService) RunAutoCloseSweep(ctx context.Context) (SweepResult, error) {
	if !s.autoCloseMu.TryLock() {
		return SweepResult{Skipped: true}, nil
	}
	defer s.autoCloseMu.Unlock()

	now := s.clock.Now()
	result := SweepResult{RunID: uuid.NewString()}

	cutoff := now.Add(-s.autoCloseAfter)
	candidates, err := s.tasks.ListAutoCloseCandidates(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("auto-close sweep: %w", err)
	}

	for _, task := range candidates {
		result.Processed++
		if err := s.tasks.CloseTask(ctx, task.ID); err != nil {
			result.Errors++
			log.Printf("[error] auto-close sweep %s: task %d: %v", result.RunID, task.ID, err)
			continue
		}
		result.Closed++
	}

	result.FinishedAt = s.clock.Now()
	log.Printf("[info] auto-close sweep %s", result)
	s.remember(&s.lastAutoClose, result)
	return result, nil
}

func (s *SweepService) remember(slot **SweepResult, result SweepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*slot = &result
}

// LastResults returns the most recent result of each sweep, nil if a sweep
// has not run yet.
func (s *SweepService) LastResults() (recurring, autoClose *SweepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRecurring, s.lastAutoClose
}
