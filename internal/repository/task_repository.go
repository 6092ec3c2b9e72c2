package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskcycle/internal/model"
)

// TaskRepository handles storage access for templates and instances.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return nil, fmt.Errorf("find task %d: %w", taskID, err)
	}
	return &task, nil
}

// ListActiveTemplates loads all root recurrence templates that are not
// already past their end date. The precise due decision is the evaluator's
// job; this only narrows the candidate set at query time.
func (r *TaskRepository) ListActiveTemplates(ctx context.Context, now time.Time) ([]model.Task, error) {
	var templates []model.Task
	if err := r.db.WithContext(ctx).
		Where("is_recurring = ? AND parent_template_id IS NULL", true).
		Where("recur_end_date IS NULL OR recur_end_date >= ?", now).
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// LatestInstance returns the most recently created instance of a template,
// or nil if none was ever generated.
func (r *TaskRepository) LatestInstance(ctx context.Context, templateID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("parent_template_id = ?", templateID).
		Order("created_at DESC").
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest instance of template %d: %w", templateID, err)
	}
	return &task, nil
}

func (r *TaskRepository) CountInstances(ctx context.Context, templateID uint) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("parent_template_id = ?", templateID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count instances of template %d: %w", templateID, err)
	}
	return int(count), nil
}

func (r *TaskRepository) CountInstancesSince(ctx context.Context, templateID uint, since time.Time) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("parent_template_id = ? AND created_at >= ?", templateID, since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count recent instances of template %d: %w", templateID, err)
	}
	return int(count), nil
}

// ClaimFirstInstance records the id of a template's first generated instance.
// The conditional update makes it set-once: concurrent sweeps race the same
// UPDATE and only one wins.
func (r *TaskRepository) ClaimFirstInstance(ctx context.Context, templateID, instanceID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND first_instance_id IS NULL", templateID).
		Update("first_instance_id", instanceID).Error; err != nil {
		return fmt.Errorf("claim first instance of template %d: %w", templateID, err)
	}
	return nil
}

// ListAutoCloseCandidates finds completed tasks untouched since the cutoff.
func (r *TaskRepository) ListAutoCloseCandidates(ctx context.Context, cutoff time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at <= ?", model.StatusCompleted, cutoff).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list auto-close candidates: %w", err)
	}
	return tasks, nil
}

// CloseTask moves a completed task to closed. The status condition keeps the
// transition idempotent if another pass already closed it.
func (r *TaskRepository) CloseTask(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND status = ?", taskID, model.StatusCompleted).
		Update("status", model.StatusClosed).Error; err != nil {
		return fmt.Errorf("close task %d: %w", taskID, err)
	}
	return nil
}
