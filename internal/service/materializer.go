package service

import (
	"context"
	"fmt"

	"taskcycle/internal/model"
	"taskcycle/internal/repository"
	"taskcycle/internal/schedule"
)

// Materializer turns a due template into a concrete task instance.
type Materializer struct {
	tasks *repository.TaskRepository
	clock schedule.Clock
}

func NewMaterializer(tasks *repository.TaskRepository, clock schedule.Clock) *Materializer {
	return &Materializer{tasks: tasks, clock: clock}
}

// CreateInstance persists a new instance copied from the template and, on the
// very first materialization, records it as the template's first instance.
// Existing instances are never touched.
func (m *Materializer) CreateInstance(ctx context.Context, template *model.Task) (*model.Task, error) {
	now := m.clock.Now()
	instance := &model.Task{
		Title:            template.Title,
		Description:      template.Description,
		Assignee:         template.Assignee,
		AssignedRole:     template.AssignedRole,
		CreditCost:       template.CreditCost,
		DueDate:          template.DueDate,
		Files:            "",
		Status:           model.StatusSubmitted,
		IsRecurring:      false,
		ParentTemplateID: &template.ID,
		// Stamped from the injected clock: creation time drives every
		// due-date decision, so it must follow the same time source.
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.tasks.Create(ctx, instance); err != nil {
		return nil, fmt.Errorf("materialize template %d: %w", template.ID, err)
	}

	if template.FirstInstanceID == nil {
		if err := m.tasks.ClaimFirstInstance(ctx, template.ID, instance.ID); err != nil {
			return nil, fmt.Errorf("materialize template %d: %w", template.ID, err)
		}
	}

	return instance, nil
}
