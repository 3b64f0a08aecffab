package service

import (
	"context"
	"taskPrioritizer/internal/models/task"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Find(context.Context, task.Filter, task.SortOrder) ([]*task.Task, error)
	UpdateStatus(context.Context, uuid.UUID, string, task.StatusChange) (*task.Task, error)
}
