package handlers

import (
	"context"
	"taskPrioritizer/internal/models/task"
)

type TaskService interface {
	HealthCheck(context.Context) error
	CreateTask(ctx context.Context, ownerID string, attrs task.Attributes) (*task.Task, error)
	ListTasks(ctx context.Context, ownerID, status string) ([]*task.Task, error)
	ListCompletedTasks(ctx context.Context, ownerID string) ([]*task.Task, error)
	UpdateTaskStatus(ctx context.Context, ownerID, taskID, status string) (*task.Task, error)
}
