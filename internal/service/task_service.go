package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"taskPrioritizer/internal/logger"
	"taskPrioritizer/internal/models/task"
	rep "taskPrioritizer/internal/repository"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock подменяет часы, используется в тестах
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID string, attrs task.Attributes) (*task.Task, error) {
	if ownerID == "" {
		return nil, NewAuthError("caller identity is required", nil)
	}

	// заголовок хранится как прислан, пробелы только не считаются текстом
	if strings.TrimSpace(attrs.Title) == "" {
		return nil, NewValidationError("title", "title must not be empty")
	}

	numeric := []struct {
		field string
		value float64
	}{
		{"difficulty", attrs.Difficulty},
		{"impact", attrs.Impact},
		{"time", attrs.Time},
		{"urgency", attrs.Urgency},
	}
	for _, n := range numeric {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return nil, NewValidationError(n.field, n.field+" must be a finite number")
		}
	}

	created := &task.Task{
		Title:      attrs.Title,
		Difficulty: attrs.Difficulty,
		Impact:     attrs.Impact,
		Time:       attrs.Time,
		Urgency:    attrs.Urgency,
		Score:      attrs.Score(),
		OwnerID:    ownerID,
	}
	task.StatusChange{Status: task.StatusNotStarted, ChangedAt: s.now().UnixMilli()}.Apply(created)

	if err := s.repo.Create(ctx, created); err != nil {
		return nil, NewStoreError("create", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.String("owner_id", ownerID),
		zap.Float64("score", created.Score))

	return created, nil
}

// без фильтра задачи отсортированы по score, с фильтром по времени смены статуса
func (s *TaskService) ListTasks(ctx context.Context, ownerID, status string) ([]*task.Task, error) {
	if ownerID == "" {
		return nil, NewAuthError("caller identity is required", nil)
	}

	filter := task.Filter{OwnerID: ownerID}
	order := task.SortScoreDesc

	if status != "" {
		parsed, err := task.ParseStatus(status)
		if err != nil {
			return nil, NewValidationError("status", fmt.Sprintf("invalid status %q", status))
		}
		filter.Status = parsed
		order = task.SortStatusChangedDesc
	}

	tasks, err := s.repo.Find(ctx, filter, order)
	if err != nil {
		return nil, NewStoreError("find", err)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *TaskService) ListCompletedTasks(ctx context.Context, ownerID string) ([]*task.Task, error) {
	return s.ListTasks(ctx, ownerID, string(task.StatusCompleted))
}

func (s *TaskService) UpdateTaskStatus(ctx context.Context, ownerID, taskID, status string) (*task.Task, error) {
	if ownerID == "" {
		return nil, NewAuthError("caller identity is required", nil)
	}
	if taskID == "" {
		return nil, NewValidationError("taskId", "taskId is required")
	}
	if status == "" {
		return nil, NewValidationError("status", "status is required")
	}

	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, NewValidationError("taskId", "invalid identifier format")
	}

	newStatus, err := task.ParseStatus(status)
	if err != nil {
		return nil, NewValidationError("status", fmt.Sprintf("invalid status %q", status))
	}

	change := task.StatusChange{Status: newStatus, ChangedAt: s.now().UnixMilli()}
	updated, err := s.repo.UpdateStatus(ctx, id, ownerID, change)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", taskID))
			return nil, NewNotFound(taskID)
		}
		return nil, NewStoreError("update_status", err)
	}

	logger.Info("Service: Статус задачи обновлён",
		zap.String("task_id", taskID),
		zap.String("status", string(newStatus)))

	return updated, nil
}
