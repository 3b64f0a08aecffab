package inmemory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"taskPrioritizer/internal/logger"
	"taskPrioritizer/internal/models/task"
	repo "taskPrioritizer/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

// наружу отдаются только копии, чтобы никто не менял хранилище в обход UpdateStatus
func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToCreate.ID = uuid.New()

	stored := *taskToCreate
	s.storage[stored.ID] = &stored
	s.ids = append(s.ids, stored.ID)
	return nil
}

func (s *TaskStorage) Find(ctx context.Context, filter task.Filter, order task.SortOrder) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		taskToGet := s.storage[id]
		if !filter.Matches(taskToGet) {
			continue
		}
		found := *taskToGet
		res = append(res, &found)
	}

	switch order {
	case task.SortScoreDesc:
		slices.SortStableFunc(res, func(a, b *task.Task) int {
			return cmp.Compare(b.Score, a.Score)
		})
	case task.SortStatusChangedDesc:
		slices.SortStableFunc(res, func(a, b *task.Task) int {
			return cmp.Compare(b.StatusChanged, a.StatusChanged)
		})
	}

	return res, nil
}

// проверка владельца и запись под одной блокировкой
func (s *TaskStorage) UpdateStatus(ctx context.Context, id uuid.UUID, ownerID string, change task.StatusChange) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToUpdate, ok := s.storage[id]
	if !ok || taskToUpdate.OwnerID != ownerID {
		return nil, repo.ErrNotFound
	}
	if !task.CanTransition(taskToUpdate.Status, change.Status) {
		return nil, repo.ErrNotFound
	}

	change.Apply(taskToUpdate)

	updated := *taskToUpdate
	return &updated, nil
}
