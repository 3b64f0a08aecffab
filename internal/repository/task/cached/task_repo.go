// Package cached оборачивает хранилище задач кэшем списков (cache-aside).
// Ключи списков содержат поколение владельца; каждая запись владельца
// увеличивает поколение, и старые списки больше не читаются.
package cached

import (
	"context"
	"fmt"
	"taskPrioritizer/internal/logger"
	"taskPrioritizer/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Repository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Find(context.Context, task.Filter, task.SortOrder) ([]*task.Task, error)
	UpdateStatus(context.Context, uuid.UUID, string, task.StatusChange) (*task.Task, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
}

type TaskStorage struct {
	next  Repository
	cache Cache
	group singleflight.Group
}

func New(next Repository, cache Cache) *TaskStorage {
	return &TaskStorage{
		next:  next,
		cache: cache,
	}
}

// недоступный кэш не делает сервис нездоровым, чтение идёт в хранилище
func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	if err := s.cache.Ping(ctx); err != nil {
		logger.Warn("Cache: Redis не отвечает, списки читаются из хранилища", zap.Error(err))
	}
	return s.next.HealthCheck(ctx)
}

func (s *TaskStorage) Create(ctx context.Context, t *task.Task) error {
	if err := s.next.Create(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx, t.OwnerID)
	return nil
}

// ошибки кэша не ломают чтение, идём в хранилище
func (s *TaskStorage) Find(ctx context.Context, filter task.Filter, order task.SortOrder) ([]*task.Task, error) {
	// поколение читается до похода в хранилище: запись после этого момента
	// сменит поколение, и загруженный список попадёт под уже мёртвый ключ
	gen, err := s.generation(ctx, filter.OwnerID)
	if err != nil {
		logger.Warn("Cache: Ошибка чтения поколения", zap.String("owner_id", filter.OwnerID), zap.Error(err))
		return s.next.Find(ctx, filter, order)
	}

	key := listKey(filter, order, gen)

	var tasks []*task.Task
	found, err := s.cache.Get(ctx, key, &tasks)
	if err != nil {
		logger.Warn("Cache: Ошибка чтения", zap.String("key", key), zap.Error(err))
	}
	if found && tasks != nil {
		return tasks, nil
	}

	// загрузка общая для всех ожидающих, отмена одного из них не должна её прерывать
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		loaded, err := s.next.Find(loadCtx, filter, order)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(loadCtx, key, loaded); err != nil {
			logger.Warn("Cache: Ошибка записи", zap.String("key", key), zap.Error(err))
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	// результат singleflight общий для всех ожидающих, отдаём копии
	shared := v.([]*task.Task)
	result := make([]*task.Task, len(shared))
	for i, t := range shared {
		copied := *t
		result[i] = &copied
	}
	return result, nil
}

func (s *TaskStorage) UpdateStatus(ctx context.Context, id uuid.UUID, ownerID string, change task.StatusChange) (*task.Task, error) {
	updated, err := s.next.UpdateStatus(ctx, id, ownerID, change)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return updated, nil
}

func (s *TaskStorage) generation(ctx context.Context, ownerID string) (int64, error) {
	var gen int64
	if _, err := s.cache.Get(ctx, generationKey(ownerID), &gen); err != nil {
		return 0, err
	}
	return gen, nil
}

func (s *TaskStorage) invalidate(ctx context.Context, ownerID string) {
	if _, err := s.cache.Incr(context.WithoutCancel(ctx), generationKey(ownerID)); err != nil {
		// до истечения TTL владелец может увидеть старый список
		logger.Warn("Cache: Не удалось сменить поколение списков",
			zap.String("owner_id", ownerID),
			zap.Error(err))
	}
}

// ключ поколения оканчивается на "gen", ключ списка на номер сортировки,
// поэтому они не пересекаются при любом owner_id
func generationKey(ownerID string) string {
	return "tasks:" + ownerID + ":gen"
}

func listKey(filter task.Filter, order task.SortOrder, gen int64) string {
	status := string(filter.Status)
	if status == "" {
		status = "ALL"
	}
	return fmt.Sprintf("tasks:%s:%d:%s:%d", filter.OwnerID, gen, status, order)
}
