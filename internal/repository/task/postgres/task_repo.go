package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"taskPrioritizer/internal/config"
	"taskPrioritizer/internal/logger"
	"taskPrioritizer/internal/models/task"
	repo "taskPrioritizer/internal/repository"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const slowQuery = 100 * time.Millisecond

const taskColumns = `id, title, difficulty, impact, time, urgency, score, status, status_changed, owner_id`

type Storage struct {
	pool *pgxpool.Pool
	url  string
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = int32(cfg.MinConnections)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, url: cfg.URL}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(title, difficulty, impact, time, urgency, score, status, status_changed, owner_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING id`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.Title,
		taskToCreate.Difficulty,
		taskToCreate.Impact,
		taskToCreate.Time,
		taskToCreate.Urgency,
		taskToCreate.Score,
		taskToCreate.Status,
		taskToCreate.StatusChanged,
		taskToCreate.OwnerID,
	).Scan(&taskToCreate.ID)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start, "create")
	return nil
}

func (s *Storage) Find(ctx context.Context, filter task.Filter, order task.SortOrder) ([]*task.Task, error) {
	start := time.Now()

	args := []any{filter.OwnerID}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $2`
	}

	switch order {
	case task.SortScoreDesc:
		query += ` ORDER BY score DESC`
	case task.SortStatusChangedDesc:
		query += ` ORDER BY status_changed DESC`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		found, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, found)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, "find")
	return tasks, nil
}

// проверка владельца, допустимости перехода и запись одним UPDATE, без чтения перед записью
func (s *Storage) UpdateStatus(ctx context.Context, id uuid.UUID, ownerID string, change task.StatusChange) (*task.Task, error) {
	start := time.Now()

	query := `UPDATE tasks
				SET status = $3,
				status_changed = $4
			WHERE id = $1 AND owner_id = $2 AND status = ANY($5::text[])
			RETURNING ` + taskColumns

	allowedFrom := []string{}
	for _, st := range change.AllowedFrom() {
		allowedFrom = append(allowedFrom, string(st))
	}

	updated, err := scanTask(s.pool.QueryRow(ctx, query, id, ownerID, change.Status, change.ChangedAt, allowedFrom))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить статус", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("обновление статуса: %w", err)
	}

	warnIfSlow(start, "update_status")
	return updated, nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")

	m, err := s.migrator()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(s.url))
	if err != nil {
		logger.Error("Repository: Не удалось создать мигратор", err)
		return nil, fmt.Errorf("создание мигратора: %w", err)
	}
	return m, nil
}

// драйвер pgx/v5 для migrate регистрируется под схемой pgx5
func migrateURL(url string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return url
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Difficulty,
		&t.Impact,
		&t.Time,
		&t.Urgency,
		&t.Score,
		&t.Status,
		&t.StatusChanged,
		&t.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func warnIfSlow(start time.Time, operation string) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", time.Since(start)))
	}
}
