package service_test

import (
	"context"
	"errors"
	"math"
	"taskPrioritizer/internal/models/task"
	"taskPrioritizer/internal/repository"
	"taskPrioritizer/internal/repository/task/inmemory"
	"taskPrioritizer/internal/service"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Find(ctx context.Context, filter task.Filter, order task.SortOrder) ([]*task.Task, error) {
	args := m.Called(ctx, filter, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, ownerID string, change task.StatusChange) (*task.Task, error) {
	args := m.Called(ctx, id, ownerID, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newService(repo service.TaskRepository) *service.TaskService {
	return service.NewTaskService(repo).WithClock(func() time.Time { return fixedNow })
}

// TestTaskService_HealthCheck тестирует HealthCheck
func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectError: false,
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := newService(mockRepo)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "проверка здоровья сервиса")
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_CreateTask тестирует создание задачи
func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	assignedID := uuid.New()

	t.Run("success - score, status and owner are set by the server", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return t.Title == "  Test Task  " &&
				t.OwnerID == "user-1" &&
				t.Status == task.StatusNotStarted &&
				t.StatusChanged == fixedNow.UnixMilli()
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*task.Task).ID = assignedID
		}).Return(nil)

		svc := newService(mockRepo)
		created, err := svc.CreateTask(ctx, "user-1", task.Attributes{
			Title: "  Test Task  ", Difficulty: 5, Impact: 8, Time: 3, Urgency: 13,
		})

		require.NoError(t, err)
		assert.Equal(t, assignedID, created.ID)
		assert.Equal(t, "  Test Task  ", created.Title)
		assert.InDelta(t, 29.3189, created.Score, 1e-4)
		assert.Equal(t, task.StatusNotStarted, created.Status)
		mockRepo.AssertExpectations(t)
	})

	tests := []struct {
		name     string
		ownerID  string
		attrs    task.Attributes
		wantCode string
	}{
		{
			name:     "error - no owner",
			ownerID:  "",
			attrs:    task.Attributes{Title: "x"},
			wantCode: service.CodeAuth,
		},
		{
			name:     "error - empty title",
			ownerID:  "user-1",
			attrs:    task.Attributes{Title: "   "},
			wantCode: service.CodeValidation,
		},
		{
			name:     "error - NaN difficulty",
			ownerID:  "user-1",
			attrs:    task.Attributes{Title: "x", Difficulty: math.NaN()},
			wantCode: service.CodeValidation,
		},
		{
			name:     "error - infinite urgency",
			ownerID:  "user-1",
			attrs:    task.Attributes{Title: "x", Urgency: math.Inf(1)},
			wantCode: service.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			svc := newService(mockRepo)

			created, err := svc.CreateTask(ctx, tt.ownerID, tt.attrs)

			assert.Nil(t, created)
			assert.Equal(t, tt.wantCode, service.CodeOf(err))
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("error - store failure", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		storeErr := errors.New("connection refused")
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(storeErr)

		svc := newService(mockRepo)
		_, err := svc.CreateTask(ctx, "user-1", task.Attributes{Title: "x"})

		assert.Equal(t, service.CodeStore, service.CodeOf(err))
		assert.ErrorIs(t, err, storeErr)
	})
}

// TestTaskService_ListTasks тестирует фильтр и порядок сортировки
func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("unfiltered list is ordered by score", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Find", mock.Anything, task.Filter{OwnerID: "user-1"}, task.SortScoreDesc).
			Return([]*task.Task{{Title: "a"}}, nil)

		tasks, err := newService(mockRepo).ListTasks(ctx, "user-1", "")
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("status filter is ordered by last change", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Find", mock.Anything,
			task.Filter{OwnerID: "user-1", Status: task.StatusNotStarted}, task.SortStatusChangedDesc).
			Return([]*task.Task{}, nil)

		_, err := newService(mockRepo).ListTasks(ctx, "user-1", "NOT_STARTED")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)

		_, err := newService(mockRepo).ListTasks(ctx, "user-1", "completed")
		assert.Equal(t, service.CodeValidation, service.CodeOf(err))
		mockRepo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("nil from store becomes empty slice", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

		tasks, err := newService(mockRepo).ListCompletedTasks(ctx, "user-1")
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("store failure", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		_, err := newService(mockRepo).ListCompletedTasks(ctx, "user-1")
		assert.Equal(t, service.CodeStore, service.CodeOf(err))
	})
}

// TestTaskService_UpdateTaskStatus тестирует смену статуса
func TestTaskService_UpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		change := task.StatusChange{Status: task.StatusCompleted, ChangedAt: fixedNow.UnixMilli()}
		updated := &task.Task{ID: taskID, Status: task.StatusCompleted, StatusChanged: change.ChangedAt, OwnerID: "user-1"}
		mockRepo.On("UpdateStatus", mock.Anything, taskID, "user-1", change).Return(updated, nil)

		result, err := newService(mockRepo).UpdateTaskStatus(ctx, "user-1", taskID.String(), "COMPLETED")
		require.NoError(t, err)
		assert.Equal(t, updated, result)
		mockRepo.AssertExpectations(t)
	})

	tests := []struct {
		name       string
		taskID     string
		status     string
		wantCode   string
		wantReason string
	}{
		{name: "missing taskId", taskID: "", status: "COMPLETED", wantCode: service.CodeValidation, wantReason: "taskId is required"},
		{name: "missing status", taskID: taskID.String(), status: "", wantCode: service.CodeValidation, wantReason: "status is required"},
		{name: "malformed id", taskID: "123", status: "COMPLETED", wantCode: service.CodeValidation, wantReason: "invalid identifier format"},
		{name: "malformed id checked before status", taskID: "123", status: "DONE", wantCode: service.CodeValidation, wantReason: "invalid identifier format"},
		{name: "non canonical status", taskID: taskID.String(), status: "DONE", wantCode: service.CodeValidation, wantReason: `invalid status "DONE"`},
		{name: "lower case status", taskID: taskID.String(), status: "completed", wantCode: service.CodeValidation, wantReason: `invalid status "completed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)

			_, err := newService(mockRepo).UpdateTaskStatus(ctx, "user-1", tt.taskID, tt.status)

			var be *service.BusinessError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.wantCode, be.Code)
			assert.Equal(t, tt.wantReason, be.Message)
			mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("not owned or missing", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("UpdateStatus", mock.Anything, taskID, "user-1", mock.Anything).Return(nil, repository.ErrNotFound)

		_, err := newService(mockRepo).UpdateTaskStatus(ctx, "user-1", taskID.String(), "COMPLETED")
		assert.Equal(t, service.CodeNotFound, service.CodeOf(err))
	})

	t.Run("store failure", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := newService(mockRepo).UpdateTaskStatus(ctx, "user-1", taskID.String(), "COMPLETED")
		assert.Equal(t, service.CodeStore, service.CodeOf(err))
	})

	t.Run("no owner", func(t *testing.T) {
		_, err := newService(new(MockTaskRepository)).UpdateTaskStatus(ctx, "", taskID.String(), "COMPLETED")
		assert.Equal(t, service.CodeAuth, service.CodeOf(err))
	})
}

// TestTaskService_Lifecycle прогоняет сценарии целиком на хранилище в памяти
func TestTaskService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	clock := fixedNow
	svc := service.NewTaskService(inmemory.NewTaskStorage()).WithClock(func() time.Time { return clock })

	created, err := svc.CreateTask(ctx, "alice", task.Attributes{Title: "Test Task", Difficulty: 5, Impact: 8, Time: 3, Urgency: 13})
	require.NoError(t, err)

	t.Run("completed list starts empty", func(t *testing.T) {
		tasks, err := svc.ListCompletedTasks(ctx, "alice")
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("foreign and missing ids are indistinguishable", func(t *testing.T) {
		_, errForeign := svc.UpdateTaskStatus(ctx, "bob", created.ID.String(), "COMPLETED")
		_, errMissing := svc.UpdateTaskStatus(ctx, "bob", uuid.NewString(), "COMPLETED")

		assert.Equal(t, service.CodeNotFound, service.CodeOf(errForeign))
		assert.Equal(t, service.CodeNotFound, service.CodeOf(errMissing))

		// bob не видит задачи alice
		tasks, err := svc.ListTasks(ctx, "bob", "")
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("invalid status leaves task unchanged", func(t *testing.T) {
		_, err := svc.UpdateTaskStatus(ctx, "alice", created.ID.String(), "DONE")
		assert.Equal(t, service.CodeValidation, service.CodeOf(err))

		tasks, err := svc.ListTasks(ctx, "alice", "")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, task.StatusNotStarted, tasks[0].Status)
		assert.Equal(t, created.StatusChanged, tasks[0].StatusChanged)
	})

	t.Run("complete then reopen", func(t *testing.T) {
		clock = clock.Add(time.Minute)
		done, err := svc.UpdateTaskStatus(ctx, "alice", created.ID.String(), "COMPLETED")
		require.NoError(t, err)
		assert.Equal(t, task.StatusCompleted, done.Status)
		assert.Equal(t, clock.UnixMilli(), done.StatusChanged)
		assert.Equal(t, created.Score, done.Score)
		assert.Equal(t, "alice", done.OwnerID)

		completed, err := svc.ListCompletedTasks(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, completed, 1)

		clock = clock.Add(time.Minute)
		reopened, err := svc.UpdateTaskStatus(ctx, "alice", created.ID.String(), "NOT_STARTED")
		require.NoError(t, err)
		assert.Equal(t, task.StatusNotStarted, reopened.Status)
		assert.Equal(t, created.Score, reopened.Score)
	})
}
