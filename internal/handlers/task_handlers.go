package handlers

import (
	"net/http"
	"taskPrioritizer/internal/handlers/dto"
	"taskPrioritizer/internal/logger"
	"taskPrioritizer/internal/middleware"
	"taskPrioritizer/internal/service"
	"time"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

// POST /post-task
func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !checkContentType(r, "application/json") {
		handleError(w, r, service.NewValidationError("Content-Type", "Content-Type must be application/json"), "create_task")
		return
	}

	var request dto.CreateTaskRequest
	if err := dto.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), &request); err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	attrs, err := request.Attributes()
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), middleware.OwnerID(r.Context()), attrs)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromTask(created))
}

// GET /get-tasks[?status=...]
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	tasks, err := h.TaskService.ListTasks(r.Context(), middleware.OwnerID(r.Context()), status)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

// GET /get-completed-tasks
func (h *TaskHandler) GetCompletedTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.TaskService.ListCompletedTasks(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		handleError(w, r, err, "list_completed_tasks")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

// PATCH /update-task-status
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !checkContentType(r, "application/json") {
		handleError(w, r, service.NewValidationError("Content-Type", "Content-Type must be application/json"), "update_status")
		return
	}

	var request dto.UpdateStatusRequest
	if err := dto.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), &request); err != nil {
		handleError(w, r, err, "update_status")
		return
	}

	taskID, status := request.Values()
	updated, err := h.TaskService.UpdateTaskStatus(r.Context(), middleware.OwnerID(r.Context()), taskID, status)
	if err != nil {
		handleError(w, r, err, "update_status")
		return
	}

	logger.Info("HTTP_OUT: Статус обновлён",
		zap.String("task_id", taskID),
		zap.String("status", status),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис недоступен", err)
		responseWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Options отвечает на OPTIONS без обращения к хранилищу, CORS-заголовки ставит роутер
func (h *TaskHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	logger.Warn("HTTP: Неверный метод",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		"method "+r.Method+" not allowed", nil)
}

func (h *TaskHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	responseWithError(w, http.StatusNotFound, service.CodeNotFound, "route "+r.URL.Path+" not found", nil)
}
