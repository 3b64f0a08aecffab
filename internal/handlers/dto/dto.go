package dto

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"taskPrioritizer/internal/models/task"
	"taskPrioritizer/internal/service"

	"github.com/google/uuid"
)

// указатели отличают отсутствующее поле и null от нулевого значения
type CreateTaskRequest struct {
	Title      *string  `json:"title"`
	Difficulty *float64 `json:"difficulty"`
	Impact     *float64 `json:"impact"`
	Time       *float64 `json:"time"`
	Urgency    *float64 `json:"urgency"`
}

type UpdateStatusRequest struct {
	TaskID *string `json:"taskId"`
	Status *string `json:"status"`
}

type TaskResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Difficulty    float64   `json:"difficulty"`
	Impact        float64   `json:"impact"`
	Time          float64   `json:"time"`
	Urgency       float64   `json:"urgency"`
	Score         float64   `json:"score"`
	Status        string    `json:"status"`
	StatusChanged int64     `json:"statusChanged"`
	OwnerID       string    `json:"ownerId"`
}

// Decode читает ровно одно JSON-значение; любая ошибка формата становится ValidationError
func Decode(body io.Reader, dest any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(dest); err != nil {
		return decodeError(err)
	}

	var extra json.RawMessage
	err := dec.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return service.NewValidationError("body", "request body too large")
	}
	return service.NewValidationError("body", "unexpected data after JSON body")
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return service.NewValidationError("body", "request body is required")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return service.NewValidationError(field, "wrong type for field "+field)
	case errors.As(err, &maxErr):
		return service.NewValidationError("body", "request body too large")
	default:
		return service.NewValidationError("body", "invalid JSON body")
	}
}

func (r CreateTaskRequest) Attributes() (task.Attributes, error) {
	if r.Title == nil {
		return task.Attributes{}, service.NewValidationError("title", "title is required")
	}

	numeric := []struct {
		field string
		value *float64
	}{
		{"difficulty", r.Difficulty},
		{"impact", r.Impact},
		{"time", r.Time},
		{"urgency", r.Urgency},
	}
	for _, n := range numeric {
		if n.value == nil {
			return task.Attributes{}, service.NewValidationError(n.field, n.field+" is required")
		}
	}

	return task.Attributes{
		Title:      *r.Title,
		Difficulty: *r.Difficulty,
		Impact:     *r.Impact,
		Time:       *r.Time,
		Urgency:    *r.Urgency,
	}, nil
}

// отсутствующие поля отдаются пустыми, их проверяет сервис
func (r UpdateStatusRequest) Values() (taskID, status string) {
	if r.TaskID != nil {
		taskID = *r.TaskID
	}
	if r.Status != nil {
		status = *r.Status
	}
	return taskID, status
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Difficulty:    t.Difficulty,
		Impact:        t.Impact,
		Time:          t.Time,
		Urgency:       t.Urgency,
		Score:         t.Score,
		Status:        string(t.Status),
		StatusChanged: t.StatusChanged,
		OwnerID:       t.OwnerID,
	}
}

// пустой список кодируется как [], а не null
func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}
