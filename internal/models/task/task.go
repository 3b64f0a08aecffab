package task

import (
	"github.com/google/uuid"
)

// Score и OwnerID задаются один раз при создании,
// дальше меняются только Status и StatusChanged
type Task struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Difficulty    float64   `json:"difficulty" db:"difficulty"`
	Impact        float64   `json:"impact" db:"impact"`
	Time          float64   `json:"time" db:"time"`
	Urgency       float64   `json:"urgency" db:"urgency"`
	Score         float64   `json:"score" db:"score"`
	Status        Status    `json:"status" db:"status"`
	StatusChanged int64     `json:"statusChanged" db:"status_changed"`
	OwnerID       string    `json:"ownerId" db:"owner_id"`
}

// поля новой задачи, пришедшие от клиента
type Attributes struct {
	Title      string
	Difficulty float64
	Impact     float64
	Time       float64
	Urgency    float64
}

func (a Attributes) Score() float64 {
	return Score(a.Difficulty, a.Impact, a.Time, a.Urgency)
}

// единственное допустимое изменение сохранённой задачи
type StatusChange struct {
	Status    Status
	ChangedAt int64 // мс с начала эпохи
}

func (c StatusChange) Apply(t *Task) {
	t.Status = c.Status
	t.StatusChanged = c.ChangedAt
}

// AllowedFrom возвращает статусы, из которых возможен переход в c.Status
func (c StatusChange) AllowedFrom() []Status {
	var from []Status
	for _, st := range Statuses() {
		if CanTransition(st, c.Status) {
			from = append(from, st)
		}
	}
	return from
}

type Filter struct {
	OwnerID string
	Status  Status // пустой статус = любой
}

func (f Filter) Matches(t *Task) bool {
	if t.OwnerID != f.OwnerID {
		return false
	}
	return f.Status == "" || t.Status == f.Status
}

type SortOrder int

const (
	SortNone SortOrder = iota
	SortScoreDesc
	SortStatusChangedDesc
)
