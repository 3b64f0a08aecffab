package task

import (
	"errors"
	"slices"
)

type Status string

const StatusNotStarted Status = "NOT_STARTED"
const StatusCompleted Status = "COMPLETED"

// единственный источник допустимых статусов, новые добавлять только сюда
var statuses = []Status{
	StatusNotStarted,
	StatusCompleted,
}

var ErrInvalidStatus = errors.New("invalid status")

func Statuses() []Status {
	return slices.Clone(statuses)
}

// регистр важен: "completed" не статус
func IsValidStatus(candidate string) bool {
	return slices.Contains(statuses, Status(candidate))
}

func ParseStatus(s string) (Status, error) {
	if !IsValidStatus(s) {
		return "", ErrInvalidStatus
	}
	return Status(s), nil
}

// переход разрешён между любыми известными статусами,
// в том числе COMPLETED -> NOT_STARTED (переоткрытие)
func CanTransition(from, to Status) bool {
	return IsValidStatus(string(from)) && IsValidStatus(string(to))
}
