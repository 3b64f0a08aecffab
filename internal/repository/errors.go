package repository

import "errors"

// ErrNotFound значит "нет такой задачи у этого владельца":
// чужая задача и несуществующая неразличимы
var ErrNotFound = errors.New("task not found")
