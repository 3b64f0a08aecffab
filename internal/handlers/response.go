package handlers

import (
	"encoding/json"
	"net/http"
	"taskPrioritizer/internal/logger"
)

func responseWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("HTTP: Ошибка записи ответа", err)
	}
}

type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func responseWithError(w http.ResponseWriter, code int, errCode, message string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	responseWithJSON(w, code, errorBody{Error: errCode, Message: message, Details: details})
}
