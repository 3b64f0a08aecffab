package handlers

import (
	"errors"
	"net/http"
	"taskPrioritizer/internal/logger"
	"taskPrioritizer/internal/middleware"
	"taskPrioritizer/internal/service"

	"go.uber.org/zap"
)

const codeInternal = "INTERNAL_ERROR"

// handleError переводит ошибку сервиса в HTTP-ответ.
// Как ошибка логируется только сбой хранилища, остальное ожидаемые ошибки клиента.
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	requestID := middleware.GetRequestID(r.Context())

	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		logger.Error("HTTP: Неизвестная ошибка", err,
			zap.String("operation", operation),
			zap.String("request_id", requestID))
		responseWithError(w, http.StatusInternalServerError, codeInternal, "internal error", nil)
		return
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	if businessErr.Code == service.CodeStore {
		logger.Error("HTTP: Ошибка хранилища", businessErr.Err,
			zap.String("operation", operation),
			zap.String("request_id", requestID))
	} else {
		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.String("message", businessErr.Message),
			zap.Int("http_status", statusCode),
			zap.String("request_id", requestID))
	}

	responseWithError(w, statusCode, businessErr.Code, businessErr.Message, businessErr.Details)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeAuth:
		return http.StatusUnauthorized
	case service.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
