package middleware

import (
	"context"
	"net/http"
	"taskPrioritizer/internal/auth"
	"taskPrioritizer/internal/logger"
	"taskPrioritizer/internal/service"

	"go.uber.org/zap"
)

const ownerIDKey contextKey = "owner_id"

func ContextWithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// OwnerID возвращает пользователя, прошедшего Authenticate, или пустую строку
func OwnerID(ctx context.Context) string {
	if id, ok := ctx.Value(ownerIDKey).(string); ok {
		return id
	}
	return ""
}

func Authenticate(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := verifier.Verify(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				logger.Warn("HTTP: Ошибка аутентификации",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Error(err))

				writeError(w, http.StatusUnauthorized, service.CodeAuth, err.Error(), nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithOwner(r.Context(), ownerID)))
		})
	}
}
