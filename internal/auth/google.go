package auth

import (
	"context"
	"fmt"
	"sync"
	"taskPrioritizer/internal/logger"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

type tokenValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

type GoogleVerifier struct {
	clientID string

	mtx          sync.Mutex
	validator    tokenValidator
	newValidator func(context.Context) (tokenValidator, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		newValidator: func(ctx context.Context) (tokenValidator, error) {
			return idtoken.NewValidator(ctx)
		},
	}
}

func (g *GoogleVerifier) Verify(ctx context.Context, header string) (string, error) {
	token, err := BearerToken(header)
	if err != nil {
		return "", err
	}

	if g.clientID == "" {
		return "", ErrClientIDNotConfigured
	}

	validator, err := g.getValidator(ctx)
	if err != nil {
		return "", fmt.Errorf("token verification failed: %w", err)
	}

	payload, err := validator.Validate(ctx, token, g.clientID)
	if err != nil {
		return "", fmt.Errorf("token verification failed: %w", err)
	}

	if payload.Subject == "" {
		return "", fmt.Errorf("token verification failed: %w", ErrMissingSubject)
	}

	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		logger.Warn("Auth: Email аккаунта Google не подтверждён", zap.String("sub", payload.Subject))
	}

	return payload.Subject, nil
}

// валидатор создаётся при первом запросе; неудачная попытка повторяется на следующем
func (g *GoogleVerifier) getValidator(ctx context.Context) (tokenValidator, error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.validator != nil {
		return g.validator, nil
	}

	// клиент валидатора живёт дольше запроса
	v, err := g.newValidator(context.WithoutCancel(ctx))
	if err != nil {
		logger.Error("Auth: Не удалось создать валидатор Google", err)
		return nil, err
	}
	g.validator = v
	return v, nil
}
