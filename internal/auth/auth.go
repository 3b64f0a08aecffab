// Package auth проверяет заголовок Authorization и возвращает идентификатор
// пользователя. В демо-режиме принимаются токены вида dummy-token-<userId>,
// иначе Google ID token проверяется с GOOGLE_CLIENT_ID в качестве audience.
package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"taskPrioritizer/internal/config"
)

const demoPrefix = "dummy-token-"

var bearerPattern = regexp.MustCompile(`^Bearer\s+(.+)$`)

var (
	ErrMissingHeader         = errors.New("missing Authorization header")
	ErrInvalidHeader         = errors.New("invalid Authorization header format")
	ErrInvalidDemoToken      = errors.New("invalid demo token format")
	ErrClientIDNotConfigured = errors.New("GOOGLE_CLIENT_ID not configured")
	ErrMissingSubject        = errors.New("token missing user ID (sub claim)")
)

type Verifier interface {
	// Verify возвращает идентификатор владельца по значению заголовка Authorization
	Verify(ctx context.Context, authorizationHeader string) (string, error)
}

func New(cfg config.AuthConfig) Verifier {
	if cfg.DemoMode {
		return DemoVerifier{}
	}
	return NewGoogleVerifier(cfg.GoogleClientID)
}

func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}
	match := bearerPattern.FindStringSubmatch(header)
	if match == nil {
		return "", ErrInvalidHeader
	}
	return match[1], nil
}

type DemoVerifier struct{}

func (DemoVerifier) Verify(_ context.Context, header string) (string, error) {
	token, err := BearerToken(header)
	if err != nil {
		return "", err
	}

	userID, ok := strings.CutPrefix(token, demoPrefix)
	if !ok || userID == "" {
		return "", ErrInvalidDemoToken
	}
	return userID, nil
}

// ExtractDemoUserID достаёт userId из демо-токена без проверки.
// Для любого другого заголовка возвращает пустую строку.
func ExtractDemoUserID(header string) string {
	token, err := BearerToken(header)
	if err != nil {
		return ""
	}
	userID, _ := strings.CutPrefix(token, demoPrefix)
	if userID == token {
		return ""
	}
	return userID
}
