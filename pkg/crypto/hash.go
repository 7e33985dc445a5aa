// Package crypto хеширует и проверяет API-токен дашборда.
//
// В конфигурации хранится только bcrypt-хеш токена (API_TOKEN_HASH),
// сам токен нигде не сохраняется. Хеш генерируется утилитой
// cmd/tokenhash и проверяется в middleware авторизации.
package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyToken   = errors.New("token cannot be empty")
	ErrTokenTooLong = errors.New("token exceeds maximum length of 72 bytes")
)

// DefaultCost - стоимость bcrypt по умолчанию. Токен проверяется на
// каждом API-запросе, поэтому значение выше 12 заметно замедлит дашборд.
const DefaultCost = 12

// MaxTokenLength - лимит bcrypt на длину входа (72 байта)
const MaxTokenLength = 72

// HashToken хеширует токен с указанной стоимостью.
// cost вне диапазона bcrypt (4..31) приводится к ближайшей границе.
func HashToken(token string, cost int) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	if len(token) > MaxTokenLength {
		return "", ErrTokenTooLong
	}

	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckTokenMatch проверяет соответствие токена хешу.
// Сравнение constant-time, пустой или невалидный хеш дает false.
func CheckTokenMatch(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
