package middleware

import (
	"net/http"
	"strings"

	"cryptoalpha/pkg/crypto"
)

// TokenAuth возвращает middleware, проверяющий Bearer-токен дашборда.
//
// Токен сравнивается с bcrypt-хешем из конфигурации (API_TOKEN_HASH):
// сам токен нигде не хранится, утечка конфига не раскрывает секрет.
// Пустой хеш отключает проверку - режим локального развертывания.
//
// Запрос проходит, если заголовок имеет вид:
//
//	Authorization: Bearer <token>
//
// и bcrypt-проверка токена против хеша успешна.
func TokenAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !crypto.CheckTokenMatch(token, tokenHash) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
