package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"cryptoalpha/pkg/utils"
)

// Recovery - middleware для восстановления после паники в handlers.
// Перехватывает panic, логирует stack trace и возвращает клиенту 500
// без деталей ошибки (детали остаются в логах).
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				utils.Error("panic recovered",
					zap.Any("panic", err),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
