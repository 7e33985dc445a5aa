package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"cryptoalpha/pkg/utils"
)

// responseWriter перехватывает статус и размер ответа для логирования
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logging - middleware для логирования HTTP запросов.
// Пишет метод, путь, статус, длительность, адрес клиента и размер ответа.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		utils.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			utils.Latency(float64(time.Since(start).Microseconds())/1000.0),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int64("bytes", wrapped.written),
		)
	})
}
