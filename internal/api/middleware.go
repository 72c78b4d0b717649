// internal/api/middleware.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"review-responder/internal/common/logger"
)

const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the request ID stored by the requestID middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type middleware func(http.Handler) http.Handler

func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// requestID reuses a caller supplied ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func accessLog(log logger.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			fields := map[string]interface{}{
				"requestId":  RequestID(r.Context()),
				"method":     r.Method,
				"uri":        r.URL.RequestURI(),
				"addr":       r.RemoteAddr,
				"status":     rec.status,
				"bytes":      rec.bytes,
				"durationMs": time.Since(start).Milliseconds(),
			}
			if rec.status >= http.StatusInternalServerError {
				log.Warn("request", fields)
				return
			}
			log.Info("request", fields)
		})
	}
}

func recoverer(log logger.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					log.Error("panic in handler", map[string]interface{}{
						"requestId": RequestID(r.Context()),
						"panic":     v,
					})
					writeJSON(w, http.StatusInternalServerError, errorBody{
						Error:   "Unexpected error",
						Details: "internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
