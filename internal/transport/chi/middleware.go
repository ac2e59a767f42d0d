package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/logger"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// Handler builds the full HTTP stack around s: panic recovery, request ids,
// the per-request access log, bearer auth and Prometheus instrumentation.
func Handler(s *Server, apiKeys []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer(log))
	r.Use(middleware.RequestID)
	r.Use(AccessLog(log))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})

	s.Register(r)
	return r
}

// Recoverer turns a handler panic into a 500 ErrorResponse.
func Recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.FromContextOr(r.Context(), log).Error("handler panicked",
					zap.Any("recovered", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.StackSkip("stack", 2),
				)
				writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog puts a request-scoped logger into the context, echoes the request
// id back to the client and writes one summary line once the handler returns.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()

			id := middleware.GetReqID(r.Context())
			if id != "" {
				w.Header().Set(requestIDHeader, id)
			}
			scoped := log.With(zap.String("request_id", id))

			rw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r.WithContext(logger.ContextWithLogger(r.Context(), scoped)))

			status := rw.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("took", time.Since(began)),
				zap.String("remote", r.RemoteAddr),
				zap.Int("bytes", rw.BytesWritten()),
			}
			if tokens := rw.Header().Get("X-Oracle-Tokens"); tokens != "" {
				fields = append(fields, zap.String("oracle_tokens", tokens))
			}
			scoped.Info("request served", fields...)
		})
	}
}
