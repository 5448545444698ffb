package predict

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) model.RequestID {
	if id, ok := ctx.Value(requestIDKey{}).(model.RequestID); ok {
		return id
	}
	return model.NewRequestID()
}

// withRequestLogger tags each request with an ID and attaches a logger carrying it
func (s *Server) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.newID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = logging.WithAttrs(ctx, "service", s.name, "request_id", id)
		w.Header().Set("X-Request-ID", string(id))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.From(ctx).Info("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started),
		)
	})
}
