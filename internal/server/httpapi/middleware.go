package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/campuskit/authcore/internal/common"
	"github.com/campuskit/authcore/internal/session"
)

type ctxKey string

const (
	principalKey ctxKey = "principal"
	requestIDKey ctxKey = "requestID"
)

// principalFrom returns the verified principal stored by sessionMiddleware.
func principalFrom(ctx context.Context) (*session.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*session.Principal)
	return p, ok
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// sessionMiddleware extracts the session credential (cookie envelope first,
// bearer header as fallback), verifies it, and stores the principal in the
// request context. The client sees one invalid-session kind regardless of
// the sub-reason; the log line carries the detail.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := session.TokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		principal, err := s.sessions.Verify(token)
		if err != nil {
			if errors.Is(err, common.ErrSessionExpired) {
				s.logger.Info(ctx, "session rejected: expired", "path", r.URL.Path)
			} else {
				s.logger.Info(ctx, "session rejected: invalid", "path", r.URL.Path, "err", err.Error())
			}
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, principalKey, principal)))
	})
}
