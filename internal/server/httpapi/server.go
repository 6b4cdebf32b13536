// Package httpapi exposes the login, session, profile, and avatar endpoints
// over HTTP. Transport concerns stop here: TLS termination and proxying are
// someone else's problem.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/campuskit/authcore/internal/auth"
	"github.com/campuskit/authcore/internal/logging"
	"github.com/campuskit/authcore/internal/session"
)

// AuthService is the gateway surface the API consumes.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	GetProfile(ctx context.Context, username string) (*auth.Profile, error)
}

// SessionVerifier resolves a raw token to a principal.
type SessionVerifier interface {
	Verify(token string) (*session.Principal, error)
}

// AvatarPresigner hands out presigned upload URLs.
type AvatarPresigner interface {
	GetPresignedPutURL(ctx context.Context, userID int64) (string, string, error)
}

// AvatarStore commits an avatar key to a mirror record.
type AvatarStore interface {
	SetAvatar(ctx context.Context, userID int64, key string) error
}

type Server struct {
	address  string
	logger   logging.Logger
	auth     AuthService
	sessions SessionVerifier
	presign  AvatarPresigner
	avatars  AvatarStore
}

func NewServer(address string, l logging.Logger, a AuthService, v SessionVerifier, p AvatarPresigner, st AvatarStore) *Server {
	return &Server{
		address:  address,
		logger:   l.With("module", "http_server"),
		auth:     a,
		sessions: v,
		presign:  p,
		avatars:  st,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(s.requestIDMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)
			r.Get("/auth/me", s.handleMe)
			r.Get("/users/user/{username}", s.handleProfile)
			r.Post("/users/avatar", s.handleAvatar)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
