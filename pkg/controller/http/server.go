package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/usecase"
)

// QueryUseCase is the query surface exposed over HTTP
type QueryUseCase interface {
	Ask(ctx context.Context, question string) (*model.AskResult, error)
	QueryPerson(ctx context.Context, pq usecase.PersonQuery) (*model.AskResult, error)
}

type Server struct {
	router         *chi.Mux
	queryUC        QueryUseCase
	requestTimeout time.Duration
	maxBodyBytes   int64
}

type Options func(*Server)

// WithRequestTimeout bounds every request. Queries carry their own, shorter timeout.
func WithRequestTimeout(d time.Duration) Options {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

func New(queryUC QueryUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:         r,
		queryUC:        queryUC,
		requestTimeout: 30 * time.Second,
		maxBodyBytes:   16 << 10,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.With(limitBody(s.maxBodyBytes)).Post("/ask", askHandler(s.queryUC))
		r.Get("/person/{name}", personHandler(s.queryUC))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
