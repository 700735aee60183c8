// Package site renders the server-side HTML ranking pages.
package site

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/padelrpm/ranking/internal/adapters/http/api"
	service "github.com/padelrpm/ranking/internal/app"
	"github.com/padelrpm/ranking/internal/domain/category"
	"github.com/padelrpm/ranking/pkg/logger"
)

// Dependencies required by the page handlers.
type Dependencies interface {
	GeneralRanking(ctx context.Context, force bool, gender, cat string) (service.GeneralView, error)
	CategoryRanking(ctx context.Context, force bool, gender, cat string) (service.CategoryView, error)
}

// Server wires the HTML routes and the static asset tree.
type Server struct {
	deps Dependencies
	log  logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for the site.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates the page server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps: deps,
		log:  logger.Named("site"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches the HTML routes and static assets to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/", api.MetricsMiddleware(s.HandleHome, "home"))
	mux.HandleFunc("/ranking", api.MetricsMiddleware(s.HandleRanking, "ranking"))
	mux.HandleFunc("/ranking-masculino", api.MetricsMiddleware(s.HandleRankingMale, "ranking_masculino"))
	mux.HandleFunc("/ranking-femenino", api.MetricsMiddleware(s.HandleRankingFemale, "ranking_femenino"))
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// HandleHome handles GET / requests with the landing page. Any other path
// under / is a 404 so typos do not silently render the landing page.
func (s *Server) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	view, err := s.deps.GeneralRanking(r.Context(), forceParam(r), "", "")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, homeTmpl, homePage{
		Title:   "Ranking RPM",
		Players: len(view.Rows),
	})
}

// HandleRanking handles GET /ranking requests: the overall table with
// optional genero and cat filters.
func (s *Server) HandleRanking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := s.deps.GeneralRanking(r.Context(), forceParam(r), q.Get("genero"), q.Get("cat"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, rankingTmpl, generalPage{
		Title: "Ranking General",
		View:  view,
	})
}

// HandleRankingMale handles GET /ranking-masculino requests.
func (s *Server) HandleRankingMale(w http.ResponseWriter, r *http.Request) {
	s.categoryPage(w, r, category.GenderMale, "Ranking Masculino", "/ranking-masculino")
}

// HandleRankingFemale handles GET /ranking-femenino requests.
func (s *Server) HandleRankingFemale(w http.ResponseWriter, r *http.Request) {
	s.categoryPage(w, r, category.GenderFemale, "Ranking Femenino", "/ranking-femenino")
}

func (s *Server) categoryPage(w http.ResponseWriter, r *http.Request, gender, title, basePath string) {
	view, err := s.deps.CategoryRanking(r.Context(), forceParam(r), gender, r.URL.Query().Get("cat"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, categoryTmpl, categoryPageData{
		Title:    title,
		BasePath: basePath,
		Chips:    chips(view),
		View:     view,
	})
}

// render buffers the template output so a mid-render failure becomes a clean
// 500 instead of a truncated page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "page render failed",
		logger.String("path", r.URL.Path),
		logger.Error(err),
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func forceParam(r *http.Request) bool {
	switch r.URL.Query().Get("refresh") {
	case "1", "true", "yes":
		return true
	}
	return false
}
