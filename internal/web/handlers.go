package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"journey/internal/catalog"
	"journey/internal/journey"
	"journey/internal/platform/logger"
	"journey/internal/session"
	"journey/internal/storage"
)

type Server struct {
	Catalog  *catalog.Catalog
	Sessions session.Store[*visitor]
	// Progress backs every visitor's unlock record, one scope per cookie.
	Progress storage.Store
	Tmpl     *template.Template
	Log      *logger.Logger
	// Journey is the template for per-visitor controllers. Catalog, Store
	// and Effects are filled in per visitor.
	Journey  journey.Options
	MediaDir string
	// VisitorIdle is how long an untouched visitor keeps its controller in
	// memory. Progress stays in the Progress store either way.
	VisitorIdle time.Duration
}

// visitor is one browser's journey.
type visitor struct {
	ctrl *journey.Controller
	cues *cueRecorder
}

const cookieName = "journey_sid"

func NewSessions() session.Store[*visitor] {
	return session.NewMemoryStore[*visitor]()
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("GET /journey", s.handleJourney)

	mux.HandleFunc("POST /start", s.handleStart)
	mux.HandleFunc("POST /chapter", s.handleChapter)
	mux.HandleFunc("POST /video/ready", s.handleVideoReady)
	mux.HandleFunc("POST /video/ended", s.handleVideoEnded)
	mux.HandleFunc("POST /answer", s.handleAnswer)
	mux.HandleFunc("POST /hint", s.handleHint)
	mux.HandleFunc("POST /restart", s.handleRestart)
	mux.HandleFunc("POST /reset", s.handleReset)

	mux.HandleFunc("GET /keepsake.txt", s.handleKeepsakeText)
	mux.HandleFunc("GET /keepsake.pdf", s.handleKeepsakePDF)
	mux.HandleFunc("GET /media/", s.handleMedia)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/journey", http.StatusFound)
}

// GET /journey
func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	v, _, err := s.getOrCreateVisitor(r.Context(), w, r)
	if err != nil {
		http.Error(w, "failed to load journey", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	name := "layout.html"
	if r.Header.Get("HX-Request") == "true" {
		name = "journey.html"
	}
	if err := s.Tmpl.ExecuteTemplate(w, name, s.makeViewModel(v)); err != nil {
		http.Error(w, "failed to render template", http.StatusInternalServerError)
	}
}

// respond renders the journey fragment for htmx requests and redirects
// plain form posts back to the journey page.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, v *visitor) {
	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/journey", http.StatusSeeOther)
		return
	}
	if err := s.Tmpl.ExecuteTemplate(w, "journey.html", s.makeViewModel(v)); err != nil {
		http.Error(w, "failed to render template", http.StatusInternalServerError)
	}
}

func (s *Server) getOrCreateVisitor(ctx context.Context, w http.ResponseWriter, r *http.Request) (*visitor, string, error) {
	id := s.sessionID(r)
	if id == "" {
		id = s.Sessions.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   10 * 365 * 24 * 60 * 60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	v, err := s.Sessions.GetOrCreate(ctx, id, func() (*visitor, error) {
		return s.newVisitor(ctx, id)
	})
	if err != nil {
		s.logger().Error("visitor setup failed", "session_id", id, "error", err)
		return nil, id, err
	}
	return v, id, nil
}

func (s *Server) newVisitor(ctx context.Context, id string) (*visitor, error) {
	cues := &cueRecorder{}
	opts := s.Journey
	opts.Catalog = s.Catalog
	opts.Effects = cues
	opts.Logger = s.logger().With("scope", id)
	if s.Progress != nil {
		opts.Store = storage.Scoped(s.Progress, id)
	}
	ctrl, err := journey.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.logger().Debug("visitor created", "session_id", id)
	return &visitor{ctrl: ctrl, cues: cues}, nil
}

// SweepVisitors drops visitors idle for longer than VisitorIdle and stops
// their timers. It returns how many were dropped.
func (s *Server) SweepVisitors() int {
	if s.VisitorIdle <= 0 {
		return 0
	}
	gone := s.Sessions.Sweep(s.VisitorIdle)
	for _, v := range gone {
		v.ctrl.Close()
	}
	if len(gone) > 0 {
		s.logger().Debug("idle visitors dropped", "count", len(gone))
	}
	return len(gone)
}

// RunSweeper calls SweepVisitors every interval until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, every time.Duration) {
	if every <= 0 || s.VisitorIdle <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.SweepVisitors()
		}
	}
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) logger() *logger.Logger {
	if s.Log == nil {
		return logger.NewNop()
	}
	return s.Log
}
