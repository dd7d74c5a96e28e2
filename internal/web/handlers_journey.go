package web

import (
	"errors"
	"net/http"
	"strconv"

	"journey/internal/journey"
)

// visitorFromForm loads the visitor and parses the form. It writes the
// error response itself and returns nil when the request cannot proceed.
func (s *Server) visitorFromForm(w http.ResponseWriter, r *http.Request) *visitor {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return nil
	}
	v, _, err := s.getOrCreateVisitor(r.Context(), w, r)
	if err != nil {
		http.Error(w, "failed to load journey", http.StatusInternalServerError)
		return nil
	}
	return v
}

func chapterParam(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.FormValue("chapter"))
	return i, err == nil
}

// handled reports the outcome of a controller event. Invalid transitions
// and out-of-range indexes are ignored; a locked chapter gets a notice.
func (s *Server) handled(v *visitor, err error) {
	switch {
	case err == nil:
	case errors.Is(err, journey.ErrChapterLocked):
		v.cues.add(msgLocked)
	case errors.Is(err, journey.ErrInvalidTransition), errors.Is(err, journey.ErrAnswerMismatch):
	default:
		s.logger().Warn("journey event ignored", "error", err)
	}
}

// POST /start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFromForm(w, r)
	if v == nil {
		return
	}
	s.handled(v, v.ctrl.StartJourney())
	s.respond(w, r, v)
}

// POST /chapter
func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFromForm(w, r)
	if v == nil {
		return
	}
	i, ok := chapterParam(r)
	if !ok {
		http.Error(w, "bad chapter", http.StatusBadRequest)
		return
	}
	s.handled(v, v.ctrl.SelectChapter(i))
	s.respond(w, r, v)
}

// POST /video/ready
func (s *Server) handleVideoReady(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFromForm(w, r)
	if v == nil {
		return
	}
	s.handled(v, v.ctrl.NotifyVideoReady())
	w.WriteHeader(http.StatusNoContent)
}

// POST /video/ended
func (s *Server) handleVideoEnded(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFromForm(w, r)
	if v == nil {
		return
	}
	var err error
	if i, ok := chapterParam(r); ok {
		err = v.ctrl.NotifyVideoEndedFor(i)
	} else {
		err = v.ctrl.NotifyVideoEnded()
	}
	s.handled(v, err)
	s.respond(w, r, v)
}

// POST /answer
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFromForm(w, r)
	if v == nil {
		return
	}
	_, err := v.ctrl.SubmitAnswer(r.Context(), r.FormValue("answer"))
	s.handled(v, err)
	s.respond(w, r, v)
}

// POST /hint
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFromForm(w, r)
	if v == nil {
		return
	}
	i, ok := chapterParam(r)
	if !ok {
		i = v.ctrl.Snapshot().Chapter
	}
	_, err := v.ctrl.RequestHint(i)
	s.handled(v, err)
	s.respond(w, r, v)
}

// POST /restart
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFromForm(w, r)
	if v == nil {
		return
	}
	v.ctrl.Restart()
	v.cues.resetFireworks()
	s.respond(w, r, v)
}

// POST /reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFromForm(w, r)
	if v == nil {
		return
	}
	v.ctrl.ResetProgress(r.Context())
	v.cues.resetFireworks()
	s.respond(w, r, v)
}
