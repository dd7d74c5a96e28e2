package journey

import (
	"time"

	"journey/internal/catalog"
)

// Timer is a cancellable one-shot timer.
type Timer interface {
	Stop() bool
}

// Scheduler starts one-shot timers whose callbacks run on their own
// goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Playback is one chapter's video session.
type Playback interface {
	// Ready is called once the player confirms the video has loaded.
	Ready()
	// Stop cancels anything the playback has scheduled.
	Stop()
}

// VideoSource loads a chapter's video. ended reports completion; a source
// must never call it synchronously from Load or Ready.
type VideoSource interface {
	Load(ch catalog.Chapter, ended func()) Playback
}

// EmbeddedPlayer relies on the third-party player to report completion
// through Controller.NotifyVideoEnded. It schedules nothing itself.
type EmbeddedPlayer struct{}

func (EmbeddedPlayer) Load(catalog.Chapter, func()) Playback { return noPlayback{} }

type noPlayback struct{}

func (noPlayback) Ready() {}
func (noPlayback) Stop()  {}

// TimerFallback infers completion: once the load is confirmed it waits the
// chapter's expected duration (or Default when the catalog has none) and
// then reports the video as ended.
type TimerFallback struct {
	Default   time.Duration
	Scheduler Scheduler
}

func (t TimerFallback) Load(ch catalog.Chapter, ended func()) Playback {
	d := ch.ExpectedDuration
	if d <= 0 {
		d = t.Default
	}
	s := t.Scheduler
	if s == nil {
		s = realScheduler{}
	}
	return &timerPlayback{sched: s, d: d, ended: ended}
}

type timerPlayback struct {
	sched   Scheduler
	d       time.Duration
	ended   func()
	timer   Timer
	stopped bool
}

func (p *timerPlayback) Ready() {
	if p.timer != nil || p.stopped {
		return
	}
	p.timer = p.sched.AfterFunc(p.d, p.ended)
}

func (p *timerPlayback) Stop() {
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
	}
}
