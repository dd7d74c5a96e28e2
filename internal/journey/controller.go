// Package journey drives a visitor through the chapters of a catalog:
// watch the video, solve the riddle, unlock the next chapter, and finally
// reach the celebration screen.
package journey

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"journey/internal/catalog"
	"journey/internal/platform/logger"
	"journey/internal/storage"
)

type Options struct {
	Catalog *catalog.Catalog
	// Store holds the unlock record. Nil keeps progress in memory only.
	Store    storage.Store
	StateKey string
	Video    VideoSource
	Effects  Effects
	Logger   *logger.Logger
	// Scheduler defaults to time.AfterFunc.
	Scheduler Scheduler
	Now       func() time.Time
	// CelebrationInterval repeats Effects.Celebrate while the celebration
	// screen is shown. Zero fires it once.
	CelebrationInterval time.Duration
	// Strict panics on out-of-range chapter indexes instead of returning
	// ErrOutOfRange.
	Strict bool
}

// Controller is safe for concurrent use; events are applied one at a time.
type Controller struct {
	mu sync.Mutex

	cat            *catalog.Catalog
	store          storage.Store
	key            string
	video          VideoSource
	fx             Effects
	log            *logger.Logger
	sched          Scheduler
	now            func() time.Time
	celebrateEvery time.Duration
	strict         bool

	screen   Screen
	chapter  int
	unlocked []bool
	degraded bool

	// epoch changes on every screen entry; timers carry the epoch they
	// were started in and are ignored once it moves on.
	epoch       uint64
	playback    Playback
	celebration Timer
}

// New builds a controller on the Welcome screen and loads the persisted
// unlock record. A storage failure is logged and the session continues
// in memory.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Catalog == nil {
		return nil, errors.New("journey: catalog is required")
	}
	c := &Controller{
		cat:            opts.Catalog,
		store:          opts.Store,
		key:            opts.StateKey,
		video:          opts.Video,
		fx:             opts.Effects,
		log:            opts.Logger,
		sched:          opts.Scheduler,
		now:            opts.Now,
		celebrateEvery: opts.CelebrationInterval,
		strict:         opts.Strict,
		screen:         ScreenWelcome,
	}
	if c.key == "" {
		c.key = DefaultStateKey
	}
	if c.video == nil {
		c.video = EmbeddedPlayer{}
	}
	if c.fx == nil {
		c.fx = NopEffects{}
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.sched == nil {
		c.sched = realScheduler{}
	}
	if c.now == nil {
		c.now = time.Now
	}

	n := c.cat.Count()
	if c.store == nil {
		c.unlocked = DefaultUnlocks(n)
		c.degraded = true
		return c, nil
	}
	u, err := loadUnlocks(context.WithoutCancel(ctx), c.store, c.key, n)
	if err != nil {
		c.log.Warn("unlock state unavailable, continuing in memory", "error", err)
		c.degraded = true
	}
	c.unlocked = u
	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Screen:   c.screen,
		Chapter:  c.chapter,
		Unlocked: append([]bool(nil), c.unlocked...),
		Degraded: c.degraded,
	}
}

// Catalog returns the catalog the controller was built with.
func (c *Controller) Catalog() *catalog.Catalog { return c.cat }

// StartJourney moves from Welcome to the first chapter.
func (c *Controller) StartJourney() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != ScreenWelcome {
		return ErrInvalidTransition
	}
	if !c.unlocked[0] {
		return ErrChapterLocked
	}
	c.enterViewingLocked(0)
	return nil
}

// SelectChapter jumps to any unlocked chapter. Locked chapters are
// rejected with ErrChapterLocked and leave the state untouched.
func (c *Controller) SelectChapter(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.cat.Get(i); err != nil {
		return c.outOfRange(err)
	}
	if c.screen == ScreenCelebration {
		return ErrInvalidTransition
	}
	if !c.unlocked[i] {
		c.log.Debug("navigation rejected", "chapter", i)
		return ErrChapterLocked
	}
	c.enterViewingLocked(i)
	return nil
}

// NotifyVideoReady confirms the current chapter's video has loaded. Timer
// based sources start counting from here.
func (c *Controller) NotifyVideoReady() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != ScreenViewing {
		return ErrInvalidTransition
	}
	if c.playback != nil {
		c.playback.Ready()
	}
	return nil
}

// NotifyVideoEnded moves Viewing(i) to AwaitingRiddle(i). Duplicate
// signals are no-ops.
func (c *Controller) NotifyVideoEnded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endVideoLocked()
}

// NotifyVideoEndedFor is NotifyVideoEnded guarded by the chapter the
// signal was raised for, so a late player event from an earlier chapter
// cannot advance the current one.
func (c *Controller) NotifyVideoEndedFor(chapter int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chapter != chapter {
		return ErrInvalidTransition
	}
	return c.endVideoLocked()
}

func (c *Controller) videoEnded(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		c.log.Debug("stale video timer ignored")
		return
	}
	_ = c.endVideoLocked()
}

func (c *Controller) endVideoLocked() error {
	if c.screen != ScreenViewing {
		return ErrInvalidTransition
	}
	c.stopPlaybackLocked()
	c.screen = ScreenAwaitingRiddle
	c.log.Debug("video ended", "chapter", c.chapter)
	return nil
}

// SubmitAnswer checks text against the current chapter's passphrase after
// trimming and lowercasing both. A match unlocks and persists the next
// chapter before moving to it, or moves to Celebration after the last
// chapter. A mismatch returns ErrAnswerMismatch and changes nothing.
func (c *Controller) SubmitAnswer(ctx context.Context, text string) (Outcome, error) {
	c.mu.Lock()
	out, fx, err := c.submitLocked(ctx, text)
	c.mu.Unlock()
	fx.run()
	return out, err
}

func (c *Controller) submitLocked(ctx context.Context, text string) (Outcome, cues, error) {
	if c.screen != ScreenAwaitingRiddle {
		return Outcome{}, nil, ErrInvalidTransition
	}
	ch, err := c.cat.Get(c.chapter)
	if err != nil {
		return Outcome{}, nil, err
	}
	if !matches(text, ch.Passphrase) {
		c.log.Debug("answer rejected", "chapter", c.chapter, "answer", text)
		return Outcome{}, cues{c.fx.AnswerRejected}, ErrAnswerMismatch
	}

	fx := cues{c.fx.AnswerAccepted}
	next := c.chapter + 1
	if next >= c.cat.Count() {
		c.enterCelebrationLocked()
		c.log.Info("journey complete")
		return Outcome{Unlocked: -1, Screen: c.screen}, append(fx, c.fx.Celebrate), nil
	}
	if !c.unlocked[next] {
		c.unlocked[next] = true
		c.persistLocked(ctx)
		c.log.Info("chapter unlocked", "chapter", next)
	}
	c.enterViewingLocked(next)
	return Outcome{Unlocked: next, Screen: c.screen, Chapter: c.chapter}, fx, nil
}

func matches(answer, passphrase string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(strings.TrimSpace(passphrase))
}

// RequestHint returns chapter i's hint and forwards it to the effects
// collaborator. It does not change state.
func (c *Controller) RequestHint(i int) (string, error) {
	ch, err := c.cat.Get(i)
	if err != nil {
		return "", c.outOfRange(err)
	}
	c.fx.ShowHint(ch.Hint)
	return ch.Hint, nil
}

// Restart returns to Welcome from any screen and cancels every pending
// timer. Unlocks are kept.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetScreenLocked()
}

// ResetProgress is Restart plus forgetting every unlock, in memory and in
// storage.
func (c *Controller) ResetProgress(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetScreenLocked()
	c.unlocked = DefaultUnlocks(c.cat.Count())
	if c.degraded {
		return
	}
	if err := c.store.Delete(context.WithoutCancel(ctx), c.key); err != nil {
		c.log.Warn("unlock state reset failed, continuing in memory", "error", err)
		c.degraded = true
	}
}

// Close cancels pending timers without changing state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimersLocked()
	c.epoch++
}

func (c *Controller) resetScreenLocked() {
	c.stopTimersLocked()
	c.epoch++
	c.screen = ScreenWelcome
	c.chapter = 0
}

func (c *Controller) enterViewingLocked(i int) {
	c.stopTimersLocked()
	c.epoch++
	epoch := c.epoch
	ch, _ := c.cat.Get(i)
	c.screen = ScreenViewing
	c.chapter = i
	c.playback = c.video.Load(ch, func() { c.videoEnded(epoch) })
	c.log.Debug("viewing chapter", "chapter", i)
}

func (c *Controller) enterCelebrationLocked() {
	c.stopTimersLocked()
	c.epoch++
	c.screen = ScreenCelebration
	c.scheduleCelebrationLocked(c.epoch)
}

func (c *Controller) scheduleCelebrationLocked(epoch uint64) {
	if c.celebrateEvery <= 0 {
		return
	}
	c.celebration = c.sched.AfterFunc(c.celebrateEvery, func() { c.celebrationTick(epoch) })
}

func (c *Controller) celebrationTick(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.screen != ScreenCelebration {
		c.mu.Unlock()
		return
	}
	c.scheduleCelebrationLocked(epoch)
	c.mu.Unlock()
	c.fx.Celebrate()
}

func (c *Controller) stopPlaybackLocked() {
	if c.playback != nil {
		c.playback.Stop()
		c.playback = nil
	}
}

func (c *Controller) stopTimersLocked() {
	c.stopPlaybackLocked()
	if c.celebration != nil {
		c.celebration.Stop()
		c.celebration = nil
	}
}

// persistLocked writes the unlock record. The write ignores ctx
// cancellation so an aborted request still saves.
func (c *Controller) persistLocked(ctx context.Context) {
	if c.degraded {
		return
	}
	if err := saveUnlocks(context.WithoutCancel(ctx), c.store, c.key, c.unlocked); err != nil {
		c.log.Warn("unlock state not saved, continuing in memory", "error", err)
		c.degraded = true
	}
}

func (c *Controller) outOfRange(err error) error {
	if c.strict {
		panic(err)
	}
	c.log.Warn("chapter index out of range", "error", err)
	return err
}
