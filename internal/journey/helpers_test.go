package journey

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"journey/internal/catalog"
	"journey/internal/storage"
)

func testCatalog(t *testing.T, passphrases ...string) *catalog.Catalog {
	t.Helper()
	n := len(passphrases)
	f := catalog.File{Title: "Test Journey", Closing: "With love."}
	for i := 0; i < n; i++ {
		f.Titles = append(f.Titles, "Chapter "+string(rune('A'+i)))
		f.Videos = append(f.Videos, "video-"+string(rune('a'+i)))
		f.Durations = append(f.Durations, time.Duration(i+1)*time.Minute)
		f.Riddles = append(f.Riddles, "riddle "+string(rune('a'+i)))
		f.Hints = append(f.Hints, "hint "+string(rune('a'+i)))
	}
	f.Passphrases = passphrases
	cat, err := catalog.New(f)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func newController(t *testing.T, cat *catalog.Catalog, opts Options) *Controller {
	t.Helper()
	opts.Catalog = cat
	c, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// fakeScheduler records timers and fires them on demand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs timer i even if it was stopped, the way a real timer can race
// its own Stop.
func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	t := s.timers[i]
	t.fired = true
	s.mu.Unlock()
	t.f()
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type recordingEffects struct {
	mu       sync.Mutex
	accepted int
	rejected int
	celebr   int
	hints    []string
}

func (r *recordingEffects) Celebrate() {
	r.mu.Lock()
	r.celebr++
	r.mu.Unlock()
}
func (r *recordingEffects) AnswerAccepted() {
	r.mu.Lock()
	r.accepted++
	r.mu.Unlock()
}
func (r *recordingEffects) AnswerRejected() {
	r.mu.Lock()
	r.rejected++
	r.mu.Unlock()
}
func (r *recordingEffects) ShowHint(text string) {
	r.mu.Lock()
	r.hints = append(r.hints, text)
	r.mu.Unlock()
}

var errStorageDown = errors.New("storage down")

type failingStore struct {
	getErr, putErr error
	puts           int
}

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.getErr
}

func (f *failingStore) Put(context.Context, string, []byte) error {
	f.puts++
	return f.putErr
}

func (f *failingStore) Delete(context.Context, string) error { return f.putErr }

var _ storage.Store = (*failingStore)(nil)

// ctxStore fails every call whose context is already done, like a
// database driver does.
type ctxStore struct {
	storage.Store
}

func (s ctxStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return s.Store.Get(ctx, key)
}

func (s ctxStore) Put(ctx context.Context, key string, v []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Put(ctx, key, v)
}

func (s ctxStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Delete(ctx, key)
}

func equalBools(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
