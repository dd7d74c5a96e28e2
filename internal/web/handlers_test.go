package web

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"journey/internal/catalog"
	"journey/internal/journey"
	"journey/internal/storage"
)

const testVisitor = "visitor-1"

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(catalog.File{
		Title:       "Test Journey",
		Closing:     "Mischief managed.",
		Titles:      []string{"Chapter I: Beginning", "Chapter II: Joys"},
		Videos:      []string{"U8FwUdq8KBw", "clip.mp4"},
		Riddles:     []string{"First riddle?", "Second riddle?"},
		Hints:       []string{"Think of school.", "Think of apps."},
		Passphrases: []string{"genbio", "tiktok"},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func testServer(t *testing.T) *Server {
	t.Helper()
	tmplDir := filepath.Join("..", "..", "templates")
	tmpl := template.Must(template.ParseFiles(
		filepath.Join(tmplDir, "layout.html"),
		filepath.Join(tmplDir, "journey.html"),
	))
	srv := &Server{
		Catalog:  testCatalog(t),
		Sessions: NewSessions(),
		Progress: storage.NewMemoryStore(),
		Tmpl:     tmpl,
		MediaDir: t.TempDir(),
	}
	t.Cleanup(func() {
		if v, ok, _ := srv.Sessions.Get(context.Background(), testVisitor); ok {
			v.ctrl.Close()
		}
	})
	return srv
}

// do sends a request as testVisitor. Form values go in the body for POST.
func do(t *testing.T, srv *Server, method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if method == http.MethodPost {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: testVisitor})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func state(t *testing.T, srv *Server) journey.State {
	t.Helper()
	v, ok, err := srv.Sessions.Get(context.Background(), testVisitor)
	if err != nil || !ok {
		t.Fatalf("visitor not found: ok=%v err=%v", ok, err)
	}
	return v.ctrl.Snapshot()
}

func TestHandleIndex(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Errorf("Expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/journey" {
		t.Errorf("Expected Location /journey, got %q", loc)
	}
}

func TestHandleJourney_NewVisitorGetsCookie(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/journey", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var sid string
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			sid = c.Value
		}
	}
	if sid == "" {
		t.Fatal("Expected session cookie")
	}
	v, ok, _ := srv.Sessions.Get(context.Background(), sid)
	if !ok {
		t.Fatal("Expected visitor registered under cookie id")
	}
	defer v.ctrl.Close()
	body := rec.Body.String()
	if !strings.Contains(body, "Begin the Journey") || !strings.Contains(body, "<html") {
		t.Error("Expected full welcome page")
	}
}

func TestHandleStart_PlainFormRedirects(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv, http.MethodPost, "/start", nil, false)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("Expected 303, got %d", rec.Code)
	}
	if st := state(t, srv); st.Screen != journey.ScreenViewing || st.Chapter != 0 {
		t.Errorf("Expected Viewing(0), got %v(%d)", st.Screen, st.Chapter)
	}
}

func TestJourneyFlow_HTMX(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodPost, "/start", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-screen="viewing"`) || !strings.Contains(body, "youtube.com/embed/U8FwUdq8KBw") {
		t.Errorf("Expected viewing fragment with YouTube embed, got\n%s", body)
	}
	if strings.Contains(body, "<html") {
		t.Error("Expected fragment, not full page")
	}

	rec = do(t, srv, http.MethodPost, "/video/ended", url.Values{"chapter": {"0"}}, true)
	if !strings.Contains(rec.Body.String(), "First riddle?") {
		t.Errorf("Expected riddle screen, got\n%s", rec.Body.String())
	}

	rec = do(t, srv, http.MethodPost, "/answer", url.Values{"answer": {"nope"}}, true)
	body = rec.Body.String()
	if !strings.Contains(body, "The spell fizzles") || !strings.Contains(body, `class="shake"`) {
		t.Errorf("Expected rejection cue, got\n%s", body)
	}
	if st := state(t, srv); st.Screen != journey.ScreenAwaitingRiddle {
		t.Errorf("Expected AwaitingRiddle after wrong answer, got %v", st.Screen)
	}

	rec = do(t, srv, http.MethodPost, "/answer", url.Values{"answer": {" GenBio "}}, true)
	body = rec.Body.String()
	if !strings.Contains(body, msgAccepted) || !strings.Contains(body, `src="/media/clip.mp4"`) {
		t.Errorf("Expected acceptance and chapter 2 video, got\n%s", body)
	}
	raw, ok, _ := srv.Progress.Get(context.Background(), testVisitor+"/"+journey.DefaultStateKey)
	if !ok || string(raw) != "[true,true]" {
		t.Errorf("Expected persisted unlocks in visitor scope, got %q ok=%v", raw, ok)
	}

	_ = do(t, srv, http.MethodPost, "/video/ended", url.Values{"chapter": {"1"}}, true)
	rec = do(t, srv, http.MethodPost, "/answer", url.Values{"answer": {"tiktok"}}, true)
	body = rec.Body.String()
	if !strings.Contains(body, `data-screen="celebration"`) || !strings.Contains(body, "Mischief managed.") {
		t.Errorf("Expected celebration with closing note, got\n%s", body)
	}
	if !strings.Contains(body, `data-fireworks="1"`) {
		t.Error("Expected celebration cue recorded")
	}

	rec = do(t, srv, http.MethodPost, "/restart", nil, true)
	if !strings.Contains(rec.Body.String(), `data-screen="welcome"`) {
		t.Error("Expected welcome after restart")
	}
	st := state(t, srv)
	if len(st.Unlocked) != 2 || !st.Unlocked[1] {
		t.Errorf("Expected unlocks kept after restart, got %v", st.Unlocked)
	}
}

func TestHandleVideoEnded_StaleChapterIgnored(t *testing.T) {
	srv := testServer(t)
	_ = do(t, srv, http.MethodPost, "/start", nil, true)
	_ = do(t, srv, http.MethodPost, "/video/ended", url.Values{"chapter": {"1"}}, true)
	if st := state(t, srv); st.Screen != journey.ScreenViewing {
		t.Errorf("Expected signal for another chapter ignored, got %v", st.Screen)
	}
}

func TestHandleVideoReady(t *testing.T) {
	srv := testServer(t)
	_ = do(t, srv, http.MethodPost, "/start", nil, true)
	rec := do(t, srv, http.MethodPost, "/video/ready", nil, true)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
}

func TestHandleChapter_Locked(t *testing.T) {
	srv := testServer(t)
	_ = do(t, srv, http.MethodPost, "/start", nil, true)
	rec := do(t, srv, http.MethodPost, "/chapter", url.Values{"chapter": {"1"}}, true)
	if !strings.Contains(rec.Body.String(), msgLocked) {
		t.Error("Expected locked notice")
	}
	if st := state(t, srv); st.Chapter != 0 {
		t.Errorf("Expected chapter 0 unchanged, got %d", st.Chapter)
	}
}

func TestHandleChapter_BadInput(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv, http.MethodPost, "/chapter", url.Values{"chapter": {"two"}}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	rec = do(t, srv, http.MethodPost, "/chapter", url.Values{"chapter": {"99"}}, true)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected out-of-range chapter ignored with 200, got %d", rec.Code)
	}
}

func TestHandleHint(t *testing.T) {
	srv := testServer(t)
	_ = do(t, srv, http.MethodPost, "/start", nil, true)
	_ = do(t, srv, http.MethodPost, "/video/ended", nil, true)
	rec := do(t, srv, http.MethodPost, "/hint", nil, true)
	if !strings.Contains(rec.Body.String(), "Think of school.") {
		t.Errorf("Expected hint for current chapter, got\n%s", rec.Body.String())
	}
	// Hints are shown once.
	rec = do(t, srv, http.MethodGet, "/journey", nil, true)
	if strings.Contains(rec.Body.String(), "Think of school.") {
		t.Error("Expected hint drained after display")
	}
}

func TestHandleReset(t *testing.T) {
	srv := testServer(t)
	_ = do(t, srv, http.MethodPost, "/start", nil, true)
	_ = do(t, srv, http.MethodPost, "/video/ended", nil, true)
	_ = do(t, srv, http.MethodPost, "/answer", url.Values{"answer": {"genbio"}}, true)

	_ = do(t, srv, http.MethodPost, "/reset", nil, true)
	st := state(t, srv)
	if st.Screen != journey.ScreenWelcome || st.Unlocked[1] {
		t.Errorf("Expected fresh state after reset, got %+v", st)
	}
}

func TestUnlocksSurviveNewServerProcess(t *testing.T) {
	progress := storage.NewMemoryStore()
	first := testServer(t)
	first.Progress = progress
	_ = do(t, first, http.MethodPost, "/start", nil, true)
	_ = do(t, first, http.MethodPost, "/video/ended", nil, true)
	_ = do(t, first, http.MethodPost, "/answer", url.Values{"answer": {"genbio"}}, true)

	second := testServer(t)
	second.Progress = progress
	rec := do(t, second, http.MethodGet, "/journey", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if st := state(t, second); !st.Unlocked[1] {
		t.Errorf("Expected chapter 1 unlocked from persisted record, got %v", st.Unlocked)
	}
}

func TestKeepsakeText(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv, http.MethodGet, "/keepsake.txt?closing=Love+always", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain, got %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "Test_Journey_Keepsake_") || !strings.HasSuffix(cd, `.txt"`) {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Answer: genbio") || !strings.Contains(body, "Love always") {
		t.Errorf("Unexpected transcript\n%s", body)
	}
}

func TestKeepsakePDF(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv, http.MethodGet, "/keepsake.pdf", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("Expected PDF body")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasSuffix(cd, `.pdf"`) {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
}

func TestVideoFor(t *testing.T) {
	tests := []struct {
		ref  string
		kind string
		url  string
	}{
		{"U8FwUdq8KBw", "youtube", "https://www.youtube.com/embed/U8FwUdq8KBw?enablejsapi=1&autoplay=1&rel=0&modestbranding=1"},
		{"clip.MP4", "file", "/media/clip.MP4"},
		{"https://cdn.example.com/a.mp4", "url", "https://cdn.example.com/a.mp4"},
	}
	for _, tt := range tests {
		got := videoFor(tt.ref)
		if got.Kind != tt.kind || got.URL != tt.url {
			t.Errorf("videoFor(%q) = %+v, want %s %s", tt.ref, got, tt.kind, tt.url)
		}
	}
}

func TestSweepVisitors(t *testing.T) {
	srv := testServer(t)
	_ = do(t, srv, http.MethodPost, "/start", nil, true)
	_ = do(t, srv, http.MethodPost, "/video/ended", nil, true)
	_ = do(t, srv, http.MethodPost, "/answer", url.Values{"answer": {"genbio"}}, true)

	if n := srv.SweepVisitors(); n != 0 {
		t.Errorf("Expected no sweep without an idle timeout, got %d", n)
	}
	srv.VisitorIdle = time.Nanosecond
	time.Sleep(time.Millisecond)
	if n := srv.SweepVisitors(); n != 1 {
		t.Fatalf("Expected the idle visitor dropped, got %d", n)
	}
	if _, ok, _ := srv.Sessions.Get(context.Background(), testVisitor); ok {
		t.Fatal("Expected visitor removed from sessions")
	}

	// Returning with the same cookie rebuilds the visitor from stored progress.
	srv.VisitorIdle = 0
	_ = do(t, srv, http.MethodGet, "/journey", nil, true)
	if st := state(t, srv); !st.Unlocked[1] {
		t.Errorf("Expected unlocks restored after sweep, got %v", st.Unlocked)
	}
}
