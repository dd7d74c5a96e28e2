package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// minimalMP4 returns a blob that starts like an ISO media file (ftyp box) for test fixtures.
func minimalMP4(t *testing.T) []byte {
	t.Helper()
	return []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00}
}

func TestHandleMedia_ServesReferencedFile(t *testing.T) {
	srv := testServer(t)
	if err := os.WriteFile(filepath.Join(srv.MediaDir, "clip.mp4"), minimalMP4(t), 0o600); err != nil {
		t.Fatalf("write clip.mp4: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/media/clip.mp4", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /media/clip.mp4: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Content-Type: expected video/mp4, got %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != mediaCacheControl {
		t.Errorf("Cache-Control: expected %q, got %q", mediaCacheControl, cc)
	}
	if rec.Body.Len() != len(minimalMP4(t)) {
		t.Errorf("body length: expected %d, got %d", len(minimalMP4(t)), rec.Body.Len())
	}
}

func TestHandleMedia_RangeRequest(t *testing.T) {
	srv := testServer(t)
	if err := os.WriteFile(filepath.Join(srv.MediaDir, "clip.mp4"), minimalMP4(t), 0o600); err != nil {
		t.Fatalf("write clip.mp4: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/media/clip.mp4", http.NoBody)
	req.Header.Set("Range", "bytes=4-7")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "ftyp" {
		t.Errorf("expected ftyp, got %q", got)
	}
}

func TestHandleMedia_UnreferencedFile_NotFound(t *testing.T) {
	srv := testServer(t)
	if err := os.WriteFile(filepath.Join(srv.MediaDir, "other.mp4"), minimalMP4(t), 0o600); err != nil {
		t.Fatalf("write other.mp4: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/media/other.mp4", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /media/other.mp4: expected 404, got %d", rec.Code)
	}
}

func TestHandleMedia_MissingFile_NotFound(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/media/clip.mp4", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /media/clip.mp4: expected 404, got %d", rec.Code)
	}
}

func TestMediaPath_Rejects(t *testing.T) {
	srv := testServer(t)
	for _, p := range []string{
		"/media/",
		"/media/../clip.mp4",
		"/media/sub/clip.mp4",
		"/media/U8FwUdq8KBw.exe",
	} {
		if got, ok := srv.mediaPath(p); ok {
			t.Errorf("mediaPath(%q) = %q, expected rejection", p, got)
		}
	}
	got, ok := srv.mediaPath("/media/clip.mp4")
	if !ok || got != filepath.Join(srv.MediaDir, "clip.mp4") {
		t.Errorf("mediaPath(clip.mp4) = %q, %v", got, ok)
	}
}
