package web

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const mediaCacheControl = "public, max-age=3600"

// videoContentTypes lists the local video formats the catalog may reference.
var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".ogv":  "video/ogg",
	".mov":  "video/quicktime",
}

// mediaPath validates the request path and returns the file to serve.
// Only files named as a chapter's video reference are served.
func (s *Server) mediaPath(urlPath string) (string, bool) {
	name := strings.Trim(strings.TrimPrefix(urlPath, "/media/"), "/")
	if name == "" || !s.referenced(name) {
		return "", false
	}

	safe := filepath.Clean(name)
	if safe == "." || strings.Contains(safe, "..") ||
		filepath.IsAbs(safe) || strings.Contains(safe, string(filepath.Separator)) {
		return "", false
	}

	baseDir := s.mediaBase()
	resolved := filepath.Join(baseDir, safe)
	rel, err := filepath.Rel(baseDir, resolved)
	if err != nil || strings.Contains(rel, "..") {
		return "", false
	}
	return resolved, true
}

func (s *Server) referenced(name string) bool {
	for i := 0; i < s.Catalog.Count(); i++ {
		if ch, _ := s.Catalog.Get(i); ch.VideoRef == name {
			return true
		}
	}
	return false
}

func (s *Server) mediaBase() string {
	if s.MediaDir == "" {
		return "media"
	}
	return s.MediaDir
}

// handleMedia serves local chapter videos from MediaDir. URL shape:
// /media/<filename>, where filename is a catalog video reference.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	p, ok := s.mediaPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	contentType, ok := videoContentTypes[strings.ToLower(filepath.Ext(p))]
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(p) // #nosec G304 -- p is under validated MediaDir
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", mediaCacheControl)
	http.ServeContent(w, r, filepath.Base(p), info.ModTime(), f)
}
