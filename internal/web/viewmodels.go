package web

import (
	"net/url"
	"path/filepath"
	"strings"

	"journey/internal/catalog"
	"journey/internal/journey"
)

// NavItem is one entry of the chapter navigation menu.
type NavItem struct {
	Index  int
	Label  string
	Active bool
	Locked bool
}

// ViewModel contains data for rendering the journey screen.
type ViewModel struct {
	Title    string
	Screen   string
	Chapter  catalog.Chapter
	Video    Video
	Nav      []NavItem
	Messages []string
	Hint     string
	// Rejected asks the page to clear and shake the answer field.
	Rejected  bool
	Fireworks int
	Closing   string
	Degraded  bool
}

// Video tells the template how to embed a chapter's video.
type Video struct {
	Kind string // "youtube" | "file" | "url"
	URL  string
}

func (s *Server) makeViewModel(v *visitor) ViewModel {
	st := v.ctrl.Snapshot()
	cues := v.cues.drain()
	cat := s.Catalog

	vm := ViewModel{
		Title:     cat.Title(),
		Screen:    st.Screen.String(),
		Messages:  cues.Messages,
		Hint:      cues.Hint,
		Rejected:  cues.Rejected,
		Fireworks: cues.Fireworks,
		Closing:   cat.Closing(),
		Degraded:  st.Degraded,
	}
	if st.Screen == journey.ScreenViewing || st.Screen == journey.ScreenAwaitingRiddle {
		ch, _ := cat.Get(st.Chapter)
		vm.Chapter = ch
		vm.Video = videoFor(ch.VideoRef)
	}
	vm.Nav = make([]NavItem, cat.Count())
	for i := range vm.Nav {
		ch, _ := cat.Get(i)
		vm.Nav[i] = NavItem{
			Index:  i,
			Label:  strings.TrimPrefix(ch.Title, "Chapter "),
			Active: st.Screen != journey.ScreenWelcome && st.Screen != journey.ScreenCelebration && i == st.Chapter,
			Locked: i >= len(st.Unlocked) || !st.Unlocked[i],
		}
	}
	return vm
}

// videoFor classifies a catalog video reference: a local file name with a
// known video extension, an absolute URL, or a YouTube video ID.
func videoFor(ref string) Video {
	if _, ok := videoContentTypes[strings.ToLower(filepath.Ext(ref))]; ok && !strings.Contains(ref, "://") {
		return Video{Kind: "file", URL: "/media/" + url.PathEscape(ref)}
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return Video{Kind: "url", URL: ref}
	}
	return Video{
		Kind: "youtube",
		URL:  "https://www.youtube.com/embed/" + url.PathEscape(ref) + "?enablejsapi=1&autoplay=1&rel=0&modestbranding=1",
	}
}
