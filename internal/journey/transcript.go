package journey

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const rule = "======================================================="

// Transcript is the downloadable keepsake: every chapter's title, riddle
// and answer followed by the closing note.
type Transcript struct {
	Filename string
	Date     time.Time
	Body     string
}

// ExportTranscript renders the whole catalog as plain text. An empty
// closing falls back to the catalog's own closing note. It reads no
// progression state.
func (c *Controller) ExportTranscript(closing string) Transcript {
	if strings.TrimSpace(closing) == "" {
		closing = c.cat.Closing()
	}
	title := c.cat.Title()
	if title == "" {
		title = "Journey"
	}
	now := c.now()

	entries := make([]string, 0, c.cat.Count())
	for i := 0; i < c.cat.Count(); i++ {
		ch, _ := c.cat.Get(i)
		entries = append(entries, fmt.Sprintf("%s\nRiddle: %s\nAnswer: %s",
			ch.Title, orNA(ch.Riddle), orNA(ch.Passphrase)))
	}

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("        " + strings.ToUpper(title) + " - KEEPSAKE\n")
	b.WriteString(rule + "\n\n")
	b.WriteString(strings.Join(entries, "\n\n---\n\n"))
	b.WriteString("\n\n" + rule + "\n\n")
	if closing != "" {
		b.WriteString(strings.TrimRight(closing, "\n") + "\n\n" + rule + "\n\n")
	}
	b.WriteString("Preserved on: " + now.Format("January 2, 2006") + "\n")

	return Transcript{
		Filename: fmt.Sprintf("%s_Keepsake_%s.txt", fileSlug(title), now.Format("2006-01-02")),
		Date:     now,
		Body:     b.String(),
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func fileSlug(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.TrimRight(b.String(), "_")
	if out == "" {
		return "Journey"
	}
	return out
}
