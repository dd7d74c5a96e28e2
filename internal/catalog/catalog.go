// Package catalog holds the ordered, read-only list of chapters that make
// up a journey.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrOutOfRange is returned for chapter indexes outside [0, Count()).
var ErrOutOfRange = errors.New("chapter index out of range")

// Catalog is immutable after construction.
type Catalog struct {
	title    string
	closing  string
	chapters []Chapter
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes and validates YAML catalog bytes.
func Parse(b []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f)
}

// New validates f and builds a catalog from it.
func New(f File) (*Catalog, error) {
	n := len(f.Videos)
	if n == 0 {
		return nil, errors.New("catalog has no chapters")
	}
	lists := []struct {
		name string
		len  int
	}{
		{"titles", len(f.Titles)},
		{"riddles", len(f.Riddles)},
		{"hints", len(f.Hints)},
		{"passphrases", len(f.Passphrases)},
	}
	if f.Durations != nil {
		lists = append(lists, struct {
			name string
			len  int
		}{"durations", len(f.Durations)})
	}
	for _, l := range lists {
		if l.len != n {
			return nil, fmt.Errorf("catalog list %q has %d entries, videos has %d", l.name, l.len, n)
		}
	}

	chapters := make([]Chapter, n)
	for i := 0; i < n; i++ {
		if strings.TrimSpace(f.Videos[i]) == "" {
			return nil, fmt.Errorf("chapter %d: empty video reference", i)
		}
		if strings.TrimSpace(f.Passphrases[i]) == "" {
			return nil, fmt.Errorf("chapter %d: empty passphrase", i)
		}
		ch := Chapter{
			Index:      i,
			Title:      f.Titles[i],
			VideoRef:   f.Videos[i],
			Riddle:     f.Riddles[i],
			Hint:       f.Hints[i],
			Passphrase: f.Passphrases[i],
		}
		if f.Durations != nil {
			if f.Durations[i] < 0 {
				return nil, fmt.Errorf("chapter %d: negative duration", i)
			}
			ch.ExpectedDuration = f.Durations[i]
		}
		chapters[i] = ch
	}
	return &Catalog{title: f.Title, closing: f.Closing, chapters: chapters}, nil
}

// Count returns the number of chapters.
func (c *Catalog) Count() int {
	return len(c.chapters)
}

// Get returns chapter i.
func (c *Catalog) Get(i int) (Chapter, error) {
	if i < 0 || i >= len(c.chapters) {
		return Chapter{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(c.chapters))
	}
	return c.chapters[i], nil
}

// Title is the journey's display title.
func (c *Catalog) Title() string { return c.title }

// Closing is the free-form note shown on the celebration screen.
func (c *Catalog) Closing() string { return c.closing }
