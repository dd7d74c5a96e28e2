package catalog

import "time"

// Chapter is one unit of content: a video followed by a riddle gate.
type Chapter struct {
	Index            int
	Title            string
	VideoRef         string
	ExpectedDuration time.Duration // zero when the player reports completion itself
	Riddle           string
	Hint             string
	// Passphrase is compared case-insensitively against visitor input.
	// It is stored and served in plaintext: the gate keeps a cooperative
	// visitor on the intended path and is not an authentication boundary.
	Passphrase string
}

// File is the on-disk YAML layout. Chapter i is defined by position i
// across every list, so all lists must have the same length.
type File struct {
	Title       string          `yaml:"title"`
	Closing     string          `yaml:"closing"`
	Titles      []string        `yaml:"titles"`
	Videos      []string        `yaml:"videos"`
	Durations   []time.Duration `yaml:"durations"` // optional
	Riddles     []string        `yaml:"riddles"`
	Hints       []string        `yaml:"hints"`
	Passphrases []string        `yaml:"passphrases"`
}
