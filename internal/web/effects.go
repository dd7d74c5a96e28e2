package web

import "sync"

const (
	msgAccepted = "The spell works! The path opens before you..."
	msgRejected = "The spell fizzles... That's not quite right. Try again."
	msgLocked   = "That chapter is still sealed."
)

// cueRecorder is a visitor's journey.Effects. Cues pile up between page
// renders and are drained into the next view model.
type cueRecorder struct {
	mu        sync.Mutex
	messages  []string
	hint      string
	rejected  bool
	fireworks int
}

func (c *cueRecorder) Celebrate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fireworks++
}

func (c *cueRecorder) AnswerAccepted() {
	c.add(msgAccepted)
}

func (c *cueRecorder) AnswerRejected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgRejected)
	c.rejected = true
}

func (c *cueRecorder) ShowHint(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hint = text
}

func (c *cueRecorder) add(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

type drained struct {
	Messages  []string
	Hint      string
	Rejected  bool
	Fireworks int
}

// drain returns pending cues and clears them. The fireworks count is kept
// so the celebration screen stays lit across reloads.
func (c *cueRecorder) drain() drained {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := drained{Messages: c.messages, Hint: c.hint, Rejected: c.rejected, Fireworks: c.fireworks}
	c.messages = nil
	c.hint = ""
	c.rejected = false
	return d
}

func (c *cueRecorder) resetFireworks() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fireworks = 0
}
