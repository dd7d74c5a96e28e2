package journey

// Effects receives fire-and-forget presentation cues. Implementations
// must not call back into the Controller.
type Effects interface {
	Celebrate()
	AnswerAccepted()
	AnswerRejected()
	ShowHint(text string)
}

type NopEffects struct{}

func (NopEffects) Celebrate()      {}
func (NopEffects) AnswerAccepted() {}
func (NopEffects) AnswerRejected() {}
func (NopEffects) ShowHint(string) {}

// cues are effect calls collected while the controller lock is held and
// run after it is released.
type cues []func()

func (c cues) run() {
	for _, f := range c {
		f()
	}
}
