// Package session tracks a single typing drill from first keystroke to
// completion, and aggregates a finished drill into a result the rest of the
// system can learn from.
package session

import "time"

// CharStatus records whether a typed character matched the target at the
// position it was typed.
type CharStatus struct {
	Correct bool
	Typed   rune // meaningful only when Correct is false
}

// KeystrokeEvent is one recorded keystroke against the drill target,
// including the wall-clock time it landed — the raw material for per-key
// timing and n-gram extraction once a drill finishes.
type KeystrokeEvent struct {
	Expected  rune
	Actual    rune
	Timestamp time.Time
	Correct   bool
}

// ProcessChar advances the drill by one typed character, recording a
// keystroke event. It returns the event and true, or false if the drill was
// already complete.
func ProcessChar(d *Drill, ch rune) (KeystrokeEvent, bool) {
	if d.IsComplete() {
		return KeystrokeEvent{}, false
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}

	expected := d.Target[d.Cursor]
	correct := ch == expected
	event := KeystrokeEvent{Expected: expected, Actual: ch, Timestamp: time.Now(), Correct: correct}

	if correct {
		d.Input = append(d.Input, CharStatus{Correct: true})
	} else {
		d.Input = append(d.Input, CharStatus{Correct: false, Typed: ch})
		d.TypoFlags[d.Cursor] = true
	}
	d.Cursor++

	if d.IsComplete() {
		d.FinishedAt = time.Now()
	}

	return event, true
}

// ProcessBackspace retreats the cursor by one position, discarding the last
// recorded character status. Typo flags are never cleared by a backspace —
// a position once mistyped stays flagged even after it is corrected.
func ProcessBackspace(d *Drill) {
	if d.Cursor > 0 {
		d.Cursor--
		d.Input = d.Input[:len(d.Input)-1]
	}
}
