package session

import "time"

// Drill is the live state of one typing exercise: a target string, the
// characters typed against it so far, and the timing needed to score it.
type Drill struct {
	Target     []rune
	Input      []CharStatus
	Cursor     int
	StartedAt  time.Time
	FinishedAt time.Time
	TypoFlags  map[int]bool
}

// NewDrill starts a fresh drill against target text; timing begins on the
// first processed keystroke, not at construction.
func NewDrill(target string) *Drill {
	return &Drill{
		Target:    []rune(target),
		TypoFlags: make(map[int]bool),
	}
}

// IsComplete reports whether every target character has been typed.
func (d *Drill) IsComplete() bool {
	return d.Cursor >= len(d.Target)
}

// ElapsedSecs returns the drill's duration: zero before it starts, the time
// since start while in progress, and the fixed start-to-finish span once
// complete.
func (d *Drill) ElapsedSecs() float64 {
	switch {
	case !d.StartedAt.IsZero() && !d.FinishedAt.IsZero():
		return d.FinishedAt.Sub(d.StartedAt).Seconds()
	case !d.StartedAt.IsZero():
		return time.Since(d.StartedAt).Seconds()
	default:
		return 0.0
	}
}

// CorrectCount returns how many typed characters matched their target.
func (d *Drill) CorrectCount() int {
	n := 0
	for _, s := range d.Input {
		if s.Correct {
			n++
		}
	}
	return n
}

// IncorrectCount returns how many typed characters did not match their
// target, counting every mistyped keystroke still present in Input (not
// deduplicated by position — that is TypoCount's job).
func (d *Drill) IncorrectCount() int {
	n := 0
	for _, s := range d.Input {
		if !s.Correct {
			n++
		}
	}
	return n
}

// WPM returns words-per-minute computed from correctly typed characters,
// using the standard five-characters-per-word convention.
func (d *Drill) WPM() float64 {
	elapsed := d.ElapsedSecs()
	if elapsed < 0.1 {
		return 0.0
	}
	chars := float64(d.CorrectCount())
	return (chars / 5.0) / (elapsed / 60.0)
}

// CPM returns correctly typed characters per minute.
func (d *Drill) CPM() float64 {
	elapsed := d.ElapsedSecs()
	if elapsed < 0.1 {
		return 0.0
	}
	return float64(d.CorrectCount()) / (elapsed / 60.0)
}

// TypoCount returns the number of distinct positions that were ever mistyped,
// regardless of how many times a position was retried.
func (d *Drill) TypoCount() int {
	return len(d.TypoFlags)
}

// Accuracy returns the percentage of the positions typed so far that were
// never mistyped. A drill with nothing typed yet reports 100.
func (d *Drill) Accuracy() float64 {
	if d.Cursor == 0 {
		return 100.0
	}
	typosBeforeCursor := 0
	for pos := range d.TypoFlags {
		if pos < d.Cursor {
			typosBeforeCursor++
		}
	}
	acc := float64(d.Cursor-typosBeforeCursor) / float64(d.Cursor) * 100.0
	if acc < 0 {
		return 0
	}
	if acc > 100 {
		return 100
	}
	return acc
}

// Progress returns the fraction of the target typed so far, in [0, 1].
func (d *Drill) Progress() float64 {
	if len(d.Target) == 0 {
		return 0.0
	}
	return float64(d.Cursor) / float64(len(d.Target))
}
