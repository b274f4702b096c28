package session

import "time"

// KeyTime is one inter-keystroke interval: the time it took to land the
// character expected at that position, and whether it landed correctly.
type KeyTime struct {
	Key     rune
	TimeMs  float64
	Correct bool
}

// Result is a finished drill's scorecard: the aggregate metrics used for
// history and dashboards, plus the per-key timing stream that feeds n-gram
// extraction.
type Result struct {
	Mode              string
	Ranked            bool
	Partial           bool
	WPM               float64
	CPM               float64
	Accuracy          float64
	Correct           int
	Incorrect         int
	TotalChars        int
	CompletionPercent float64
	ElapsedSecs       float64
	Timestamp         time.Time
	PerKeyTimes       []KeyTime
}

// FromDrill builds a Result from a finished (or partially finished) drill and
// its recorded keystroke events. events[i].Timestamp minus events[i-1].Timestamp
// gives the time to land events[i]; the first event has no predecessor and
// contributes no KeyTime entry.
func FromDrill(d *Drill, events []KeystrokeEvent, mode string, ranked, partial bool) Result {
	var perKeyTimes []KeyTime
	for i := 1; i < len(events); i++ {
		dt := events[i].Timestamp.Sub(events[i-1].Timestamp)
		perKeyTimes = append(perKeyTimes, KeyTime{
			Key:     events[i].Expected,
			TimeMs:  dt.Seconds() * 1000.0,
			Correct: events[i].Correct,
		})
	}

	return Result{
		Mode:              mode,
		Ranked:            ranked,
		Partial:           partial,
		WPM:               d.WPM(),
		CPM:               d.CPM(),
		Accuracy:          d.Accuracy(),
		Correct:           d.CorrectCount(),
		Incorrect:         d.IncorrectCount(),
		TotalChars:        len(d.Target),
		CompletionPercent: d.Progress() * 100,
		ElapsedSecs:       d.ElapsedSecs(),
		Timestamp:         time.Now(),
		PerKeyTimes:       perKeyTimes,
	}
}
