// Package stats implements the per-character timing and error-rate store.
//
// One Store tracks a KeyStat per character ever typed: an EMA of inter-keystroke
// time, a running best time, a confidence ratio against a target speed, and an
// EMA of the error rate. Two independent Store instances exist side by side in
// the coordinator — "overall" (every drill) and "ranked" (adaptive-mode drills
// only) — and neither knows about the other.
package stats

// EMAAlpha is the smoothing factor used for both the timing and error-rate EMAs.
const EMAAlpha = 0.1

// DefaultTargetCPM is the target characters-per-minute used to compute confidence
// before the user has set a WPM goal.
const DefaultTargetCPM = 175.0

// RecentTimesCap bounds the ring buffer of recent sample times.
const RecentTimesCap = 30

// KeyStat holds the running statistics for one character.
type KeyStat struct {
	FilteredTimeMs float64
	BestTimeMs     float64
	SampleCount    int
	TotalCount     int
	ErrorCount     int
	ErrorRateEMA   float64
	RecentTimes    []float64
}

// Store owns a KeyStat per character plus the store-wide target speed.
type Store struct {
	stats      map[rune]*KeyStat
	targetCPM  float64
}

// NewStore returns an empty Store at the default target speed.
func NewStore() *Store {
	return &Store{
		stats:     make(map[rune]*KeyStat),
		targetCPM: DefaultTargetCPM,
	}
}

// SetTargetCPM updates the store-wide target speed used by Confidence.
func (s *Store) SetTargetCPM(cpm float64) {
	if cpm <= 0 {
		return
	}
	s.targetCPM = cpm
}

// TargetCPM returns the store-wide target speed.
func (s *Store) TargetCPM() float64 {
	return s.targetCPM
}

func (s *Store) entry(key rune) *KeyStat {
	ks, ok := s.stats[key]
	if !ok {
		ks = &KeyStat{ErrorRateEMA: 0.5}
		s.stats[key] = ks
	}
	return ks
}

// Get returns a copy of the KeyStat for key and whether it exists. The copy
// does not change when the store is updated later.
func (s *Store) Get(key rune) (KeyStat, bool) {
	ks, ok := s.stats[key]
	if !ok {
		return KeyStat{}, false
	}
	return *ks, true
}

// Keys returns every character that has a KeyStat.
func (s *Store) Keys() []rune {
	out := make([]rune, 0, len(s.stats))
	for k := range s.stats {
		out = append(out, k)
	}
	return out
}

// UpdateCorrect records a correctly-typed keystroke for key with the given
// inter-keystroke time in milliseconds.
func (s *Store) UpdateCorrect(key rune, timeMs float64) {
	ks := s.entry(key)
	ks.SampleCount++
	ks.TotalCount++
	if ks.SampleCount == 1 {
		ks.FilteredTimeMs = timeMs
		ks.BestTimeMs = timeMs
	} else {
		ks.FilteredTimeMs = EMAAlpha*timeMs + (1-EMAAlpha)*ks.FilteredTimeMs
		if ks.FilteredTimeMs < ks.BestTimeMs {
			ks.BestTimeMs = ks.FilteredTimeMs
		}
	}
	ks.RecentTimes = append(ks.RecentTimes, timeMs)
	if len(ks.RecentTimes) > RecentTimesCap {
		ks.RecentTimes = ks.RecentTimes[len(ks.RecentTimes)-RecentTimesCap:]
	}
	ks.updateErrorRateEMA(0)
}

// UpdateError records an incorrectly-typed keystroke for key. Timing fields are
// untouched.
func (s *Store) UpdateError(key rune) {
	ks := s.entry(key)
	ks.ErrorCount++
	ks.TotalCount++
	ks.updateErrorRateEMA(1)
}

func (ks *KeyStat) updateErrorRateEMA(sample float64) {
	if ks.TotalCount == 1 {
		ks.ErrorRateEMA = sample
		return
	}
	ks.ErrorRateEMA = EMAAlpha*sample + (1-EMAAlpha)*ks.ErrorRateEMA
}

// Confidence returns target_time_ms / filtered_time_ms for key, or 0 if key has
// never been seen or has no timing samples yet.
func (s *Store) Confidence(key rune) float64 {
	ks, ok := s.stats[key]
	if !ok || ks.FilteredTimeMs <= 0 {
		return 0
	}
	targetTimeMs := 60000.0 / s.targetCPM
	return targetTimeMs / ks.FilteredTimeMs
}

// SmoothedErrorRate returns the error-rate EMA for key, or 0.5 (the seed value)
// if key has never been seen.
func (s *Store) SmoothedErrorRate(key rune) float64 {
	ks, ok := s.stats[key]
	if !ok {
		return 0.5
	}
	return ks.ErrorRateEMA
}

// ResetErrorCounters zeroes ErrorCount, TotalCount and re-seeds ErrorRateEMA for
// every key, leaving timing fields untouched. Used by the coordinator's history
// rebuild (SPEC_FULL.md §4.J step 2), which treats history replay as the sole
// source of truth for error/total counts.
func (s *Store) ResetErrorCounters() {
	for _, ks := range s.stats {
		ks.ErrorCount = 0
		ks.TotalCount = 0
		ks.ErrorRateEMA = 0.5
	}
}

// ReplayCorrect rebuilds TotalCount and ErrorRateEMA for one correctly-typed
// stroke during a history replay, without touching timing fields — mirrors the
// original's inline rebuild loop rather than UpdateCorrect's timing EMA.
func (s *Store) ReplayCorrect(key rune) {
	ks := s.entry(key)
	ks.TotalCount++
	if ks.TotalCount == 1 {
		ks.ErrorRateEMA = 0
	} else {
		ks.ErrorRateEMA = EMAAlpha*0 + (1-EMAAlpha)*ks.ErrorRateEMA
	}
}

// ReplayError rebuilds ErrorCount/TotalCount/ErrorRateEMA during history replay;
// identical to UpdateError since errors never touch timing.
func (s *Store) ReplayError(key rune) {
	s.UpdateError(key)
}

// Copy returns a deep snapshot of s, used to diff confidence before/after a
// drill's statistics are merged in (see skilltree.SkillTree.Update's
// beforeStats parameter).
func (s *Store) Copy() *Store {
	cp := &Store{stats: make(map[rune]*KeyStat, len(s.stats)), targetCPM: s.targetCPM}
	for k, ks := range s.stats {
		ksCopy := *ks
		ksCopy.RecentTimes = append([]float64(nil), ks.RecentTimes...)
		cp.stats[k] = &ksCopy
	}
	return cp
}

// All returns a copy of every KeyStat, keyed by character, for persistence.
func (s *Store) All() map[rune]KeyStat {
	out := make(map[rune]KeyStat, len(s.stats))
	for k, ks := range s.stats {
		out[k] = *ks
	}
	return out
}

// LoadAll replaces s's contents with data (used when loading a persisted
// document), preserving the current target speed.
func (s *Store) LoadAll(data map[rune]KeyStat) {
	s.stats = make(map[rune]*KeyStat, len(data))
	for k, ks := range data {
		ksCopy := ks
		s.stats[k] = &ksCopy
	}
}
