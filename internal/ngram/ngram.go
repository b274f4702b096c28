// Package ngram implements the bigram and trigram statistics stores: EMA
// timing/error tracking per n-gram, error/speed anomaly detection against
// character baselines, and utility-based pruning once a store grows large.
package ngram

import (
	"math"
	"sort"

	"github.com/haricheung/keytutor/internal/stats"
)

const (
	emaAlpha                 = 0.1
	maxRecent                = 30
	errorAnomalyRatioThresh  = 1.5
	speedAnomalyPctThreshold = 50.0
	minCharSamplesForSpeed   = 10

	// AnomalyStreakRequired and MinSamplesForFocus gate a "confirmed" anomaly.
	AnomalyStreakRequired = 3
	MinSamplesForFocus    = 20
	anomalyMinSamples     = 3

	// MaxTrigrams is the entry count above which TrigramStore.Prune acts.
	MaxTrigrams = 5000
)

// BigramKey is an ordered pair of characters.
type BigramKey [2]rune

// TrigramKey is an ordered triple of characters.
type TrigramKey [3]rune

// Less implements the lexicographic tie-break order used when sorting
// anomaly lists (SPEC_FULL.md §9 tie-breaking note).
func (a BigramKey) Less(b BigramKey) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// Stat holds the running EMA/error/anomaly statistics for one n-gram.
type Stat struct {
	FilteredTimeMs     float64
	BestTimeMs         float64
	SampleCount        int
	ErrorCount         int
	HesitationCount    int
	RecentTimes        []float64
	ErrorRateEMA       float64
	ErrorAnomalyStreak uint8
	SpeedAnomalyStreak uint8
	LastSeenDrillIndex uint32
}

func newStat() *Stat {
	return &Stat{FilteredTimeMs: 1000, BestTimeMs: math.MaxFloat64, ErrorRateEMA: 0.5}
}

func updateStat(st *Stat, timeMs float64, correct, hesitation bool, drillIndex uint32) {
	st.LastSeenDrillIndex = drillIndex
	st.SampleCount++
	if !correct {
		st.ErrorCount++
	}
	if hesitation {
		st.HesitationCount++
	}
	if st.SampleCount == 1 {
		st.FilteredTimeMs = timeMs
	} else {
		st.FilteredTimeMs = emaAlpha*timeMs + (1-emaAlpha)*st.FilteredTimeMs
	}
	if st.FilteredTimeMs < st.BestTimeMs {
		st.BestTimeMs = st.FilteredTimeMs
	}
	st.RecentTimes = append(st.RecentTimes, timeMs)
	if len(st.RecentTimes) > maxRecent {
		st.RecentTimes = st.RecentTimes[len(st.RecentTimes)-maxRecent:]
	}
	errSignal := 0.0
	if !correct {
		errSignal = 1.0
	}
	if st.SampleCount == 1 {
		st.ErrorRateEMA = errSignal
	} else {
		st.ErrorRateEMA = emaAlpha*errSignal + (1-emaAlpha)*st.ErrorRateEMA
	}
}

// AnomalyType distinguishes which baseline a confirmed anomaly came from.
type AnomalyType int

const (
	AnomalyError AnomalyType = iota
	AnomalySpeed
)

// BigramAnomaly is one candidate row returned by the anomaly-scanning helpers.
type BigramAnomaly struct {
	Key             BigramKey
	AnomalyPct      float64
	SampleCount     int
	ErrorCount      int
	ErrorRateEMA    float64
	SpeedMs         float64
	ExpectedBase    float64
	Confirmed       bool
}

// BigramStore tracks NgramStats keyed by BigramKey.
type BigramStore struct {
	stats map[BigramKey]*Stat
}

// NewBigramStore returns an empty BigramStore.
func NewBigramStore() *BigramStore {
	return &BigramStore{stats: make(map[BigramKey]*Stat)}
}

// Update ingests one bigram occurrence.
func (b *BigramStore) Update(key BigramKey, timeMs float64, correct, hesitation bool, drillIndex uint32) {
	st, ok := b.stats[key]
	if !ok {
		st = newStat()
		b.stats[key] = st
	}
	updateStat(st, timeMs, correct, hesitation, drillIndex)
}

// Get returns a copy of the Stat for key, if present.
func (b *BigramStore) Get(key BigramKey) (Stat, bool) {
	st, ok := b.stats[key]
	if !ok {
		return Stat{}, false
	}
	return *st, true
}

// SmoothedErrorRate returns the error-rate EMA for key, or 0.5 if unseen.
func (b *BigramStore) SmoothedErrorRate(key BigramKey) float64 {
	st, ok := b.stats[key]
	if !ok {
		return 0.5
	}
	return st.ErrorRateEMA
}

// ErrorAnomalyRatio compares the bigram's error rate against the
// character-independence expectation 1-(1-e_a)(1-e_b).
func (b *BigramStore) ErrorAnomalyRatio(key BigramKey, charStats *stats.Store) float64 {
	eA := charStats.SmoothedErrorRate(key[0])
	eB := charStats.SmoothedErrorRate(key[1])
	eAB := b.SmoothedErrorRate(key)
	expected := 1 - (1-eA)*(1-eB)
	return eAB / math.Max(0.01, expected)
}

// SpeedAnomalyPct compares the bigram's filtered time against the tail
// character's filtered time. Returns ok=false if the bigram is unseen or the
// tail character does not yet have enough samples.
func (b *BigramStore) SpeedAnomalyPct(key BigramKey, charStats *stats.Store) (float64, bool) {
	st, ok := b.stats[key]
	if !ok {
		return 0, false
	}
	tail, ok := charStats.Get(key[1])
	if !ok || tail.SampleCount < minCharSamplesForSpeed {
		return 0, false
	}
	ratio := st.FilteredTimeMs / tail.FilteredTimeMs
	return (ratio - 1) * 100, true
}

// UpdateErrorAnomalyStreak recomputes the error anomaly streak for key.
func (b *BigramStore) UpdateErrorAnomalyStreak(key BigramKey, charStats *stats.Store) {
	st, ok := b.stats[key]
	if !ok {
		return
	}
	ratio := b.ErrorAnomalyRatio(key, charStats)
	if ratio > errorAnomalyRatioThresh {
		st.ErrorAnomalyStreak = satAdd(st.ErrorAnomalyStreak)
	} else {
		st.ErrorAnomalyStreak = 0
	}
}

// UpdateSpeedAnomalyStreak recomputes the speed anomaly streak for key. If the
// tail character's baseline is unavailable, the streak is held unchanged.
func (b *BigramStore) UpdateSpeedAnomalyStreak(key BigramKey, charStats *stats.Store) {
	st, ok := b.stats[key]
	if !ok {
		return
	}
	if st.SampleCount < anomalyMinSamples {
		return
	}
	pct, ok := b.SpeedAnomalyPct(key, charStats)
	if !ok {
		return // hold previous streak: char baseline unavailable
	}
	if pct > speedAnomalyPctThreshold {
		st.SpeedAnomalyStreak = satAdd(st.SpeedAnomalyStreak)
	} else {
		st.SpeedAnomalyStreak = 0
	}
}

func satAdd(v uint8) uint8 {
	if v == 255 {
		return 255
	}
	return v + 1
}

func contains(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}

// ErrorAnomalyBigrams returns every bigram within unlocked whose error anomaly
// ratio exceeds threshold and has enough samples, sorted by AnomalyPct desc
// then key lexicographic order.
func (b *BigramStore) ErrorAnomalyBigrams(charStats *stats.Store, unlocked []rune) []BigramAnomaly {
	var out []BigramAnomaly
	for key, st := range b.stats {
		if !contains(unlocked, key[0]) || !contains(unlocked, key[1]) {
			continue
		}
		if st.SampleCount < anomalyMinSamples {
			continue
		}
		eA := charStats.SmoothedErrorRate(key[0])
		eB := charStats.SmoothedErrorRate(key[1])
		expected := 1 - (1-eA)*(1-eB)
		ratio := b.ErrorAnomalyRatio(key, charStats)
		if ratio <= errorAnomalyRatioThresh {
			continue
		}
		pct := (ratio - 1) * 100
		confirmed := st.ErrorAnomalyStreak >= AnomalyStreakRequired && st.SampleCount >= MinSamplesForFocus
		out = append(out, BigramAnomaly{
			Key: key, AnomalyPct: pct, SampleCount: st.SampleCount, ErrorCount: st.ErrorCount,
			ErrorRateEMA: st.ErrorRateEMA, SpeedMs: st.FilteredTimeMs, ExpectedBase: expected, Confirmed: confirmed,
		})
	}
	sortAnomalies(out)
	return out
}

// SpeedAnomalyBigrams returns every bigram within unlocked whose speed anomaly
// percentage exceeds threshold and has enough samples.
func (b *BigramStore) SpeedAnomalyBigrams(charStats *stats.Store, unlocked []rune) []BigramAnomaly {
	var out []BigramAnomaly
	for key, st := range b.stats {
		if !contains(unlocked, key[0]) || !contains(unlocked, key[1]) {
			continue
		}
		if st.SampleCount < anomalyMinSamples {
			continue
		}
		pct, ok := b.SpeedAnomalyPct(key, charStats)
		if !ok || pct <= speedAnomalyPctThreshold {
			continue
		}
		baseline := 0.0
		if tail, ok := charStats.Get(key[1]); ok {
			baseline = tail.FilteredTimeMs
		}
		confirmed := st.SpeedAnomalyStreak >= AnomalyStreakRequired && st.SampleCount >= MinSamplesForFocus
		out = append(out, BigramAnomaly{
			Key: key, AnomalyPct: pct, SampleCount: st.SampleCount, ErrorCount: st.ErrorCount,
			ErrorRateEMA: st.ErrorRateEMA, SpeedMs: st.FilteredTimeMs, ExpectedBase: baseline, Confirmed: confirmed,
		})
	}
	sortAnomalies(out)
	return out
}

func sortAnomalies(a []BigramAnomaly) {
	sort.Slice(a, func(i, j int) bool {
		if a[i].AnomalyPct != a[j].AnomalyPct {
			return a[i].AnomalyPct > a[j].AnomalyPct
		}
		return a[i].Key.Less(a[j].Key)
	})
}

// WorstConfirmedAnomaly returns the single worst confirmed anomaly (error or
// speed) across unlocked bigrams. Each bigram contributes at most one
// candidate — whichever of its two anomaly percentages is larger, error
// winning numeric ties.
func (b *BigramStore) WorstConfirmedAnomaly(charStats *stats.Store, unlocked []rune) (BigramKey, float64, AnomalyType, bool) {
	type cand struct {
		pct float64
		typ AnomalyType
	}
	candidates := make(map[BigramKey]cand)

	for _, a := range b.ErrorAnomalyBigrams(charStats, unlocked) {
		if a.Confirmed {
			candidates[a.Key] = cand{a.AnomalyPct, AnomalyError}
		}
	}
	for _, a := range b.SpeedAnomalyBigrams(charStats, unlocked) {
		if !a.Confirmed {
			continue
		}
		if existing, ok := candidates[a.Key]; ok && existing.pct >= a.AnomalyPct {
			continue // error wins ties: keep existing
		}
		candidates[a.Key] = cand{a.AnomalyPct, AnomalySpeed}
	}

	var (
		bestKey   BigramKey
		bestPct   = math.Inf(-1)
		bestType  AnomalyType
		found     bool
	)
	// Stable iteration: break ties by key order so results are deterministic.
	keys := make([]BigramKey, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, k := range keys {
		c := candidates[k]
		if c.pct > bestPct {
			bestPct, bestKey, bestType, found = c.pct, k, c.typ, true
		}
	}
	return bestKey, bestPct, bestType, found
}

// TrigramStore tracks NgramStats keyed by TrigramKey.
type TrigramStore struct {
	stats map[TrigramKey]*Stat
}

// NewTrigramStore returns an empty TrigramStore.
func NewTrigramStore() *TrigramStore {
	return &TrigramStore{stats: make(map[TrigramKey]*Stat)}
}

// Update ingests one trigram occurrence.
func (t *TrigramStore) Update(key TrigramKey, timeMs float64, correct, hesitation bool, drillIndex uint32) {
	st, ok := t.stats[key]
	if !ok {
		st = newStat()
		t.stats[key] = st
	}
	updateStat(st, timeMs, correct, hesitation, drillIndex)
}

// Get returns a copy of the Stat for key, if present.
func (t *TrigramStore) Get(key TrigramKey) (Stat, bool) {
	st, ok := t.stats[key]
	if !ok {
		return Stat{}, false
	}
	return *st, true
}

// Len returns the number of tracked trigrams.
func (t *TrigramStore) Len() int { return len(t.stats) }

// SmoothedErrorRate returns the error-rate EMA for key, or 0.5 if unseen.
func (t *TrigramStore) SmoothedErrorRate(key TrigramKey) float64 {
	st, ok := t.stats[key]
	if !ok {
		return 0.5
	}
	return st.ErrorRateEMA
}

// RedundancyScore measures how much of a trigram's error rate cannot be
// explained by its constituent characters or bigrams.
func (t *TrigramStore) RedundancyScore(key TrigramKey, bigrams *BigramStore, charStats *stats.Store) float64 {
	eA := charStats.SmoothedErrorRate(key[0])
	eB := charStats.SmoothedErrorRate(key[1])
	eC := charStats.SmoothedErrorRate(key[2])
	eABC := t.SmoothedErrorRate(key)

	expectedFromChars := 1 - (1-eA)*(1-eB)*(1-eC)
	eAB := bigrams.SmoothedErrorRate(BigramKey{key[0], key[1]})
	eBC := bigrams.SmoothedErrorRate(BigramKey{key[1], key[2]})
	expectedFromBigrams := math.Max(eAB, eBC)

	expected := math.Max(expectedFromChars, expectedFromBigrams)
	return eABC / math.Max(0.01, expected)
}

// Prune keeps only the top maxEntries trigrams by a recency/redundancy/sample
// utility score. totalDrills is the history-slot space used when updating
// LastSeenDrillIndex (includes partial drills).
func (t *TrigramStore) Prune(maxEntries int, totalDrills uint32, bigrams *BigramStore, charStats *stats.Store) {
	if len(t.stats) <= maxEntries {
		return
	}
	const recencyWeight, signalWeight, dataWeight = 0.3, 0.5, 0.2

	type scored struct {
		key TrigramKey
		u   float64
	}
	all := make([]scored, 0, len(t.stats))
	for key, st := range t.stats {
		drillsSince := float64(totalDrills) - float64(st.LastSeenDrillIndex)
		if drillsSince < 0 {
			drillsSince = 0
		}
		recency := 1 / (drillsSince + 1)
		redundancy := math.Min(t.RedundancyScore(key, bigrams, charStats), 3.0)
		data := math.Log1p(float64(st.SampleCount))
		u := recencyWeight*recency + signalWeight*redundancy + dataWeight*data
		all = append(all, scored{key, u})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].u > all[j].u })
	if len(all) > maxEntries {
		all = all[:maxEntries]
	}
	keep := make(map[TrigramKey]*Stat, len(all))
	for _, s := range all {
		keep[s.key] = t.stats[s.key]
	}
	t.stats = keep
}

// KeyTime mirrors session.KeyTime's shape as needed for extraction, kept
// local so that ngram does not import session.
type KeyTime struct {
	Key     rune
	TimeMs  float64
	Correct bool
}

// BigramEvent is one extracted bigram occurrence.
type BigramEvent struct {
	Key           BigramKey
	TotalTimeMs   float64
	Correct       bool
	HasHesitation bool
}

// TrigramEvent is one extracted trigram occurrence.
type TrigramEvent struct {
	Key           TrigramKey
	TotalTimeMs   float64
	Correct       bool
	HasHesitation bool
}

// ExtractEvents slides a window of 2 and 3 over perKeyTimes (after dropping
// backspace entries), rejecting any window touching a space. Bigram time is
// the tail character's time; trigram time sums the two trailing times.
func ExtractEvents(perKeyTimes []KeyTime, backspace rune, hesitationThreshold float64) ([]BigramEvent, []TrigramEvent) {
	filtered := make([]KeyTime, 0, len(perKeyTimes))
	for _, kt := range perKeyTimes {
		if kt.Key != backspace {
			filtered = append(filtered, kt)
		}
	}

	var bigrams []BigramEvent
	for i := 0; i+1 < len(filtered); i++ {
		a, b := filtered[i], filtered[i+1]
		if a.Key == ' ' || b.Key == ' ' {
			continue
		}
		bigrams = append(bigrams, BigramEvent{
			Key:           BigramKey{a.Key, b.Key},
			TotalTimeMs:   b.TimeMs,
			Correct:       a.Correct && b.Correct,
			HasHesitation: b.TimeMs > hesitationThreshold,
		})
	}

	var trigrams []TrigramEvent
	for i := 0; i+2 < len(filtered); i++ {
		a, b, c := filtered[i], filtered[i+1], filtered[i+2]
		if a.Key == ' ' || b.Key == ' ' || c.Key == ' ' {
			continue
		}
		trigrams = append(trigrams, TrigramEvent{
			Key:           TrigramKey{a.Key, b.Key, c.Key},
			TotalTimeMs:   b.TimeMs + c.TimeMs,
			Correct:       a.Correct && b.Correct && c.Correct,
			HasHesitation: b.TimeMs > hesitationThreshold || c.TimeMs > hesitationThreshold,
		})
	}

	return bigrams, trigrams
}

// HesitationThreshold computes max(800ms, 2.5*userMedianTransitionMs).
func HesitationThreshold(userMedianTransitionMs float64) float64 {
	return math.Max(800, 2.5*userMedianTransitionMs)
}

// ComputeMedian returns the median of values (0 if empty); sorts values in place.
func ComputeMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}

// TrigramMarginalGain is the fraction of sufficiently-sampled trigrams whose
// redundancy exceeds the anomaly ratio threshold — an offline diagnostic, not
// used by any focus decision.
func TrigramMarginalGain(trigrams *TrigramStore, bigrams *BigramStore, charStats *stats.Store) float64 {
	var qualified []TrigramKey
	for key, st := range trigrams.stats {
		if st.SampleCount >= MinSamplesForFocus {
			qualified = append(qualified, key)
		}
	}
	if len(qualified) == 0 {
		return 0
	}
	withSignal := 0
	for _, key := range qualified {
		if trigrams.RedundancyScore(key, bigrams, charStats) > errorAnomalyRatioThresh {
			withSignal++
		}
	}
	return float64(withSignal) / float64(len(qualified))
}
