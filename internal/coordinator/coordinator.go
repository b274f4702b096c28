// Package coordinator sequences a practice session end to end: it owns the
// two parallel statistics worlds (every drill, and adaptive/ranked drills
// only), drives the skill tree forward after each drill, scores and streaks
// the user's profile, and rebuilds all derived state from saved history.
package coordinator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/haricheung/keytutor/internal/corpora"
	"github.com/haricheung/keytutor/internal/generator"
	"github.com/haricheung/keytutor/internal/ngram"
	"github.com/haricheung/keytutor/internal/session"
	"github.com/haricheung/keytutor/internal/skilltree"
	"github.com/haricheung/keytutor/internal/stats"
)

// DrillMode selects which generator and scoring path a drill follows.
type DrillMode int

const (
	Adaptive DrillMode = iota
	Code
	Passage
)

// String names the mode the way it is persisted and displayed.
func (m DrillMode) String() string {
	switch m {
	case Adaptive:
		return "adaptive"
	case Code:
		return "code"
	case Passage:
		return "passage"
	default:
		return "unknown"
	}
}

// IsRanked reports whether completing a drill in this mode advances the
// skill tree and contributes to the ranked statistics world. Only Adaptive
// drills are ranked; Code and Passage drills are practice-only.
func (m DrillMode) IsRanked() bool { return m == Adaptive }

// MilestoneKind distinguishes an unlock overlay from a mastery overlay.
type MilestoneKind int

const (
	MilestoneUnlock MilestoneKind = iota
	MilestoneMastery
)

var unlockMessages = []string{
	"Nice work! Keep building your typing skills.",
	"Another key added to your arsenal!",
	"Your keyboard is growing! Keep it up.",
	"One step closer to full keyboard mastery!",
}

var masteryMessages = []string{
	"This key is now at full confidence!",
	"You've got this key down pat!",
	"Muscle memory locked in!",
	"One more key conquered!",
}

// FingerInfo names the finger assigned to a newly-unlocked or newly-mastered
// key, for display alongside a Milestone overlay.
type FingerInfo struct {
	Key         rune
	Description string
}

// Milestone is a queued "you made progress" overlay, shown once per drill
// completion before the next drill starts.
type Milestone struct {
	Kind       MilestoneKind
	Keys       []rune
	FingerInfo []FingerInfo
	Message    string
}

// Profile is the persisted cross-session scorecard.
type Profile struct {
	TotalScore      float64
	TotalDrills     int
	StreakDays      int
	BestStreak      int
	LastPracticeDay string // YYYY-MM-DD, empty if never practiced
	SkillTree       skilltree.TreeProgress
}

// maxDrillHistory bounds the in-memory/persisted history slice.
const maxDrillHistory = 500

// postDrillInputLockDuration blocks stray keystrokes right after a drill
// finishes, so the Enter/Space that ended the drill can't bleed into the
// next screen.
const postDrillInputLockDuration = 800 * time.Millisecond

// maxTransitionBufferLen bounds the rolling inter-keystroke interval buffer
// used to compute the hesitation baseline.
const maxTransitionBufferLen = 200

// Coordinator owns every piece of derived state a running session needs and
// sequences drill completion, history rebuilds, and branch switches.
type Coordinator struct {
	KeyStats       *stats.Store
	RankedKeyStats *stats.Store

	BigramStats       *ngram.BigramStore
	RankedBigramStats *ngram.BigramStore

	TrigramStats       *ngram.TrigramStore
	RankedTrigramStats *ngram.TrigramStore

	SkillTree *skilltree.SkillTree
	Profile   Profile

	DrillHistory []session.Result

	TransitionBuffer       []float64
	UserMedianTransitionMs float64

	MilestoneQueue []Milestone

	Mode  DrillMode
	Scope skilltree.Scope

	// TrigramGainHistory records periodic diagnostic samples; see checkTrigramGain.
	TrigramGainHistory []float64

	postDrillInputLockUntil time.Time
	havePostDrillLock       bool

	// FingerDescriber names the finger assigned to a character, for milestone
	// display. Left nil, milestones carry no FingerInfo.
	FingerDescriber func(rune) string

	// CodeLanguageOverride and PassageSelectionOverride, when non-empty,
	// override cfg.CodeLanguage/cfg.PassageBook for exactly the next
	// GenerateText call, then reset to "" — the one-shot "drill this
	// specific language/book next" path a settings screen uses without
	// persisting the override to config.
	CodeLanguageOverride     string
	PassageSelectionOverride string

	dict  *generator.Dictionary
	table *generator.Table

	adaptiveWordHistory []map[string]bool

	codeGen     *corpora.CodeGenerator
	codeGenLang string

	passageGen          *corpora.PassageGenerator
	passageGenSelection string

	rng *rand.Rand
}

// New returns a Coordinator at default skill-tree progress and a fresh
// profile, with both statistics worlds seeded at targetCPM.
func New(targetCPM float64, rng *rand.Rand) *Coordinator {
	c := &Coordinator{
		KeyStats:           stats.NewStore(),
		RankedKeyStats:     stats.NewStore(),
		BigramStats:        ngram.NewBigramStore(),
		RankedBigramStats:  ngram.NewBigramStore(),
		TrigramStats:       ngram.NewTrigramStore(),
		RankedTrigramStats: ngram.NewTrigramStore(),
		SkillTree:          skilltree.Default(),
		Profile:            Profile{SkillTree: skilltree.DefaultProgress()},
		Mode:               Adaptive,
		Scope:              skilltree.GlobalScope(),
		rng:                rng,
	}
	c.KeyStats.SetTargetCPM(targetCPM)
	c.RankedKeyStats.SetTargetCPM(targetCPM)
	return c
}

// FinishDrill ingests a completed drill's keystroke stream: it updates both
// statistics worlds, extracts n-gram events, advances the skill tree (ranked
// drills only), scores and streaks the profile, queues any milestones, and
// appends the result to history. The returned Result is also the one pushed
// onto DrillHistory.
func (c *Coordinator) FinishDrill(drill *session.Drill, events []session.KeystrokeEvent) session.Result {
	ranked := c.Mode.IsRanked()
	result := session.FromDrill(drill, events, c.Mode.String(), ranked, false)
	c.ingestResult(result, ranked)
	c.finalizeResult(result)
	return result
}

// FinishPartialDrill ingests a drill ended early (e.g. by Escape). It updates
// timing/error statistics for the keystrokes that did occur, but never
// ranked, never scored, and never streak-affecting.
func (c *Coordinator) FinishPartialDrill(drill *session.Drill, events []session.KeystrokeEvent) session.Result {
	result := session.FromDrill(drill, events, c.Mode.String(), false, true)
	c.ingestResult(result, false)
	c.DrillHistory = append(c.DrillHistory, result)
	if len(c.DrillHistory) > maxDrillHistory {
		c.DrillHistory = c.DrillHistory[1:]
	}
	return result
}

// ingestResult applies one result's keystrokes to the timing/error stores
// and n-gram stores, in both the overall and (if ranked) ranked worlds.
func (c *Coordinator) ingestResult(result session.Result, ranked bool) {
	for _, kt := range result.PerKeyTimes {
		if kt.Correct {
			c.KeyStats.UpdateCorrect(kt.Key, kt.TimeMs)
		} else {
			c.KeyStats.UpdateError(kt.Key)
		}
	}

	drillIndex := uint32(len(c.DrillHistory))
	hesitationThresh := ngram.HesitationThreshold(c.UserMedianTransitionMs)
	keyTimes := toNgramKeyTimes(result.PerKeyTimes)
	bigramEvents, trigramEvents := ngram.ExtractEvents(keyTimes, '\x08', hesitationThresh)

	seenBigrams := make(map[ngram.BigramKey]bool)
	for _, ev := range bigramEvents {
		seenBigrams[ev.Key] = true
		c.BigramStats.Update(ev.Key, ev.TotalTimeMs, ev.Correct, ev.HasHesitation, drillIndex)
	}
	for key := range seenBigrams {
		c.BigramStats.UpdateErrorAnomalyStreak(key, c.KeyStats)
		c.BigramStats.UpdateSpeedAnomalyStreak(key, c.KeyStats)
	}
	for _, ev := range trigramEvents {
		c.TrigramStats.Update(ev.Key, ev.TotalTimeMs, ev.Correct, ev.HasHesitation, drillIndex)
	}
	c.TrigramStats.Prune(ngram.MaxTrigrams, drillIndex+1, c.BigramStats, c.KeyStats)

	if !ranked {
		return
	}

	beforeStats := c.RankedKeyStats.Copy()

	for _, kt := range result.PerKeyTimes {
		if kt.Correct {
			c.RankedKeyStats.UpdateCorrect(kt.Key, kt.TimeMs)
		} else {
			c.RankedKeyStats.UpdateError(kt.Key)
		}
	}
	seenRankedBigrams := make(map[ngram.BigramKey]bool)
	for _, ev := range bigramEvents {
		seenRankedBigrams[ev.Key] = true
		c.RankedBigramStats.Update(ev.Key, ev.TotalTimeMs, ev.Correct, ev.HasHesitation, drillIndex)
	}
	for key := range seenRankedBigrams {
		c.RankedBigramStats.UpdateErrorAnomalyStreak(key, c.RankedKeyStats)
		c.RankedBigramStats.UpdateSpeedAnomalyStreak(key, c.RankedKeyStats)
	}
	for _, ev := range trigramEvents {
		c.RankedTrigramStats.Update(ev.Key, ev.TotalTimeMs, ev.Correct, ev.HasHesitation, drillIndex)
	}
	c.RankedTrigramStats.Prune(ngram.MaxTrigrams, drillIndex+1, c.RankedBigramStats, c.RankedKeyStats)

	update := c.SkillTree.Update(c.RankedKeyStats, beforeStats)
	if len(update.NewlyUnlocked) > 0 {
		c.MilestoneQueue = append(c.MilestoneQueue, c.buildMilestone(MilestoneUnlock, update.NewlyUnlocked))
	}
	if len(update.NewlyMastered) > 0 {
		c.MilestoneQueue = append(c.MilestoneQueue, c.buildMilestone(MilestoneMastery, update.NewlyMastered))
	}
}

func (c *Coordinator) buildMilestone(kind MilestoneKind, keys []rune) Milestone {
	messages := unlockMessages
	if kind == MilestoneMastery {
		messages = masteryMessages
	}
	msg := messages[0]
	if c.rng != nil && len(messages) > 0 {
		msg = messages[c.rng.IntN(len(messages))]
	}
	var fingerInfo []FingerInfo
	if c.FingerDescriber != nil {
		for _, ch := range keys {
			fingerInfo = append(fingerInfo, FingerInfo{Key: ch, Description: c.FingerDescriber(ch)})
		}
	}
	return Milestone{Kind: kind, Keys: keys, FingerInfo: fingerInfo, Message: msg}
}

// finalizeResult scores the drill, updates streaks, updates the transition
// buffer, and appends to history. Called by FinishDrill; RebuildFromHistory
// repeats the scoring steps inline rather than calling it.
func (c *Coordinator) finalizeResult(result session.Result) {
	complexity := c.SkillTree.Complexity()
	score := ComputeScore(result, complexity)
	c.Profile.TotalScore += score
	c.Profile.TotalDrills++
	c.Profile.SkillTree = c.SkillTree.Progress

	c.applyStreak(result.Timestamp)
	c.UpdateTransitionBuffer(result.PerKeyTimes)
	c.checkTrigramGain()

	c.DrillHistory = append(c.DrillHistory, result)
	if len(c.DrillHistory) > maxDrillHistory {
		c.DrillHistory = c.DrillHistory[1:]
	}
}

// applyStreak advances the daily practice streak if when is a new calendar
// day relative to LastPracticeDay, resetting to 1 on any gap bigger than one
// day.
func (c *Coordinator) applyStreak(when time.Time) {
	today := when.UTC().Format("2006-01-02")
	if c.Profile.LastPracticeDay == today {
		return
	}
	if c.Profile.LastPracticeDay == "" {
		c.Profile.StreakDays = 1
	} else {
		last, err := time.Parse("2006-01-02", c.Profile.LastPracticeDay)
		cur, errCur := time.Parse("2006-01-02", today)
		if err == nil && errCur == nil && cur.Sub(last) == 24*time.Hour {
			c.Profile.StreakDays++
		} else {
			c.Profile.StreakDays = 1
		}
	}
	if c.Profile.StreakDays > c.Profile.BestStreak {
		c.Profile.BestStreak = c.Profile.StreakDays
	}
	c.Profile.LastPracticeDay = today
}

// checkTrigramGain samples the trigram marginal-gain diagnostic every 50
// drills; it feeds no focus decision, it is offline telemetry only.
func (c *Coordinator) checkTrigramGain() {
	if c.Profile.TotalDrills == 0 || c.Profile.TotalDrills%50 != 0 {
		return
	}
	gain := ngram.TrigramMarginalGain(c.RankedTrigramStats, c.RankedBigramStats, c.RankedKeyStats)
	c.TrigramGainHistory = append(c.TrigramGainHistory, gain)
}

// UpdateTransitionBuffer folds newly-observed inter-keystroke intervals into
// the rolling buffer used to compute the hesitation baseline, dropping
// backspace entries and capping the buffer at maxTransitionBufferLen.
func (c *Coordinator) UpdateTransitionBuffer(perKeyTimes []session.KeyTime) {
	for _, kt := range perKeyTimes {
		if kt.Key == '\x08' {
			continue
		}
		c.TransitionBuffer = append(c.TransitionBuffer, kt.TimeMs)
	}
	if len(c.TransitionBuffer) > maxTransitionBufferLen {
		c.TransitionBuffer = c.TransitionBuffer[len(c.TransitionBuffer)-maxTransitionBufferLen:]
	}
	buf := append([]float64(nil), c.TransitionBuffer...)
	c.UserMedianTransitionMs = ngram.ComputeMedian(buf)
}

// RebuildNgramStats replays DrillHistory to rebuild every n-gram store and
// every KeyStat's error/total counters from scratch, leaving timing EMAs
// untouched — timing EMAs are either loaded from disk or rebuilt wholesale
// by RebuildFromHistory. This is the sole source of truth for error/total
// counts after an import.
func (c *Coordinator) RebuildNgramStats() {
	c.BigramStats = ngram.NewBigramStore()
	c.RankedBigramStats = ngram.NewBigramStore()
	c.TrigramStats = ngram.NewTrigramStore()
	c.RankedTrigramStats = ngram.NewTrigramStore()
	c.TransitionBuffer = nil
	c.UserMedianTransitionMs = 0

	c.KeyStats.ResetErrorCounters()
	c.RankedKeyStats.ResetErrorCounters()

	history := c.DrillHistory
	c.DrillHistory = nil

	for i, result := range history {
		drillIndex := uint32(i)
		hesitationThresh := ngram.HesitationThreshold(c.UserMedianTransitionMs)
		keyTimes := toNgramKeyTimes(result.PerKeyTimes)
		bigramEvents, trigramEvents := ngram.ExtractEvents(keyTimes, '\x08', hesitationThresh)

		for _, kt := range result.PerKeyTimes {
			if kt.Correct {
				c.KeyStats.ReplayCorrect(kt.Key)
			} else {
				c.KeyStats.ReplayError(kt.Key)
			}
		}

		seenBigrams := make(map[ngram.BigramKey]bool)
		for _, ev := range bigramEvents {
			seenBigrams[ev.Key] = true
			c.BigramStats.Update(ev.Key, ev.TotalTimeMs, ev.Correct, ev.HasHesitation, drillIndex)
		}
		for key := range seenBigrams {
			c.BigramStats.UpdateErrorAnomalyStreak(key, c.KeyStats)
			c.BigramStats.UpdateSpeedAnomalyStreak(key, c.KeyStats)
		}
		for _, ev := range trigramEvents {
			c.TrigramStats.Update(ev.Key, ev.TotalTimeMs, ev.Correct, ev.HasHesitation, drillIndex)
		}

		if result.Ranked {
			for _, kt := range result.PerKeyTimes {
				if kt.Correct {
					c.RankedKeyStats.ReplayCorrect(kt.Key)
				} else {
					c.RankedKeyStats.ReplayError(kt.Key)
				}
			}
			seenRanked := make(map[ngram.BigramKey]bool)
			for _, ev := range bigramEvents {
				seenRanked[ev.Key] = true
				c.RankedBigramStats.Update(ev.Key, ev.TotalTimeMs, ev.Correct, ev.HasHesitation, drillIndex)
			}
			for key := range seenRanked {
				c.RankedBigramStats.UpdateErrorAnomalyStreak(key, c.RankedKeyStats)
				c.RankedBigramStats.UpdateSpeedAnomalyStreak(key, c.RankedKeyStats)
			}
			for _, ev := range trigramEvents {
				c.RankedTrigramStats.Update(ev.Key, ev.TotalTimeMs, ev.Correct, ev.HasHesitation, drillIndex)
			}
		}

		c.UpdateTransitionBuffer(result.PerKeyTimes)
		c.DrillHistory = append(c.DrillHistory, result)
	}
}

// RebuildFromHistory resets every derived piece of state — statistics,
// skill tree, profile score/streak — and replays DrillHistory oldest to
// newest to rebuild it all. Used after a history import, where the imported
// drill_history document is the sole source of truth. Partial drills remain
// visible in history but contribute nothing to score or streaks.
func (c *Coordinator) RebuildFromHistory() {
	targetCPM := c.KeyStats.TargetCPM()
	history := c.DrillHistory

	c.KeyStats = stats.NewStore()
	c.KeyStats.SetTargetCPM(targetCPM)
	c.RankedKeyStats = stats.NewStore()
	c.RankedKeyStats.SetTargetCPM(targetCPM)
	c.SkillTree = skilltree.Default()
	c.Profile.TotalScore = 0
	c.Profile.TotalDrills = 0
	c.Profile.StreakDays = 0
	c.Profile.BestStreak = 0
	c.Profile.LastPracticeDay = ""

	c.DrillHistory = nil
	for _, result := range history {
		for _, kt := range result.PerKeyTimes {
			if kt.Correct {
				c.KeyStats.UpdateCorrect(kt.Key, kt.TimeMs)
			}
		}
		if result.Ranked {
			for _, kt := range result.PerKeyTimes {
				if kt.Correct {
					c.RankedKeyStats.UpdateCorrect(kt.Key, kt.TimeMs)
				}
			}
			c.SkillTree.Update(c.RankedKeyStats, nil)
		}

		c.DrillHistory = append(c.DrillHistory, result)
		if result.Partial {
			continue
		}

		complexity := c.SkillTree.Complexity()
		score := ComputeScore(result, complexity)
		c.Profile.TotalScore += score
		c.Profile.TotalDrills++
		c.applyStreak(result.Timestamp)
	}

	c.Profile.SkillTree = c.SkillTree.Progress
	c.RebuildNgramStats()
}

// StartBranchDrill transitions a branch from Available to InProgress (if
// not already started) and switches the coordinator into Adaptive mode
// scoped to that branch. wordHistoryClear is invoked when the effective
// scope actually changes, so the caller can clear its generator's
// cross-drill word-repeat history.
func (c *Coordinator) StartBranchDrill(id skilltree.BranchID, wordHistoryClear func()) {
	c.SkillTree.StartBranch(id)
	c.Profile.SkillTree = c.SkillTree.Progress

	oldMode, oldScope := c.Mode, c.Scope
	c.Mode = Adaptive
	c.Scope = skilltree.BranchScope(id)
	if oldMode != Adaptive || oldScope != c.Scope {
		c.ClearWordHistory()
		if wordHistoryClear != nil {
			wordHistoryClear()
		}
	}
}

// ArmPostDrillInputLock starts (or restarts) the post-drill input lock
// window: keystrokes should be ignored until PostDrillInputLockRemaining
// reports zero.
func (c *Coordinator) ArmPostDrillInputLock() {
	c.postDrillInputLockUntil = time.Now().Add(postDrillInputLockDuration)
	c.havePostDrillLock = true
}

// ClearPostDrillInputLock releases the lock immediately.
func (c *Coordinator) ClearPostDrillInputLock() {
	c.havePostDrillLock = false
}

// PostDrillInputLockRemaining returns the time left on the lock, or zero if
// it has expired or was never armed.
func (c *Coordinator) PostDrillInputLockRemaining() time.Duration {
	if !c.havePostDrillLock {
		return 0
	}
	remaining := time.Until(c.postDrillInputLockUntil)
	if remaining <= 0 {
		c.havePostDrillLock = false
		return 0
	}
	return remaining
}

// ShouldAutoContinue reports whether the coordinator should immediately
// start the next drill rather than showing a result screen: true only in
// Adaptive mode once the milestone queue has drained.
func (c *Coordinator) ShouldAutoContinue() bool {
	return c.Mode == Adaptive && len(c.MilestoneQueue) == 0
}

// PopMilestone removes and returns the next queued milestone, if any.
func (c *Coordinator) PopMilestone() (Milestone, bool) {
	if len(c.MilestoneQueue) == 0 {
		return Milestone{}, false
	}
	m := c.MilestoneQueue[0]
	c.MilestoneQueue = c.MilestoneQueue[1:]
	return m, true
}

// ComputeScore is the per-drill contribution to Profile.TotalScore: speed
// and passage length rewarded, complexity (how much of the keyboard is
// unlocked) rewarded, errors penalized.
func ComputeScore(result session.Result, complexity float64) float64 {
	speed := result.CPM
	errors := float64(result.Incorrect)
	length := float64(result.TotalChars)
	return (speed * complexity) / (errors + 1.0) * (length / 50.0)
}

// LevelFromScore converts accumulated score into a level number, floored at 1.
func LevelFromScore(totalScore float64) int {
	level := int(math.Sqrt(totalScore / 100.0))
	if level < 1 {
		return 1
	}
	return level
}

// ScoreToNextLevel returns how much more score is needed to reach the next
// level boundary.
func ScoreToNextLevel(totalScore float64) float64 {
	current := LevelFromScore(totalScore)
	nextLevelScore := math.Pow(float64(current+1), 2) * 100.0
	return nextLevelScore - totalScore
}

func toNgramKeyTimes(perKeyTimes []session.KeyTime) []ngram.KeyTime {
	out := make([]ngram.KeyTime, len(perKeyTimes))
	for i, kt := range perKeyTimes {
		out[i] = ngram.KeyTime{Key: kt.Key, TimeMs: kt.TimeMs, Correct: kt.Correct}
	}
	return out
}
