// Package skilltree implements the branch/level progressive-unlock state
// machine that gates which characters may appear in generated passages.
package skilltree

import (
	"encoding/json"
	"sort"

	"github.com/haricheung/keytutor/internal/stats"
)

// Sentinel characters shared with the rest of the core; kept local to avoid a
// cyclic dependency on a shared "keys" package for three constants.
const (
	Space     = ' '
	Backspace = '\x08'
	Tab       = '\t'
	Enter     = '\n'
)

// BranchID identifies one of the six skill-tree branches.
type BranchID int

const (
	Lowercase BranchID = iota
	Capitals
	Numbers
	ProsePunctuation
	Whitespace
	CodeSymbols
)

// AllBranches lists every branch in declaration order.
func AllBranches() []BranchID {
	return []BranchID{Lowercase, Capitals, Numbers, ProsePunctuation, Whitespace, CodeSymbols}
}

// Key returns the stable string key used to persist a branch's progress.
func (b BranchID) Key() string {
	switch b {
	case Lowercase:
		return "lowercase"
	case Capitals:
		return "capitals"
	case Numbers:
		return "numbers"
	case ProsePunctuation:
		return "prose_punctuation"
	case Whitespace:
		return "whitespace"
	case CodeSymbols:
		return "code_symbols"
	default:
		return ""
	}
}

// BranchByKey resolves a persisted branch key back to a BranchID.
func BranchByKey(key string) (BranchID, bool) {
	for _, b := range AllBranches() {
		if b.Key() == key {
			return b, true
		}
	}
	return 0, false
}

// Status is a branch's lifecycle state.
type Status int

const (
	Locked Status = iota
	Available
	InProgress
	Complete
)

// Level is one named tier of a branch, with its fixed key set.
type Level struct {
	Name string
	Keys []rune
}

// BranchDefinition is a branch's fixed, declarative level table.
type BranchDefinition struct {
	ID     BranchID
	Name   string
	Levels []Level
}

var branchDefs = map[BranchID]BranchDefinition{
	Lowercase: {
		ID: Lowercase, Name: "Lowercase a-z",
		Levels: []Level{{Name: "Frequency Order", Keys: []rune(
			"etaoinshrdlcumwfgypbvkjxqz")}},
	},
	Capitals: {
		ID: Capitals, Name: "Capitals A-Z",
		Levels: []Level{
			{Name: "Common Sentence Capitals", Keys: []rune("TIASWHBM")},
			{Name: "Name Capitals", Keys: []rune("JDRCENPLFG")},
			{Name: "Remaining Capitals", Keys: []rune("OUKVYXQZ")},
		},
	},
	Numbers: {
		ID: Numbers, Name: "Numbers 0-9",
		Levels: []Level{
			{Name: "Common Digits", Keys: []rune("12345")},
			{Name: "All Digits", Keys: []rune("06789")},
		},
	},
	ProsePunctuation: {
		ID: ProsePunctuation, Name: "Prose Punctuation",
		Levels: []Level{
			{Name: "Essential", Keys: []rune{'.', ',', '\''}},
			{Name: "Common", Keys: []rune{';', ':', '"', '-'}},
			{Name: "Expressive", Keys: []rune{'?', '!', '(', ')'}},
		},
	},
	Whitespace: {
		ID: Whitespace, Name: "Whitespace",
		Levels: []Level{
			{Name: "Enter/Return", Keys: []rune{Enter}},
			{Name: "Tab/Indent", Keys: []rune{Tab}},
		},
	},
	CodeSymbols: {
		ID: CodeSymbols, Name: "Code Symbols",
		Levels: []Level{
			{Name: "Arithmetic & Assignment", Keys: []rune{'=', '+', '*', '/', '-'}},
			{Name: "Grouping", Keys: []rune{'{', '}', '[', ']', '<', '>'}},
			{Name: "Logic & Reference", Keys: []rune{'&', '|', '^', '~', '!'}},
			{Name: "Special", Keys: []rune{'@', '#', '$', '%', '_', '\\', '`'}},
		},
	},
}

// Definition returns the fixed declarative table for id.
func Definition(id BranchID) BranchDefinition {
	return branchDefs[id]
}

// alwaysUnlocked are present in every scope's unlocked set.
var alwaysUnlocked = []rune{Space, Backspace}

// lowercaseMinKeys is how many letters are unlocked before progressive
// per-key unlock begins advancing one letter at a time.
const lowercaseMinKeys = 6

// Progress is one branch's persisted lifecycle state.
type Progress struct {
	Status       Status
	CurrentLevel int
}

// TreeProgress is the full persisted skill-tree state: one Progress per branch.
type TreeProgress struct {
	Branches map[BranchID]Progress
}

// MarshalJSON persists branches keyed by their stable string key (e.g.
// "lowercase") rather than the numeric BranchID, so the on-disk document
// survives BranchID reordering.
func (t TreeProgress) MarshalJSON() ([]byte, error) {
	out := make(map[string]Progress, len(t.Branches))
	for id, p := range t.Branches {
		out[id.Key()] = p
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores branches from their stable string keys.
func (t *TreeProgress) UnmarshalJSON(data []byte) error {
	var in map[string]Progress
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.Branches = make(map[BranchID]Progress, len(in))
	for key, p := range in {
		if id, ok := BranchByKey(key); ok {
			t.Branches[id] = p
		}
	}
	return nil
}

// DefaultProgress returns the starting state: Lowercase InProgress, everything
// else Locked.
func DefaultProgress() TreeProgress {
	branches := make(map[BranchID]Progress, 6)
	branches[Lowercase] = Progress{Status: InProgress}
	for _, id := range []BranchID{Capitals, Numbers, ProsePunctuation, Whitespace, CodeSymbols} {
		branches[id] = Progress{Status: Locked}
	}
	return TreeProgress{Branches: branches}
}

// Scope selects which branches contribute to unlocked-key/focus computations.
type Scope struct {
	global bool
	branch BranchID
}

// GlobalScope is the "use every InProgress/Complete branch" scope.
func GlobalScope() Scope { return Scope{global: true} }

// BranchScope is the "this branch plus lowercase background" scope.
func BranchScope(id BranchID) Scope { return Scope{branch: id} }

func (s Scope) IsGlobal() bool { return s.global }

// Branch returns the scope's branch, valid only when IsGlobal is false.
func (s Scope) Branch() BranchID { return s.branch }

// Update is the result of one SkillTree.Update call.
type Update struct {
	NewlyUnlocked []rune
	NewlyMastered []rune
}

// SkillTree is the mutable engine wrapping a TreeProgress.
type SkillTree struct {
	Progress        TreeProgress
	totalUniqueKeys int
}

// New wraps progress in a SkillTree, precomputing the total unique key count
// used by Complexity.
func New(progress TreeProgress) *SkillTree {
	return &SkillTree{Progress: progress, totalUniqueKeys: computeTotalUniqueKeys()}
}

// Default returns a SkillTree at DefaultProgress.
func Default() *SkillTree { return New(DefaultProgress()) }

func computeTotalUniqueKeys() int {
	seen := make(map[rune]struct{})
	for _, b := range AllBranches() {
		for _, level := range branchDefs[b].Levels {
			for _, k := range level.Keys {
				seen[k] = struct{}{}
			}
		}
	}
	for _, k := range alwaysUnlocked {
		seen[k] = struct{}{}
	}
	return len(seen)
}

func (t *SkillTree) branchProgress(id BranchID) Progress {
	if p, ok := t.Progress.Branches[id]; ok {
		return p
	}
	return Progress{Status: Locked}
}

func (t *SkillTree) setBranchProgress(id BranchID, p Progress) {
	if t.Progress.Branches == nil {
		t.Progress.Branches = make(map[BranchID]Progress)
	}
	t.Progress.Branches[id] = p
}

// BranchStatus returns id's current status (Locked if unset).
func (t *SkillTree) BranchStatus(id BranchID) Status {
	return t.branchProgress(id).Status
}

// BranchProgress returns a copy of id's current progress.
func (t *SkillTree) BranchProgress(id BranchID) Progress {
	return t.branchProgress(id)
}

// StartBranch transitions an Available branch to InProgress at level 0.
func (t *SkillTree) StartBranch(id BranchID) {
	bp := t.branchProgress(id)
	if bp.Status == Available {
		bp.Status = InProgress
		bp.CurrentLevel = 0
		t.setBranchProgress(id, bp)
	}
}

func contains(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}

func dedupAppend(dst []rune, src []rune) []rune {
	for _, r := range src {
		if !contains(dst, r) {
			dst = append(dst, r)
		}
	}
	return dst
}

// lowercaseUnlockedKeys returns the progressively-unlocked prefix of the
// lowercase frequency-order level.
func (t *SkillTree) lowercaseUnlockedKeys() []rune {
	allKeys := branchDefs[Lowercase].Levels[0].Keys
	bp := t.branchProgress(Lowercase)
	switch bp.Status {
	case Complete:
		out := make([]rune, len(allKeys))
		copy(out, allKeys)
		return out
	case InProgress:
		count := lowercaseMinKeys + bp.CurrentLevel
		if count > len(allKeys) {
			count = len(allKeys)
		}
		out := make([]rune, count)
		copy(out, allKeys[:count])
		return out
	default:
		return nil
	}
}

// LowercaseUnlockedCount reports how many lowercase letters are unlocked.
func (t *SkillTree) LowercaseUnlockedCount() int { return len(t.lowercaseUnlockedKeys()) }

// UnlockedKeys returns every character usable by a drill in scope.
func (t *SkillTree) UnlockedKeys(scope Scope) []rune {
	if scope.IsGlobal() {
		return t.globalUnlockedKeys()
	}
	return t.branchUnlockedKeys(scope.branch)
}

func (t *SkillTree) globalUnlockedKeys() []rune {
	keys := append([]rune(nil), alwaysUnlocked...)
	for _, id := range AllBranches() {
		bp := t.branchProgress(id)
		def := branchDefs[id]
		switch bp.Status {
		case InProgress:
			if id == Lowercase {
				keys = dedupAppend(keys, t.lowercaseUnlockedKeys())
			} else {
				for i, level := range def.Levels {
					if i <= bp.CurrentLevel {
						keys = dedupAppend(keys, level.Keys)
					}
				}
			}
		case Complete:
			for _, level := range def.Levels {
				keys = dedupAppend(keys, level.Keys)
			}
		}
	}
	return keys
}

func (t *SkillTree) branchUnlockedKeys(id BranchID) []rune {
	keys := append([]rune(nil), alwaysUnlocked...)

	if id != Lowercase {
		lowerBP := t.branchProgress(Lowercase)
		switch lowerBP.Status {
		case InProgress:
			keys = dedupAppend(keys, t.lowercaseUnlockedKeys())
		case Complete:
			keys = dedupAppend(keys, branchDefs[Lowercase].Levels[0].Keys)
		}
	}

	def := branchDefs[id]
	bp := t.branchProgress(id)
	if id == Lowercase {
		keys = dedupAppend(keys, t.lowercaseUnlockedKeys())
	} else {
		switch bp.Status {
		case InProgress:
			for i, level := range def.Levels {
				if i <= bp.CurrentLevel {
					keys = dedupAppend(keys, level.Keys)
				}
			}
		case Complete:
			for _, level := range def.Levels {
				keys = dedupAppend(keys, level.Keys)
			}
		}
	}
	return keys
}

// FocusedKey returns the weakest candidate character for scope, or false if
// every candidate already has confidence >= 1.0 (or there are none).
func (t *SkillTree) FocusedKey(scope Scope, keyStats *stats.Store) (rune, bool) {
	if scope.IsGlobal() {
		return t.globalFocusedKey(keyStats)
	}
	return t.branchFocusedKey(scope.branch, keyStats)
}

func (t *SkillTree) globalFocusedKey(keyStats *stats.Store) (rune, bool) {
	var candidates []rune
	for _, id := range AllBranches() {
		bp := t.branchProgress(id)
		def := branchDefs[id]
		switch bp.Status {
		case InProgress:
			if id == Lowercase {
				candidates = append(candidates, t.lowercaseUnlockedKeys()...)
			} else if bp.CurrentLevel < len(def.Levels) {
				candidates = append(candidates, def.Levels[bp.CurrentLevel].Keys...)
				for i := 0; i < bp.CurrentLevel; i++ {
					candidates = append(candidates, def.Levels[i].Keys...)
				}
			}
		case Complete:
			for _, level := range def.Levels {
				candidates = append(candidates, level.Keys...)
			}
		}
	}
	return weakestKey(candidates, keyStats)
}

func (t *SkillTree) branchFocusedKey(id BranchID, keyStats *stats.Store) (rune, bool) {
	if id == Lowercase {
		return weakestKey(t.lowercaseUnlockedKeys(), keyStats)
	}
	def := branchDefs[id]
	bp := t.branchProgress(id)
	if bp.Status == InProgress && bp.CurrentLevel < len(def.Levels) {
		return weakestKey(def.Levels[bp.CurrentLevel].Keys, keyStats)
	}
	return 0, false
}

func weakestKey(keys []rune, keyStats *stats.Store) (rune, bool) {
	best := rune(0)
	bestConf := 0.0
	found := false
	// Sort candidates first so ties resolve deterministically by character order.
	sorted := append([]rune(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, ch := range sorted {
		conf := keyStats.Confidence(ch)
		if conf >= 1.0 {
			continue
		}
		if !found || conf < bestConf {
			best, bestConf, found = ch, conf, true
		}
	}
	return best, found
}

// Update advances the skill tree based on keyStats and returns what changed.
// beforeStats, if non-nil, is a snapshot taken before this drill's data was
// merged into keyStats, used to detect newly-mastered keys.
func (t *SkillTree) Update(keyStats *stats.Store, beforeStats *stats.Store) Update {
	beforeUnlocked := toSet(t.UnlockedKeys(GlobalScope()))

	t.updateLowercase(keyStats)

	if t.BranchStatus(Lowercase) == Complete {
		for _, id := range []BranchID{Capitals, Numbers, ProsePunctuation, Whitespace, CodeSymbols} {
			bp := t.branchProgress(id)
			if bp.Status == Locked {
				bp.Status = Available
				t.setBranchProgress(id, bp)
			}
		}
	}

	for _, id := range AllBranches() {
		if id == Lowercase {
			continue
		}
		if t.branchProgress(id).Status != InProgress {
			continue
		}
		t.updateBranchLevel(id, keyStats)
	}

	afterUnlocked := toSet(t.UnlockedKeys(GlobalScope()))

	var newlyUnlocked []rune
	for ch := range afterUnlocked {
		if _, ok := beforeUnlocked[ch]; !ok {
			newlyUnlocked = append(newlyUnlocked, ch)
		}
	}

	var newlyMastered []rune
	if beforeStats != nil {
		for ch := range beforeUnlocked {
			if beforeStats.Confidence(ch) < 1.0 && keyStats.Confidence(ch) >= 1.0 {
				newlyMastered = append(newlyMastered, ch)
			}
		}
	}

	return Update{NewlyUnlocked: newlyUnlocked, NewlyMastered: newlyMastered}
}

func toSet(keys []rune) map[rune]struct{} {
	s := make(map[rune]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (t *SkillTree) updateLowercase(keyStats *stats.Store) {
	bp := t.branchProgress(Lowercase)
	if bp.Status != InProgress {
		return
	}
	allKeys := branchDefs[Lowercase].Levels[0].Keys
	currentCount := lowercaseMinKeys + bp.CurrentLevel

	if currentCount >= len(allKeys) {
		if allConfident(allKeys, keyStats) {
			bp.Status = Complete
			bp.CurrentLevel = len(allKeys) - lowercaseMinKeys
			t.setBranchProgress(Lowercase, bp)
		}
		return
	}

	if allConfident(allKeys[:currentCount], keyStats) {
		bp.CurrentLevel++
		t.setBranchProgress(Lowercase, bp)
	}
}

func (t *SkillTree) updateBranchLevel(id BranchID, keyStats *stats.Store) {
	def := branchDefs[id]
	bp := t.branchProgress(id)
	if bp.CurrentLevel >= len(def.Levels) {
		bp.Status = Complete
		t.setBranchProgress(id, bp)
		return
	}
	if allConfident(def.Levels[bp.CurrentLevel].Keys, keyStats) {
		bp.CurrentLevel++
		if bp.CurrentLevel >= len(def.Levels) {
			bp.Status = Complete
		}
		t.setBranchProgress(id, bp)
	}
}

func allConfident(keys []rune, keyStats *stats.Store) bool {
	for _, ch := range keys {
		if keyStats.Confidence(ch) < 1.0 {
			return false
		}
	}
	return true
}

// TotalUnlockedCount is the number of distinct unlocked characters globally.
func (t *SkillTree) TotalUnlockedCount() int {
	return len(toSet(t.UnlockedKeys(GlobalScope())))
}

// Complexity is total_unlocked / total_unique, floored at 0.1.
func (t *SkillTree) Complexity() float64 {
	c := float64(t.TotalUnlockedCount()) / float64(t.totalUniqueKeys)
	if c < 0.1 {
		return 0.1
	}
	return c
}

// BranchUnlockedCount is the number of unlocked keys within one branch.
func (t *SkillTree) BranchUnlockedCount(id BranchID) int {
	def := branchDefs[id]
	bp := t.branchProgress(id)
	switch bp.Status {
	case Complete:
		n := 0
		for _, l := range def.Levels {
			n += len(l.Keys)
		}
		return n
	case InProgress:
		if id == Lowercase {
			return t.LowercaseUnlockedCount()
		}
		n := 0
		for i, l := range def.Levels {
			if i <= bp.CurrentLevel {
				n += len(l.Keys)
			}
		}
		return n
	default:
		return 0
	}
}

// BranchTotalKeys is the number of keys defined across all of a branch's levels.
func BranchTotalKeys(id BranchID) int {
	n := 0
	for _, l := range branchDefs[id].Levels {
		n += len(l.Keys)
	}
	return n
}

// TotalConfidentKeys counts distinct keys (across every branch plus the
// always-unlocked sentinels) whose confidence is >= 1.0, regardless of
// whether they are currently unlocked.
func (t *SkillTree) TotalConfidentKeys(keyStats *stats.Store) int {
	seen := make(map[rune]struct{})
	for _, ch := range alwaysUnlocked {
		if keyStats.Confidence(ch) >= 1.0 {
			seen[ch] = struct{}{}
		}
	}
	for _, id := range AllBranches() {
		for _, level := range branchDefs[id].Levels {
			for _, ch := range level.Keys {
				if keyStats.Confidence(ch) >= 1.0 {
					seen[ch] = struct{}{}
				}
			}
		}
	}
	return len(seen)
}

// BranchConfidentKeys counts keys within one branch whose confidence is >= 1.0.
func (t *SkillTree) BranchConfidentKeys(id BranchID, keyStats *stats.Store) int {
	n := 0
	for _, level := range branchDefs[id].Levels {
		for _, ch := range level.Keys {
			if keyStats.Confidence(ch) >= 1.0 {
				n++
			}
		}
	}
	return n
}
