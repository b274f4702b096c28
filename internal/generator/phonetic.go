package generator

import (
	"math/rand/v2"
	"strings"
)

const (
	minWordLen      = 3
	maxWordLen      = 10
	minRealWords    = 8
	fullDictThresh  = 60
)

// PhoneticGenerator produces drill text as a hybrid of real dictionary words
// and Markov-chain-synthesized pronounceable nonsense, weighted toward
// whichever the current character filter and focus targets favor.
type PhoneticGenerator struct {
	table      *Table
	dictionary *Dictionary
	rng        *rand.Rand

	// crossDrillHistory holds words seen in recent prior drills, so this
	// drill can lean away from repeating them.
	crossDrillHistory map[string]bool

	// DictPicks counts words drawn from the dictionary branch, exposed for
	// tests that need to distinguish intentional picks from phonetic words
	// that happen to match a dictionary entry.
	DictPicks int
}

// NewPhoneticGenerator builds a generator over a pre-trained transition
// table and dictionary.
func NewPhoneticGenerator(table *Table, dictionary *Dictionary, rng *rand.Rand, crossDrillHistory map[string]bool) *PhoneticGenerator {
	if crossDrillHistory == nil {
		crossDrillHistory = map[string]bool{}
	}
	return &PhoneticGenerator{table: table, dictionary: dictionary, rng: rng, crossDrillHistory: crossDrillHistory}
}

func pickWeighted(rng *rand.Rand, options []weighted, filter *CharFilter) (rune, bool) {
	var filtered []weighted
	for _, o := range options {
		if filter.IsAllowed(o.ch) {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return 0, false
	}
	var total float64
	for _, o := range filtered {
		total += o.weight
	}
	if total <= 0 {
		return 0, false
	}
	roll := rng.Float64() * total
	for _, o := range filtered {
		roll -= o.weight
		if roll <= 0 {
			return o.ch, true
		}
	}
	return filtered[len(filtered)-1].ch, true
}

// Generate produces word_count space-separated tokens under filter, hybridizing
// dictionary words and phonetic words according to how many dictionary words
// the filter permits, and leaning toward focusedChar/focusedBigram when set.
func (g *PhoneticGenerator) Generate(filter *CharFilter, focusedChar rune, hasFocusedChar bool, focusedBigram [2]rune, hasFocusedBigram bool, wordCount int) string {
	matching := g.dictionary.FindMatching(filter.IsAllowed, 0, false)
	poolSize := len(matching)
	useDict := poolSize >= minRealWords

	var dictRatio float64
	switch {
	case poolSize <= minRealWords:
		dictRatio = 0.0
	case poolSize >= fullDictThresh:
		dictRatio = 1.0
	default:
		dictRatio = float64(poolSize-minRealWords) / float64(fullDictThresh-minRealWords)
	}

	var dedupWindow int
	if poolSize <= 20 {
		dedupWindow = max(poolSize-1, 4)
	} else {
		dedupWindow = min(poolSize/4, 20)
	}

	var crossDrillAcceptProb float64
	if poolSize > 0 {
		poolSet := make(map[string]bool, poolSize)
		for _, w := range matching {
			poolSet[w] = true
		}
		historyInPool := 0
		for w := range g.crossDrillHistory {
			if poolSet[w] {
				historyInPool++
			}
		}
		historyCoverage := float64(historyInPool) / float64(poolSize)
		crossDrillAcceptProb = 0.15 + 0.60*historyCoverage
	} else {
		crossDrillAcceptProb = 1.0
	}

	var bigramStr string
	if hasFocusedBigram {
		bigramStr = string(focusedBigram[0]) + string(focusedBigram[1])
	}
	focusCharLower := rune(0)
	hasFocusCharLower := false
	if hasFocusedChar && focusedChar >= 'a' && focusedChar <= 'z' {
		focusCharLower, hasFocusCharLower = focusedChar, true
	}

	var bigramIdx, charIdx, otherIdx []int
	if useDict {
		for i, w := range matching {
			switch {
			case bigramStr != "" && strings.Contains(w, bigramStr):
				bigramIdx = append(bigramIdx, i)
			case hasFocusCharLower && strings.ContainsRune(w, focusCharLower):
				charIdx = append(charIdx, i)
			default:
				otherIdx = append(otherIdx, i)
			}
		}
	}

	var words []string
	var recent []string

	for i := 0; i < wordCount; i++ {
		useDictWord := useDict && g.rng.Float64() < dictRatio
		var word string
		if useDictWord {
			g.DictPicks++
			word = g.pickTieredWord(matching, bigramIdx, charIdx, otherIdx, recent, crossDrillAcceptProb)
		} else {
			word = g.generatePhoneticWord(filter, focusedChar, hasFocusedChar, focusedBigram, hasFocusedBigram)
		}
		recent = append(recent, word)
		if len(recent) > dedupWindow {
			recent = recent[1:]
		}
		words = append(words, word)
	}

	return strings.Join(words, " ")
}

func (g *PhoneticGenerator) pickTieredWord(allWords []string, bigramIdx, charIdx, otherIdx []int, recent []string, crossDrillAcceptProb float64) string {
	maxAttempts := clampInt(len(allWords), 6, 12)
	recentSet := make(map[string]bool, len(recent))
	for _, r := range recent {
		recentSet[r] = true
	}
	for i := 0; i < maxAttempts; i++ {
		tier := g.selectTier(bigramIdx, charIdx, otherIdx)
		idx := tier[g.rng.IntN(len(tier))]
		word := allWords[idx]
		if recentSet[word] {
			continue
		}
		if g.crossDrillHistory[word] {
			if g.rng.Float64() < crossDrillAcceptProb {
				return word
			}
			continue
		}
		return word
	}
	for i := 0; i < len(allWords); i++ {
		idx := g.rng.IntN(len(allWords))
		word := allWords[idx]
		if !recentSet[word] {
			return word
		}
	}
	return allWords[g.rng.IntN(len(allWords))]
}

func (g *PhoneticGenerator) selectTier(bigramIdx, charIdx, otherIdx []int) []int {
	hasBigram := len(bigramIdx) >= 2
	hasChar := len(charIdx) >= 2
	roll := g.rng.Float64()

	switch {
	case hasBigram && hasChar:
		switch {
		case roll < 0.4:
			return bigramIdx
		case roll < 0.7:
			return charIdx
		case len(otherIdx) >= 2:
			return otherIdx
		default:
			return charIdx
		}
	case hasBigram:
		if roll < 0.5 {
			return bigramIdx
		}
		if len(otherIdx) >= 2 {
			return otherIdx
		}
		return bigramIdx
	case hasChar:
		if roll < 0.7 {
			return charIdx
		}
		if len(otherIdx) >= 2 {
			return otherIdx
		}
		return charIdx
	default:
		if len(otherIdx) >= 2 {
			return otherIdx
		}
		return charIdx
	}
}

func (g *PhoneticGenerator) generatePhoneticWord(filter *CharFilter, focusedChar rune, hasFocusedChar bool, focusedBigram [2]rune, hasFocusedBigram bool) string {
	for attempt := 0; attempt < 5; attempt++ {
		word := g.tryGenerateWord(filter, focusedChar, hasFocusedChar, focusedBigram, hasFocusedBigram)
		if len([]rune(word)) >= minWordLen {
			return word
		}
	}
	return "the"
}

func (g *PhoneticGenerator) tryGenerateWord(filter *CharFilter, focused rune, hasFocused bool, focusedBigram [2]rune, hasFocusedBigram bool) string {
	var word []rune

	bigramEligible := hasFocusedBigram && filter.IsAllowed(focusedBigram[0]) && filter.IsAllowed(focusedBigram[1])

	var startChar rune
	hasStartChar := false

	switch {
	case bigramEligible && g.rng.Float64() < 0.3:
		word = append(word, focusedBigram[0], focusedBigram[1])
		prefix := [3]rune{' ', focusedBigram[0], focusedBigram[1]}
		if probs := g.table.Segment(prefix); probs != nil {
			startChar, hasStartChar = pickWeighted(g.rng, probs, filter)
		}
	case hasFocused && g.rng.Float64() < 0.4 && filter.IsAllowed(focused):
		word = append(word, focused)
		prefix := [3]rune{' ', ' ', focused}
		if probs := g.table.Segment(prefix); probs != nil {
			startChar, hasStartChar = pickWeighted(g.rng, probs, filter)
		}
	}

	if len(word) == 0 {
		prefix := [3]rune{' ', ' ', ' '}
		if probs := g.table.Segment(prefix); probs != nil {
			if ch, ok := pickWeighted(g.rng, probs, filter); ok {
				word = append(word, ch)
			}
		}
		if len(word) == 0 {
			var starters []weighted
			for _, ch := range filter.Allowed {
				var w float64
				switch ch {
				case 'e', 't', 'a':
					w = 3.0
				case 'o', 'i', 'n', 's':
					w = 2.0
				default:
					w = 1.0
				}
				starters = append(starters, weighted{ch, w})
			}
			if ch, ok := pickWeighted(g.rng, starters, filter); ok {
				word = append(word, ch)
			} else {
				return "the"
			}
		}
	}

	if hasStartChar {
		word = append(word, startChar)
	}

	for len(word) < maxWordLen {
		prefixLen := g.table.Order - 1
		var prefix [3]rune
		start := 0
		if len(word) >= prefixLen {
			start = len(word) - prefixLen
		}
		padCount := prefixLen - len(word)
		if padCount < 0 {
			padCount = 0
		}
		pos := 0
		for i := 0; i < padCount; i++ {
			prefix[pos] = ' '
			pos++
		}
		for i := start; i < len(word); i++ {
			prefix[pos] = word[i]
			pos++
		}

		if len(word) >= minWordLen {
			if probs := g.table.Segment(prefix); probs != nil {
				var spaceWeight, total float64
				for _, o := range probs {
					total += o.weight
					if o.ch == ' ' {
						spaceWeight += o.weight
					}
				}
				if spaceWeight > 0 {
					boost := pow13(len(word) - minWordLen)
					spaceProb := (spaceWeight * boost) / (total + spaceWeight*(boost-1.0))
					if g.rng.Float64() < min(spaceProb, 0.85) {
						break
					}
				}
			}
			endProb := pow13(len(word) - minWordLen)
			if g.rng.Float64() < min(endProb/(endProb+5.0), 0.8) {
				break
			}
		}

		if probs := g.table.Segment(prefix); probs != nil {
			var nonSpace []weighted
			for _, o := range probs {
				if o.ch != ' ' {
					nonSpace = append(nonSpace, o)
				}
			}
			if next, ok := pickWeighted(g.rng, nonSpace, filter); ok {
				word = append(word, next)
			} else {
				break
			}
		} else {
			var vowels []weighted
			for _, v := range []rune{'a', 'e', 'i', 'o', 'u'} {
				if filter.IsAllowed(v) {
					vowels = append(vowels, weighted{v, 1.0})
				}
			}
			if v, ok := pickWeighted(g.rng, vowels, filter); ok {
				word = append(word, v)
			} else {
				break
			}
		}
	}

	return string(word)
}

func pow13(exp int) float64 {
	result := 1.0
	if exp >= 0 {
		for i := 0; i < exp; i++ {
			result *= 1.3
		}
		return result
	}
	for i := 0; i < -exp; i++ {
		result /= 1.3
	}
	return result
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
