package coordinator

import (
	"strings"

	"github.com/haricheung/keytutor/internal/config"
	"github.com/haricheung/keytutor/internal/corpora"
	"github.com/haricheung/keytutor/internal/focus"
	"github.com/haricheung/keytutor/internal/generator"
	"github.com/haricheung/keytutor/internal/skilltree"
)

// maxAdaptiveWordHistory bounds how many recent drills' word sets are kept
// around to discourage cross-drill repetition.
const maxAdaptiveWordHistory = 5

// GenerateText produces the next drill's target text under cfg, following
// the current Mode: a phonetic/dictionary hybrid filtered and post-processed
// to the scope's unlocked keys in Adaptive mode, or cached/built-in
// code-snippet or book-passage text in Code/Passage mode. It returns the
// text and a human-readable description of where it came from (empty for
// Adaptive, since that text has no external source).
func (c *Coordinator) GenerateText(cfg config.Config) (text string, source string) {
	switch c.Mode {
	case Code:
		return c.generateCodeText(cfg)
	case Passage:
		return c.generatePassageText(cfg)
	default:
		return c.generateAdaptiveText(cfg), ""
	}
}

func (c *Coordinator) generateAdaptiveText(cfg config.Config) string {
	allKeys := c.SkillTree.UnlockedKeys(c.Scope)
	sel := focus.Select(c.SkillTree, c.Scope, c.RankedKeyStats, c.RankedBigramStats)

	lowercaseKeys := filterRunes(allKeys, func(ch rune) bool {
		return isAsciiLower(ch) || ch == ' '
	})
	var lowercaseFocused rune
	hasLowercaseFocused := sel.HasChar && isAsciiLower(sel.Char)
	if hasLowercaseFocused {
		lowercaseFocused = sel.Char
	}

	var focusedBigram [2]rune
	hasFocusedBigram := sel.HasBigram
	if hasFocusedBigram {
		focusedBigram = [2]rune{sel.Bigram[0], sel.Bigram[1]}
	}

	if c.dict == nil {
		c.dict = generator.LoadDictionary()
	}
	if c.table == nil {
		c.table = generator.BuildFromWords(c.dict.WordsList())
	}

	history := c.combinedWordHistory()
	gen := generator.NewPhoneticGenerator(c.table, c.dict, c.rng, history)
	filter := generator.NewCharFilter(lowercaseKeys)
	text := gen.Generate(filter, lowercaseFocused, hasLowercaseFocused, focusedBigram, hasFocusedBigram, cfg.WordCount)

	c.pushWordHistory(text)

	if capKeys := filterRunes(allKeys, isAsciiUpper); len(capKeys) > 0 {
		text = generator.ApplyCapitalization(text, capKeys, sel.Char, sel.HasChar, c.rng)
	}
	if punctKeys := filterRunes(allKeys, isProsePunct); len(punctKeys) > 0 {
		text = generator.ApplyPunctuation(text, punctKeys, sel.Char, sel.HasChar, c.rng)
	}
	if digitKeys := filterRunes(allKeys, isAsciiDigit); len(digitKeys) > 0 {
		hasDot := runeIn(allKeys, '.')
		text = generator.ApplyNumbers(text, digitKeys, hasDot, sel.Char, sel.HasChar, c.rng)
	}
	if c.codeSymbolsActive() {
		if symbolKeys := filterRunes(allKeys, isCodeSymbol); len(symbolKeys) > 0 {
			text = generator.ApplyCodeSymbols(text, symbolKeys, sel.Char, sel.HasChar, c.rng)
		}
	}
	if runeIn(allKeys, skilltree.Enter) {
		text = generator.InsertLineBreaks(text)
	}
	return text
}

// codeSymbolsActive mirrors the branch-scoped/global-scoped rule for when
// code-symbol substitution may run: always in a CodeSymbols-branch drill,
// and in a global drill only once that branch has been started.
func (c *Coordinator) codeSymbolsActive() bool {
	if !c.Scope.IsGlobal() {
		return c.Scope.Branch() == skilltree.CodeSymbols
	}
	status := c.SkillTree.BranchStatus(skilltree.CodeSymbols)
	return status == skilltree.InProgress || status == skilltree.Complete
}

func (c *Coordinator) generateCodeText(cfg config.Config) (string, string) {
	lang := cfg.CodeLanguage
	if c.CodeLanguageOverride != "" {
		lang = c.CodeLanguageOverride
		c.CodeLanguageOverride = ""
	}
	if c.codeGen == nil || c.codeGenLang != lang {
		c.codeGen = corpora.NewCodeGenerator(c.rng, cfg.CodeDownloadDir, lang)
		c.codeGenLang = lang
	}
	text := c.codeGen.Generate(cfg.WordCount)
	return text, c.codeGen.LastSource()
}

func (c *Coordinator) generatePassageText(cfg config.Config) (string, string) {
	selection := cfg.PassageBook
	if c.PassageSelectionOverride != "" {
		selection = c.PassageSelectionOverride
		c.PassageSelectionOverride = ""
	}
	if c.passageGen == nil || c.passageGenSelection != selection {
		c.passageGen = corpora.NewPassageGenerator(c.rng, cfg.PassageDownloadDir, selection, cfg.PassageParagraphsPerBook)
		c.passageGenSelection = selection
	}
	text := c.passageGen.Generate(cfg.WordCount)
	return text, c.passageGen.LastSource()
}

// combinedWordHistory flattens the rolling window of recent adaptive drills'
// word sets into the single set PhoneticGenerator uses to lean away from
// recent repeats.
func (c *Coordinator) combinedWordHistory() map[string]bool {
	combined := make(map[string]bool)
	for _, set := range c.adaptiveWordHistory {
		for w := range set {
			combined[w] = true
		}
	}
	return combined
}

// pushWordHistory records the words used in the just-generated adaptive text
// (before capitalization/punctuation reshape them), trimming to the last
// maxAdaptiveWordHistory drills.
func (c *Coordinator) pushWordHistory(text string) {
	words := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		words[w] = true
	}
	c.adaptiveWordHistory = append(c.adaptiveWordHistory, words)
	if len(c.adaptiveWordHistory) > maxAdaptiveWordHistory {
		c.adaptiveWordHistory = c.adaptiveWordHistory[1:]
	}
}

// ClearWordHistory drops the rolling adaptive word-repeat window; called
// whenever the effective scope changes (see StartBranchDrill).
func (c *Coordinator) ClearWordHistory() {
	c.adaptiveWordHistory = nil
}

func filterRunes(keys []rune, keep func(rune) bool) []rune {
	var out []rune
	for _, ch := range keys {
		if keep(ch) {
			out = append(out, ch)
		}
	}
	return out
}

func runeIn(keys []rune, target rune) bool {
	for _, ch := range keys {
		if ch == target {
			return true
		}
	}
	return false
}

func isAsciiLower(ch rune) bool { return ch >= 'a' && ch <= 'z' }
func isAsciiUpper(ch rune) bool { return ch >= 'A' && ch <= 'Z' }
func isAsciiDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isProsePunct(ch rune) bool {
	switch ch {
	case '.', ',', '\'', ';', ':', '"', '-', '?', '!', '(', ')':
		return true
	default:
		return false
	}
}

func isCodeSymbol(ch rune) bool {
	switch ch {
	case '=', '+', '*', '/', '-', '{', '}', '[', ']', '<', '>', '&', '|', '^', '~', '@', '#', '$', '%', '_', '\\', '`':
		return true
	default:
		return false
	}
}
