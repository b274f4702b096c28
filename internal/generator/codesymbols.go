package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// ApplyCodeSymbols rewrites some words into short code-like expressions
// (assignment, arithmetic, grouping, logic) using only symbols present in
// unlockedSymbols.
func ApplyCodeSymbols(text string, unlockedSymbols []rune, focused rune, hasFocused bool, rng *rand.Rand) string {
	if len(unlockedSymbols) == 0 {
		return text
	}

	symbolSet := toRuneSet(unlockedSymbols)
	var focusedSymbol rune
	hasFocusedSymbol := false
	if hasFocused && symbolSet[focused] {
		focusedSymbol, hasFocusedSymbol = focused, true
	}
	baseProb := 0.20
	if hasFocusedSymbol {
		baseProb = 0.35
	}

	words := strings.Split(text, " ")
	result := make([]string, 0, len(words))
	for _, word := range words {
		if rng.Float64() < baseProb {
			result = append(result, generateCodeExpr(word, symbolSet, focusedSymbol, hasFocusedSymbol, rng))
		} else {
			result = append(result, word)
		}
	}
	return strings.Join(result, " ")
}

type codePattern struct {
	build      func() string
	usesFocus  bool
}

func generateCodeExpr(word string, has map[rune]bool, focusedSymbol rune, hasFocusedSymbol bool, rng *rand.Rand) string {
	focusIs := func(ch rune) bool { return hasFocusedSymbol && focusedSymbol == ch }

	var patterns []codePattern
	add := func(build func() string, usesFocus bool) {
		patterns = append(patterns, codePattern{build, usesFocus})
	}

	if has['='] {
		add(func() string { return fmt.Sprintf("%s = val", word) }, focusIs('='))
	}
	if has['+'] {
		add(func() string { return fmt.Sprintf("%s + num", word) }, focusIs('+'))
	}
	if has['*'] {
		add(func() string { return fmt.Sprintf("%s * cnt", word) }, focusIs('*'))
	}
	if has['/'] {
		add(func() string { return fmt.Sprintf("%s / max", word) }, focusIs('/'))
	}
	if has['-'] {
		add(func() string { return fmt.Sprintf("%s - one", word) }, focusIs('-'))
		add(func() string { return fmt.Sprintf("-%s", word) }, focusIs('-'))
	}
	if has['='] && has['+'] {
		add(func() string { return fmt.Sprintf("%s += one", word) }, false)
	}
	if has['='] && has['-'] {
		add(func() string { return fmt.Sprintf("%s -= one", word) }, focusIs('-'))
	}
	if has['='] {
		add(func() string { return fmt.Sprintf("%s == nil", word) }, false)
	}
	if has['{'] && has['}'] {
		add(func() string { return fmt.Sprintf("{ %s }", word) }, focusIs('{') || focusIs('}'))
	}
	if has['['] && has[']'] {
		add(func() string { return fmt.Sprintf("%s[idx]", word) }, focusIs('[') || focusIs(']'))
	}
	if has['<'] && has['>'] {
		add(func() string { return fmt.Sprintf("List<%s>", word) }, focusIs('<') || focusIs('>'))
	}
	if has['&'] {
		add(func() string { return fmt.Sprintf("&%s", word) }, focusIs('&'))
	}
	if has['|'] {
		add(func() string { return fmt.Sprintf("%s | nil", word) }, focusIs('|'))
	}
	if has['!'] {
		add(func() string { return fmt.Sprintf("!%s", word) }, focusIs('!'))
	}
	if has['@'] {
		add(func() string { return fmt.Sprintf("@%s", word) }, focusIs('@'))
	}
	if has['#'] {
		add(func() string { return fmt.Sprintf("#%s", word) }, focusIs('#'))
	}
	if has['_'] {
		add(func() string { return fmt.Sprintf("%s_val", word) }, focusIs('_'))
	}
	if has['$'] {
		add(func() string { return fmt.Sprintf("$%s", word) }, focusIs('$'))
	}
	if has['\\'] {
		add(func() string { return fmt.Sprintf("\\%s", word) }, focusIs('\\'))
	}

	if len(patterns) == 0 {
		return word
	}

	var focusedPatterns []int
	for i, p := range patterns {
		if p.usesFocus {
			focusedPatterns = append(focusedPatterns, i)
		}
	}

	var idx int
	if len(focusedPatterns) > 0 && rng.Float64() < 0.50 {
		idx = focusedPatterns[rng.IntN(len(focusedPatterns))]
	} else {
		idx = rng.IntN(len(patterns))
	}
	return patterns[idx].build()
}
