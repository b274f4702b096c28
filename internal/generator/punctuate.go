package generator

import (
	"math/rand/v2"
	"strings"
)

// ApplyPunctuation inserts contractions, compound dashes, sentence endings,
// commas, semicolons, colons, quotes, and parentheses into text, using only
// punctuation present in unlockedPunct.
func ApplyPunctuation(text string, unlockedPunct []rune, focused rune, hasFocused bool, rng *rand.Rand) string {
	if len(unlockedPunct) == 0 {
		return text
	}

	punctSet := toRuneSet(unlockedPunct)
	var focusedPunct rune
	hasFocusedPunct := false
	if hasFocused && punctSet[focused] {
		focusedPunct, hasFocusedPunct = focused, true
	}

	words := strings.Split(text, " ")
	if len(words) == 0 {
		return text
	}

	hasPeriod := punctSet['.']
	hasComma := punctSet[',']
	hasApostrophe := punctSet['\'']
	hasSemicolon := punctSet[';']
	hasColon := punctSet[':']
	hasQuote := punctSet['"']
	hasDash := punctSet['-']
	hasQuestion := punctSet['?']
	hasExclaim := punctSet['!']
	hasOpenParen := punctSet['(']
	hasCloseParen := punctSet[')']

	result := make([]string, 0, len(words))
	wordsSincePeriod := 0
	wordsSinceComma := 0

	focusedIs := func(ch rune) bool { return hasFocusedPunct && focusedPunct == ch }

	for i, word := range words {
		w := word

		apostropheProb := 0.08
		if focusedIs('\'') {
			apostropheProb = 0.30
		}
		if hasApostrophe && len([]rune(w)) >= 3 && rng.Float64() < apostropheProb {
			w = makeContraction(w, rng)
		}

		dashProb := 0.05
		if focusedIs('-') {
			dashProb = 0.25
		}
		if hasDash && i+1 < len(words) && rng.Float64() < dashProb {
			w += "-"
		}

		wordsSincePeriod++
		endSentence := (wordsSincePeriod >= 8 && rng.Float64() < 0.15) || wordsSincePeriod >= 12

		if endSentence && i < len(words)-1 {
			qProb := 0.15
			if focusedIs('?') {
				qProb = 0.40
			}
			exclProb := 0.10
			if focusedIs('!') {
				exclProb = 0.40
			}
			switch {
			case hasQuestion && rng.Float64() < qProb:
				w += "?"
			case hasExclaim && rng.Float64() < exclProb:
				w += "!"
			case hasPeriod:
				w += "."
			}
			wordsSincePeriod = 0
			wordsSinceComma = 0
		} else {
			wordsSinceComma++
			commaProb := 0.20
			if focusedIs(',') {
				commaProb = 0.40
			}
			if hasComma && wordsSinceComma >= 4 && rng.Float64() < commaProb && i < len(words)-1 {
				w += ","
				wordsSinceComma = 0
			}

			semiProb := 0.05
			if focusedIs(';') {
				semiProb = 0.25
			}
			if hasSemicolon && wordsSinceComma >= 5 && rng.Float64() < semiProb && i < len(words)-1 {
				w += ";"
				wordsSinceComma = 0
			}

			colonProb := 0.03
			if focusedIs(':') {
				colonProb = 0.20
			}
			if hasColon && rng.Float64() < colonProb && i < len(words)-1 {
				w += ":"
			}
		}

		quoteProb := 0.04
		if focusedIs('"') {
			quoteProb = 0.20
		}
		if hasQuote && rng.Float64() < quoteProb && i+2 < len(words) {
			w = "\"" + w
		}

		parenProb := 0.03
		if focusedIs('(') || focusedIs(')') {
			parenProb = 0.15
		}
		if hasOpenParen && hasCloseParen && rng.Float64() < parenProb && i+2 < len(words) {
			w = "(" + w
		}

		result = append(result, w)
	}

	if hasPeriod && len(result) > 0 {
		last := result[len(result)-1]
		runes := []rune(last)
		lastCh := rune(0)
		if len(runes) > 0 {
			lastCh = runes[len(runes)-1]
		}
		if lastCh != '.' && lastCh != '?' && lastCh != '!' && lastCh != '"' && lastCh != ')' {
			result[len(result)-1] = last + "."
		}
	}

	openQuotes, openParens := 0, 0
	for _, w := range result {
		for _, ch := range w {
			switch ch {
			case '"':
				openQuotes++
			case '(':
				openParens++
			case ')':
				openParens--
			}
		}
	}
	if len(result) > 0 {
		last := len(result) - 1
		if openQuotes%2 != 0 && hasQuote {
			result[last] = closeTrailing(result[last], '"')
		}
		if openParens > 0 && hasCloseParen {
			result[last] = closeTrailing(result[last], ')')
		}
	}

	return strings.Join(result, " ")
}

func closeTrailing(word string, closer rune) string {
	hadPeriod := strings.HasSuffix(word, ".")
	if hadPeriod {
		word = word[:len(word)-1]
	}
	word += string(closer)
	if hadPeriod {
		word += "."
	}
	return word
}

func makeContraction(word string, rng *rand.Rand) string {
	contractions := map[string]string{
		"not":   "n't",
		"will":  "'ll",
		"would": "'d",
		"have":  "'ve",
		"are":   "'re",
		"is":    "'s",
	}
	if suffix, ok := contractions[word]; ok {
		return word + suffix
	}
	if rng.Float64() < 0.5 {
		return word + "'s"
	}
	return word
}
