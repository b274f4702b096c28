package generator

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

// ApplyCapitalization capitalizes word starts using only letters present in
// unlockedCapitals, favoring sentence starts and the focused uppercase
// letter, then tops up to a baseline capital density.
func ApplyCapitalization(text string, unlockedCapitals []rune, focused rune, hasFocused bool, rng *rand.Rand) string {
	if len(unlockedCapitals) == 0 {
		return text
	}
	unlockedSet := toRuneSet(unlockedCapitals)

	var focusedUpper rune
	hasFocusedUpper := false
	if hasFocused && unicode.IsUpper(focused) && focused <= unicode.MaxASCII {
		focusedUpper, hasFocusedUpper = focused, true
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	atSentenceStart := true
	for i := range words {
		if upper, ok := wordStartUpper(words[i]); ok && unlockedSet[upper] {
			shouldCap := atSentenceStart
			if !shouldCap {
				if hasFocusedUpper && focusedUpper == upper {
					shouldCap = rng.Float64() < 0.55
				} else {
					shouldCap = rng.Float64() < 0.22
				}
			}
			if shouldCap {
				capitalizeWordStart(&words[i])
			}
		}
		atSentenceStart = endsSentence(words[i])
	}

	i := 0
	for i+1 < len(words) {
		if endsSentence(words[i]) {
			i++
			continue
		}
		upper, ok := wordStartUpper(words[i+1])
		if !ok || !unlockedSet[upper] {
			i++
			continue
		}
		prob := 0.09
		if hasFocusedUpper && focusedUpper == upper {
			prob = 0.35
		}
		if rng.Float64() < prob {
			capitalizeWordStart(&words[i+1])
			joined := words[i] + words[i+1]
			words[i] = joined
			words = append(words[:i+1], words[i+2:]...)
		} else {
			i++
		}
	}

	if hasFocusedUpper && unlockedSet[focusedUpper] {
		alphaWords := 0
		for _, w := range words {
			if strings.ContainsFunc(w, unicode.IsLetter) {
				alphaWords++
			}
		}
		minFocused := min(alphaWords, 4)
		ensureMinFocusedOccurrences(&words, focusedUpper, minFocused, rng)
	}

	minTotalCaps := clampInt(len(words), 3, 6) / 2
	ensureMinTotalCapitals(words, unlockedCapitals, minTotalCaps, rng)

	return strings.Join(words, " ")
}

func toRuneSet(runes []rune) map[rune]bool {
	s := make(map[rune]bool, len(runes))
	for _, r := range runes {
		s[r] = true
	}
	return s
}

func wordStartUpper(word string) (rune, bool) {
	for _, ch := range word {
		if unicode.IsLetter(ch) {
			return unicode.ToUpper(ch), true
		}
	}
	return 0, false
}

func capitalizeWordStart(word *string) (rune, bool) {
	runes := []rune(*word)
	for i, ch := range runes {
		if ch >= 'a' && ch <= 'z' {
			runes[i] = unicode.ToUpper(ch)
			*word = string(runes)
			return runes[i], true
		}
		if ch >= 'A' && ch <= 'Z' {
			return ch, true
		}
	}
	return 0, false
}

func endsSentence(word string) bool {
	runes := []rune(word)
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			continue
		}
		return runes[i] == '.' || runes[i] == '?' || runes[i] == '!'
	}
	return false
}

func wordStartsWithLower(word string, lower rune) bool {
	for _, ch := range word {
		if unicode.IsLetter(ch) {
			return ch == lower
		}
	}
	return false
}

func forceWordStartToUpper(word *string, upper rune) bool {
	runes := []rune(*word)
	for i, ch := range runes {
		if unicode.IsLetter(ch) {
			if ch == upper {
				return false
			}
			runes[i] = upper
			*word = string(runes)
			return true
		}
	}
	return false
}

func ensureMinFocusedOccurrences(words *[]string, focusedUpper rune, minCount int, rng *rand.Rand) {
	focusedLower := unicode.ToLower(focusedUpper)
	count := 0
	for _, w := range *words {
		for _, ch := range w {
			if ch == focusedUpper {
				count++
			}
		}
	}
	if count >= minCount {
		return
	}

	ws := *words
	for i := range ws {
		if count >= minCount {
			break
		}
		if !wordStartsWithLower(ws[i], focusedLower) {
			continue
		}
		if ch, ok := capitalizeWordStart(&ws[i]); ok && ch == focusedUpper {
			count++
		}
	}

	i := 0
	for i+1 < len(ws) {
		if count >= minCount {
			break
		}
		if endsSentence(ws[i]) {
			i++
			continue
		}
		nextStartsFocused := false
		for _, ch := range ws[i+1] {
			if unicode.IsLetter(ch) {
				nextStartsFocused = unicode.ToLower(ch) == focusedLower
				break
			}
		}
		if nextStartsFocused {
			capitalizeWordStart(&ws[i+1])
			ws[i] = ws[i] + ws[i+1]
			ws = append(ws[:i+1], ws[i+2:]...)
			count++
		} else {
			i++
		}
	}

	for i := range ws {
		if count >= minCount {
			break
		}
		if forceWordStartToUpper(&ws[i], focusedUpper) {
			count++
		}
	}
	*words = ws
}

func ensureMinTotalCapitals(words []string, unlockedCapitals []rune, minCount int, rng *rand.Rand) {
	if len(unlockedCapitals) == 0 {
		return
	}
	unlockedSet := toRuneSet(unlockedCapitals)
	count := 0
	for _, w := range words {
		for _, ch := range w {
			if ch >= 'A' && ch <= 'Z' {
				count++
			}
		}
	}
	if count >= minCount {
		return
	}

	for i := range words {
		if count >= minCount {
			break
		}
		upper, ok := wordStartUpper(words[i])
		if !ok || !unlockedSet[upper] {
			continue
		}
		if !wordStartsWithLower(words[i], unicode.ToLower(upper)) {
			continue
		}
		if ch, ok := capitalizeWordStart(&words[i]); ok && ch == upper {
			count++
		}
	}

	for i := range words {
		if count >= minCount {
			break
		}
		upper := unlockedCapitals[rng.IntN(len(unlockedCapitals))]
		if forceWordStartToUpper(&words[i], upper) {
			count++
		}
	}
}
