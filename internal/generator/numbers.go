package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// ApplyNumbers replaces some words with number expressions (counts,
// measurements, years, IDs, version strings) drawn only from
// unlockedDigits.
func ApplyNumbers(text string, unlockedDigits []rune, hasDot bool, focused rune, hasFocused bool, rng *rand.Rand) string {
	if len(unlockedDigits) == 0 {
		return text
	}

	var focusedDigit rune
	hasFocusedDigit := false
	if hasFocused && focused >= '0' && focused <= '9' {
		focusedDigit, hasFocusedDigit = focused, true
	}
	baseProb := 0.15
	if hasFocusedDigit {
		baseProb = 0.30
	}

	words := strings.Split(text, " ")
	result := make([]string, 0, len(words))
	for _, word := range words {
		if rng.Float64() < baseProb {
			result = append(result, generateNumberExpr(unlockedDigits, hasDot, focusedDigit, hasFocusedDigit, rng))
		} else {
			result = append(result, word)
		}
	}
	return strings.Join(result, " ")
}

func generateNumberExpr(digits []rune, hasDot bool, focusedDigit rune, hasFocusedDigit bool, rng *rand.Rand) string {
	maxPattern := 4
	if hasDot {
		maxPattern = 5
	}
	pattern := rng.IntN(maxPattern)
	switch pattern {
	case 0:
		return randomNumber(digits, 1, 3, focusedDigit, hasFocusedDigit, rng)
	case 1:
		num := randomNumber(digits, 1, 2, focusedDigit, hasFocusedDigit, rng)
		units := []string{"items", "miles", "days", "lines", "times", "parts"}
		unit := units[rng.IntN(len(units))]
		return fmt.Sprintf("%s %s", num, unit)
	case 2:
		return randomNumber(digits, 4, 4, focusedDigit, hasFocusedDigit, rng)
	case 3:
		prefixes := []string{"room", "page", "step", "item", "line", "port"}
		prefix := prefixes[rng.IntN(len(prefixes))]
		num := randomNumber(digits, 1, 3, focusedDigit, hasFocusedDigit, rng)
		return fmt.Sprintf("%s %s", prefix, num)
	default:
		major := randomNumber(digits, 1, 1, focusedDigit, hasFocusedDigit, rng)
		minor := randomNumber(digits, 1, 2, focusedDigit, hasFocusedDigit, rng)
		return fmt.Sprintf("%s.%s", major, minor)
	}
}

func randomNumber(digits []rune, minLen, maxLen int, focusedDigit rune, hasFocusedDigit bool, rng *rand.Rand) string {
	length := minLen
	if maxLen > minLen {
		length = minLen + rng.IntN(maxLen-minLen+1)
	}
	out := make([]rune, length)
	for i := 0; i < length; i++ {
		if hasFocusedDigit && rng.Float64() < 0.40 {
			out[i] = focusedDigit
			continue
		}
		out[i] = digits[rng.IntN(len(digits))]
	}
	return string(out)
}
