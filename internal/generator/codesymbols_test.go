package generator

import (
	"strings"
	"testing"
	"unicode"
)

func TestApplyCodeSymbols_NoneWhenEmpty(t *testing.T) {
	rng := newRNG(42)
	got := ApplyCodeSymbols("hello world", nil, 0, false, rng)
	if got != "hello world" {
		t.Errorf("got %q, want unchanged text", got)
	}
}

func TestApplyCodeSymbols_OnlyUnlocked(t *testing.T) {
	rng := newRNG(42)
	symbols := []rune{'=', '+'}
	text := "a b c d e f g h i j"
	got := ApplyCodeSymbols(text, symbols, 0, false, rng)
	allowed := toRuneSet(symbols)
	for _, ch := range got {
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != ' ' && !allowed[ch] {
			t.Errorf("unexpected symbol %q in %q", ch, got)
		}
	}
}

func TestApplyCodeSymbols_DashPatternsGenerated(t *testing.T) {
	rng := newRNG(42)
	symbols := []rune{'-', '='}
	text := strings.TrimSpace(strings.Repeat("a b c d e f g h i j k l m n o p q r s t ", 5))
	got := ApplyCodeSymbols(text, symbols, 0, false, rng)
	if !strings.Contains(got, "-") {
		t.Errorf("expected dash in %q", got)
	}
}
