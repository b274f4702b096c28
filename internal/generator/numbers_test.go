package generator

import (
	"strings"
	"testing"
)

func TestApplyNumbers_NoneWhenEmpty(t *testing.T) {
	rng := newRNG(42)
	got := ApplyNumbers("hello world", nil, false, 0, false, rng)
	if got != "hello world" {
		t.Errorf("got %q, want unchanged text", got)
	}
}

func TestApplyNumbers_OnlyUnlockedDigits(t *testing.T) {
	rng := newRNG(42)
	digits := []rune{'1', '2', '3'}
	text := "a b c d e f g h i j k l m n o p q r s t"
	got := ApplyNumbers(text, digits, false, 0, false, rng)
	allowed := toRuneSet(digits)
	for _, ch := range got {
		if ch >= '0' && ch <= '9' && !allowed[ch] {
			t.Errorf("unexpected digit %q in %q", ch, got)
		}
	}
}

func TestApplyNumbers_NoDotWithoutPunctuation(t *testing.T) {
	rng := newRNG(42)
	digits := []rune{'1', '2', '3', '4', '5'}
	text := "a b c d e f g h i j k l m n o p q r s t"
	got := ApplyNumbers(text, digits, false, 0, false, rng)
	if strings.Contains(got, ".") {
		t.Errorf("got %q, should not contain dot when hasDot=false", got)
	}
}
