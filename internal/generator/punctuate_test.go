package generator

import (
	"strings"
	"testing"
)

func TestApplyPunctuation_NoneWhenEmpty(t *testing.T) {
	rng := newRNG(42)
	got := ApplyPunctuation("hello world", nil, 0, false, rng)
	if got != "hello world" {
		t.Errorf("got %q, want unchanged text", got)
	}
}

func TestApplyPunctuation_AddsPeriodAtEnd(t *testing.T) {
	rng := newRNG(42)
	text := "one two three four five six seven eight nine ten"
	got := ApplyPunctuation(text, []rune{'.'}, 0, false, rng)
	if !strings.HasSuffix(got, ".") {
		t.Errorf("got %q, want trailing period", got)
	}
}

func TestApplyPunctuation_PeriodAppearsMidText(t *testing.T) {
	rng := newRNG(42)
	words := make([]string, 20)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")
	got := ApplyPunctuation(text, []rune{'.', ','}, 0, false, rng)
	if strings.Count(got, ".") < 1 {
		t.Errorf("expected at least one period in %q", got)
	}
}
