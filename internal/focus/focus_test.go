package focus

import (
	"testing"

	"github.com/haricheung/keytutor/internal/ngram"
	"github.com/haricheung/keytutor/internal/skilltree"
	"github.com/haricheung/keytutor/internal/stats"
)

func TestSelect_S1BrandNewProfile(t *testing.T) {
	tree := skilltree.Default()
	ks := stats.NewStore()
	bg := ngram.NewBigramStore()
	sel := Select(tree, skilltree.GlobalScope(), ks, bg)
	if sel.HasBigram {
		t.Errorf("expected no bigram focus with empty stats")
	}
	if sel.HasChar {
		found := false
		for _, c := range "etaoin" {
			if c == sel.Char {
				found = true
			}
		}
		if !found {
			t.Errorf("focus char %q not in first six letters", sel.Char)
		}
	}
}

func TestSelect_IndependentChannels(t *testing.T) {
	tree := skilltree.Default()
	ks := stats.NewStore()
	bg := ngram.NewBigramStore()

	// Drive char focus to none (all confident) while a bigram anomaly is confirmed.
	for _, ch := range []rune("etaoin") {
		for i := 0; i < 50; i++ {
			ks.UpdateCorrect(ch, 100)
		}
	}
	key := ngram.BigramKey{'e', 't'}
	for i := 0; i < 25; i++ {
		bg.Update(key, 900, i < 5, false, uint32(i))
	}
	bg.UpdateErrorAnomalyStreak(key, ks)
	for i := 0; i < 3; i++ {
		bg.UpdateErrorAnomalyStreak(key, ks)
	}

	sel := Select(tree, skilltree.GlobalScope(), ks, bg)
	// char focus being present/absent must not affect bigram focus presence.
	if sel.HasChar {
		t.Errorf("expected no char focus with every unlocked letter confident, got %q", sel.Char)
	}
	if !sel.HasBigram {
		t.Error("expected the confirmed bigram anomaly to be selected")
	}
}
