// Package focus combines the skill tree and n-gram stores to pick the
// character and bigram the next passage should emphasize.
package focus

import (
	"github.com/haricheung/keytutor/internal/ngram"
	"github.com/haricheung/keytutor/internal/skilltree"
	"github.com/haricheung/keytutor/internal/stats"
)

// Selection carries both focus targets independently — neither overrides the
// other, and either may be absent.
type Selection struct {
	Char       rune
	HasChar    bool
	Bigram     ngram.BigramKey
	BigramPct  float64
	BigramType ngram.AnomalyType
	HasBigram  bool
}

// Select computes the focus character and focus bigram for scope using the
// ranked statistics world.
func Select(tree *skilltree.SkillTree, scope skilltree.Scope, rankedKeyStats *stats.Store, rankedBigramStats *ngram.BigramStore) Selection {
	var sel Selection
	if ch, ok := tree.FocusedKey(scope, rankedKeyStats); ok {
		sel.Char, sel.HasChar = ch, true
	}
	unlocked := tree.UnlockedKeys(scope)
	if key, pct, typ, ok := rankedBigramStats.WorstConfirmedAnomaly(rankedKeyStats, unlocked); ok {
		sel.Bigram, sel.BigramPct, sel.BigramType, sel.HasBigram = key, pct, typ, true
	}
	return sel
}
