package generator

import (
	_ "embed"
	"sort"
	"strings"
)

//go:embed assets/words_en.txt
var wordsEN string

// Dictionary is a fixed list of real lowercase English words, length >= 3,
// used as the pool for real-word sampling in the phonetic generator.
type Dictionary struct {
	words []string
}

// LoadDictionary parses the embedded word list, deduplicating and filtering
// to lowercase ASCII words of at least three characters.
func LoadDictionary() *Dictionary {
	seen := make(map[string]bool)
	var words []string
	for _, line := range strings.Split(wordsEN, "\n") {
		w := strings.TrimSpace(line)
		if len(w) < 3 || seen[w] {
			continue
		}
		ok := true
		for _, ch := range w {
			if ch < 'a' || ch > 'z' {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return &Dictionary{words: words}
}

// WordsList returns every word in the dictionary, for transition-table
// training.
func (d *Dictionary) WordsList() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// FindMatching returns every word composed entirely of allowed runes. When
// focused is set, matching words containing it sort first; the focus never
// changes which words match, only their order.
func (d *Dictionary) FindMatching(allowed func(rune) bool, focused rune, hasFocused bool) []string {
	var matching []string
	for _, w := range d.words {
		ok := true
		for _, ch := range w {
			if !allowed(ch) {
				ok = false
				break
			}
		}
		if ok {
			matching = append(matching, w)
		}
	}
	if hasFocused {
		sort.SliceStable(matching, func(i, j int) bool {
			iHas := strings.ContainsRune(matching[i], focused)
			jHas := strings.ContainsRune(matching[j], focused)
			return iHas && !jHas
		})
	}
	return matching
}
