// Package generator builds drill text from a Markov transition table and a
// real-word dictionary, then runs a chain of post-processors over the result.
package generator

// weighted is a single (rune, weight) option in a transition table bucket.
type weighted struct {
	ch     rune
	weight float64
}

// Table is an order-4 Markov chain: three characters of context predict the
// next character (or a space, marking a word boundary). Contexts shorter than
// three characters are left-padded with spaces, matching the padding a
// generator does at the start of a word.
type Table struct {
	Order       int
	transitions map[[3]rune][]weighted
}

// NewTable returns an empty table of the given context order (order-1 runes
// of context per bucket).
func NewTable(order int) *Table {
	return &Table{Order: order, transitions: make(map[[3]rune][]weighted)}
}

func (t *Table) add(ctx [3]rune, next rune, weight float64) {
	bucket := t.transitions[ctx]
	for i := range bucket {
		if bucket[i].ch == next {
			bucket[i].weight += weight
			t.transitions[ctx] = bucket
			return
		}
	}
	t.transitions[ctx] = append(bucket, weighted{next, weight})
}

// Segment returns the weighted next-character options for a three-rune
// context, or nil if the table has never seen it. prefix shorter than three
// runes should already be space-padded by the caller.
func (t *Table) Segment(prefix [3]rune) []weighted {
	return t.transitions[prefix]
}

// BuildFromWords trains a table on a real word list: each word is scanned
// with a sliding three-character window (space-padded at both ends), with
// the trailing context mapping to a terminal space to mark word end.
func BuildFromWords(words []string) *Table {
	t := NewTable(4)
	for _, w := range words {
		runes := []rune(w)
		padded := make([]rune, 0, len(runes)+4)
		padded = append(padded, ' ', ' ', ' ')
		padded = append(padded, runes...)
		padded = append(padded, ' ')
		for i := 0; i+3 < len(padded); i++ {
			ctx := [3]rune{padded[i], padded[i+1], padded[i+2]}
			t.add(ctx, padded[i+3], 1.0)
		}
	}
	return t
}
