package corpora

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
)

const (
	minParagraphWords = 12
	maxParagraphWords = 42
)

// GutenbergBook is one downloadable Project Gutenberg title.
type GutenbergBook struct {
	Key         string
	Title       string
	GutenbergID int
}

// GutenbergBooks is the known-book table; Key is the passage_book config value.
var GutenbergBooks = []GutenbergBook{
	{Key: "pride_prejudice", Title: "Pride and Prejudice", GutenbergID: 1342},
	{Key: "alice_wonderland", Title: "Alice's Adventures in Wonderland", GutenbergID: 11},
	{Key: "sherlock_holmes", Title: "The Adventures of Sherlock Holmes", GutenbergID: 1661},
	{Key: "frankenstein", Title: "Frankenstein", GutenbergID: 84},
	{Key: "moby_dick", Title: "Moby Dick", GutenbergID: 2701},
	{Key: "tale_two_cities", Title: "A Tale of Two Cities", GutenbergID: 98},
	{Key: "crime_punishment", Title: "Crime and Punishment", GutenbergID: 2554},
}

// BuiltinPassages is the always-available fallback pool, used when no book
// has been downloaded and downloads are disabled.
var BuiltinPassages = []string{
	"The quick brown fox jumps over the lazy dog near the old wooden fence by the river.",
	"Practice makes perfect when you type every day, even if only for a few short minutes.",
	"A journey of a thousand miles begins with a single step, taken with care and purpose.",
	"The stars above the quiet valley shimmered like scattered diamonds on a bed of velvet.",
	"Reading widely and typing often are two habits that reinforce each other over time.",
	"She sold seashells by the seashore while the tide slowly crept across the sand.",
	"The old clock in the hallway ticked steadily, marking each passing hour without fail.",
	"Clear thinking and steady hands are the foundation of every skill worth mastering.",
	"Rain fell softly on the rooftops as the city settled into its evening quiet.",
	"Every keystroke is a small decision, and good habits compound into real skill.",
}

// GutenbergURL is the raw-text endpoint for a book's Gutenberg ID.
func GutenbergURL(id int) string {
	return "https://www.gutenberg.org/cache/epub/" + itoa(id) + "/pg" + itoa(id) + ".txt"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// BookByKey looks up a book by its config key.
func BookByKey(key string) (GutenbergBook, bool) {
	for _, b := range GutenbergBooks {
		if b.Key == key {
			return b, true
		}
	}
	return GutenbergBook{}, false
}

// IsValidPassageBook reports whether key names a known book, "all", or
// "builtin".
func IsValidPassageBook(key string) bool {
	if key == "all" || key == "builtin" {
		return true
	}
	_, ok := BookByKey(key)
	return ok
}

// PassageBookOption is one entry of the book picker UI.
type PassageBookOption struct {
	Key   string
	Title string
}

// PassageBookOptions returns the picker list: "builtin" and "all" first,
// then every known book.
func PassageBookOptions() []PassageBookOption {
	opts := []PassageBookOption{
		{Key: "builtin", Title: "Built-in passages"},
		{Key: "all", Title: "All (random)"},
	}
	for _, b := range GutenbergBooks {
		opts = append(opts, PassageBookOption{Key: b.Key, Title: b.Title})
	}
	return opts
}

const (
	gutenbergStartMarker = "*** START OF"
	gutenbergEndMarker   = "*** END OF"
)

// ExtractParagraphs strips a Project Gutenberg file's header/footer boilerplate,
// normalizes punctuation, and splits what remains into 12-42 word paragraphs.
// limit caps the number of paragraphs returned; 0 means unbounded.
func ExtractParagraphs(raw string, limit int) []string {
	body := stripGutenbergBoilerplate(raw)
	body = normalizeKeyboardText(body)

	var out []string
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(strings.ReplaceAll(block, "\n", " "))
		if block == "" || !looksLikeProse(block) {
			continue
		}
		n := wordCount(block)
		switch {
		case n < minParagraphWords:
			continue
		case n <= maxParagraphWords:
			out = append(out, collapseSpaces(block))
		default:
			out = append(out, splitLongParagraph(block)...)
		}
		if limit > 0 && len(out) >= limit {
			return out[:limit]
		}
	}
	return out
}

func stripGutenbergBoilerplate(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	if idx := strings.Index(text, gutenbergStartMarker); idx >= 0 {
		if nl := strings.IndexByte(text[idx:], '\n'); nl >= 0 {
			text = text[idx+nl+1:]
		}
	}
	if idx := strings.Index(text, gutenbergEndMarker); idx >= 0 {
		text = text[:idx]
	}
	return text
}

// looksLikeProse rejects blocks that are mostly non-letters (tables of
// contents, chapter-number-only lines, control characters).
func looksLikeProse(block string) bool {
	letters, total := 0, 0
	for _, r := range block {
		if r < 0x09 {
			return false
		}
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	return total > 0 && letters*2 >= total
}

func wordCount(s string) int {
	n := 0
	for range words.FromString(s) {
		n++
	}
	return n
}

func splitLongParagraph(block string) []string {
	var chunks []string
	var current strings.Builder
	currentWords := 0

	flush := func() {
		if currentWords >= minParagraphWords {
			chunks = append(chunks, collapseSpaces(strings.TrimSpace(current.String())))
		}
		current.Reset()
		currentWords = 0
	}

	for sentence := range sentences.FromString(block) {
		s := strings.TrimSpace(string(sentence))
		if s == "" {
			continue
		}
		sw := wordCount(s)
		if currentWords > 0 && currentWords+sw > maxParagraphWords {
			flush()
		}
		if sw > maxParagraphWords {
			// A single run-on sentence: fall back to a hard word-count split.
			chunks = append(chunks, splitByWordCount(s)...)
			continue
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(s)
		currentWords += sw
	}
	flush()
	return chunks
}

func splitByWordCount(s string) []string {
	fields := strings.Fields(s)
	var out []string
	for len(fields) > 0 {
		n := maxParagraphWords
		if n > len(fields) {
			n = len(fields)
		}
		chunk := strings.Join(fields[:n], " ")
		if wordCount(chunk) >= minParagraphWords {
			out = append(out, chunk)
		}
		fields = fields[n:]
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var smartPunctuation = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", "\"", "”", "\"",
	"–", "-", "—", "-",
	"…", ".",
	" ", " ",
)

// normalizeKeyboardText replaces curly quotes, en/em dashes, ellipses, and
// non-breaking spaces with the plain-ASCII forms a typing drill expects.
func normalizeKeyboardText(s string) string {
	return smartPunctuation.Replace(s)
}

// FitToWordTarget trims text to roughly target words, allowing a 20% margin
// before cutting mid-sentence.
func FitToWordTarget(text string, target int) string {
	fields := strings.Fields(text)
	if target <= 0 || len(fields) <= target {
		return text
	}
	keep := target * 6 / 5
	if keep > len(fields) {
		keep = len(fields)
	}
	return strings.Join(fields[:keep], " ")
}
