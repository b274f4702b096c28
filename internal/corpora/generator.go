package corpora

import "math/rand/v2"

// PassageGenerator serves paragraphs from built-in text, downloaded-and-cached
// books, or both, tracking which source last served text for UI display.
//
// Grounded on original_source/src/generator/passage.rs's PassageGenerator.
type PassageGenerator struct {
	rng        *rand.Rand
	fetched    []fetchedPassage
	lastSource string
}

type fetchedPassage struct {
	text     string
	bookName string
}

// NewPassageGenerator loads cached paragraphs for every book named in
// selection ("builtin", a single book key, or "all"). cacheDir is searched
// for each book's cache file; missing books are silently skipped.
func NewPassageGenerator(rng *rand.Rand, cacheDir, selection string, paragraphLimit int) *PassageGenerator {
	g := &PassageGenerator{rng: rng, lastSource: "Built-in passages"}
	if selection == "builtin" {
		return g
	}
	books := relevantBooks(selection)
	for _, book := range books {
		if paragraphs, ok := LoadCachedBook(cacheDir, book, paragraphLimit); ok {
			for _, p := range paragraphs {
				g.fetched = append(g.fetched, fetchedPassage{text: p, bookName: book.Title})
			}
		}
	}
	return g
}

func relevantBooks(selection string) []GutenbergBook {
	if selection == "all" || selection == "" {
		return GutenbergBooks
	}
	if book, ok := BookByKey(selection); ok {
		return []GutenbergBook{book}
	}
	return nil
}

// LastSource describes where the most recently generated passage came from.
func (g *PassageGenerator) LastSource() string {
	return g.lastSource
}

// Generate picks one passage, preferring fetched text but falling back to
// the built-in pool when nothing has been downloaded, and trims it toward
// wordCount.
func (g *PassageGenerator) Generate(wordCount int) string {
	total := len(BuiltinPassages) + len(g.fetched)
	if total == 0 {
		return ""
	}
	pick := g.rng.IntN(total)
	var text string
	if pick < len(g.fetched) {
		fp := g.fetched[pick]
		text = fp.text
		g.lastSource = fp.bookName
	} else {
		text = BuiltinPassages[pick-len(g.fetched)]
		g.lastSource = "Built-in passages"
	}
	return FitToWordTarget(text, wordCount)
}

// CodeGenerator serves code snippets for one language from the snippets
// cached in cacheDir, tracking which source last served a snippet. It has no
// built-in snippet set: with nothing cached, Generate returns an empty string
// and the source label stays "Built-in snippets".
//
// Grounded on original_source/src/generator/{github_code,code_syntax}.rs.
type CodeGenerator struct {
	rng        *rand.Rand
	language   string
	cached     []CachedSnippet
	lastSource string
}

// NewCodeGenerator loads any cached snippets for language from cacheDir.
func NewCodeGenerator(rng *rand.Rand, cacheDir, language string) *CodeGenerator {
	return &CodeGenerator{
		rng:        rng,
		language:   language,
		cached:     LoadCachedSnippets(cacheDir, language),
		lastSource: "Built-in snippets",
	}
}

// Generate picks one snippet sized near wordCount "tokens" (whitespace-split
// units), preferring cached snippets that meet the size target and falling
// back to the shortest available candidate when none do.
func (g *CodeGenerator) Generate(wordCount int) string {
	if wordCount < 1 {
		wordCount = 1
	}
	minUnits := wordCount / 3
	if minUnits < 4 {
		minUnits = 4
	}

	var candidates []int
	for i, s := range g.cached {
		if approxTokenCount(s.Text) >= minUnits {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i := range g.cached {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		g.lastSource = "Built-in snippets"
		return ""
	}

	idx := candidates[g.rng.IntN(len(candidates))]
	snippet := g.cached[idx]
	lang, _ := LanguageByKey(g.language)
	g.lastSource = lang.DisplayName + " · " + snippet.RepoKey
	return fitSnippetToTarget(snippet.Text, wordCount)
}

// LastSource describes where the most recently generated snippet came from.
func (g *CodeGenerator) LastSource() string {
	return g.lastSource
}

func approxTokenCount(text string) int {
	n := 0
	inToken := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inToken = false
			continue
		}
		if !inToken {
			n++
			inToken = true
		}
	}
	return n
}

func fitSnippetToTarget(snippet string, targetUnits int) string {
	maxUnits := targetUnits * 3 / 2
	if maxUnits < targetUnits {
		maxUnits = targetUnits
	}
	if approxTokenCount(snippet) <= maxUnits {
		return snippet
	}

	var outLines []string
	units := 0
	lineStart := 0
	for i := 0; i <= len(snippet); i++ {
		if i == len(snippet) || snippet[i] == '\n' {
			line := snippet[lineStart:i]
			outLines = append(outLines, line)
			units += approxTokenCount(line)
			lineStart = i + 1
			if units >= targetUnits && len(outLines) >= 2 {
				break
			}
		}
	}
	if len(outLines) == 0 {
		return snippet
	}
	out := outLines[0]
	for _, l := range outLines[1:] {
		out += "\n" + l
	}
	return out
}
