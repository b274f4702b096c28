package corpora

import "strings"

const (
	minSnippetLines     = 3
	maxSnippetLines     = 30
	minSnippetChars     = 20
	maxSnippetChars     = 800
	structuralFallback  = 20
	maxSnippetsPerBlock = 200
)

// ExtractCodeSnippets collects function-length blocks from source, using
// style's keywords to find candidate starts. If keyword-led extraction finds
// fewer than structuralFallback snippets, a structural pass (brace-depth or
// indentation only, no keyword match required) supplements the result.
func ExtractCodeSnippets(source string, style BlockStyle) []string {
	lines := strings.Split(source, "\n")

	snippets := keywordExtract(lines, style)
	if len(snippets) < structuralFallback {
		for _, s := range structuralExtract(lines, style) {
			if !contains(snippets, s) {
				snippets = append(snippets, s)
			}
		}
	}
	if len(snippets) > maxSnippetsPerBlock {
		snippets = snippets[:maxSnippetsPerBlock]
	}
	return snippets
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func keywordExtract(lines []string, style BlockStyle) []string {
	var snippets []string
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !hasAnyPrefix(trimmed, style.Keywords) {
			i++
			continue
		}

		switch style.Kind {
		case Braces:
			block, next := captureBraces(lines, i)
			if isValidSnippet(block) {
				snippets = append(snippets, block)
			}
			i = next
		case Indentation:
			block, next := captureIndentation(lines, i)
			if isValidSnippet(block) {
				snippets = append(snippets, block)
			}
			i = next
		case EndDelimited:
			block, next := captureEndDelimited(lines, i)
			if isValidSnippet(block) {
				snippets = append(snippets, block)
			}
			i = next
		}
	}
	return snippets
}

func captureBraces(lines []string, start int) (string, int) {
	var block []string
	depth := 0
	j := start
	for j < len(lines) && len(block) < maxSnippetLines {
		l := lines[j]
		block = append(block, l)
		depth += strings.Count(l, "{")
		depth -= strings.Count(l, "}")
		if depth <= 0 && j > start {
			break
		}
		j++
	}
	return strings.Join(block, "\n"), j + 1
}

func captureIndentation(lines []string, start int) (string, int) {
	baseIndent := indentOf(lines[start])
	block := []string{lines[start]}
	j := start + 1
	for j < len(lines) && len(block) < maxSnippetLines {
		l := lines[j]
		if strings.TrimSpace(l) == "" {
			block = append(block, l)
			j++
			continue
		}
		if indentOf(l) > baseIndent {
			block = append(block, l)
			j++
		} else {
			break
		}
	}
	for len(block) > 0 && strings.TrimSpace(block[len(block)-1]) == "" {
		block = block[:len(block)-1]
	}
	return strings.Join(block, "\n"), j
}

func captureEndDelimited(lines []string, start int) (string, int) {
	baseIndent := indentOf(lines[start])
	block := []string{lines[start]}
	j := start + 1
	for j < len(lines) && len(block) < maxSnippetLines {
		l := lines[j]
		block = append(block, l)
		if strings.TrimSpace(l) == "end" && indentOf(l) <= baseIndent {
			break
		}
		j++
	}
	return strings.Join(block, "\n"), j + 1
}

// structuralExtract runs a keyword-free fallback pass so languages whose
// keyword table under-matches (anonymous functions, nested blocks) still
// yield enough candidates.
func structuralExtract(lines []string, style BlockStyle) []string {
	switch style.Kind {
	case Braces:
		return structuralBraces(lines)
	case Indentation:
		return structuralIndentation(lines)
	default:
		return structuralEndDelimited(lines)
	}
}

func structuralBraces(lines []string) []string {
	var snippets []string
	depth := 0
	i := 0
	for i < len(lines) {
		l := lines[i]
		opens := strings.Count(l, "{")
		closes := strings.Count(l, "}")
		newDepth := depth + opens - closes
		if opens > 0 && (depth == 0 || depth == 1) && newDepth > depth {
			startDepth := depth
			block, next := captureBracesFrom(lines, i, startDepth)
			if isValidSnippet(block) {
				snippets = append(snippets, block)
			}
			depth = next.endDepth
			i = next.nextIndex
		} else {
			depth = newDepth
			i++
		}
	}
	return snippets
}

type braceCapture struct {
	endDepth  int
	nextIndex int
}

func captureBracesFrom(lines []string, start, startDepth int) (string, braceCapture) {
	var block []string
	depth := startDepth
	j := start
	for j < len(lines) && len(block) < maxSnippetLines {
		l := lines[j]
		block = append(block, l)
		depth += strings.Count(l, "{")
		depth -= strings.Count(l, "}")
		if depth <= startDepth && j > start {
			break
		}
		j++
	}
	return strings.Join(block, "\n"), braceCapture{endDepth: depth, nextIndex: j + 1}
}

func structuralIndentation(lines []string) []string {
	var snippets []string
	i := 0
	for i < len(lines) {
		l := lines[i]
		if strings.TrimSpace(l) == "" {
			i++
			continue
		}
		baseIndent := indentOf(l)
		if baseIndent > 4 {
			i++
			continue
		}
		if !hasIndentedBody(lines, i+1, baseIndent) {
			i++
			continue
		}
		block, next := captureIndentation(lines, i)
		if isValidSnippet(block) {
			snippets = append(snippets, block)
		}
		i = next
	}
	return snippets
}

func hasIndentedBody(lines []string, from, baseIndent int) bool {
	for k := from; k < len(lines); k++ {
		if strings.TrimSpace(lines[k]) == "" {
			continue
		}
		return indentOf(lines[k]) > baseIndent
	}
	return false
}

func structuralEndDelimited(lines []string) []string {
	var snippets []string
	i := 0
	for i < len(lines) {
		l := lines[i]
		if strings.TrimSpace(l) == "" {
			i++
			continue
		}
		if indentOf(l) > 4 {
			i++
			continue
		}
		block, next := captureEndDelimited(lines, i)
		if isValidSnippet(block) {
			snippets = append(snippets, block)
		}
		i = next
	}
	return snippets
}

var importPrefixes = []string{
	"import ", "from ", "use ", "require", "#include", "using ", "package ", "module ", "extern crate ",
}

func isNoiseSnippet(snippet string) bool {
	var meaningful []string
	for _, l := range strings.Split(snippet, "\n") {
		t := strings.TrimSpace(l)
		if t == "" || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") ||
			strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*") {
			continue
		}
		meaningful = append(meaningful, l)
	}
	if len(meaningful) == 0 {
		return true
	}
	first := strings.TrimSpace(meaningful[0])
	if first == "{" || first == "}" {
		return true
	}

	body := meaningful[1:]
	if len(body) > 0 {
		allImports := true
		for _, l := range body {
			t := strings.TrimSpace(l)
			if !(hasAnyPrefix(t, importPrefixes) || t == "{" || t == "}") {
				allImports = false
				break
			}
		}
		if allImports {
			return true
		}
	}

	all := strings.Split(snippet, "\n")
	var nonBlankBody []string
	for _, l := range all[1:] {
		t := strings.TrimSpace(l)
		if t != "" && t != "}" && t != "end" {
			nonBlankBody = append(nonBlankBody, l)
		}
	}
	if len(nonBlankBody) <= 1 && len(all) <= 3 {
		return true
	}
	return false
}

func isValidSnippet(snippet string) bool {
	lines := strings.Split(snippet, "\n")
	if len(lines) < minSnippetLines || len(lines) > maxSnippetLines {
		return false
	}
	nonWhitespace := 0
	for _, r := range snippet {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			nonWhitespace++
		}
	}
	if nonWhitespace < minSnippetChars || len(snippet) > maxSnippetChars {
		return false
	}
	if !strings.Contains(snippet, "\n") {
		return false
	}
	return !isNoiseSnippet(snippet)
}
