package corpora

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func TestExtractCodeSnippets_BracesLanguage(t *testing.T) {
	source := `package main

import "fmt"

func add(a, b int) int {
	sum := a + b
	return sum
}

func sub(a, b int) int {
	diff := a - b
	return diff
}
`
	style := BlockStyle{Kind: Braces, Keywords: []string{"func "}}
	snippets := ExtractCodeSnippets(source, style)
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2: %v", len(snippets), snippets)
	}
	for _, s := range snippets {
		if !strings.Contains(s, "\n") {
			t.Errorf("snippet missing newline: %q", s)
		}
	}
}

func TestExtractCodeSnippets_RejectsImportOnlyBlock(t *testing.T) {
	source := `func noise() {
	import foo
	import bar
}

func real() {
	x := compute()
	y := transform(x)
	return y
}
`
	style := BlockStyle{Kind: Braces, Keywords: []string{"func "}}
	for _, s := range ExtractCodeSnippets(source, style) {
		if strings.Contains(s, "noise") {
			t.Errorf("expected import-only block to be rejected, got %q", s)
		}
	}
}

func TestExtractCodeSnippets_IndentationLanguage(t *testing.T) {
	source := `def add(a, b):
    total = a + b
    return total

def sub(a, b):
    diff = a - b
    return diff
`
	style := BlockStyle{Kind: Indentation, Keywords: []string{"def "}}
	snippets := ExtractCodeSnippets(source, style)
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2: %v", len(snippets), snippets)
	}
}

func TestExtractCodeSnippets_EndDelimitedLanguage(t *testing.T) {
	source := `def greet(name)
  puts "hello " + name
  puts "goodbye"
end

def farewell(name)
  puts "bye " + name
  puts "see you"
end
`
	style := BlockStyle{Kind: EndDelimited, Keywords: []string{"def "}}
	snippets := ExtractCodeSnippets(source, style)
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2: %v", len(snippets), snippets)
	}
}

func TestIsValidSnippet_RejectsTooFewLines(t *testing.T) {
	if isValidSnippet("a\nb") {
		t.Error("expected 2-line snippet to be invalid")
	}
}

func TestIsValidSnippet_RejectsSingleStatementBody(t *testing.T) {
	snippet := "func one() {\n\treturn 1\n}"
	if isValidSnippet(snippet) {
		t.Error("expected single-statement body to be rejected as noise")
	}
}

func TestExtractParagraphs_StripsGutenbergBoilerplate(t *testing.T) {
	raw := "Some legal preamble about licensing that should never appear.\n" +
		"*** START OF THE PROJECT GUTENBERG EBOOK TEST ***\n\n" +
		"It was the best of times and it was also somehow the worst of times for everyone involved in the whole affair.\n\n" +
		"*** END OF THE PROJECT GUTENBERG EBOOK TEST ***\n" +
		"More legal text that should never appear in output."
	paragraphs := ExtractParagraphs(raw, 0)
	if len(paragraphs) != 1 {
		t.Fatalf("got %d paragraphs, want 1: %v", len(paragraphs), paragraphs)
	}
	if strings.Contains(paragraphs[0], "legal") {
		t.Errorf("boilerplate leaked into paragraph: %q", paragraphs[0])
	}
}

func TestExtractParagraphs_DropsTooShortParagraphs(t *testing.T) {
	raw := "*** START OF EBOOK ***\n\nToo short.\n\n" +
		"This paragraph has more than twelve words in it so it should clearly survive the filter easily.\n\n" +
		"*** END OF EBOOK ***"
	paragraphs := ExtractParagraphs(raw, 0)
	for _, p := range paragraphs {
		if wordCount(p) < minParagraphWords {
			t.Errorf("paragraph under minimum word count leaked through: %q", p)
		}
	}
}

func TestExtractParagraphs_SplitsLongParagraphAtSentenceBoundary(t *testing.T) {
	sentence := "This is a reasonably long sentence with plenty of words in it to matter."
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		sb.WriteString(sentence)
		sb.WriteByte(' ')
	}
	raw := "*** START OF EBOOK ***\n\n" + sb.String() + "\n\n*** END OF EBOOK ***"
	paragraphs := ExtractParagraphs(raw, 0)
	if len(paragraphs) < 2 {
		t.Fatalf("expected long paragraph to be split into multiple chunks, got %d", len(paragraphs))
	}
	for _, p := range paragraphs {
		if wordCount(p) > maxParagraphWords {
			t.Errorf("chunk exceeds max paragraph words: %q", p)
		}
	}
}

func TestNormalizeKeyboardText_ConvertsSmartPunctuation(t *testing.T) {
	in := "“Hello” — she said, ‘it’s fine’…"
	out := normalizeKeyboardText(in)
	for _, bad := range []string{"“", "”", "—", "‘", "’", "…"} {
		if strings.Contains(out, bad) {
			t.Errorf("expected smart punctuation %q to be normalized, got %q", bad, out)
		}
	}
}

func TestFitToWordTarget_AllowsTwentyPercentMargin(t *testing.T) {
	words := make([]string, 20)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")
	out := FitToWordTarget(text, 10)
	if n := len(strings.Fields(out)); n != 12 {
		t.Errorf("got %d words, want 12 (target*6/5)", n)
	}
}

func TestFitToWordTarget_NoopWhenUnderTarget(t *testing.T) {
	text := "just a few words"
	if got := FitToWordTarget(text, 100); got != text {
		t.Errorf("expected no-op for short text, got %q", got)
	}
}

func TestIsValidPassageBook_AcceptsKnownKeysAndSentinels(t *testing.T) {
	for _, key := range []string{"builtin", "all", "pride_prejudice"} {
		if !IsValidPassageBook(key) {
			t.Errorf("expected %q to be valid", key)
		}
	}
	if IsValidPassageBook("not_a_real_book") {
		t.Error("expected unknown key to be invalid")
	}
}

func TestIsValidCodeLanguage_AcceptsKnownKeysAndSentinel(t *testing.T) {
	for _, key := range []string{"all", "go", "python"} {
		if !IsValidCodeLanguage(key) {
			t.Errorf("expected %q to be valid", key)
		}
	}
	if IsValidCodeLanguage("cobol") {
		t.Error("expected unknown language to be invalid")
	}
}

func TestPassageGenerator_FallsBackToBuiltinWhenNothingFetched(t *testing.T) {
	g := NewPassageGenerator(rand.New(rand.NewPCG(1, 2)), t.TempDir(), "builtin", 0)
	text := g.Generate(20)
	if text == "" {
		t.Fatal("expected non-empty builtin passage")
	}
	if g.LastSource() != "Built-in passages" {
		t.Errorf("got source %q, want builtin", g.LastSource())
	}
}

func TestCodeGenerator_FallsBackToBuiltinSourceLabelWhenUncached(t *testing.T) {
	g := NewCodeGenerator(rand.New(rand.NewPCG(1, 2)), t.TempDir(), "go")
	text := g.Generate(10)
	if text != "" {
		t.Errorf("expected empty generation with no cached or built-in snippets, got %q", text)
	}
	if g.LastSource() != "Built-in snippets" {
		t.Errorf("got source %q, want %q", g.LastSource(), "Built-in snippets")
	}
}

func TestDownloadJob_SnapshotReflectsCompletion(t *testing.T) {
	j := &Job{key: "test"}
	j.done.Store(true)
	j.success.Store(true)
	j.bytesDone.Store(100)
	j.bytesTotal.Store(100)
	snap := j.Snapshot()
	if !snap.Done || !snap.Success || snap.BytesDone != 100 {
		t.Errorf("got %+v, want completed snapshot", snap)
	}
}
