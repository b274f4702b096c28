// Package corpora ingests external text — source code from GitHub mirrors and
// book text from Project Gutenberg — and extracts drill-sized candidates from
// it: function-length code snippets and 12-42 word paragraphs.
//
// Grounded on original_source/src/generator/{code_syntax,passage,github_code,cache}.rs.
package corpora

import "sort"

// BlockKind selects how a language's function-length blocks are delimited.
type BlockKind int

const (
	// Braces captures from a keyword line to the matching '}' at brace depth 0.
	Braces BlockKind = iota
	// Indentation captures a keyword line plus every subsequent line indented
	// deeper than it.
	Indentation
	// EndDelimited captures from a keyword line to a trailing "end" at or
	// below the keyword line's indent.
	EndDelimited
)

// BlockStyle pairs a delimiting strategy with the keywords that start a block.
type BlockStyle struct {
	Kind     BlockKind
	Keywords []string
}

// CodeRepo is one raw-file mirror to fetch for a language.
type CodeRepo struct {
	Key  string
	URLs []string
}

// CodeLanguage is one entry in the code-snippet source table.
type CodeLanguage struct {
	Key         string
	DisplayName string
	Repos       []CodeRepo
	HasBuiltin  bool
	BlockStyle  BlockStyle
}

// CodeLanguages is a representative slice of the source table: six
// languages covering all three BlockStyle kinds (four brace-delimited, one
// indentation-based, one end-delimited).
var CodeLanguages = []CodeLanguage{
	{
		Key:         "go",
		DisplayName: "Go",
		Repos: []CodeRepo{
			{Key: "go-stdlib", URLs: []string{"https://raw.githubusercontent.com/golang/go/master/src/fmt/print.go"}},
		},
		HasBuiltin: true,
		BlockStyle: BlockStyle{Kind: Braces, Keywords: []string{"func ", "type "}},
	},
	{
		Key:         "rust",
		DisplayName: "Rust",
		Repos: []CodeRepo{
			{Key: "tokio", URLs: []string{"https://raw.githubusercontent.com/tokio-rs/tokio/master/tokio/src/sync/mutex.rs"}},
		},
		HasBuiltin: true,
		BlockStyle: BlockStyle{Kind: Braces, Keywords: []string{
			"fn ", "pub fn ", "async fn ", "pub async fn ", "impl ", "trait ",
			"struct ", "enum ", "mod ", "const ", "static ", "pub struct ", "pub enum ",
		}},
	},
	{
		Key:         "javascript",
		DisplayName: "JavaScript",
		Repos: []CodeRepo{
			{Key: "node-stdlib", URLs: []string{"https://raw.githubusercontent.com/nodejs/node/main/lib/path.js"}},
		},
		HasBuiltin: true,
		BlockStyle: BlockStyle{Kind: Braces, Keywords: []string{
			"function ", "async function ", "const ", "class ", "export function ", "let ", "export ",
		}},
	},
	{
		Key:         "python",
		DisplayName: "Python",
		Repos: []CodeRepo{
			{Key: "cpython", URLs: []string{"https://raw.githubusercontent.com/python/cpython/main/Lib/json/encoder.py"}},
		},
		HasBuiltin: true,
		BlockStyle: BlockStyle{Kind: Indentation, Keywords: []string{"def ", "class ", "async def ", "@"}},
	},
	{
		Key:         "ruby",
		DisplayName: "Ruby",
		Repos: []CodeRepo{
			{Key: "rake", URLs: []string{"https://raw.githubusercontent.com/ruby/rake/master/lib/rake/task.rb"}},
		},
		HasBuiltin: false,
		BlockStyle: BlockStyle{Kind: EndDelimited, Keywords: []string{"def ", "class ", "module ", "attr_"}},
	},
	{
		Key:         "java",
		DisplayName: "Java",
		Repos: []CodeRepo{
			{Key: "guava", URLs: []string{"https://raw.githubusercontent.com/google/guava/master/guava/src/com/google/common/base/Preconditions.java"}},
		},
		HasBuiltin: false,
		BlockStyle: BlockStyle{Kind: Braces, Keywords: []string{
			"public ", "private ", "protected ", "static ", "class ", "interface ", "void ",
		}},
	},
}

// CodeLanguageOption is one entry of the language picker UI.
type CodeLanguageOption struct {
	Key         string
	DisplayName string
}

// CodeLanguageOptions returns the picker list, "all" first, the rest sorted
// by display name.
func CodeLanguageOptions() []CodeLanguageOption {
	opts := make([]CodeLanguageOption, 0, len(CodeLanguages)+1)
	opts = append(opts, CodeLanguageOption{Key: "all", DisplayName: "All (random)"})
	for _, lang := range CodeLanguages {
		opts = append(opts, CodeLanguageOption{Key: lang.Key, DisplayName: lang.DisplayName})
	}
	rest := opts[1:]
	sort.Slice(rest, func(i, j int) bool { return rest[i].DisplayName < rest[j].DisplayName })
	return opts
}

// LanguageByKey looks up a language by its key.
func LanguageByKey(key string) (CodeLanguage, bool) {
	for _, lang := range CodeLanguages {
		if lang.Key == key {
			return lang, true
		}
	}
	return CodeLanguage{}, false
}

// IsValidCodeLanguage reports whether key names a known language or "all".
func IsValidCodeLanguage(key string) bool {
	if key == "all" {
		return true
	}
	_, ok := LanguageByKey(key)
	return ok
}
