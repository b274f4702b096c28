// Package config loads and saves the trainer's user-editable settings as a
// TOML document in the platform config directory.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full set of user-editable settings, read at start-up and
// writable on change from the running session.
type Config struct {
	TargetWPM      uint32 `toml:"target_wpm" json:"target_wpm"`
	Theme          string `toml:"theme" json:"theme"`
	KeyboardLayout string `toml:"keyboard_layout" json:"keyboard_layout"`
	WordCount      int    `toml:"word_count" json:"word_count"`
	CodeLanguage   string `toml:"code_language" json:"code_language"`
	PassageBook    string `toml:"passage_book" json:"passage_book"`

	CodeDownloadsEnabled    bool   `toml:"code_downloads_enabled" json:"code_downloads_enabled"`
	PassageDownloadsEnabled bool   `toml:"passage_downloads_enabled" json:"passage_downloads_enabled"`
	CodeDownloadDir         string `toml:"code_download_dir" json:"code_download_dir"`
	PassageDownloadDir      string `toml:"passage_download_dir" json:"passage_download_dir"`

	// CodeSnippetsPerRepo and PassageParagraphsPerBook use 0 to mean
	// unbounded, matching the "unbounded sentinel 0" convention.
	CodeSnippetsPerRepo      int `toml:"code_snippets_per_repo" json:"code_snippets_per_repo"`
	PassageParagraphsPerBook int `toml:"passage_paragraphs_per_book" json:"passage_paragraphs_per_book"`
}

// Default returns the settings a fresh profile starts with.
func Default() Config {
	return Config{
		TargetWPM:               35,
		Theme:                   "terminal-default",
		KeyboardLayout:          "qwerty",
		WordCount:               20,
		CodeLanguage:            "go",
		PassageBook:             "builtin",
		CodeDownloadsEnabled:    false,
		PassageDownloadsEnabled: false,
		CodeDownloadDir:         defaultCacheSubdir("code"),
		PassageDownloadDir:      defaultCacheSubdir("passages"),
		CodeSnippetsPerRepo:     0,
		PassageParagraphsPerBook: 0,
	}
}

func defaultCacheSubdir(name string) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "keytutor", name)
}

// TargetCPM converts the configured target words-per-minute into the
// characters-per-minute unit the key statistics store uses.
func (c Config) TargetCPM() float64 {
	return float64(c.TargetWPM) * 5.0
}

// Clamp enforces the bounds spec'd for each field, in place.
func (c *Config) Clamp() {
	if c.TargetWPM < 10 {
		c.TargetWPM = 10
	}
	if c.TargetWPM > 200 {
		c.TargetWPM = 200
	}
	if c.WordCount < 5 {
		c.WordCount = 5
	}
	if c.WordCount > 100 {
		c.WordCount = 100
	}
}

// Path returns the config file location: $XDG_CONFIG_HOME (or the platform
// equivalent via os.UserConfigDir) joined with keytutor/config.toml.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "keytutor", "config.toml")
}

// Load reads the config file at Path, falling back to Default if it does
// not exist or fails to parse.
func Load() Config {
	path := Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Default()
	}
	cfg.Clamp()
	return cfg
}

// Save writes cfg to Path, creating the parent directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
