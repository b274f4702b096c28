// Package store persists the trainer's profile, key statistics, and drill
// history as independent JSON documents, with atomic single-file saves and
// an all-or-nothing two-phase import/export protocol.
//
// Grounded on original_source/src/store/json_store.rs.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/haricheung/keytutor/internal/stats"
)

const (
	profileFile        = "profile.json"
	keyStatsFile       = "key_stats.json"
	rankedKeyStatsFile = "key_stats_ranked.json"
	drillHistoryFile   = "drill_history.json"
)

// Store is a JSON-document persistence adapter rooted at one base directory.
type Store struct {
	baseDir string
}

// New creates baseDir (and any missing parents) and returns a Store rooted
// there.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{baseDir: baseDir}, nil
}

// DefaultBaseDir resolves the platform data directory for persisted
// documents: $XDG_DATA_HOME (or ~/.local/share on Unix, the OS default
// elsewhere via os.UserHomeDir), joined with "keytutor". Go's standard
// library has no os.UserDataDir (only UserConfigDir/UserCacheDir), so this
// mirrors the XDG base-directory fallback chain the Rust original's `dirs`
// crate implements, using only stdlib.
func DefaultBaseDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "keytutor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "keytutor")
	}
	return filepath.Join(home, ".local", "share", "keytutor")
}

func (s *Store) path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// save atomically writes data as pretty JSON to name: write name+".tmp",
// fsync, then rename over the final path.
func save[T any](s *Store, name string, data T) error {
	path := s.path(name)
	tmpPath := path + ".tmp"

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if _, err := f.Write(encoded); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// load reads and decodes name, returning def if the file does not exist or
// fails to parse (corruption/schema mismatch is treated as "start fresh",
// per spec.md §7's recoverable-corruption policy).
func load[T any](s *Store, name string, def T) T {
	path := s.path(name)
	content, err := os.ReadFile(path)
	if err != nil {
		return def
	}
	var out T
	if err := json.Unmarshal(content, &out); err != nil {
		return def
	}
	return out
}

// LoadProfile loads profile.json, or DefaultProfileData if absent/corrupt.
func (s *Store) LoadProfile() ProfileData {
	return load(s, profileFile, DefaultProfileData())
}

// SaveProfile atomically writes profile.json.
func (s *Store) SaveProfile(data ProfileData) error {
	return save(s, profileFile, data)
}

// LoadKeyStats loads key_stats.json, or an empty document if absent/corrupt.
func (s *Store) LoadKeyStats() KeyStatsData {
	return load(s, keyStatsFile, DefaultKeyStatsData())
}

// SaveKeyStats atomically writes key_stats.json.
func (s *Store) SaveKeyStats(data KeyStatsData) error {
	return save(s, keyStatsFile, data)
}

// LoadRankedKeyStats loads key_stats_ranked.json.
func (s *Store) LoadRankedKeyStats() KeyStatsData {
	return load(s, rankedKeyStatsFile, DefaultKeyStatsData())
}

// SaveRankedKeyStats atomically writes key_stats_ranked.json.
func (s *Store) SaveRankedKeyStats(data KeyStatsData) error {
	return save(s, rankedKeyStatsFile, data)
}

// LoadDrillHistory loads drill_history.json.
func (s *Store) LoadDrillHistory() DrillHistoryData {
	return load(s, drillHistoryFile, DefaultDrillHistoryData())
}

// SaveDrillHistory atomically writes drill_history.json.
func (s *Store) SaveDrillHistory(data DrillHistoryData) error {
	return save(s, drillHistoryFile, data)
}

// ToKeyStatsData converts a live stats.Store into its persisted shape.
func ToKeyStatsData(st *stats.Store) KeyStatsData {
	all := st.All()
	rows := make([]KeyStatRow, 0, len(all))
	for k, v := range all {
		rows = append(rows, KeyStatRow{Key: k, Stat: v})
	}
	return KeyStatsData{SchemaVersion: SchemaVersion, Stats: rows}
}

// ApplyKeyStatsData loads a persisted document into a live stats.Store,
// preserving the store's current target speed.
func ApplyKeyStatsData(st *stats.Store, data KeyStatsData) {
	m := make(map[rune]stats.KeyStat, len(data.Stats))
	for _, row := range data.Stats {
		m[row.Key] = row.Stat
	}
	st.LoadAll(m)
}

// ExportAll bundles every persisted document plus cfg into one ExportData.
// N-gram stats are never included — they are always rebuilt from drill
// history.
func (s *Store) ExportAll(cfg ExportData) ExportData {
	cfg.ExportVersion = ExportVersion
	cfg.Profile = s.LoadProfile()
	cfg.KeyStats = s.LoadKeyStats()
	cfg.RankedKeyStats = s.LoadRankedKeyStats()
	cfg.DrillHistory = s.LoadDrillHistory()
	return cfg
}

type stagedFile struct {
	name    string
	tmpPath string
}

// ImportAll performs a transactional import: two-phase commit with
// best-effort .bak rollback.
//
// Stage phase: write all four documents to name+".tmp". If any fails, every
// .tmp written so far is removed and the error is returned wrapped, with
// every final file left untouched.
// Commit phase: for each file, rename the existing final file to name+".bak"
// (if present), then rename name+".tmp" to the final name. On any commit
// failure, already-committed files are rolled back from their .bak (or
// removed if they didn't previously exist) and remaining .tmp files are
// cleaned up. On full success, .bak files are deleted.
func (s *Store) ImportAll(data ExportData) error {
	if data.ExportVersion != ExportVersion {
		return fmt.Errorf("unsupported export version: %d (expected %d)", data.ExportVersion, ExportVersion)
	}
	if err := ValidateExport(data); err != nil {
		return err
	}

	type doc struct {
		name string
		data any
	}
	docs := []doc{
		{profileFile, data.Profile},
		{keyStatsFile, data.KeyStats},
		{rankedKeyStatsFile, data.RankedKeyStats},
		{drillHistoryFile, data.DrillHistory},
	}

	var staged []stagedFile
	cleanupStaged := func() {
		for _, f := range staged {
			_ = os.Remove(f.tmpPath)
		}
	}

	for _, d := range docs {
		tmpPath := s.path(d.name) + ".tmp"
		encoded, err := json.MarshalIndent(d.data, "", "  ")
		if err != nil {
			cleanupStaged()
			return fmt.Errorf("import failed during staging: %w", err)
		}
		if err := writeAndSync(tmpPath, encoded); err != nil {
			cleanupStaged()
			return fmt.Errorf("import failed during staging: %w", err)
		}
		staged = append(staged, stagedFile{name: d.name, tmpPath: tmpPath})
	}

	type committedFile struct {
		final       string
		bak         string
		hadOriginal bool
	}
	var committed []committedFile
	rollback := func() {
		for _, c := range committed {
			if c.hadOriginal {
				_ = os.Rename(c.bak, c.final)
			} else {
				_ = os.Remove(c.final)
			}
		}
	}

	for i, f := range staged {
		finalPath := s.path(f.name)
		bakPath := finalPath + ".bak"
		_, statErr := os.Stat(finalPath)
		hadOriginal := statErr == nil

		if hadOriginal {
			if err := os.Rename(finalPath, bakPath); err != nil {
				rollback()
				for _, rest := range staged {
					_ = os.Remove(rest.tmpPath)
				}
				return fmt.Errorf("import failed during commit (backup): %w", err)
			}
		}

		if err := os.Rename(f.tmpPath, finalPath); err != nil {
			if hadOriginal {
				_ = os.Rename(bakPath, finalPath)
			} else {
				_ = os.Remove(finalPath)
			}
			rollback()
			for _, rest := range staged[i+1:] {
				_ = os.Remove(rest.tmpPath)
			}
			return fmt.Errorf("import failed during commit (rename): %w", err)
		}

		committed = append(committed, committedFile{final: finalPath, bak: bakPath, hadOriginal: hadOriginal})
	}

	for _, c := range committed {
		if c.hadOriginal {
			_ = os.Remove(c.bak)
		}
	}
	return nil
}

// CheckInterruptedImport removes any stray .bak files left by an import that
// was interrupted mid-commit, and reports whether any were found. Call this
// once at start-up.
func (s *Store) CheckInterruptedImport() bool {
	names := []string{profileFile, keyStatsFile, rankedKeyStatsFile, drillHistoryFile}
	found := false
	for _, name := range names {
		bakPath := s.path(name) + ".bak"
		if _, err := os.Stat(bakPath); err == nil {
			found = true
			_ = os.Remove(bakPath)
		}
	}
	return found
}

func writeAndSync(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
