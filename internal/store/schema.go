package store

import (
	"time"

	"github.com/haricheung/keytutor/internal/config"
	"github.com/haricheung/keytutor/internal/session"
	"github.com/haricheung/keytutor/internal/skilltree"
	"github.com/haricheung/keytutor/internal/stats"
)

// SchemaVersion tags every persisted document. ExportVersion tags the
// combined export/import document separately, since the two evolve on
// different schedules.
const (
	SchemaVersion = 1
	ExportVersion = 1
)

// ProfileData is profile.json's shape: cross-session score, streak, and
// skill-tree progress.
//
// Grounded on app.rs's Profile fields, not store/schema.rs's ProfileData —
// schema.rs's version predates the skill tree and still names the field
// total_lessons, while app.rs reads/writes total_drills and a skill_tree
// field schema.rs never added; see DESIGN.md.
type ProfileData struct {
	SchemaVersion   int                    `json:"schema_version"`
	TotalScore      float64                `json:"total_score"`
	TotalDrills     int                    `json:"total_drills"`
	StreakDays      int                    `json:"streak_days"`
	BestStreak      int                    `json:"best_streak"`
	LastPracticeDay string                 `json:"last_practice_date,omitempty"`
	SkillTree       skilltree.TreeProgress `json:"skill_tree"`
}

// DefaultProfileData returns a fresh profile with default skill-tree progress.
func DefaultProfileData() ProfileData {
	return ProfileData{SchemaVersion: SchemaVersion, SkillTree: skilltree.DefaultProgress()}
}

// KeyStatRow is one character's persisted timing/error statistics.
type KeyStatRow struct {
	Key rune           `json:"key"`
	Stat stats.KeyStat `json:"stat"`
}

// KeyStatsData is key_stats.json / key_stats_ranked.json's shape.
type KeyStatsData struct {
	SchemaVersion int          `json:"schema_version"`
	Stats         []KeyStatRow `json:"stats"`
}

// DefaultKeyStatsData returns an empty key-stats document.
func DefaultKeyStatsData() KeyStatsData {
	return KeyStatsData{SchemaVersion: SchemaVersion, Stats: []KeyStatRow{}}
}

// DrillHistoryData is drill_history.json's shape.
type DrillHistoryData struct {
	SchemaVersion int              `json:"schema_version"`
	Drills        []session.Result `json:"drills"`
}

// DefaultDrillHistoryData returns an empty history document.
func DefaultDrillHistoryData() DrillHistoryData {
	return DrillHistoryData{SchemaVersion: SchemaVersion, Drills: []session.Result{}}
}

// ExportData bundles every persisted document plus the current config into
// one importable/exportable unit. N-gram stats are never included — they
// are always rebuilt from drill history (see coordinator.RebuildNgramStats).
type ExportData struct {
	ExportVersion   int              `json:"keydr_export_version"`
	ExportedAt      time.Time        `json:"exported_at"`
	Config          config.Config    `json:"config"`
	Profile         ProfileData      `json:"profile"`
	KeyStats        KeyStatsData     `json:"key_stats"`
	RankedKeyStats  KeyStatsData     `json:"ranked_key_stats"`
	DrillHistory    DrillHistoryData `json:"drill_history"`
}
