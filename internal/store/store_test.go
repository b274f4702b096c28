package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haricheung/keytutor/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSaveLoadProfile_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	p := DefaultProfileData()
	p.TotalDrills = 42
	p.TotalScore = 1234.5

	if err := s.SaveProfile(p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	got := s.LoadProfile()
	if got.TotalDrills != 42 || got.TotalScore != 1234.5 {
		t.Errorf("got %+v, want round-tripped profile", got)
	}
}

func TestLoadProfile_MissingFileReturnsDefault(t *testing.T) {
	s := newTestStore(t)
	got := s.LoadProfile()
	if got.TotalDrills != 0 || got.SchemaVersion != SchemaVersion {
		t.Errorf("got %+v, want fresh default", got)
	}
}

func TestLoadProfile_CorruptFileReturnsDefault(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.path(profileFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := s.LoadProfile()
	if got.TotalDrills != 0 {
		t.Errorf("expected default on corrupt file, got %+v", got)
	}
}

func TestImportAll_CreatesAllFourFiles(t *testing.T) {
	s := newTestStore(t)
	export := makeTestExport()

	if err := s.ImportAll(export); err != nil {
		t.Fatalf("ImportAll: %v", err)
	}
	for _, name := range []string{profileFile, keyStatsFile, rankedKeyStatsFile, drillHistoryFile} {
		if _, err := os.Stat(s.path(name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestImportAll_RoundTripsViaExportAll(t *testing.T) {
	s := newTestStore(t)
	p := DefaultProfileData()
	p.TotalDrills = 7
	if err := s.SaveProfile(p); err != nil {
		t.Fatal(err)
	}

	export := s.ExportAll(ExportData{Config: config.Default()})
	if export.ExportVersion != ExportVersion {
		t.Fatalf("got export version %d, want %d", export.ExportVersion, ExportVersion)
	}

	s2 := newTestStore(t)
	if err := s2.ImportAll(export); err != nil {
		t.Fatalf("ImportAll: %v", err)
	}
	got := s2.LoadProfile()
	if got.TotalDrills != 7 {
		t.Errorf("got total_drills %d, want 7", got.TotalDrills)
	}
}

func TestImportAll_RejectsWrongVersion(t *testing.T) {
	s := newTestStore(t)
	export := makeTestExport()
	export.ExportVersion = 99

	err := s.ImportAll(export)
	if err == nil {
		t.Fatal("expected error for mismatched export version")
	}
}

func TestImportAll_StagingFailurePreservesOriginals(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	profile := DefaultProfileData()
	profile.TotalDrills = 42
	if err := s.SaveProfile(profile); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(s.path(profileFile))
	if err != nil {
		t.Fatal(err)
	}

	badStore := &Store{baseDir: filepath.Join(dir, "nonexistent_subdir")}
	export := makeTestExport()
	if err := badStore.ImportAll(export); err == nil {
		t.Fatal("expected staging failure for nonexistent base dir")
	}

	after, err := os.ReadFile(s.path(profileFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("original profile.json was modified despite staging failure")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("residual .tmp file left behind: %s", e.Name())
		}
	}
}

func TestCheckInterruptedImport_DetectsAndCleansBakFiles(t *testing.T) {
	s := newTestStore(t)
	if s.CheckInterruptedImport() {
		t.Fatal("expected no interrupted import initially")
	}
	if err := os.WriteFile(s.path(profileFile)+".bak", []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !s.CheckInterruptedImport() {
		t.Error("expected interrupted import to be detected")
	}
	if _, err := os.Stat(s.path(profileFile) + ".bak"); err == nil {
		t.Error("expected .bak file to be cleaned up")
	}
}

func makeTestExport() ExportData {
	return ExportData{
		ExportVersion:  ExportVersion,
		ExportedAt:     time.Now(),
		Config:         config.Default(),
		Profile:        DefaultProfileData(),
		KeyStats:       DefaultKeyStatsData(),
		RankedKeyStats: DefaultKeyStatsData(),
		DrillHistory:   DefaultDrillHistoryData(),
	}
}

func TestValidateExport_RejectsMissingRequiredField(t *testing.T) {
	export := makeTestExport()
	if err := ValidateExport(export); err != nil {
		t.Fatalf("valid export should pass: %v", err)
	}
	schema, err := compiledExportSchema()
	if err != nil {
		t.Fatalf("compiling export schema: %v", err)
	}
	if err := schema.Validate(map[string]any{}); err == nil {
		t.Error("expected a document missing every required field to be rejected")
	}
}
