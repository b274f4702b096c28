package coordinator

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/haricheung/keytutor/internal/session"
	"github.com/haricheung/keytutor/internal/skilltree"
)

func typeDrill(target string) (*session.Drill, []session.KeystrokeEvent) {
	d := session.NewDrill(target)
	var events []session.KeystrokeEvent
	base := time.Now()
	for i, ch := range []rune(target) {
		ev, _ := session.ProcessChar(d, ch)
		ev.Timestamp = base.Add(time.Duration(i*80) * time.Millisecond)
		events = append(events, ev)
	}
	return d, events
}

func newTestCoordinator() *Coordinator {
	return New(175.0, rand.New(rand.NewPCG(1, 2)))
}

func TestFinishDrill_UpdatesOverallAndRankedStats(t *testing.T) {
	c := newTestCoordinator()
	c.Mode = Adaptive
	d, events := typeDrill("abc")
	result := c.FinishDrill(d, events)

	if result.Mode != "adaptive" || !result.Ranked {
		t.Fatalf("got %+v, want ranked adaptive result", result)
	}
	if _, ok := c.KeyStats.Get('a'); !ok {
		t.Error("expected overall stats updated for 'a'")
	}
	if _, ok := c.RankedKeyStats.Get('a'); !ok {
		t.Error("expected ranked stats updated for 'a'")
	}
	if len(c.DrillHistory) != 1 {
		t.Errorf("got history len %d, want 1", len(c.DrillHistory))
	}
	if c.Profile.TotalDrills != 1 {
		t.Errorf("got total drills %d, want 1", c.Profile.TotalDrills)
	}
}

func TestFinishDrill_CodeModeDoesNotAdvanceSkillTree(t *testing.T) {
	c := newTestCoordinator()
	c.Mode = Code
	d, events := typeDrill("abc")
	c.FinishDrill(d, events)
	if _, ok := c.RankedKeyStats.Get('a'); ok {
		t.Error("code-mode drill should not touch ranked stats")
	}
}

func TestFinishPartialDrill_NeverRanked(t *testing.T) {
	c := newTestCoordinator()
	c.Mode = Adaptive
	d, events := typeDrill("abc")
	result := c.FinishPartialDrill(d, events[:2])
	if result.Ranked || !result.Partial {
		t.Errorf("got %+v, want ranked=false partial=true", result)
	}
	if c.Profile.TotalDrills != 0 {
		t.Errorf("partial drill should not increment total drills, got %d", c.Profile.TotalDrills)
	}
}

func TestComputeScore_RewardsSpeedComplexityLength_PenalizesErrors(t *testing.T) {
	base := session.Result{CPM: 200, Incorrect: 0, TotalChars: 50}
	withErrors := session.Result{CPM: 200, Incorrect: 5, TotalChars: 50}
	if ComputeScore(withErrors, 1.0) >= ComputeScore(base, 1.0) {
		t.Error("errors should reduce score")
	}

	lowComplexity := ComputeScore(base, 0.1)
	highComplexity := ComputeScore(base, 1.0)
	if lowComplexity >= highComplexity {
		t.Error("higher complexity should increase score")
	}
}

func TestLevelFromScore_StartsAtOne(t *testing.T) {
	if LevelFromScore(0) != 1 {
		t.Errorf("got %d, want 1", LevelFromScore(0))
	}
	if LevelFromScore(10000) <= LevelFromScore(100) {
		t.Error("level should increase with score")
	}
}

func TestStartBranchDrill_ClearsHistoryOnScopeChange(t *testing.T) {
	c := newTestCoordinator()
	c.SkillTree.Progress.Branches[skilltree.Capitals] = skilltree.Progress{Status: skilltree.Available}

	cleared := false
	c.StartBranchDrill(skilltree.Capitals, func() { cleared = true })

	if !cleared {
		t.Error("expected word history clear on branch switch")
	}
	if c.Mode != Adaptive {
		t.Errorf("got mode %v, want Adaptive", c.Mode)
	}
	if c.SkillTree.BranchStatus(skilltree.Capitals) != skilltree.InProgress {
		t.Errorf("got status %v, want InProgress", c.SkillTree.BranchStatus(skilltree.Capitals))
	}
}

func TestStartBranchDrill_SameScopeDoesNotClearHistory(t *testing.T) {
	c := newTestCoordinator()
	c.Mode = Adaptive
	c.Scope = skilltree.BranchScope(skilltree.Numbers)
	c.SkillTree.Progress.Branches[skilltree.Numbers] = skilltree.Progress{Status: skilltree.Available}

	cleared := false
	c.StartBranchDrill(skilltree.Numbers, func() { cleared = true })
	if cleared {
		t.Error("same scope should not clear word history")
	}
}

func TestPostDrillInputLock_ExpiresAfterDuration(t *testing.T) {
	c := newTestCoordinator()
	c.ArmPostDrillInputLock()
	if c.PostDrillInputLockRemaining() <= 0 {
		t.Error("expected nonzero remaining lock time right after arming")
	}
	c.ClearPostDrillInputLock()
	if c.PostDrillInputLockRemaining() != 0 {
		t.Error("expected zero remaining after clearing")
	}
}

func TestRebuildFromHistory_ReproducesTotalScore(t *testing.T) {
	c := newTestCoordinator()
	c.Mode = Adaptive
	d, events := typeDrill("etaoi")
	c.FinishDrill(d, events)
	d2, events2 := typeDrill("shrdl")
	c.FinishDrill(d2, events2)

	scoreBefore := c.Profile.TotalScore
	drillsBefore := c.Profile.TotalDrills

	c.RebuildFromHistory()

	if c.Profile.TotalDrills != drillsBefore {
		t.Errorf("got total drills %d, want %d", c.Profile.TotalDrills, drillsBefore)
	}
	if diff := c.Profile.TotalScore - scoreBefore; diff > 0.01 || diff < -0.01 {
		t.Errorf("got total score %v, want ~%v", c.Profile.TotalScore, scoreBefore)
	}
}

func TestShouldAutoContinue_OnlyAdaptiveWithEmptyMilestoneQueue(t *testing.T) {
	c := newTestCoordinator()
	c.Mode = Adaptive
	if !c.ShouldAutoContinue() {
		t.Error("expected auto-continue with empty milestone queue in adaptive mode")
	}
	c.MilestoneQueue = append(c.MilestoneQueue, Milestone{})
	if c.ShouldAutoContinue() {
		t.Error("expected no auto-continue with a pending milestone")
	}
	c.MilestoneQueue = nil
	c.Mode = Code
	if c.ShouldAutoContinue() {
		t.Error("expected no auto-continue outside adaptive mode")
	}
}

func TestUpdateTransitionBuffer_DropsBackspaceEntries(t *testing.T) {
	c := newTestCoordinator()
	c.UpdateTransitionBuffer([]session.KeyTime{
		{Key: 'a', TimeMs: 100},
		{Key: '\x08', TimeMs: 9999},
		{Key: 'b', TimeMs: 120},
	})
	if len(c.TransitionBuffer) != 2 {
		t.Errorf("got buffer len %d, want 2 (backspace dropped)", len(c.TransitionBuffer))
	}
}
