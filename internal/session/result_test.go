package session

import (
	"testing"
	"time"
)

func TestFromDrill_FirstEventProducesNoKeyTime(t *testing.T) {
	base := time.Now()
	events := []KeystrokeEvent{
		{Expected: 'a', Actual: 'a', Timestamp: base, Correct: true},
		{Expected: 'b', Actual: 'b', Timestamp: base.Add(100 * time.Millisecond), Correct: true},
		{Expected: 'c', Actual: 'c', Timestamp: base.Add(250 * time.Millisecond), Correct: true},
	}
	d := NewDrill("abc")
	result := FromDrill(d, events, "practice", false, false)

	if len(result.PerKeyTimes) != 2 {
		t.Fatalf("got %d per-key times, want 2 (dropping the first event)", len(result.PerKeyTimes))
	}
	if result.PerKeyTimes[0].Key != 'b' || result.PerKeyTimes[0].TimeMs != 100 {
		t.Errorf("got %+v, want key=b time=100", result.PerKeyTimes[0])
	}
	if result.PerKeyTimes[1].Key != 'c' || result.PerKeyTimes[1].TimeMs != 150 {
		t.Errorf("got %+v, want key=c time=150", result.PerKeyTimes[1])
	}
}

func TestFromDrill_SingleEventProducesNoKeyTimes(t *testing.T) {
	events := []KeystrokeEvent{{Expected: 'a', Actual: 'a', Timestamp: time.Now(), Correct: true}}
	d := NewDrill("a")
	result := FromDrill(d, events, "practice", false, false)
	if len(result.PerKeyTimes) != 0 {
		t.Errorf("got %d per-key times, want 0 with a single event", len(result.PerKeyTimes))
	}
}

func TestFromDrill_CarriesModeRankedPartial(t *testing.T) {
	d := NewDrill("a")
	result := FromDrill(d, nil, "ranked", true, false)
	if result.Mode != "ranked" || !result.Ranked || result.Partial {
		t.Errorf("got %+v, want mode=ranked ranked=true partial=false", result)
	}
}

func TestFromDrill_CompletionPercentReflectsAbandonedProgress(t *testing.T) {
	d := NewDrill("abcdefgh")
	ProcessChar(d, 'a')
	ProcessChar(d, 'b')
	ProcessChar(d, 'c')
	ProcessChar(d, 'd')

	result := FromDrill(d, nil, "practice", false, true)
	if !result.Partial {
		t.Fatal("expected Partial to be true for an abandoned drill")
	}
	if want := 50.0; result.CompletionPercent != want {
		t.Errorf("got completion percent %v, want %v for 4/8 characters typed", result.CompletionPercent, want)
	}
}

func TestFromDrill_CompletionPercentIsFullOnFinishedDrill(t *testing.T) {
	d := NewDrill("ab")
	ProcessChar(d, 'a')
	ProcessChar(d, 'b')

	result := FromDrill(d, nil, "practice", false, false)
	if result.CompletionPercent != 100.0 {
		t.Errorf("got completion percent %v, want 100 for a fully typed drill", result.CompletionPercent)
	}
}
