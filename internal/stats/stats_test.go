package stats

import "testing"

func TestUpdateCorrect_FirstSampleSetsDirectly(t *testing.T) {
	s := NewStore()
	s.UpdateCorrect('a', 250)
	ks, ok := s.Get('a')
	if !ok {
		t.Fatalf("expected key stat for 'a'")
	}
	if ks.FilteredTimeMs != 250 {
		t.Errorf("got FilteredTimeMs=%v, want 250", ks.FilteredTimeMs)
	}
	if ks.BestTimeMs != 250 {
		t.Errorf("got BestTimeMs=%v, want 250", ks.BestTimeMs)
	}
	if ks.SampleCount != 1 || ks.TotalCount != 1 {
		t.Errorf("got SampleCount=%d TotalCount=%d, want 1/1", ks.SampleCount, ks.TotalCount)
	}
}

func TestUpdateCorrect_EMASmoothing(t *testing.T) {
	s := NewStore()
	s.UpdateCorrect('a', 200)
	s.UpdateCorrect('a', 100)
	ks, _ := s.Get('a')
	want := 0.1*100 + 0.9*200
	if ks.FilteredTimeMs != want {
		t.Errorf("got %v, want %v", ks.FilteredTimeMs, want)
	}
}

func TestUpdateCorrect_BestTimeNeverIncreases(t *testing.T) {
	s := NewStore()
	s.UpdateCorrect('a', 100)
	s.UpdateCorrect('a', 500)
	ks, _ := s.Get('a')
	if ks.BestTimeMs > 100 {
		t.Errorf("best time regressed: %v", ks.BestTimeMs)
	}
}

func TestConfidence_MissingKeyIsZero(t *testing.T) {
	s := NewStore()
	if got := s.Confidence('z'); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestConfidence_MeetsTargetWhenAtOrAboveCPM(t *testing.T) {
	s := NewStore()
	s.SetTargetCPM(175)
	targetTimeMs := 60000.0 / 175.0
	s.UpdateCorrect('a', targetTimeMs)
	if got := s.Confidence('a'); got < 1.0 {
		t.Errorf("got confidence %v, want >= 1.0 at target speed", got)
	}
}

func TestSmoothedErrorRate_MissingKeyIsSeed(t *testing.T) {
	s := NewStore()
	if got := s.SmoothedErrorRate('q'); got != 0.5 {
		t.Errorf("got %v, want 0.5", got)
	}
}

func TestErrorRateEMA_MonotoneRecoveryOnCorrectStreak(t *testing.T) {
	s := NewStore()
	s.UpdateError('a')
	for i := 0; i < 200; i++ {
		s.UpdateCorrect('a', 200)
	}
	if got := s.SmoothedErrorRate('a'); got >= 0.001 {
		t.Errorf("error rate did not decay below epsilon: %v", got)
	}
}

func TestErrorRateEMA_MonotoneRiseOnErrorStreak(t *testing.T) {
	s := NewStore()
	s.UpdateCorrect('a', 200)
	for i := 0; i < 200; i++ {
		s.UpdateError('a')
	}
	if got := s.SmoothedErrorRate('a'); got <= 0.999 {
		t.Errorf("error rate did not rise above 1-epsilon: %v", got)
	}
}

func TestRecentTimes_CappedAt30(t *testing.T) {
	s := NewStore()
	for i := 0; i < 50; i++ {
		s.UpdateCorrect('a', float64(100+i))
	}
	ks, _ := s.Get('a')
	if len(ks.RecentTimes) != RecentTimesCap {
		t.Errorf("got %d recent times, want %d", len(ks.RecentTimes), RecentTimesCap)
	}
}

func TestResetErrorCounters_LeavesTimingUntouched(t *testing.T) {
	s := NewStore()
	s.UpdateCorrect('a', 200)
	s.UpdateError('a')
	s.ResetErrorCounters()
	ks, _ := s.Get('a')
	if ks.ErrorCount != 0 || ks.TotalCount != 0 {
		t.Errorf("counters not reset: %+v", ks)
	}
	if ks.ErrorRateEMA != 0.5 {
		t.Errorf("error rate EMA not reseeded: %v", ks.ErrorRateEMA)
	}
	if ks.FilteredTimeMs != 200 {
		t.Errorf("timing field touched by reset: %v", ks.FilteredTimeMs)
	}
}
