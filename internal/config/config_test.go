package config

import "testing"

func TestDefault_HasSaneBounds(t *testing.T) {
	c := Default()
	if c.TargetWPM < 10 || c.TargetWPM > 200 {
		t.Errorf("default target_wpm %d out of bounds", c.TargetWPM)
	}
	if c.WordCount < 5 || c.WordCount > 100 {
		t.Errorf("default word_count %d out of bounds", c.WordCount)
	}
}

func TestTargetCPM_IsFiveTimesWPM(t *testing.T) {
	c := Config{TargetWPM: 40}
	if got := c.TargetCPM(); got != 200.0 {
		t.Errorf("got target_cpm %v, want 200", got)
	}
}

func TestClamp_ClampsOutOfRangeValues(t *testing.T) {
	c := Config{TargetWPM: 5, WordCount: 1000}
	c.Clamp()
	if c.TargetWPM != 10 {
		t.Errorf("got target_wpm %d, want clamped to 10", c.TargetWPM)
	}
	if c.WordCount != 100 {
		t.Errorf("got word_count %d, want clamped to 100", c.WordCount)
	}

	c2 := Config{TargetWPM: 999, WordCount: 0}
	c2.Clamp()
	if c2.TargetWPM != 200 {
		t.Errorf("got target_wpm %d, want clamped to 200", c2.TargetWPM)
	}
	if c2.WordCount != 5 {
		t.Errorf("got word_count %d, want clamped to 5", c2.WordCount)
	}
}

func TestClamp_LeavesInRangeValuesAlone(t *testing.T) {
	c := Config{TargetWPM: 60, WordCount: 30}
	c.Clamp()
	if c.TargetWPM != 60 || c.WordCount != 30 {
		t.Errorf("clamp altered in-range values: %+v", c)
	}
}
