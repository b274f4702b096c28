package main

import (
	"testing"
	"time"
)

func TestIsInterrupt(t *testing.T) {
	if !isInterrupt(byteCtrlC) {
		t.Error("expected ctrl-c byte to be an interrupt")
	}
	if isInterrupt('a') {
		t.Error("did not expect 'a' to be an interrupt")
	}
}

func TestIsBackspaceByte(t *testing.T) {
	for _, b := range []byte{byteBackspace, byteDelete} {
		if !isBackspaceByte(b) {
			t.Errorf("expected %d to be a backspace byte", b)
		}
	}
	if isBackspaceByte('x') {
		t.Error("did not expect 'x' to be a backspace byte")
	}
}

func TestIsEnterByte(t *testing.T) {
	for _, b := range []byte{byteEnter, byteReturn} {
		if !isEnterByte(b) {
			t.Errorf("expected %d to be an enter byte", b)
		}
	}
	if isEnterByte(' ') {
		t.Error("did not expect space to be an enter byte")
	}
}

func TestDrainEscapeSequence_StopsAtDeadlineWithNoInput(t *testing.T) {
	keys := make(chan byte)
	done := make(chan struct{})
	go func() {
		drainEscapeSequence(keys)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("drainEscapeSequence did not return after its timeout")
	}
}

func TestDrainEscapeSequence_ConsumesBufferedBytes(t *testing.T) {
	keys := make(chan byte, 3)
	keys <- '['
	keys <- 'A'
	drainEscapeSequence(keys)
	select {
	case b := <-keys:
		t.Errorf("expected escape sequence bytes to be drained, got %d left over", b)
	default:
	}
}

func TestReadMenuChoice_MatchesLowercasedLetter(t *testing.T) {
	keys := make(chan byte, 1)
	keys <- 'P'
	if got := readMenuChoice(keys, "pcaoq"); got != 'p' {
		t.Errorf("expected uppercase P to match lowercase choice, got %q", got)
	}
}

func TestReadMenuChoice_IgnoresUnknownBytesThenMatches(t *testing.T) {
	keys := make(chan byte, 2)
	keys <- 'z'
	keys <- 'q'
	if got := readMenuChoice(keys, "pcaoq"); got != 'q' {
		t.Errorf("expected readMenuChoice to skip unknown byte and return 'q', got %q", got)
	}
}

func TestReadMenuChoice_DrainsEscapeSequenceBeforeMatching(t *testing.T) {
	keys := make(chan byte, 2)
	keys <- byteEscape
	keys <- '['
	go func() {
		time.Sleep(20 * time.Millisecond)
		keys <- 'q'
	}()
	if got := readMenuChoice(keys, "nrq"); got != 'q' {
		t.Errorf("expected readMenuChoice to drain the escape sequence and return 'q', got %q", got)
	}
}

func TestDrain_ReturnsAfterWindowWithNoInput(t *testing.T) {
	keys := make(chan byte)
	done := make(chan struct{})
	go func() {
		drain(keys, 20*time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("drain did not return after its window elapsed")
	}
}
