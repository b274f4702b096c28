package main

import (
	"os"
	"time"

	"golang.org/x/term"
)

// Sentinel bytes the raw keystroke reader watches for. Grounded on the
// keyCtrlC/keyBackspace/keyDelete/keyEscape constants of the gophertype
// typing-session reference.
const (
	byteCtrlC     = 3
	byteBackspace = 8
	byteTab       = 9
	byteEnter     = 10
	byteReturn    = 13
	byteEscape    = 27
	byteDelete    = 127
)

// rawMode tracks stdin's original terminal state so drill input can switch
// freely between raw (character-by-character) and cooked (line-editing,
// needed by the readline-backed options prompt) mode.
type rawMode struct {
	fd    int
	saved *term.State
}

// enableRawMode puts stdin into raw mode for character-by-character capture.
func enableRawMode() (*rawMode, error) {
	fd := int(os.Stdin.Fd())
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &rawMode{fd: fd, saved: saved}, nil
}

// pause restores stdin to its original cooked state, e.g. before handing
// input over to a line editor.
func (r *rawMode) pause() { _ = term.Restore(r.fd, r.saved) }

// resume re-enters raw mode after a pause.
func (r *rawMode) resume() { _, _ = term.MakeRaw(r.fd) }

// startKeyReader launches a goroutine reading stdin one byte at a time and
// forwarding each to the returned channel. The goroutine runs for the
// program's lifetime; it exits silently once stdin closes.
func startKeyReader() <-chan byte {
	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return
			}
			keys <- buf[0]
		}
	}()
	return keys
}

func isInterrupt(b byte) bool { return b == byteCtrlC }
func isBackspaceByte(b byte) bool {
	return b == byteBackspace || b == byteDelete
}
func isEnterByte(b byte) bool { return b == byteEnter || b == byteReturn }

// drainEscapeSequence consumes the remaining bytes of an arrow-key/function-key
// escape sequence so they don't leak into the drill as mistyped characters.
func drainEscapeSequence(keys <-chan byte) {
	const (
		timeout = 10 * time.Millisecond
		maxLen  = 10
	)
	deadline := time.After(timeout)
	for i := 0; i < maxLen; i++ {
		select {
		case <-keys:
		case <-deadline:
			return
		}
	}
}

// drain discards buffered keystrokes for the given window, used to swallow
// stray input right after a drill ends before the next prompt reads a choice.
func drain(keys <-chan byte, window time.Duration) {
	deadline := time.After(window)
	for {
		select {
		case <-keys:
		case <-deadline:
			return
		}
	}
}

// readMenuChoice blocks until one of the given single-byte choices (lowercase
// compared) arrives, ignoring everything else including escape sequences.
func readMenuChoice(keys <-chan byte, choices string) byte {
	for {
		b := <-keys
		if b == byteEscape {
			drainEscapeSequence(keys)
			continue
		}
		lower := b
		if lower >= 'A' && lower <= 'Z' {
			lower += 'a' - 'A'
		}
		for i := 0; i < len(choices); i++ {
			if choices[i] == lower {
				return lower
			}
		}
	}
}
