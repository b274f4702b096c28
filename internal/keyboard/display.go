package keyboard

import "github.com/mattn/go-runewidth"

// Sentinel control characters, kept local to this package for the same
// reason skilltree keeps its own copy: avoiding a shared-constants package
// for four runes.
const (
	Space     = ' '
	Backspace = '\x08'
	Tab       = '\t'
	Enter     = '\n'
)

// KeyDisplayName renders ch as a human-readable key name, spelling out the
// sentinel control characters and falling back to the rune itself for
// everything else.
func KeyDisplayName(ch rune) string {
	switch ch {
	case Space:
		return "Space"
	case Backspace:
		return "Backspace"
	case Tab:
		return "Tab"
	case Enter:
		return "Enter"
	default:
		return string(ch)
	}
}

// KeyShortLabel renders ch as a compact legend label: a short mnemonic for
// the sentinels, the rune itself otherwise.
func KeyShortLabel(ch rune) string {
	switch ch {
	case Space:
		return "␣" // open box, the conventional space glyph
	case Backspace:
		return "⌫"
	case Tab:
		return "⇥"
	case Enter:
		return "⏎"
	default:
		return string(ch)
	}
}

// PadLabel right-pads label with spaces to width display columns, measuring
// width the way a terminal renders it (so wide glyphs like the sentinel
// symbols above don't throw off column alignment in a rendered legend).
func PadLabel(label string, width int) string {
	w := runewidth.StringWidth(label)
	if w >= width {
		return label
	}
	return label + spaces(width-w)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
