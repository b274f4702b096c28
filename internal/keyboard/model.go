package keyboard

import "strings"

// PhysicalKey is one physical key's unshifted and shifted characters.
type PhysicalKey struct {
	Base    rune
	Shifted rune
}

// KeyboardModel is a named physical layout: a number row plus three letter
// rows, each a slice of PhysicalKey in left-to-right order.
type KeyboardModel struct {
	Name string
	Rows [4][]PhysicalKey
}

func keyRow(bases, shifteds string) []PhysicalKey {
	b := []rune(bases)
	s := []rune(shifteds)
	keys := make([]PhysicalKey, len(b))
	for i := range b {
		keys[i] = PhysicalKey{Base: b[i], Shifted: s[i]}
	}
	return keys
}

func qwerty() KeyboardModel {
	return KeyboardModel{
		Name: "qwerty",
		Rows: [4][]PhysicalKey{
			keyRow("`1234567890-=", "~!@#$%^&*()_+"),
			keyRow("qwertyuiop[]\\", "QWERTYUIOP{}|"),
			keyRow("asdfghjkl;'", `ASDFGHJKL:"`),
			keyRow("zxcvbnm,./", "ZXCVBNM<>?"),
		},
	}
}

func dvorak() KeyboardModel {
	return KeyboardModel{
		Name: "dvorak",
		Rows: [4][]PhysicalKey{
			keyRow("`1234567890[]", "~!@#$%^&*(){}"),
			keyRow(`',.pyfgcrl/=\`, `"<>PYFGCRL?+|`),
			keyRow("aoeuidhtns-", "AOEUIDHTNS_"),
			keyRow(";qjkxbmwvz", ":QJKXBMWVZ"),
		},
	}
}

func colemak() KeyboardModel {
	return KeyboardModel{
		Name: "colemak",
		Rows: [4][]PhysicalKey{
			keyRow("`1234567890-=", "~!@#$%^&*()_+"),
			keyRow("qwfpgjluy;[]\\", "QWFPGJLUY:{}|"),
			keyRow(`arstdhneio'`, `ARSTDHNEIO"`),
			keyRow("zxcvbkm,./", "ZXCVBKM<>?"),
		},
	}
}

// Models lists every built-in layout, qwerty first as the default.
func Models() []KeyboardModel {
	return []KeyboardModel{qwerty(), dvorak(), colemak()}
}

// FromName resolves a layout by name, case-insensitively.
func FromName(name string) (KeyboardModel, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range Models() {
		if m.Name == name {
			return m, true
		}
	}
	return KeyboardModel{}, false
}

// LetterRows returns rows 1-3 (the three letter rows), excluding the number row.
func (m KeyboardModel) LetterRows() [3][]PhysicalKey {
	return [3][]PhysicalKey{m.Rows[1], m.Rows[2], m.Rows[3]}
}

// findKeyPosition locates ch among either the base or shifted characters of
// m's rows, returning its row and column.
func (m KeyboardModel) findKeyPosition(ch rune) (row, col int, ok bool) {
	for r, keys := range m.Rows {
		for c, k := range keys {
			if k.Base == ch || k.Shifted == ch {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// PhysicalKeyFor returns the physical key that produces ch under m, along
// with its row and column.
func (m KeyboardModel) PhysicalKeyFor(ch rune) (key PhysicalKey, row, col int, ok bool) {
	r, c, found := m.findKeyPosition(ch)
	if !found {
		return PhysicalKey{}, 0, 0, false
	}
	return m.Rows[r][c], r, c, true
}

// NeedsShift reports whether producing ch on m requires holding shift.
func (m KeyboardModel) NeedsShift(ch rune) bool {
	key, _, _, ok := m.PhysicalKeyFor(ch)
	return ok && key.Shifted == ch && key.Base != ch
}

// FingerForChar returns the conventional finger assignment for typing ch on m.
func (m KeyboardModel) FingerForChar(ch rune) (FingerAssignment, bool) {
	_, r, c, ok := m.PhysicalKeyFor(ch)
	if !ok {
		return FingerAssignment{}, false
	}
	finger, ok := fingerForPosition(r, c)
	if !ok {
		return FingerAssignment{}, false
	}
	return FingerAssignment{Hand: handOf(finger), Finger: finger}, true
}
