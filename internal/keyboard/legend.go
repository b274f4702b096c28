package keyboard

import "strings"

// LegendRow renders one letter row of m as a space-separated line of key
// labels, using the base (unshifted) character of each key. Row must be 0-2
// (top, home, bottom), matching KeyboardModel.LetterRows.
func LegendRow(m KeyboardModel, letterRow int) string {
	rows := m.LetterRows()
	if letterRow < 0 || letterRow >= len(rows) {
		return ""
	}
	labels := make([]string, len(rows[letterRow]))
	for i, k := range rows[letterRow] {
		labels[i] = KeyShortLabel(k.Base)
	}
	return strings.Join(labels, " ")
}

// Legend renders all three letter rows of m, one per line, each indented to
// roughly approximate the physical stagger between rows on a real keyboard.
func Legend(m KeyboardModel) string {
	indents := [3]int{0, 1, 2}
	var sb strings.Builder
	for i := 0; i < 3; i++ {
		sb.WriteString(spaces(indents[i]))
		sb.WriteString(LegendRow(m, i))
		if i < 2 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
