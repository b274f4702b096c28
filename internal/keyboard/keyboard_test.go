package keyboard

import (
	"testing"

	"github.com/haricheung/keytutor/internal/skilltree"
)

func TestModels_RowLengthsMatchAcrossLayouts(t *testing.T) {
	wantLens := [4]int{13, 13, 11, 10}
	for _, m := range Models() {
		for i, keys := range m.Rows {
			if len(keys) != wantLens[i] {
				t.Errorf("%s row %d: got %d keys, want %d", m.Name, i, len(keys), wantLens[i])
			}
		}
	}
}

func TestFromName_ResolvesKnownLayoutsCaseInsensitively(t *testing.T) {
	for _, name := range []string{"qwerty", "QWERTY", "Dvorak", "colemak"} {
		if _, ok := FromName(name); !ok {
			t.Errorf("expected %q to resolve", name)
		}
	}
	if _, ok := FromName("workman"); ok {
		t.Error("expected unknown layout to fail to resolve")
	}
}

func TestQWERTY_CoversEverySkillTreeCharacter(t *testing.T) {
	m, ok := FromName("qwerty")
	if !ok {
		t.Fatal("qwerty model not found")
	}
	for _, id := range skilltree.AllBranches() {
		def := skilltree.Definition(id)
		for _, level := range def.Levels {
			for _, ch := range level.Keys {
				switch ch {
				case skilltree.Space, skilltree.Backspace, skilltree.Tab, skilltree.Enter:
					continue
				}
				if _, _, _, ok := m.PhysicalKeyFor(ch); !ok {
					t.Errorf("branch %s level %q: qwerty has no key for %q", def.Name, level.Name, ch)
				}
			}
		}
	}
}

func TestPhysicalKeyFor_BaseAndShiftedRoundTrip(t *testing.T) {
	m, _ := FromName("qwerty")
	key, row, col, ok := m.PhysicalKeyFor('a')
	if !ok || key.Base != 'a' {
		t.Fatalf("got %+v row=%d col=%d ok=%v, want base 'a'", key, row, col, ok)
	}
	shiftedKey, _, _, ok := m.PhysicalKeyFor('A')
	if !ok || shiftedKey.Shifted != 'A' || shiftedKey.Base != key.Base {
		t.Errorf("shifted lookup for 'A' should resolve to the same physical key as 'a', got %+v", shiftedKey)
	}
	if !m.NeedsShift('A') {
		t.Error("expected 'A' to require shift")
	}
	if m.NeedsShift('a') {
		t.Error("expected 'a' to not require shift")
	}
}

func TestFingerForChar_HomeRowIsIndexOrMiddleOrRingOrPinky(t *testing.T) {
	m, _ := FromName("qwerty")
	cases := map[rune]Finger{
		'a': LeftPinky,
		's': LeftRing,
		'd': LeftMiddle,
		'f': LeftIndex,
		'j': RightIndex,
		'k': RightMiddle,
		'l': RightRing,
		';': RightPinky,
	}
	for ch, want := range cases {
		fa, ok := m.FingerForChar(ch)
		if !ok {
			t.Errorf("no finger assignment for %q", ch)
			continue
		}
		if fa.Finger != want {
			t.Errorf("%q: got finger %v, want %v", ch, fa.Finger, want)
		}
	}
}

func TestFingerForChar_UnknownCharacterFails(t *testing.T) {
	m, _ := FromName("qwerty")
	if _, ok := m.FingerForChar('€'); ok {
		t.Error("expected no finger assignment for a character absent from the layout")
	}
}

func TestKeyDisplayName_SpellsOutSentinels(t *testing.T) {
	cases := map[rune]string{
		Space:     "Space",
		Backspace: "Backspace",
		Tab:       "Tab",
		Enter:     "Enter",
		'x':       "x",
	}
	for ch, want := range cases {
		if got := KeyDisplayName(ch); got != want {
			t.Errorf("KeyDisplayName(%q) = %q, want %q", ch, got, want)
		}
	}
}

func TestLegendRow_JoinsRowLabelsWithSpaces(t *testing.T) {
	m, _ := FromName("qwerty")
	row := LegendRow(m, 1)
	want := "a s d f g h j k l ; '"
	if row != want {
		t.Errorf("got %q, want %q", row, want)
	}
}

func TestPadLabel_PadsToRequestedWidth(t *testing.T) {
	out := PadLabel("a", 4)
	if len(out) != 4 {
		t.Errorf("got %q (len %d), want padded to 4", out, len(out))
	}
	if got := PadLabel("already-long", 2); got != "already-long" {
		t.Errorf("expected no truncation, got %q", got)
	}
}
