package normalize

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Repairer undoes one specific double-encoding; ok=false when it does not apply
type Repairer interface {
	Name() string
	Repair(s string) (string, bool)
}

// charmapRepair reverses "UTF-8 bytes decoded as <charmap>": encode back with the
// charmap (strict, any unmappable rune aborts) and accept the bytes only if they are valid UTF-8
type charmapRepair struct {
	name string
	cm   *charmap.Charmap
}

var (
	// Latin1 reverses UTF-8 read as ISO-8859-1
	Latin1 Repairer = charmapRepair{name: "latin1", cm: charmap.ISO8859_1}
	// Windows1252 reverses UTF-8 read as cp1252
	Windows1252 Repairer = charmapRepair{name: "cp1252", cm: charmap.Windows1252}
)

func (c charmapRepair) Name() string { return c.name }

func (c charmapRepair) Repair(s string) (string, bool) {
	b, err := c.cm.NewEncoder().Bytes([]byte(s))
	if err != nil || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// cp1252 printable specials in 0x80-0x9F, as decoded runes
var cp1252Specials = map[rune]struct{}{
	'€': {}, '‚': {}, 'ƒ': {}, '„': {}, '…': {}, '†': {}, '‡': {}, 'ˆ': {}, '‰': {},
	'Š': {}, '‹': {}, 'Œ': {}, 'Ž': {}, '‘': {}, '’': {}, '“': {}, '”': {}, '•': {},
	'–': {}, '—': {}, '˜': {}, '™': {}, 'š': {}, '›': {}, 'œ': {}, 'ž': {}, 'Ÿ': {},
}

// Score counts runes that usually mean mojibake: Latin-1 supplement and C1 (U+0080-U+00FF),
// cp1252 specials and U+FFFD. Clean CJK or ASCII text scores 0
func Score(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r == utf8Replacement:
			n++
		case r >= 0x80 && r <= 0xFF:
			n++
		default:
			if _, ok := cp1252Specials[r]; ok {
				n++
			}
		}
	}
	return n
}
