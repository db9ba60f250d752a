package normalize

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// mojibake returns s as it looks after its UTF-8 bytes were decoded with cm
func mojibake(t *testing.T, cm *charmap.Charmap, s string) string {
	t.Helper()
	out, err := cm.NewDecoder().String(s)
	if err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return out
}

func TestClean_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"empty", "", ""},
		{"identity ascii", "Toyota Camry", "Toyota Camry"},
		{"identity cjk", "台北市", "台北市"},
		{"ideographic space", "豐田　冠美麗", "豐田 冠美麗"},
		{"collapse and trim", "  2.0 \t\t 油電\n\n混合  ", "2.0 油電 混合"},
		{"strip replacement", "新北�市", "新北市"},
		{"strip nul and controls", "白\x00色\x07", "白色"},
		{"strip c1", "銀\u0085色", "銀色"},
		{"invalid bytes dropped", string([]byte{0xff, 'A', 'T', 0x80}), "AT"},
		{"legit latin1 kept", "Citroën C5", "Citroën C5"},
		{"only junk", "�\x00", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Clean(tc.in)
			if got != tc.out {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := Clean(got); again != got {
				t.Fatalf("Clean not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestClean_RepairsLatin1Mojibake(t *testing.T) {
	want := "豐田 台北市"
	broken := mojibake(t, charmap.ISO8859_1, want)
	if broken == want || Score(broken) == 0 {
		t.Fatalf("fixture not corrupted: %q", broken)
	}
	if got := Clean(broken); got != want {
		t.Fatalf("Clean(%q) = %q, want %q", broken, got, want)
	}
}

func TestClean_RepairsWindows1252Mojibake(t *testing.T) {
	// 本 and 田 contain bytes 0x9C and 0x94, which cp1252 maps outside Latin-1
	want := "本田"
	broken := mojibake(t, charmap.Windows1252, want)
	if _, ok := Latin1.Repair(broken); ok {
		t.Fatalf("latin1 should not apply to %q", broken)
	}
	if got := Clean(broken); got != want {
		t.Fatalf("Clean(%q) = %q, want %q", broken, got, want)
	}
}

func TestRepair_KeepsWhenNoImprovement(t *testing.T) {
	c := Default()
	for _, s := range []string{"Citroën", "台北市", "plain", "Ã"} {
		if got, ok := c.Repair(s); ok {
			t.Fatalf("Repair(%q) applied unexpectedly -> %q", s, got)
		}
	}
}

type fixedRepair struct{ out string }

func (f fixedRepair) Name() string                 { return "fixed" }
func (f fixedRepair) Repair(string) (string, bool) { return f.out, true }

func TestRepair_OrderAndScoreGate(t *testing.T) {
	worse := fixedRepair{out: "ÃÃÃÃ"}
	better := fixedRepair{out: "ok"}
	c := NewCleaner(worse, better)

	got, ok := c.Repair("Ã©")
	if !ok || got != "ok" {
		t.Fatalf("Repair = %q,%v want ok,true", got, ok)
	}

	if got := NewCleaner().Clean("Ã©  x"); got != "Ã© x" {
		t.Fatalf("no-repair cleaner = %q", got)
	}
}

func TestScore(t *testing.T) {
	cases := map[string]int{
		"":       0,
		"abc":    0,
		"台北":     0,
		"é":      1,
		"�": 1,
		"œ”":     2,
		"Ã©":     2,
	}
	for in, want := range cases {
		if got := Score(in); got != want {
			t.Fatalf("Score(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSanitize_FastPathReturnsSame(t *testing.T) {
	in := "line1\nline2\ttab"
	if got := Sanitize(in); got != in {
		t.Fatalf("Sanitize changed clean input: %q", got)
	}
}

func TestCollapseSpaces(t *testing.T) {
	in := " \t a \n b　　c \r\n "
	if got := collapseSpaces(in); got != "a b c" {
		t.Fatalf("collapseSpaces(%q) = %q", in, got)
	}
}
