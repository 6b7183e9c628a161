package styles

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPaletteFill(t *testing.T) {
	tests := []struct {
		depth int
		want  string
	}{
		{1, "#1f4e79"},
		{2, "#2e74b5"},
		{6, "#e2f0f8"},
		{7, "#1f4e79"},
		{13, "#1f4e79"},
		{0, "#e2f0f8"},
		{-5, "#1f4e79"},
	}
	for _, tt := range tests {
		if got := DefaultPalette.Fill(tt.depth); got != tt.want {
			t.Errorf("Fill(%d) = %s, want %s", tt.depth, got, tt.want)
		}
	}

	if got := (Palette{}).Fill(3); got != "#fff" {
		t.Errorf("empty palette Fill = %s, want #fff", got)
	}
}

func TestTruncateLabel(t *testing.T) {
	forty := strings.Repeat("x", 40)
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "Heer", 28, "Heer"},
		{"ten chars", "Luftwaffe1", 28, "Luftwaffe1"},
		{"exactly max", strings.Repeat("a", 28), 28, strings.Repeat("a", 28)},
		{"one over", strings.Repeat("a", 29), 28, strings.Repeat("a", 25) + "..."},
		{"forty", forty, 28, forty[:25] + "..."},
		{"multibyte", strings.Repeat("ü", 30), 28, strings.Repeat("ü", 25) + "..."},
		{"disabled", forty, 0, forty},
		{"tiny max", "abcdef", 2, "ab"},
		{"max one", "ünits", 1, "ü"},
		{"max three", "abcdef", 3, "abc"},
		{"max four", "abcdef", 4, "a..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateLabel(tt.in, tt.max); got != tt.want {
				t.Errorf("TruncateLabel(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncateLabelNeverExceedsLimit(t *testing.T) {
	name := "Generalkommando Süd"
	for limit := 1; limit <= 30; limit++ {
		got := TruncateLabel(name, limit)
		if n := utf8.RuneCountInString(got); n > limit {
			t.Errorf("TruncateLabel(%q, %d) = %q has %d runes", name, limit, got, n)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	got := EscapeXML(`Stab & "Führung" <HQ>`)
	want := "Stab &amp; &#34;Führung&#34; &lt;HQ&gt;"
	if got != want {
		t.Errorf("EscapeXML = %q, want %q", got, want)
	}
}
