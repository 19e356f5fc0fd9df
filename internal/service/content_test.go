package service

import (
	"strings"
	"testing"
)

func TestCleanContent(t *testing.T) {
	input := `<p>Hello <a href="https://pixelfed.example/p/1" class="u-url" onclick="alert(1)">world</a>!<br><img src="https://pixelfed.example/x.jpg"><script>alert(2)</script></p>`

	got := CleanContent(input)

	for _, substr := range []string{`href="https://pixelfed.example/p/1"`, `class="u-url"`, "<br", "Hello", "world"} {
		if !strings.Contains(got, substr) {
			t.Errorf("expected %q in output, got %q", substr, got)
		}
	}
	for _, substr := range []string{"<p>", "<img", "<script", "onclick", "alert"} {
		if strings.Contains(got, substr) {
			t.Errorf("did not expect %q in output, got %q", substr, got)
		}
	}
}

func TestTrimWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"truncates", "one two three four", 2, "one two…"},
		{"short enough", "one two three", 10, "one two three"},
		{"strips markup", "<p>a <strong>b</strong> c</p>", 5, "a b c"},
		{"unescapes entities", "caf&eacute; time", 5, "café time"},
		{"empty", "", 10, ""},
		{"whitespace only", "  \n\t ", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimWords(tt.input, tt.n); got != tt.want {
				t.Errorf("TrimWords(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

func TestDenylisted(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		denylist string
		want     bool
	}{
		{"empty denylist", "<p>anything</p>", "", false},
		{"case-insensitive match", "<p>Huge SPOILER alert</p>", "spoiler", true},
		{"one term per line", "<p>nsfw content</p>", "spoiler\nnsfw", true},
		{"no match", "<p>harmless</p>", "spoiler\nnsfw", false},
		{"blank lines ignored", "<p>harmless</p>", "\n\n  \n", false},
		{"matches raw markup", `<p class="filtered">ok</p>`, "filtered", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Denylisted(tt.content, tt.denylist); got != tt.want {
				t.Errorf("Denylisted(%q, %q) = %v, want %v", tt.content, tt.denylist, got, tt.want)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	if got := SplitTags(""); len(got) != 0 {
		t.Errorf("expected no tags, got %v", got)
	}

	got := SplitTags(" cats, dogs ,,birds ")
	want := []string{"cats", "dogs", "birds"}
	if len(got) != len(want) {
		t.Fatalf("SplitTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
