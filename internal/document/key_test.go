package document

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNextKeyFormat(t *testing.T) {
	g := NewKeyGen()
	fixed := time.UnixMilli(1700000000000)
	g.now = func() time.Time { return fixed }

	got := g.Next("Meeting Notes")
	want := fmt.Sprintf("audio/%d_Meeting_Notes.mp3", fixed.UnixMilli())
	if got != want {
		t.Errorf("Next() = %q, want %q", got, want)
	}
}

func TestNextKeyDistinctSameTick(t *testing.T) {
	g := NewKeyGen()
	fixed := time.UnixMilli(1700000000000)
	g.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		k := g.Next("same name")
		if seen[k] {
			t.Fatalf("duplicate key %q on iteration %d", k, i)
		}
		seen[k] = true
	}
}

func TestNextKeyConcurrent(t *testing.T) {
	g := NewKeyGen()
	const n = 50
	keys := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() { keys <- g.Next("x") }()
	}
	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		k := <-keys
		if seen[k] {
			t.Fatalf("duplicate key %q", k)
		}
		seen[k] = true
	}
}

func TestSanitizeName(t *testing.T) {
	for _, tt := range []struct{ input, want string }{
		{"Meeting Notes", "Meeting_Notes"},
		{"  trimmed  ", "trimmed"},
		{"a/b\\c", "abc"},
		{"demo.v2_final-1", "demo.v2_final-1"},
		{"///", "untitled"},
		{"", "untitled"},
	} {
		if got := sanitizeName(tt.input); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNextKeyPrefix(t *testing.T) {
	g := NewKeyGen()
	k := g.Next("anything")
	if !strings.HasPrefix(k, "audio/") || !strings.HasSuffix(k, ".mp3") {
		t.Errorf("key %q must be audio/{ts}_{name}.mp3", k)
	}
}
