package document

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// KeyGen derives blob keys of the form audio/{timestamp}_{name}.mp3.
// Timestamps are forced strictly increasing per process, so two documents
// created with the same name in the same millisecond still get distinct keys.
type KeyGen struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewKeyGen() *KeyGen {
	return &KeyGen{now: time.Now}
}

// Next returns a fresh blob key for the given document name.
func (g *KeyGen) Next(documentName string) string {
	g.mu.Lock()
	ts := g.now().UnixMilli()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	g.mu.Unlock()

	return fmt.Sprintf("audio/%d_%s.mp3", ts, sanitizeName(documentName))
}

// sanitizeName keeps the document name readable in the key while stripping
// anything that would break an object path. Whitespace becomes underscores.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
