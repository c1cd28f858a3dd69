package touch

import (
	"bytes"
	"strings"
	"sync"
	"time"
)

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// safeBuffer is a log sink shared with the loop goroutine.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(b.buf.String(), s)
}
