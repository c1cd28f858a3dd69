package heartbeat

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"capturelink-go/bus"
	"capturelink-go/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Split(strings.TrimSpace(l.b.String()), "\n")
}

func lastBeat(buf *lockedBuffer) map[string]any {
	lines := buf.lines()
	for i := len(lines) - 1; i >= 0; i-- {
		var m map[string]any
		if json.Unmarshal([]byte(lines[i]), &m) == nil && m["message"] == "heartbeat" {
			return m
		}
	}
	return nil
}

func TestHeartbeat_SumsRetainedStats(t *testing.T) {
	b := bus.NewBus(8)
	pub := b.NewConnection("pub")
	pub.Publish(pub.NewMessage(types.TopicStats("capture"), types.PipelineStats{Captures: 3, Sent: 2, Failed: 1}, true))
	pub.Publish(pub.NewMessage(types.TopicStats("touch"), types.PipelineStats{Sent: 5, ISRDrops: 4}, true))

	buf := &lockedBuffer{}
	s := New(zerolog.New(buf))
	s.Interval = 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx, b.NewConnection("heartbeat")))

	require.Eventually(t, func() bool {
		m := lastBeat(buf)
		return m != nil && m["sent"] == float64(7)
	}, time.Second, 5*time.Millisecond)

	m := lastBeat(buf)
	assert.Equal(t, float64(3), m["captures"])
	assert.Equal(t, float64(1), m["failed"])
	assert.Equal(t, float64(4), m["isr_drops"])
	touch, ok := m["touch"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), touch["sent"])
}

func TestHeartbeat_IntervalFromConfig(t *testing.T) {
	b := bus.NewBus(8)
	buf := &lockedBuffer{}
	s := New(zerolog.New(buf))
	s.Interval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx, b.NewConnection("heartbeat")))

	cfg := b.NewConnection("config")
	cfg.Publish(cfg.NewMessage(types.TopicConfig("heartbeat"), map[string]any{"interval": 0.01}, true))

	require.Eventually(t, func() bool { return lastBeat(buf) != nil }, time.Second, 5*time.Millisecond)
}
