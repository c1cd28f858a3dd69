package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"capturelink-go/bus"
	"capturelink-go/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
	short bool
}

func (m *memSink) Append(name string, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.short {
		data = data[:len(data)/2]
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = append(m.files[name], data...)
	return len(data), nil
}

func (m *memSink) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.files {
		out = append(out, k)
	}
	return out
}

func publishCapture(conn *bus.Connection, data []byte) *atomic.Int32 {
	var released atomic.Int32
	conn.Publish(conn.NewMessage(types.TopicCaptureReady(), types.CaptureReady{
		Seq:     1,
		Data:    data,
		At:      time.Now(),
		Release: func() { released.Add(1) },
	}, false))
	return &released
}

func TestStore_WritesRandomNameAndReleases(t *testing.T) {
	b := bus.NewBus(4)
	sink := &memSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	New(Config{}, sink).Start(ctx, b.NewConnection("storage"))

	released := publishCapture(b.NewConnection("capture"), []byte("pcm-bytes"))
	require.Eventually(t, func() bool { return released.Load() == 1 }, time.Second, time.Millisecond)

	names := sink.names()
	require.Len(t, names, 1)
	assert.Regexp(t, `^[A-Z0-9]{8}\.bin$`, names[0])
}

func TestStore_FailureStillReleases(t *testing.T) {
	b := bus.NewBus(4)
	stats := b.NewConnection("obs").Subscribe(types.TopicStats("storage"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	New(Config{}, &memSink{err: errors.New("disk full")}).Start(ctx, b.NewConnection("storage"))

	released := publishCapture(b.NewConnection("capture"), []byte{1, 2, 3})
	require.Eventually(t, func() bool { return released.Load() == 1 }, time.Second, time.Millisecond)

	select {
	case m := <-stats.Channel():
		assert.Equal(t, uint32(1), m.Payload.(types.PipelineStats).Failed)
	case <-time.After(time.Second):
		t.Fatal("no stats")
	}
}

func TestStore_ShortWriteIsFailure(t *testing.T) {
	s := New(Config{NewName: func(int) string { return "FIXED123" }}, &memSink{short: true})
	var rel int
	s.store(types.CaptureReady{Data: make([]byte, 10), Release: func() { rel++ }})
	assert.Equal(t, uint32(1), s.stats.Failed)
	assert.Equal(t, 1, rel)
}

func TestDirSink_AppendsToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "captures")
	sink, err := NewDirSink(dir)
	require.NoError(t, err)

	s := New(Config{NewName: func(int) string { return "ABCDEFGH" }}, sink)
	s.store(types.CaptureReady{Data: []byte("one")})
	s.store(types.CaptureReady{Data: []byte("two")})

	got, err := os.ReadFile(filepath.Join(dir, "ABCDEFGH.bin"))
	require.NoError(t, err)
	assert.Equal(t, "onetwo", string(got))
	assert.Equal(t, uint32(2), s.stats.Captures)
}
