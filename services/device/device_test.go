package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"capturelink-go/services/config"
	"capturelink-go/services/hal/platform"
	"capturelink-go/services/storage"
	"capturelink-go/services/uplink"
	"capturelink-go/services/uplink/uplinktest"
	"capturelink-go/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	mu    sync.Mutex
	dir   string
	sizes map[string]int
}

func (m *memSink) Append(name string, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes[name] += len(data)
	return len(data), nil
}

func (m *memSink) setDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = dir
}

func (m *memSink) snapshot() (string, map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.sizes))
	for k, v := range m.sizes {
		out[k] = v
	}
	return m.dir, out
}

func (m *memSink) files() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sizes)
}

func TestRun_PressCapturesSendsAndStores(t *testing.T) {
	old := config.EmbeddedConfigLookup
	config.EmbeddedConfigLookup = func(string) ([]byte, bool) {
		return []byte(`{
			"capture": {"arm_delay_ms": 0},
			"uplink": {"peer": "collector:5005"},
			"storage": {"enabled": true, "dir": "caps"}
		}`), true
	}
	t.Cleanup(func() { config.EmbeddedConfigLookup = old })

	pin := platform.NewFakePin(0, false)
	p := &platform.Platform{
		Board:   platform.HostSim,
		Button:  pin,
		Sampler: &platform.SynthSampler{},
		Touch:   &platform.FakeTouch{AutoComplete: true},
	}
	var recs []*uplinktest.Recorder
	sink := &memSink{sizes: map[string]int{}}

	var mu sync.Mutex
	var peer string
	dials := 0
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Platform: p,
			Dial: func(st uplink.Settings) (uplink.Transport, error) {
				mu.Lock()
				peer = st.Peer
				dials++
				r := &uplinktest.Recorder{}
				recs = append(recs, r)
				mu.Unlock()
				return r, nil
			},
			OpenSink: func(dir string) (storage.Sink, error) {
				sink.setDir(dir)
				return sink, nil
			},
		})
	}()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Let boot attach the uplink before pressing.
	time.Sleep(50 * time.Millisecond)
	pin.Set(true)
	time.Sleep(200 * time.Millisecond)
	pin.Set(false)

	require.Eventually(t, func() bool { return sink.files() == 1 }, 3*time.Second, 5*time.Millisecond)
	// framed returns the datagrams of whichever transport carried the capture.
	framed := func() []string {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range recs {
			if s := r.Strings(); len(s) > 0 {
				return s
			}
		}
		return nil
	}
	require.Eventually(t, func() bool {
		s := framed()
		return len(s) > 2 && s[len(s)-1] == uplink.EndMarker
	}, 3*time.Second, 5*time.Millisecond)

	s := framed()
	assert.Equal(t, uplink.StartMarker, s[0])
	mu.Lock()
	assert.Equal(t, "collector:5005", peer)
	assert.Equal(t, 2, dials, "captures and commands use separate transports")
	mu.Unlock()
	dir, sizes := sink.snapshot()
	assert.Equal(t, "caps", dir)
	for _, n := range sizes {
		assert.Equal(t, types.CaptureBytes, n)
	}
}

func TestRun_TouchButtonLightsLEDAndSendsCommand(t *testing.T) {
	old := config.EmbeddedConfigLookup
	config.EmbeddedConfigLookup = func(string) ([]byte, bool) {
		return []byte(`{
			"uplink": {"peer": "collector:5005"},
			"led": {"ramp_ms": 0}
		}`), true
	}
	t.Cleanup(func() { config.EmbeddedConfigLookup = old })

	touch := &platform.FakeTouch{AutoComplete: true}
	lamp := platform.NewFakePWM(platform.HostSim.LEDPin)
	p := &platform.Platform{
		Board:   platform.HostSim,
		Button:  platform.NewFakePin(0, false),
		Sampler: &platform.SynthSampler{Hang: true},
		Touch:   touch,
		LED:     lamp,
	}
	var mu sync.Mutex
	var recs []*uplinktest.Recorder
	sent := func() []string {
		mu.Lock()
		defer mu.Unlock()
		var out []string
		for _, r := range recs {
			out = append(out, r.Strings()...)
		}
		return out
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Platform:   p,
			ConfigWait: 20 * time.Millisecond,
			Dial: func(uplink.Settings) (uplink.Transport, error) {
				mu.Lock()
				defer mu.Unlock()
				r := &uplinktest.Recorder{}
				recs = append(recs, r)
				return r, nil
			},
		})
	}()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	require.Eventually(t, func() bool { return lamp.Top() != 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	touch.SetFrame(types.TouchFrame{Buttons: [2]bool{true, false}})

	require.Eventually(t, func() bool { return lamp.Duty() == lamp.Top() }, 3*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		for _, s := range sent() {
			if s == "C200" {
				return true
			}
		}
		return false
	}, 3*time.Second, 5*time.Millisecond)

	touch.SetFrame(types.TouchFrame{Buttons: [2]bool{false, true}})
	require.Eventually(t, func() bool { return lamp.Duty() == 0 }, 3*time.Second, 5*time.Millisecond)
}
