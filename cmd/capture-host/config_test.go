package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capturelink-go/services/hal/platform"
	"capturelink-go/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndOverlay(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "capture-host.yaml")
	require.NoError(t, os.WriteFile(path, []byte("peer: 10.0.0.9:57345\nstorage_dir: /tmp/caps\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "host", cfg.Device)
	assert.Equal(t, "10.0.0.9:57345", cfg.Peer)
	assert.Equal(t, "/tmp/caps", cfg.StorageDir)
}

func TestDrive_MapsLinesToFakes(t *testing.T) {
	touch := &platform.FakeTouch{}
	p := &platform.Platform{
		Board:  platform.HostSim,
		Button: platform.NewFakePin(0, false),
		Touch:  touch,
	}
	quit := false
	in := strings.NewReader("s 50\nq\n")
	drive(t.Context(), func() { quit = true }, in, p, zerolog.Nop())

	assert.True(t, quit)
	require.NoError(t, touch.ScanAll())
	touch.Complete()
	f, err := touch.Process()
	require.NoError(t, err)
	assert.Equal(t, types.TouchFrame{SliderTouched: true, SliderPos: 150}, f)
}

func TestDrive_SecondButton(t *testing.T) {
	touch := &platform.FakeTouch{}
	p := &platform.Platform{Board: platform.HostSim, Touch: touch}
	drive(t.Context(), func() {}, strings.NewReader("b 1\n"), p, zerolog.Nop())

	require.NoError(t, touch.ScanAll())
	touch.Complete()
	f, err := touch.Process()
	require.NoError(t, err)
	assert.Equal(t, [2]bool{false, true}, f.Buttons)
}
