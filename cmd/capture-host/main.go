// Command capture-host runs the device pipelines on a workstation with a
// simulated board. Each line on stdin drives the fake hardware:
//
//	<enter>   press and release the trigger button
//	b [n]     touch button n, default 0 (0 sends start and lights the LED,
//	          1 sends stop and darkens it)
//	s <pct>   touch the slider at pct percent
//	r         release every touch widget
//	q         quit
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"capturelink-go/services/device"
	"capturelink-go/services/hal/platform"
	"capturelink-go/services/hal/touchpad"
	"capturelink-go/services/storage"
	"capturelink-go/services/uplink"
	"capturelink-go/types"
	"capturelink-go/x/logx"

	"github.com/rs/zerolog"
)

// pressHold is long enough to pass the debouncer.
const pressHold = 150 * time.Millisecond

func main() {
	var (
		configFlag = flag.String("config", "capture-host.yaml", "Configuration file path")
		peerFlag   = flag.String("peer", "", "Collector address override (host:port)")
	)
	flag.Parse()

	log := logx.New(logx.Console(), "capture-host")
	cfg, err := Load(*configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *peerFlag != "" {
		cfg.Peer = *peerFlag
	}

	var w io.Writer = logx.Console()
	if cfg.LogFile != "" {
		fw, closer, err := logx.WithFile(cfg.LogFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open log file")
		}
		defer closer.Close()
		w = fw
	}
	level := logx.ParseLevel(cfg.LogLevel)
	log = logx.New(w, "capture-host").Level(level)

	p, err := platform.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build platform")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go drive(ctx, stop, os.Stdin, p, log)

	err = device.Run(ctx, device.Options{
		Platform: p,
		DeviceID: cfg.Device,
		Log:      w,
		Level:    level,
		Dial: func(st uplink.Settings) (uplink.Transport, error) {
			if cfg.Peer != "" {
				st.Peer = cfg.Peer
			}
			return uplink.DialSettings(st)
		},
		OpenSink: func(dir string) (storage.Sink, error) {
			if cfg.StorageDir != "" {
				dir = cfg.StorageDir
			}
			return storage.Open(dir)
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Device stopped")
		return
	}
	log.Info().Msg("Shutting down")
}

// drive maps stdin lines onto the fake button and touch sensor.
func drive(ctx context.Context, quit func(), r io.Reader, p *platform.Platform, log zerolog.Logger) {
	btn, _ := p.Button.(*platform.FakePin)
	touch, _ := p.Touch.(*platform.FakeTouch)
	res := touchpad.DefaultLayout().Resolution

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(sc.Text())
		cmd := ""
		if len(fields) > 0 {
			cmd = fields[0]
		}
		switch {
		case cmd == "" && btn != nil:
			btn.Set(true)
			time.Sleep(pressHold)
			btn.Set(false)
			log.Info().Msg("button pressed")
		case cmd == "b" && touch != nil:
			var n int
			var err error
			if len(fields) == 2 {
				n, err = strconv.Atoi(fields[1])
			}
			if err != nil || n < 0 || n > 1 {
				log.Warn().Str("arg", fields[1]).Msg("button must be 0 or 1")
				continue
			}
			var f types.TouchFrame
			f.Buttons[n] = true
			touch.SetFrame(f)
		case cmd == "s" && touch != nil && len(fields) == 2:
			pct, err := strconv.Atoi(fields[1])
			if err != nil || pct < 0 || pct > 100 {
				log.Warn().Str("arg", fields[1]).Msg("slider percent must be 0..100")
				continue
			}
			touch.SetFrame(types.TouchFrame{SliderTouched: true, SliderPos: uint16(pct * int(res) / 100)})
		case cmd == "r" && touch != nil:
			touch.SetFrame(types.TouchFrame{})
		case cmd == "q":
			quit()
			return
		default:
			log.Warn().Str("line", sc.Text()).Msg("unknown command")
		}
	}
}
