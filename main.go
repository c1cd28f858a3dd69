package main

import (
	"context"
	"time"

	"capturelink-go/services/device"
	"capturelink-go/services/hal/platform"
	"capturelink-go/services/storage"
	"capturelink-go/x/logx"

	"github.com/rs/zerolog"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	log := logx.Default("main")
	log.Info().Msg("boot")

	p, err := platform.Default()
	if err != nil {
		log.Error().Err(err).Msg("platform init failed")
		halt()
	}

	err = device.Run(context.Background(), device.Options{
		Platform: p,
		Log:      logx.Console(),
		Level:    zerolog.InfoLevel,
		OpenSink: storage.Open,
	})
	log.Error().Err(err).Msg("capture loop exited")
	halt()
}

// halt parks main so the console stays readable.
func halt() {
	select {}
}
