// Command collector receives captures and touch commands from devices.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"capturelink-go/services/collector"
	"capturelink-go/x/logx"
)

func main() {
	var (
		configFlag = flag.String("config", "collector.yaml", "Configuration file path")
		listenFlag = flag.String("listen", "", "UDP listen address override (host:port)")
		logFile    = flag.String("log-file", "", "Also write JSON logs to this file")
	)
	flag.Parse()

	log := logx.New(logx.Console(), "collector")

	cfg, err := collector.Load(*configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *listenFlag != "" {
		cfg.Listen = *listenFlag
	}

	w := logx.Console()
	if *logFile != "" {
		fw, closer, err := logx.WithFile(*logFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", *logFile).Msg("Failed to open log file")
		}
		defer closer.Close()
		w = fw
	}
	log = logx.New(w, "collector").Level(logx.ParseLevel(cfg.LogLevel))

	var arch *collector.Archive
	if cfg.ArchiveDir != "" {
		arch, err = collector.OpenArchive(cfg.ArchiveDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open archive")
		}
		defer arch.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := collector.NewServer(*cfg, log, arch)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error().Err(err).Msg("Collector stopped")
		return
	}
	st := srv.Stats()
	log.Info().
		Uint64("captures", st.Captures).
		Uint64("commands", st.Commands).
		Uint64("trends", st.Trends).
		Uint64("invalid", st.Invalid).
		Msg("Shutting down")
}
