package types

import "capturelink-go/bus"

// Topic tokens shared between services.
const (
	TokConfig  = "config"
	TokCapture = "capture"
	TokTouch   = "touch"
	TokStats   = "stats"
	TokReady   = "ready"
	TokEvent   = "event"
	TokLED     = "led"
	TokState   = "state"
)

func TopicCaptureReady() bus.Topic        { return bus.T(TokCapture, TokReady) }
func TopicTouchEvent() bus.Topic          { return bus.T(TokTouch, TokEvent) }
func TopicLEDState() bus.Topic            { return bus.T(TokLED, TokState) }
func TopicStats(service string) bus.Topic { return bus.T(TokStats, service) }
func TopicConfig(key string) bus.Topic    { return bus.T(TokConfig, key) }
