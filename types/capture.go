package types

import "time"

// ------------------------
// Capture
// ------------------------

// Audio format produced by the capture peripheral.
const (
	SampleRateHz   = 16000
	BytesPerSample = 2
	CaptureSeconds = 7

	// CaptureBytes is the full capture buffer size (224000).
	CaptureBytes = SampleRateHz * BytesPerSample * CaptureSeconds
)

// CaptureReady is published once per completed capture. Data aliases the
// capture buffer; listeners must call Release when done reading so the next
// capture may start.
type CaptureReady struct {
	Seq     uint32
	Data    []byte
	At      time.Time
	Release func()
}

// ------------------------
// Stats
// ------------------------

// PipelineStats is published retained on stats/<service>.
type PipelineStats struct {
	Captures  uint32 `json:"captures"`
	Sent      uint32 `json:"sent"`
	Failed    uint32 `json:"failed"`
	Timeouts  uint32 `json:"timeouts,omitempty"`
	Events    uint32 `json:"events,omitempty"`
	ISRDrops  uint32 `json:"isr_drops"`
	BytesSent uint64 `json:"bytes_sent"`
}
