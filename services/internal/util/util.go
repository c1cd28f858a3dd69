// Package util holds small helpers shared by the services.
package util

import (
	"encoding/json"
	"time"
)

func ResetTimer(t *time.Timer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if !t.Stop() {
		DrainTimer(t)
	}
	t.Reset(d)
}

func DrainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}

func DecodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}

// Overlay decodes src over a copy of def, so absent fields keep defaults.
func Overlay[T any](src any, def T) (T, error) {
	out := def
	if src == nil {
		return out, nil
	}
	if err := DecodeJSON(src, &out); err != nil {
		return def, err
	}
	return out, nil
}

// Millis converts a config millisecond count; negatives become zero.
func Millis(ms int) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
