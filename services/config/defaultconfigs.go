package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "capture": {
    "arm_delay_ms": 1000,
    "capture_timeout_ms": 10000,
    "debounce_units": 80
  },
  "touch": {
    "scan_interval_ms": 10,
    "hysteresis": 1,
    "resolution": 300,
    "rate_limit_ms": 50
  },
  "led": {
    "ramp_ms": 150,
    "ramp_steps": 15,
    "min_percent": 2
  },
  "uplink": {
    "peer": ""
  },
  "heartbeat": {
    "interval": 5
  },
  "storage": {
    "enabled": false
  }
}`

const cfgPi = `{
  "capture": {
    "arm_delay_ms": 1000,
    "capture_timeout_ms": 10000,
    "debounce_units": 80
  },
  "touch": {
    "scan_interval_ms": 10,
    "rate_limit_ms": 50
  },
  "led": {
    "ramp_ms": 300,
    "ramp_steps": 30
  },
  "uplink": {
    "peer": "192.168.1.100:57345",
    "write_timeout_ms": 500
  },
  "heartbeat": {
    "interval": 5
  },
  "storage": {
    "enabled": true,
    "dir": "/var/lib/capturelink"
  }
}`

const cfgHost = `{
  "capture": {
    "arm_delay_ms": 1000
  },
  "uplink": {
    "peer": "127.0.0.1:57345"
  },
  "heartbeat": {
    "interval": 10
  },
  "storage": {
    "enabled": true,
    "dir": "captures"
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"pi":   []byte(cfgPi),
	"host": []byte(cfgHost),
}
