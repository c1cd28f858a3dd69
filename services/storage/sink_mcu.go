//go:build rp2040 || rp2350

package storage

import "capturelink-go/errcode"

// Open fails on boards without a filesystem.
func Open(string) (Sink, error) { return nil, errcode.Unsupported }
