//go:build rp2040 || rp2350

package uplink

import "capturelink-go/errcode"

// UDPTransport is unavailable on boards without a network stack.
type UDPTransport struct{}

func DialUDP(string) (*UDPTransport, error) { return nil, errcode.Unsupported }

func (*UDPTransport) Send([]byte) (int, error) { return 0, errcode.NotInitialized }

func (*UDPTransport) Close() error { return nil }
