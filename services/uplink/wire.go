package uplink

import (
	"bytes"

	"capturelink-go/types"
	"capturelink-go/x/conv"
)

// Bulk framing markers. Each travels as its own datagram.
const (
	StartMarker = "aaaa"
	EndMarker   = "flag"

	DefaultChunkSize = 1024
)

// AppendToken appends the wire token for cmd, e.g. "C200".
func AppendToken(dst []byte, cmd types.Command) []byte {
	dst = append(dst, types.CommandTag)
	return conv.AppendInt(dst, int64(cmd.Code()))
}

// ParseToken decodes "<tag><decimal>". ok is false for anything else,
// including the bulk markers.
func ParseToken(p []byte) (tag byte, value int, ok bool) {
	if len(p) < 2 || isMarker(p) {
		return 0, 0, false
	}
	tag = p[0]
	if (tag < 'A' || tag > 'Z') && (tag < 'a' || tag > 'z') {
		return 0, 0, false
	}
	for _, c := range p[1:] {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
		value = value*10 + int(c-'0')
		if value > 1<<20 {
			return 0, 0, false
		}
	}
	return tag, value, true
}

// Decode maps a parsed token back to a command.
func Decode(tag byte, value int) (types.Command, bool) {
	if tag != types.CommandTag {
		return types.Command{}, false
	}
	switch value {
	case types.CodeButtonOn:
		return types.Command{Kind: types.ButtonOn}, true
	case types.CodeButtonOff:
		return types.Command{Kind: types.ButtonOff}, true
	}
	if value >= 0 && value <= 100 {
		return types.Command{Kind: types.SliderPercent, Value: uint8(value)}, true
	}
	return types.Command{}, false
}

func isMarker(p []byte) bool {
	return bytes.Equal(p, []byte(StartMarker)) || bytes.Equal(p, []byte(EndMarker))
}

// IsStart and IsEnd classify received datagrams.
func IsStart(p []byte) bool { return bytes.Equal(p, []byte(StartMarker)) }
func IsEnd(p []byte) bool   { return bytes.Equal(p, []byte(EndMarker)) }
