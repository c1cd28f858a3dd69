package collector

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
)

const wavHeaderLen = 44

// EncodeWAV wraps little-endian PCM in a canonical RIFF/WAVE header. A
// trailing partial sample is dropped.
func EncodeWAV(pcm []byte, a AudioConfig) []byte {
	block := a.Channels * a.BitsPerSample / 8
	if block > 0 {
		pcm = pcm[:len(pcm)-len(pcm)%block]
	}
	dataSize := len(pcm)

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderLen+dataSize))
	le := binary.LittleEndian

	buf.WriteString("RIFF")
	buf.Write(le.AppendUint32(nil, uint32(36+dataSize)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	buf.Write(le.AppendUint32(nil, 16))
	buf.Write(le.AppendUint16(nil, 1)) // PCM
	buf.Write(le.AppendUint16(nil, uint16(a.Channels)))
	buf.Write(le.AppendUint32(nil, uint32(a.SampleRate)))
	buf.Write(le.AppendUint32(nil, uint32(a.SampleRate*block)))
	buf.Write(le.AppendUint16(nil, uint16(block)))
	buf.Write(le.AppendUint16(nil, uint16(a.BitsPerSample)))

	buf.WriteString("data")
	buf.Write(le.AppendUint32(nil, uint32(dataSize)))
	buf.Write(pcm)
	return buf.Bytes()
}

// SaveWAV writes pcm as dir/name and returns the absolute path.
func SaveWAV(dir, name string, pcm []byte, a AudioConfig) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, EncodeWAV(pcm, a), 0o644); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}
