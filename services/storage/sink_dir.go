//go:build !rp2040 && !rp2350

package storage

import (
	"os"
	"path/filepath"
)

// DirSink appends to files in one directory.
type DirSink struct {
	Dir string
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirSink{Dir: dir}, nil
}

func (d *DirSink) Append(name string, data []byte) (int, error) {
	f, err := os.OpenFile(filepath.Join(d.Dir, filepath.Base(name)), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Open returns the platform sink rooted at dir.
func Open(dir string) (Sink, error) {
	return NewDirSink(dir)
}
