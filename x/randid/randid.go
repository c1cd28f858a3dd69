// Package randid makes short upper-case alphanumeric identifiers used for
// capture file names.
package randid

import (
	"crypto/rand"
	"io"

	"github.com/google/uuid"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// New returns n characters from [A-Z0-9]. It panics only if the system
// entropy source fails, as uuid.New does.
func New(n int) string {
	s, err := FromReader(rand.Reader, n)
	if err != nil {
		panic(err)
	}
	return s
}

// FromReader draws entropy from r in random-UUID sized blocks.
func FromReader(r io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	out := make([]byte, 0, n)
	for len(out) < n {
		u, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return "", err
		}
		for i, b := range u {
			// version and variant bits are fixed
			if i == 6 || i == 8 {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
