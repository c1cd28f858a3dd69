package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("socket closed")
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", Busy, Busy},
		{"wrapped E", &E{C: SendFailed, Op: "uplink.send", Err: cause}, SendFailed},
		{"fmt wrapped code", fmt.Errorf("start: %w", NotInitialized), NotInitialized},
		{"fmt wrapped E", fmt.Errorf("loop: %w", &E{C: HardwareFault}), HardwareFault},
		{"outermost wins", Wrap(SendFailed, "uplink.start", NotInitialized), SendFailed},
		{"foreign", cause, Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Errorf("%s: Of() = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestEError(t *testing.T) {
	e := &E{C: SendFailed, Op: "uplink.body", Msg: "sent 2048 bytes", Err: errors.New("enobufs")}
	if got, want := e.Error(), "uplink.body: send_failed: sent 2048 bytes: enobufs"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(e, e.Err) {
		t.Fatal("Unwrap does not expose cause")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(HardwareFault, "op", nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
	if !Is(Wrap(HardwareFault, "op", errors.New("x")), HardwareFault) {
		t.Fatal("Wrap lost code")
	}
}
