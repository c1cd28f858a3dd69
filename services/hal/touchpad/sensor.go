package touchpad

import (
	"sync"
	"sync/atomic"

	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/types"
)

// Layout maps electrodes onto widgets: two buttons then a linear slider.
type Layout struct {
	Button0, Button1 uint8
	SliderFirst      uint8
	SliderCount      uint8
	Resolution       uint16 // slider positions span 0..Resolution
}

// DefaultLayout uses electrodes 0 and 1 as buttons and 2..6 as the slider.
func DefaultLayout() Layout {
	return Layout{Button0: 0, Button1: 1, SliderFirst: 2, SliderCount: 5, Resolution: 300}
}

// Frame decodes a status mask. The slider position is the centroid of the
// touched slider electrodes.
func (l Layout) Frame(mask uint16) types.TouchFrame {
	var f types.TouchFrame
	f.Buttons[0] = mask&(1<<l.Button0) != 0
	f.Buttons[1] = mask&(1<<l.Button1) != 0

	var sum, n uint32
	for i := uint8(0); i < l.SliderCount; i++ {
		if mask&(1<<(l.SliderFirst+i)) != 0 {
			sum += uint32(i)
			n++
		}
	}
	if n == 0 {
		return f
	}
	f.SliderTouched = true
	if l.SliderCount > 1 {
		f.SliderPos = uint16(sum * uint32(l.Resolution) / (n * uint32(l.SliderCount-1)))
	}
	return f
}

// Sensor adapts an ElectrodeReader to the scan/process contract. A scan is
// one status read; the result is latched until the next scan.
type Sensor struct {
	r      halcore.ElectrodeReader
	layout Layout

	busy atomic.Bool

	mu      sync.Mutex
	latched uint16
	err     error
	eos     func()
}

func NewSensor(r halcore.ElectrodeReader, layout Layout) *Sensor {
	return &Sensor{r: r, layout: layout}
}

var _ halcore.TouchSensor = (*Sensor)(nil)

func (s *Sensor) SetEndOfScan(fn func()) {
	s.mu.Lock()
	s.eos = fn
	s.mu.Unlock()
}

func (s *Sensor) IsBusy() bool { return s.busy.Load() }

// ScanAll reads the electrodes and fires the end-of-scan callback.
func (s *Sensor) ScanAll() error {
	if !s.busy.CompareAndSwap(false, true) {
		return errcode.Busy
	}
	mask, err := s.r.Touched()

	s.mu.Lock()
	s.latched, s.err = mask, err
	eos := s.eos
	s.mu.Unlock()

	s.busy.Store(false)
	if eos != nil {
		eos()
	}
	return nil
}

// Process returns the frame of the last completed scan.
func (s *Sensor) Process() (types.TouchFrame, error) {
	if s.busy.Load() {
		return types.TouchFrame{}, errcode.Busy
	}
	s.mu.Lock()
	mask, err := s.latched, s.err
	s.mu.Unlock()
	if err != nil {
		return types.TouchFrame{}, err
	}
	return s.layout.Frame(mask), nil
}
