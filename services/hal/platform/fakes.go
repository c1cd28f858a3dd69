package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/types"
)

// ----------------------------- GPIO ------------------------------------------

// FakePin is a GPIOPin whose level is driven by tests or the host runner.
type FakePin struct {
	number int
	level  atomic.Bool
	pull   atomic.Uint32
}

func NewFakePin(n int, level bool) *FakePin {
	p := &FakePin{number: n}
	p.level.Store(level)
	return p
}

func (p *FakePin) ConfigureInput(pull halcore.Pull) error {
	p.pull.Store(uint32(pull))
	return nil
}

func (p *FakePin) Pull() halcore.Pull { return halcore.Pull(p.pull.Load()) }
func (p *FakePin) Set(level bool)     { p.level.Store(level) }
func (p *FakePin) Get() bool          { return p.level.Load() }
func (p *FakePin) Number() int        { return p.number }

// ----------------------------- PWM -------------------------------------------

// FakePWM records every duty written to it.
type FakePWM struct {
	number int

	// ConfigureErr, when set, is returned by Configure.
	ConfigureErr error

	mu      sync.Mutex
	freq    uint64
	top     uint16
	duty    uint16
	history []uint16
}

func NewFakePWM(n int) *FakePWM { return &FakePWM{number: n} }

func (p *FakePWM) Configure(freqHz uint64, top uint16) error {
	if p.ConfigureErr != nil {
		return p.ConfigureErr
	}
	p.mu.Lock()
	p.freq, p.top = freqHz, top
	p.mu.Unlock()
	return nil
}

func (p *FakePWM) Set(duty uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if duty > p.top {
		duty = p.top
	}
	p.duty = duty
	p.history = append(p.history, duty)
}

func (p *FakePWM) Number() int { return p.number }

func (p *FakePWM) Duty() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duty
}

func (p *FakePWM) Top() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.top
}

func (p *FakePWM) Freq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freq
}

// History returns a copy of every duty set so far.
func (p *FakePWM) History() []uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint16(nil), p.history...)
}

// ----------------------------- Audio -----------------------------------------

// SynthSampler completes reads from a goroutine after Delay, filling the
// buffer with a deterministic sawtooth.
type SynthSampler struct {
	Delay time.Duration
	// StartErr, when set, is returned by ReadAsync without starting.
	StartErr error
	// Hang leaves reads pending until Abort.
	Hang bool

	mu      sync.Mutex
	pending bool
	gen     uint32
	reads   atomic.Uint32
	aborts  atomic.Uint32
}

func (s *SynthSampler) ReadAsync(dst []byte, done func()) error {
	if s.StartErr != nil {
		return s.StartErr
	}
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return errcode.Busy
	}
	s.pending = true
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.reads.Add(1)

	if s.Hang {
		return nil
	}
	go func() {
		if s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		s.mu.Lock()
		live := s.pending && s.gen == gen
		s.mu.Unlock()
		if !live {
			return
		}
		for i := range dst {
			dst[i] = byte(i)
		}
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
		done()
	}()
	return nil
}

func (s *SynthSampler) Abort() error {
	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()
	s.aborts.Add(1)
	return nil
}

func (s *SynthSampler) Reads() uint32  { return s.reads.Load() }
func (s *SynthSampler) Aborts() uint32 { return s.aborts.Load() }

// ----------------------------- Touch -----------------------------------------

// FakeTouch is a scripted TouchSensor. With AutoComplete the end-of-scan
// callback fires inside ScanAll; otherwise tests call Complete.
type FakeTouch struct {
	AutoComplete bool

	mu    sync.Mutex
	frame types.TouchFrame
	err   error
	eos   func()

	busy          atomic.Bool
	scans         atomic.Uint32
	processes     atomic.Uint32
	processedBusy atomic.Uint32
}

func (f *FakeTouch) SetFrame(fr types.TouchFrame) {
	f.mu.Lock()
	f.frame = fr
	f.mu.Unlock()
}

func (f *FakeTouch) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *FakeTouch) SetEndOfScan(fn func()) {
	f.mu.Lock()
	f.eos = fn
	f.mu.Unlock()
}

func (f *FakeTouch) ScanAll() error {
	if !f.busy.CompareAndSwap(false, true) {
		return errcode.Busy
	}
	f.scans.Add(1)
	if f.AutoComplete {
		f.Complete()
	}
	return nil
}

// Complete ends the current scan and fires the end-of-scan callback.
func (f *FakeTouch) Complete() {
	f.busy.Store(false)
	f.mu.Lock()
	eos := f.eos
	f.mu.Unlock()
	if eos != nil {
		eos()
	}
}

// SetBusy forces the busy state without a scan.
func (f *FakeTouch) SetBusy(b bool) { f.busy.Store(b) }

func (f *FakeTouch) IsBusy() bool { return f.busy.Load() }

func (f *FakeTouch) Process() (types.TouchFrame, error) {
	if f.busy.Load() {
		f.processedBusy.Add(1)
		return types.TouchFrame{}, errcode.Busy
	}
	f.processes.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame, f.err
}

func (f *FakeTouch) Scans() uint32         { return f.scans.Load() }
func (f *FakeTouch) Processes() uint32     { return f.processes.Load() }
func (f *FakeTouch) ProcessedBusy() uint32 { return f.processedBusy.Load() }

var (
	_ halcore.GPIOPin     = (*FakePin)(nil)
	_ halcore.Sampler     = (*SynthSampler)(nil)
	_ halcore.TouchSensor = (*FakeTouch)(nil)
)
