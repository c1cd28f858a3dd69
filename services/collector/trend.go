package collector

import "capturelink-go/x/mathx"

type Trend int8

const (
	TrendNone    Trend = 0
	TrendRising  Trend = 1
	TrendFalling Trend = -1
)

func (t Trend) String() string {
	switch t {
	case TrendRising:
		return "rising"
	case TrendFalling:
		return "falling"
	default:
		return "none"
	}
}

func direction(prev, cur int) Trend {
	switch {
	case cur > prev:
		return TrendRising
	case cur < prev:
		return TrendFalling
	default:
		return TrendNone
	}
}

// TrendDetector reports a slider gesture once the value has moved at least
// Threshold in one direction. A direction change restarts the window from
// the last two values.
type TrendDetector struct {
	Threshold int
	hist      []int
}

func NewTrendDetector(threshold int) *TrendDetector {
	return &TrendDetector{Threshold: threshold, hist: make([]int, 0, 16)}
}

func (d *TrendDetector) Observe(v int) Trend {
	d.hist = append(d.hist, v)
	n := len(d.hist)
	if n < 2 {
		return TrendNone
	}
	cur := direction(d.hist[n-2], d.hist[n-1])
	if n >= 3 {
		prev := direction(d.hist[n-3], d.hist[n-2])
		if prev != TrendNone && cur != prev {
			d.hist = append(d.hist[:0], d.hist[n-2:]...)
			return TrendNone
		}
	}
	if mathx.AbsDiff(d.hist[n-1], d.hist[0]) < d.Threshold {
		return TrendNone
	}
	d.hist = d.hist[:0]
	return cur
}

func (d *TrendDetector) Reset() { d.hist = d.hist[:0] }
