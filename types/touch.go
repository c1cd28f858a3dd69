package types

// ------------------------
// Touch
// ------------------------

// TouchFrame is one processed scan of the touch widgets.
type TouchFrame struct {
	Buttons       [2]bool
	SliderTouched bool
	SliderPos     uint16 // 0..resolution
}

type TouchEventKind uint8

const (
	ButtonPressed TouchEventKind = iota + 1
	ButtonReleased
	SliderMoved
)

func (k TouchEventKind) String() string {
	switch k {
	case ButtonPressed:
		return "button_pressed"
	case ButtonReleased:
		return "button_released"
	case SliderMoved:
		return "slider_moved"
	default:
		return "unknown"
	}
}

// TouchEvent is a local (non-network) event derived from one scan cycle.
type TouchEvent struct {
	Kind     TouchEventKind `json:"kind"`
	Button   uint8          `json:"button,omitempty"`
	Position uint16         `json:"position,omitempty"`
	Percent  uint8          `json:"percent,omitempty"`
}

// ------------------------
// Uplink commands
// ------------------------

type CommandKind uint8

const (
	ButtonOn CommandKind = iota + 1
	ButtonOff
	SliderPercent
)

// Wire codes carried in the command token.
const (
	CodeButtonOn  = 200
	CodeButtonOff = 300
)

// CommandTag is the leading byte of every command token.
const CommandTag = 'C'

// Command is a discrete event bound for the collector. Value is only
// meaningful for SliderPercent.
type Command struct {
	Kind  CommandKind
	Value uint8
}

// Code returns the integer carried on the wire.
func (c Command) Code() int {
	switch c.Kind {
	case ButtonOn:
		return CodeButtonOn
	case ButtonOff:
		return CodeButtonOff
	default:
		return int(c.Value)
	}
}

// ------------------------
// LED
// ------------------------

// LEDState is the retained lamp state: whether it is lit, the brightness it
// shows when lit, and the duty level being driven toward.
type LEDState struct {
	On      bool   `json:"on"`
	Percent uint8  `json:"percent"`
	Level   uint16 `json:"level"`
}
