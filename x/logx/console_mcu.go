//go:build rp2040 || rp2350

package logx

import (
	"io"
	"machine"
	"sync"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

const consoleBaud = 115200

var consoleOnce sync.Once

// Console is the debug UART. Lines are JSON; no colour codes on the wire.
func Console() io.Writer {
	consoleOnce.Do(func() {
		_ = uartx.UART0.Configure(uartx.UARTConfig{
			BaudRate: consoleBaud,
			TX:       machine.UART0_TX_PIN,
			RX:       machine.UART0_RX_PIN,
		})
	})
	return uartx.UART0
}
