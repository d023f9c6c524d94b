// Package handler provides sample consumers for normalized log messages.
// These are host-side collaborators used by the demo command and tests;
// real host applications supply their own provider.Handler.
package handler

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/thisisjab/logview/entity"
)

// Console writes one line per message to an io.Writer. Writes are
// serialized so concurrent deliveries do not interleave.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) HandleMessage(msg entity.LogMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%6d  %-7s  %s  %-20s  %s\n",
		msg.Number,
		msg.Level,
		msg.Timestamp.Format(time.RFC3339),
		msg.Logger,
		msg.Message,
	)
}
