package handler

import (
	"io"
	"sync"

	"github.com/thisisjab/logview/entity"
)

// Buffer is a bounded in-memory collector. When the bound is reached the
// oldest messages are dropped first. A max of zero means unbounded.
type Buffer struct {
	mu   sync.Mutex
	max  int
	msgs []entity.LogMessage
}

func NewBuffer(max int) *Buffer {
	return &Buffer{max: max}
}

func (b *Buffer) HandleMessage(msg entity.LogMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.msgs = append(b.msgs, msg)
	if b.max > 0 && len(b.msgs) > b.max {
		overflow := len(b.msgs) - b.max
		b.msgs = append(b.msgs[:0:0], b.msgs[overflow:]...)
	}
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.msgs)
}

// Messages returns a snapshot of the collected messages in arrival order.
func (b *Buffer) Messages() []entity.LogMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entity.LogMessage, len(b.msgs))
	copy(out, b.msgs)
	return out
}

// WriteCSV writes the header followed by one row per collected message.
// The row renderer comes from the provider whose messages were collected,
// so the buffer stays ignorant of column layouts.
func (b *Buffer) WriteCSV(w io.Writer, header string, row func(entity.LogMessage) string) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, msg := range b.Messages() {
		if _, err := io.WriteString(w, row(msg)); err != nil {
			return err
		}
	}
	return nil
}
