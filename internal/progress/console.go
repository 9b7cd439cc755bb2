package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Sink consumes progress events
type Sink interface {
	Handle(e Event)
}

// ConsoleSink prints progress events. On a terminal it redraws one line;
// elsewhere it prints a line every Every events and at completion.
type ConsoleSink struct {
	w     io.Writer
	tty   bool
	every int
	width int
	count int
}

// NewConsoleSink creates a sink writing to w
func NewConsoleSink(w io.Writer, every int) *ConsoleSink {
	if every < 1 {
		every = 1
	}
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &ConsoleSink{w: w, tty: tty, every: every}
}

// Handle renders one event
func (s *ConsoleSink) Handle(e Event) {
	s.count++

	if s.tty {
		line := e.Message
		pad := ""
		if len(line) < s.width {
			pad = strings.Repeat(" ", s.width-len(line))
		}
		s.width = len(line)
		fmt.Fprintf(s.w, "\r%s%s", line, pad)
		if e.Done() {
			fmt.Fprintln(s.w)
		}
		return
	}

	if s.count%s.every == 0 || e.Done() {
		fmt.Fprintln(s.w, e.Message)
	}
}
