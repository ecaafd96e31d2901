package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// ttyByteEvent is one byte (or read error) off the terminal, grounded on
// broyeztony-karl/repl's ttyInput shape.
type ttyByteEvent struct {
	b   byte
	err error
}

// ttyInput puts the terminal in raw mode and reads lines with basic
// readline editing: backspace, left/right/home/end, and up/down history
// navigation.
type ttyInput struct {
	in      *os.File
	out     io.Writer
	state   *term.State
	events  chan ttyByteEvent
	history []string
}

func newTTYInput(in io.Reader, out io.Writer) (*ttyInput, bool) {
	inFile, ok := in.(*os.File)
	if !ok {
		return nil, false
	}
	outFile, ok := out.(*os.File)
	if !ok {
		return nil, false
	}
	if !term.IsTerminal(int(inFile.Fd())) || !term.IsTerminal(int(outFile.Fd())) {
		return nil, false
	}

	state, err := term.MakeRaw(int(inFile.Fd()))
	if err != nil {
		return nil, false
	}

	t := &ttyInput{
		in:     inFile,
		out:    out,
		state:  state,
		events: make(chan ttyByteEvent, 128),
	}
	go t.readBytes()
	return t, true
}

func (t *ttyInput) Close() {
	if t == nil || t.state == nil {
		return
	}
	_ = term.Restore(int(t.in.Fd()), t.state)
}

func (t *ttyInput) readBytes() {
	defer close(t.events)
	buf := make([]byte, 1)
	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			t.events <- ttyByteEvent{b: buf[0]}
		}
		if err != nil {
			t.events <- ttyByteEvent{err: err}
			return
		}
	}
}

func (t *ttyInput) readByteWithTimeout(d time.Duration) (byte, bool) {
	select {
	case ev, ok := <-t.events:
		if !ok || ev.err != nil {
			return 0, false
		}
		return ev.b, true
	case <-time.After(d):
		return 0, false
	}
}

// readLine reads one edited line, returning ok=false on Ctrl+C, Ctrl+D on
// an empty line, or a closed input stream.
func (t *ttyInput) readLine(prompt string) (string, bool) {
	line := make([]byte, 0, 64)
	cursor := 0
	historyIndex := len(t.history)
	inHistoryNav := false
	draft := make([]byte, 0, 64)
	fmt.Fprint(t.out, prompt)

	for ev := range t.events {
		if ev.err != nil {
			return "", false
		}
		switch ev.b {
		case '\r', '\n':
			fmt.Fprint(t.out, "\r\n")
			entered := string(line)
			if entered != "" {
				t.history = append(t.history, entered)
			}
			return entered, true
		case 0x03: // Ctrl+C
			fmt.Fprint(t.out, "^C\r\n")
			return "", false
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				fmt.Fprint(t.out, "\r\n")
				return "", false
			}
		case 0x7f, 0x08: // Backspace
			if cursor > 0 {
				inHistoryNav = false
				line = append(line[:cursor-1], line[cursor:]...)
				cursor--
				redrawLine(t.out, prompt, line, cursor)
			}
		case 0x1b: // Escape sequence: arrows/home/end
			next, ok := t.readByteWithTimeout(10 * time.Millisecond)
			if !ok || next != '[' {
				continue
			}
			code, ok := t.readByteWithTimeout(10 * time.Millisecond)
			if !ok {
				continue
			}
			switch code {
			case 'A': // Up
				if len(t.history) == 0 {
					continue
				}
				if !inHistoryNav {
					draft = append(draft[:0], line...)
					inHistoryNav = true
					historyIndex = len(t.history) - 1
				} else if historyIndex > 0 {
					historyIndex--
				}
				line = []byte(t.history[historyIndex])
				cursor = len(line)
				redrawLine(t.out, prompt, line, cursor)
			case 'B': // Down
				if !inHistoryNav {
					continue
				}
				if historyIndex < len(t.history)-1 {
					historyIndex++
					line = []byte(t.history[historyIndex])
				} else {
					inHistoryNav = false
					historyIndex = len(t.history)
					line = append([]byte(nil), draft...)
				}
				cursor = len(line)
				redrawLine(t.out, prompt, line, cursor)
			case 'D': // Left
				if cursor > 0 {
					cursor--
					redrawLine(t.out, prompt, line, cursor)
				}
			case 'C': // Right
				if cursor < len(line) {
					cursor++
					redrawLine(t.out, prompt, line, cursor)
				}
			case 'H':
				cursor = 0
				redrawLine(t.out, prompt, line, cursor)
			case 'F':
				cursor = len(line)
				redrawLine(t.out, prompt, line, cursor)
			}
		default:
			if ev.b >= 0x20 || ev.b == '\t' {
				inHistoryNav = false
				line = append(line, 0)
				copy(line[cursor+1:], line[cursor:])
				line[cursor] = ev.b
				cursor++
				redrawLine(t.out, prompt, line, cursor)
			}
		}
	}
	return "", false
}

func redrawLine(out io.Writer, prompt string, line []byte, cursor int) {
	fmt.Fprint(out, "\r\x1b[K")
	fmt.Fprint(out, prompt)
	out.Write(line)
	if back := len(line) - cursor; back > 0 {
		fmt.Fprintf(out, "\x1b[%dD", back)
	}
}
