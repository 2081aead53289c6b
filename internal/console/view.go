// Package console plays battles on a line-oriented terminal.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// View is the line-based surface a console game reads from and writes to.
type View interface {
	WriteLine(line string)
	// ReadLine returns the next input line without its newline. ok is false
	// once input is exhausted.
	ReadLine() (line string, ok bool)
}

// StreamView reads lines from r and writes lines to w.
type StreamView struct {
	in  *bufio.Reader
	out io.Writer
}

func NewStreamView(r io.Reader, w io.Writer) *StreamView {
	return &StreamView{in: bufio.NewReader(r), out: w}
}

func (v *StreamView) WriteLine(line string) {
	fmt.Fprintln(v.out, line)
}

func (v *StreamView) ReadLine() (string, bool) {
	line, err := v.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

// ScriptedView replays fixed inputs and records every written line.
type ScriptedView struct {
	mu     sync.Mutex
	inputs []string
	pos    int
	lines  []string
}

func NewScriptedView(inputs ...string) *ScriptedView {
	return &ScriptedView{inputs: inputs}
}

func (v *ScriptedView) WriteLine(line string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lines = append(v.lines, line)
}

func (v *ScriptedView) ReadLine() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pos >= len(v.inputs) {
		return "", false
	}
	line := v.inputs[v.pos]
	v.pos++
	return line, true
}

// Lines returns a copy of everything written so far.
func (v *ScriptedView) Lines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.lines))
	copy(out, v.lines)
	return out
}

// Output returns the written lines joined with newlines.
func (v *ScriptedView) Output() string {
	return strings.Join(v.Lines(), "\n")
}
