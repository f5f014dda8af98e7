/*
Package tooltest provides an in-memory tool.Executor for exercising code that drives external tools.
*/
package tooltest

import (
	"context"
	"fmt"
	"sync"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
)

// Handler emulates a tool invocation, typically by writing the files the real tool would produce.
type Handler func(cmd tool.Command) error

// Recorder records every command it is asked to run.
type Recorder struct {
	lock     sync.Mutex
	Commands []tool.Command
	Handlers map[string]Handler
	Outputs  map[string]string
	Missing  map[string]bool
}

var _ tool.Executor = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		Handlers: make(map[string]Handler),
		Outputs:  make(map[string]string),
		Missing:  make(map[string]bool),
	}
}

// Handle registers the emulation for the named tool.
func (r *Recorder) Handle(name string, h Handler) *Recorder {
	r.Handlers[name] = h
	return r
}

// WithMissing marks the named tools as not installed.
func (r *Recorder) WithMissing(names ...string) *Recorder {
	for _, n := range names {
		r.Missing[n] = true
	}
	return r
}

func (r *Recorder) Locate(t tool.Tool) (string, error) {
	if r.Missing[t.Name] {
		return "", fmt.Errorf("%s: %w", t.Name, afterr.ErrToolNotFound)
	}
	return "/fake/bin/" + t.Name, nil
}

func (r *Recorder) Run(_ context.Context, cmd tool.Command) error {
	if _, err := r.Locate(cmd.Tool); err != nil {
		return err
	}

	r.lock.Lock()
	r.Commands = append(r.Commands, cmd)
	h := r.Handlers[cmd.Tool.Name]
	r.lock.Unlock()

	if h != nil {
		return h(cmd)
	}
	return nil
}

func (r *Recorder) Output(ctx context.Context, cmd tool.Command) ([]byte, error) {
	if err := r.Run(ctx, cmd); err != nil {
		return nil, err
	}
	return []byte(r.Outputs[cmd.Tool.Name]), nil
}

// Invocations returns the argument lists the named tool was run with.
func (r *Recorder) Invocations(name string) [][]string {
	r.lock.Lock()
	defer r.lock.Unlock()

	var out [][]string
	for _, c := range r.Commands {
		if c.Tool.Name == name {
			out = append(out, c.Argv())
		}
	}
	return out
}
