package vm

import (
	"fmt"

	"github.com/blg-lang/blg/pkg/bytecode"
	"github.com/blg-lang/blg/pkg/value"
)

// Frame is one entry of the call stack: either Defined (executing a
// compiled Func's bytecode) or Native (a marker with no further state,
// pushed for the duration of a native function call so stack traces show
// it (a two-shape frame model).
type Frame struct {
	Native bool

	// Defined frame state.
	Module *bytecode.Module
	IP     int
	Scope  *value.Scope

	// Carried for trace rendering regardless of shape.
	Name string
}

func (rt *Runtime) pushFrame(f Frame) {
	rt.frames = append(rt.frames, f)
}

func (rt *Runtime) popFrame() {
	if len(rt.frames) == 0 {
		return
	}
	rt.frames = rt.frames[:len(rt.frames)-1]
}

func (rt *Runtime) currentFrame() *Frame {
	if len(rt.frames) == 0 {
		return nil
	}
	return &rt.frames[len(rt.frames)-1]
}

func (rt *Runtime) unwindFramesTo(height int) {
	if height < len(rt.frames) {
		rt.frames = rt.frames[:height]
	}
}

// snapshotFrames renders the current frame stack into value.Frame
// records, looking Defined frames' IP up in their module's source-map.
func (rt *Runtime) snapshotFrames() []value.Frame {
	out := make([]value.Frame, 0, len(rt.frames))
	for i := len(rt.frames) - 1; i >= 0; i-- {
		f := rt.frames[i]
		if f.Native {
			out = append(out, value.Frame{Native: true})
			continue
		}
		line, col := sourceLocationFor(f.Module, f.IP)
		out = append(out, value.Frame{
			Filename: f.Module.Filename,
			Line:     line,
			Column:   col,
		})
	}
	return out
}

// sourceLocationFor finds the nearest source-map entry at or before ip.
func sourceLocationFor(m *bytecode.Module, ip int) (line, col int) {
	best := -1
	for _, e := range m.SourceMap {
		if e.Offset <= ip && e.Offset > best {
			best = e.Offset
			line, col = e.Line, e.Column
		}
	}
	return line, col
}

// Throw constructs a *value.Error carrying the current frame-stack
// snapshot — the single construction point for raising a runtime error.
func (rt *Runtime) Throw(format string, a ...any) error {
	return &value.Error{
		Message: fmt.Sprintf(format, a...),
		Frames:  rt.snapshotFrames(),
	}
}

// errorStackTrace renders err (if it is a *value.Error) as a traceback;
// other Go errors are returned as plain messages.
func errorStackTrace(err error) string {
	if ve, ok := err.(*value.Error); ok {
		return ve.StackTrace()
	}
	return "error: " + err.Error()
}

// ErrorStackTrace is the exported form used by cmd/blg and pkg/pipeline.
func ErrorStackTrace(err error) string { return errorStackTrace(err) }
