package jsonenc

import (
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultChunkSize is the growth of the output buffer between suspension
// points: once the buffer crosses each successive 64 KiB boundary, the
// encoder hands control back to the caller.
const DefaultChunkSize = 64 * 1024

// Stopwatch is notified around each suspension so that an external
// elapsed-time tracker can exclude yielded time. Purely advisory; it never
// alters encoding behavior.
type Stopwatch interface {
	Pause()
	Resume()
}

// Option configures an [Encoder].
type Option func(*Encoder)

// WithChunkSize sets both the initial suspension threshold and the amount
// it advances by after each suspension. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.chunk = n
		}
	}
}

// WithStopwatch attaches a stopwatch that is paused while the encoder is
// suspended and resumed when stepping continues.
func WithStopwatch(sw Stopwatch) Option {
	return func(e *Encoder) {
		e.sw = sw
	}
}

// frame is the walk position inside one object. The encoder keeps one frame
// per open brace instead of recursing, so a suspension can happen at any
// nesting depth and [Encoder.Step] resumes exactly where it left off.
type frame struct {
	pair  *orderedmap.Pair[string, Value]
	first bool
}

// Encoder serializes an [Object] cooperatively.
//
// Call [Encoder.Step] repeatedly until it returns false. After each entry is
// emitted, the encoder compares the accumulated buffer length against the
// current threshold; once reached, Step returns and the threshold moves up
// by the chunk size. Thresholds are cumulative, never reset, so the total
// number of suspensions is proportional to the output size. An Encoder is
// single-use and belongs to one goroutine.
type Encoder struct {
	buf       []byte
	chunk     int
	threshold int
	stack     []frame
	sw        Stopwatch
	onDone    func(string)
	suspended bool
	done      bool
	result    string
}

// NewEncoder starts encoding obj. A nil obj encodes as an empty object.
func NewEncoder(obj *Object, opts ...Option) *Encoder {
	e := &Encoder{chunk: DefaultChunkSize}
	for _, o := range opts {
		o(e)
	}
	e.threshold = e.chunk
	e.buf = append(e.buf, '{')
	var pair *orderedmap.Pair[string, Value]
	if obj != nil {
		pair = obj.m.Oldest()
	}
	e.stack = []frame{{pair: pair, first: true}}
	return e
}

// EncodeIncremental starts a cooperative encode of obj and arranges for
// onComplete to run exactly once, with the full JSON text, on the [Encoder.Step]
// call that finishes the document. A missing callback is a contract
// violation reported immediately, not deferred into the walk.
func EncodeIncremental(obj *Object, onComplete func(string), opts ...Option) (*Encoder, error) {
	if onComplete == nil {
		return nil, errors.New("onComplete callback is required")
	}
	e := NewEncoder(obj, opts...)
	e.onDone = onComplete
	return e, nil
}

// Step performs encoding work until the next suspension point or until the
// document is complete. It reports whether more work remains. Calling Step
// after completion is a no-op returning false.
func (e *Encoder) Step() bool {
	if e.done {
		return false
	}
	if e.suspended {
		e.suspended = false
		e.threshold += e.chunk
		if e.sw != nil {
			e.sw.Resume()
		}
	}
	for {
		if len(e.stack) == 0 {
			e.result = string(e.buf)
			e.buf = nil
			e.done = true
			if e.onDone != nil {
				e.onDone(e.result)
			}
			return false
		}
		f := &e.stack[len(e.stack)-1]
		if f.pair == nil {
			// Current object exhausted. Closing it completes the parent's
			// entry, which is a suspension point like any other.
			e.buf = append(e.buf, '}')
			e.stack = e.stack[:len(e.stack)-1]
			if len(e.stack) > 0 && len(e.buf) >= e.threshold {
				e.suspend()
				return true
			}
			continue
		}
		p := f.pair
		f.pair = p.Next()
		if !f.first {
			e.buf = append(e.buf, ',')
		}
		f.first = false
		e.buf = appendQuoted(e.buf, p.Key)
		e.buf = append(e.buf, ':')
		if p.Value.kind == KindObject && p.Value.obj != nil {
			// Descend; the nested object shares the buffer and the
			// suspension protocol.
			e.buf = append(e.buf, '{')
			e.stack = append(e.stack, frame{pair: p.Value.obj.m.Oldest(), first: true})
			continue
		}
		e.buf = p.Value.AppendJSON(e.buf)
		if len(e.buf) >= e.threshold {
			e.suspend()
			return true
		}
	}
}

func (e *Encoder) suspend() {
	e.suspended = true
	if e.sw != nil {
		e.sw.Pause()
	}
}

// Done reports whether the document has been fully emitted.
func (e *Encoder) Done() bool { return e.done }

// Result returns the encoded text, or "" until [Encoder.Done].
func (e *Encoder) Result() string { return e.result }

// Buffered returns the number of output bytes produced so far.
func (e *Encoder) Buffered() int {
	if e.done {
		return len(e.result)
	}
	return len(e.buf)
}

// Run drives the encoder to completion synchronously and returns the text.
func (e *Encoder) Run() string {
	for e.Step() {
	}
	return e.result
}
