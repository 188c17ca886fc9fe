// Package report assembles diagnostic reports: a stable identifier, a
// timestamp, the captured stack, host facts and ordered caller attributes,
// rendered into the two JSON payloads the database persists.
package report

import (
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/flightbox/flightbox/internal/jsonenc"
	"github.com/flightbox/flightbox/internal/storage"
	"github.com/google/uuid"
)

// Kind classifies a report.
type Kind string

const (
	KindError Kind = "error"
	KindCrash Kind = "crash"
	KindLog   Kind = "log"
)

// maxFrames caps the captured stack depth.
const maxFrames = 32

// Frame is one captured stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Report is a diagnostic report under construction. Attributes keep the
// order they were set in; the serialized record reproduces it.
type Report struct {
	ID        uuid.UUID
	Timestamp time.Time
	Kind      Kind
	Message   string
	Frames    []Frame

	attrs      *jsonenc.Object
	attachment *jsonenc.Object
}

// New builds a report of the given kind, capturing the caller's stack and a
// fresh identifier.
func New(kind Kind, message string) *Report {
	return &Report{
		ID:         uuid.New(),
		Timestamp:  time.Now().UTC(),
		Kind:       kind,
		Message:    message,
		Frames:     capture(3),
		attrs:      jsonenc.NewObject(),
		attachment: jsonenc.NewObject(),
	}
}

// capture collects up to maxFrames stack frames, skipping the innermost
// skip frames.
func capture(skip int) []Frame {
	pc := make([]uintptr, maxFrames)
	n := runtime.Callers(skip, pc)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pc[:n])
	out := make([]Frame, 0, n)
	for {
		f, more := frames.Next()
		out = append(out, Frame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return out
}

// SetAttribute attaches a caller attribute. Returns r for chaining.
func (r *Report) SetAttribute(key string, value any) *Report {
	r.attrs.Set(key, value)
	return r
}

// Attachment returns the attachment payload object for the caller to fill.
func (r *Report) Attachment() *jsonenc.Object {
	return r.attachment
}

// RecordObject assembles the record document.
func (r *Report) RecordObject() *jsonenc.Object {
	host := jsonenc.NewObject().
		Set("hostname", hostname()).
		Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH).
		Set("runtime", runtime.Version()).
		Set("pid", os.Getpid())
	stack := make([]jsonenc.Value, len(r.Frames))
	for i, f := range r.Frames {
		stack[i] = jsonenc.Of(jsonenc.NewObject().
			Set("function", f.Function).
			Set("file", f.File).
			Set("line", f.Line))
	}
	return jsonenc.NewObject().
		Set("id", r.ID).
		Set("timestamp", r.Timestamp.Unix()).
		Set("kind", string(r.Kind)).
		Set("message", r.Message).
		Set("host", host).
		Set("stack", stack).
		Set("attributes", r.attrs)
}

// AttachmentObject assembles the attachment document.
func (r *Report) AttachmentObject() *jsonenc.Object {
	return jsonenc.NewObject().
		Set("id", r.ID).
		Set("data", r.attachment)
}

// Record renders both documents synchronously.
func (r *Report) Record() storage.Record {
	return storage.Record{
		ID:             r.ID,
		RecordJSON:     r.RecordObject().JSON(),
		AttachmentJSON: r.AttachmentObject().JSON(),
	}
}

// CooperativeRecord starts an incremental encode of the record document for
// callers interleaving serialization with other work. onComplete receives
// the assembled record exactly once; the attachment, typically small,
// renders synchronously at completion.
func (r *Report) CooperativeRecord(onComplete func(storage.Record), opts ...jsonenc.Option) (*jsonenc.Encoder, error) {
	if onComplete == nil {
		return nil, errors.New("onComplete callback is required")
	}
	return jsonenc.EncodeIncremental(r.RecordObject(), func(text string) {
		onComplete(storage.Record{
			ID:             r.ID,
			RecordJSON:     text,
			AttachmentJSON: r.AttachmentObject().JSON(),
		})
	}, opts...)
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
