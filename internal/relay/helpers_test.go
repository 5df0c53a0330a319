package relay

import (
	"io"
	"log/slog"
)

// recorder is a Conn that keeps everything delivered to it.
type recorder struct {
	id   ConnID
	msgs []*Message
	full bool
}

func newRecorder(id string) *recorder {
	return &recorder{id: ConnID(id)}
}

func (r *recorder) ID() ConnID {
	return r.id
}

func (r *recorder) Deliver(msg *Message) bool {
	if r.full {
		return false
	}
	r.msgs = append(r.msgs, msg)
	return true
}

func (r *recorder) types() []string {
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Type)
	}
	return out
}

func (r *recorder) reset() {
	r.msgs = nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
