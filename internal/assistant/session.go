package assistant

import (
	"errors"

	"github.com/google/uuid"
)

// ErrSessionClosed is returned when an event is emitted after the terminal
// event or after the transport reported failure.
var ErrSessionClosed = errors.New("streaming session closed")

// EmitFunc delivers one event to the client transport. A returned error
// means the transport is gone and the session must stop.
type EmitFunc func(Event) error

// session tracks per-call streaming state: the event sequence and whether
// the terminal event has been sent. It is owned by a single goroutine, so
// no locking is required.
type session struct {
	id     uuid.UUID
	seq    int
	closed bool
	emit   EmitFunc
}

func newSession(emit EmitFunc) *session {
	return &session{id: uuid.New(), emit: emit}
}

// send assigns the next sequence number and delivers the event. The session
// closes on transport failure and after any terminal event; later sends are
// rejected so a session can never carry two terminal events.
func (s *session) send(ev Event) error {
	if s.closed {
		return ErrSessionClosed
	}

	s.seq++
	ev.Seq = s.seq
	ev.Done = ev.Terminal()

	if err := s.emit(ev); err != nil {
		s.closed = true
		return err
	}

	if ev.Terminal() {
		s.closed = true
	}
	return nil
}

func (s *session) status(message string) error {
	return s.send(Event{Type: EventStatus, Content: message})
}
