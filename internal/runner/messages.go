package runner

import (
	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/tuning"
)

// Commands accepted on Runner.Inbox. Reply channels must be buffered.

type SelectMode struct {
	Mode  game.Mode
	Reply chan error
}

type Restart struct {
	Reply chan error
}

type ReturnToMenu struct {
	Reply chan error
}

type Aim struct {
	X float64
}

type Drop struct {
	Reply chan bool // optional
}

type Snapshot struct {
	Reply chan game.View
}

type Subscribe struct {
	Sink  Sink
	Reply chan int
}

type Unsubscribe struct {
	ID int
}

// Tune stages params for the next run.
type Tune struct {
	Params tuning.Params
}

// Frame is what subscribers receive: the current view and the events raised
// since the previous frame.
type Frame struct {
	Tick   uint64       `json:"tick" msgpack:"tick"`
	View   game.View    `json:"view" msgpack:"view"`
	Events []game.Event `json:"events,omitempty" msgpack:"events,omitempty"`
}

// Sink receives frames. Send must not block the loop for long; a Send error
// drops the subscriber.
type Sink interface {
	Send(Frame) error
	Close() error
}

// CuePlayer reacts to events, e.g. with sound.
type CuePlayer interface {
	Play(game.Event)
}

// JournalEntry is one journaled line.
type JournalEntry struct {
	Tick  uint64     `json:"tick"`
	Event game.Event `json:"event"`
}
