// Package ws streams frames to WebSocket clients and accepts their input.
// Frames are JSON text messages by default, or msgpack binary messages when
// the client connects with ?format=msgpack.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/runner"
)

var (
	ErrSlowClient = errors.New("ws: client too slow")
	errClosed     = errors.New("ws: connection closed")
)

// Hub is the part of runner.Runner the server needs.
type Hub interface {
	SelectMode(ctx context.Context, m game.Mode) error
	Restart(ctx context.Context) error
	ReturnToMenu(ctx context.Context) error
	Aim(ctx context.Context, x float64) error
	Drop(ctx context.Context) (bool, error)
	Subscribe(ctx context.Context, s runner.Sink) (int, error)
	Unsubscribe(ctx context.Context, id int) error
}

// ClientMsg is an input message from a client.
type ClientMsg struct {
	Type string  `json:"type" msgpack:"type"` // aim | drop | mode | restart | menu
	X    float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Mode string  `json:"mode,omitempty" msgpack:"mode,omitempty"`
}

// ErrorMsg is sent back when a client message fails.
type ErrorMsg struct {
	Type string `json:"type" msgpack:"type"`
	Err  string `json:"err" msgpack:"err"`
}

type Codec uint8

const (
	JSON Codec = iota
	MsgPack
)

func (c Codec) marshal(v any) ([]byte, error) {
	if c == MsgPack {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

func (c Codec) unmarshal(b []byte, v any) error {
	if c == MsgPack {
		return msgpack.Unmarshal(b, v)
	}
	return json.Unmarshal(b, v)
}

func (c Codec) messageType() int {
	if c == MsgPack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

type Server struct {
	hub Hub
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(hub Hub, logger *log.Logger) *Server {
	return &Server{
		hub: hub,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// sink adapts a connection's outbound queue to runner.Sink.
type sink struct {
	codec Codec
	out   chan []byte

	once sync.Once
	done chan struct{}
}

func newSink(c Codec) *sink {
	return &sink{codec: c, out: make(chan []byte, 64), done: make(chan struct{})}
}

func (s *sink) Send(f runner.Frame) error {
	b, err := s.codec.marshal(f)
	if err != nil {
		return err
	}
	return s.push(b)
}

func (s *sink) push(b []byte) error {
	select {
	case <-s.done:
		return errClosed
	default:
	}
	select {
	case s.out <- b:
		return nil
	default:
		return ErrSlowClient
	}
}

func (s *sink) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		codec := JSON
		if r.URL.Query().Get("format") == "msgpack" {
			codec = MsgPack
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sk := newSink(codec)
		id, err := s.hub.Subscribe(ctx, sk)
		if err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
			return
		}
		defer func() {
			uctx, ucancel := context.WithTimeout(context.Background(), time.Second)
			defer ucancel()
			_ = s.hub.Unsubscribe(uctx, id)
		}()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case <-sk.done:
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "dropped"), time.Now().Add(time.Second))
					_ = conn.Close()
					writeErr <- nil
					return
				case b := <-sk.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(codec.messageType(), b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var in ClientMsg
			if err := codec.unmarshal(msg, &in); err != nil {
				s.replyErr(sk, "bad message")
				continue
			}
			if err := s.apply(ctx, in); err != nil {
				s.replyErr(sk, err.Error())
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (s *Server) apply(ctx context.Context, in ClientMsg) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	switch in.Type {
	case "aim":
		if math.IsNaN(in.X) || math.IsInf(in.X, 0) {
			return errors.New("aim x must be finite")
		}
		return s.hub.Aim(ctx, in.X)
	case "drop":
		_, err := s.hub.Drop(ctx)
		return err
	case "mode":
		m, err := game.ParseMode(in.Mode)
		if err != nil {
			return err
		}
		return s.hub.SelectMode(ctx, m)
	case "restart":
		return s.hub.Restart(ctx)
	case "menu":
		return s.hub.ReturnToMenu(ctx)
	}
	return errors.New("unknown message type " + in.Type)
}

func (s *Server) replyErr(sk *sink, msg string) {
	b, err := sk.codec.marshal(ErrorMsg{Type: "error", Err: msg})
	if err != nil {
		return
	}
	if err := sk.push(b); err != nil && s.log != nil {
		s.log.Printf("ws: error reply dropped: %v", err)
	}
}
