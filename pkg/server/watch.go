package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/statebox/pkg/state"
)

// Frame is one message on a watch connection.
type Frame struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`

	// Dropped counts frames discarded since the previous frame because the
	// client was not keeping up.
	Dropped int64 `json:"dropped,omitempty"`
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if c.Stats().Poisoned {
		s.writeError(w, http.StatusConflict, state.ErrPoisoned)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Warn("watch upgrade failed", "container", c.Name(), "error", err)
		return
	}
	s.watches.Add(1)
	defer s.watches.Done()
	defer conn.Close()

	log := s.logger.With("container", c.Name(), "remote", r.RemoteAddr)
	log.Debug("watch started")

	// Subscribe before reading the current value so no change is missed.
	// A change racing the first read may be delivered twice.
	updates := make(chan []byte, s.config.WatchBuffer)
	done := make(chan struct{})
	var dropped atomic.Int64
	h := c.SubscribeJSON(func(data []byte) {
		select {
		case <-done:
		case updates <- data:
		default:
			dropped.Add(1)
		}
	})
	defer func() {
		close(done)
		if !c.Unsubscribe(h) && c.Rebind(h) {
			c.Unsubscribe(h)
		}
		log.Debug("watch ended")
	}()

	current, err := c.ValueJSON()
	if err != nil {
		log.Error("watch encode", "error", err)
		return
	}
	if err := s.writeFrame(conn, Frame{Name: c.Name(), Value: current}); err != nil {
		log.Debug("watch write", "error", err)
		return
	}

	// Reads only detect close; clients have nothing to send.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(s.config.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return

		case <-s.closing:
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
			return

		case <-ping.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Debug("watch ping", "error", err)
				return
			}

		case data := <-updates:
			frame := Frame{Name: c.Name(), Value: data, Dropped: dropped.Swap(0)}
			if frame.Dropped > 0 {
				log.Warn("watch dropped frames", "dropped", frame.Dropped)
			}
			if err := s.writeFrame(conn, frame); err != nil {
				log.Debug("watch write", "error", err)
				return
			}
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, f Frame) error {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return conn.WriteJSON(f)
}
