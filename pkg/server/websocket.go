package server

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sputnik-dev/sputnik/pkg/protocol"
)

// ReadLoop reads frames until the connection fails or the session closes.
// Events are queued for the event loop; control frames are answered here.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				s.logger.Warn("client message too large", "limit", s.config.MaxMessageSize)
				s.metrics.recordWSError("read_limit")
				return
			}
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.metrics.recordWSError("read")
			}
			return
		}
		s.touch()

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.sendError(protocol.ErrInvalidFrame, "invalid frame")
			continue
		}
		if s.config.DevMode {
			s.logger.Debug("recv frame", "type", frame.Type.String(), "bytes", len(frame.Payload))
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)
		case protocol.FrameControl:
			s.handleControlFrame(frame.Payload)
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type.String())
		}
	}
}

// handleEventFrame decodes and queues an event from the client.
func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		perr := &ProtocolError{SessionID: s.ID, Op: "decode event", Err: err}
		s.logger.Warn("event decode error", "error", perr)
		s.sendError(protocol.ErrInvalidEvent, "invalid event format")
		return
	}

	if err := s.QueueEvent(ev); err != nil {
		s.logger.Warn("event rejected", "hid", ev.HID, "error", err)
		s.metrics.recordEventError(ev.Type.String(), "queue_full")
		s.sendError(protocol.ErrRateLimited, "event queue full")
	}
}

// handleControlFrame answers pings and honours client close requests.
func (s *Session) handleControlFrame(payload []byte) {
	c, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("control decode error", "error", err)
		return
	}

	switch c.Type {
	case protocol.ControlPing:
		s.sendPong(c.Timestamp)
	case protocol.ControlPong:
		s.logger.Debug("received pong")
	case protocol.ControlClose:
		s.logger.Info("client closing", "reason", c.Reason, "message", c.Message)
		s.Close()
	}
}

func (s *Session) sendPong(timestamp uint64) {
	data, err := protocol.EncodeControl(protocol.NewPong(timestamp))
	if err != nil {
		return
	}
	if err := s.writeFrame(data); err != nil {
		s.logger.Debug("pong failed", "error", err)
	}
}

func (s *Session) sendPing() error {
	data, err := protocol.EncodeControl(protocol.NewPing(uint64(time.Now().UnixMilli())))
	if err != nil {
		return err
	}
	return s.writeFrame(data)
}

// WriteLoop sends heartbeats until the session closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// EventLoop runs handlers and re-renders, one at a time.
func (s *Session) EventLoop() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case <-s.renderCh:
			s.renderDirty()
		case <-s.done:
			return
		}
	}
}

// Start starts the session loops. Call it after the initial sync.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}
