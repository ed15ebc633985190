package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Mentat-Vision/moe/frame"
	"github.com/Mentat-Vision/moe/session"
	"github.com/Mentat-Vision/moe/util/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 16,
	WriteBufferSize: 1 << 16,
	// Cameras and dashboards connect from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundMessage is the union of all text messages a camera may send.
type inboundMessage struct {
	Type     string `json:"type"`
	CameraID string `json:"camera_id"`
	Name     string `json:"name"`
	Expert   string `json:"expert"`
	Frame    string `json:"frame"` // base64 JPEG
}

// wsConn is one camera connection. All writes to the underlying socket
// go through the single writer goroutine draining c.send; the session's
// outbound channel is forwarded into the same channel, so dispatch
// results and direct replies never interleave mid-write.
type wsConn struct {
	server *Server
	conn   *websocket.Conn
	logger *logger.Logger
	send   chan []byte
	quit   chan struct{}

	sess     *session.Session
	sequence atomic.Uint64
}

// handleWS serves the camera data plane.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	c := &wsConn{
		server: s,
		conn:   conn,
		logger: s.logger,
		send:   make(chan []byte, session.DefaultOutboundBuffer),
		quit:   make(chan struct{}),
	}
	go c.writeLoop()
	c.readLoop()
}

func (c *wsConn) writeLoop() {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.quit:
			return
		}
	}
}

// forwardSession drains the session outbound channel into the socket
// writer. Runs until the session closes.
func (c *wsConn) forwardSession(sess *session.Session) {
	for msg := range sess.Outbound() {
		select {
		case c.send <- msg:
		case <-c.quit:
			return
		}
	}
}

func (c *wsConn) readLoop() {
	defer c.close()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			c.handleBinaryFrame(data)
		case websocket.TextMessage:
			c.handleText(data)
		}
	}
}

func (c *wsConn) close() {
	close(c.quit)
	c.conn.Close()
	if c.sess != nil {
		c.server.manager.Close(c.sess.ID)
	}
}

// reply queues a direct message for the writer. Non-blocking: a wedged
// socket drops replies rather than stalling the read loop.
func (c *wsConn) reply(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		c.logger.Errorf("failed to marshal reply: %v", err)
		return
	}
	select {
	case c.send <- msg:
	case <-c.quit:
	default:
		c.logger.Warnf("dropped reply on slow connection")
	}
}

func (c *wsConn) replyError(format string, args ...any) {
	c.reply(map[string]any{"error": fmt.Sprintf(format, args...)})
}

// handleBinaryFrame is the legacy fan-out path: a raw JPEG with the
// camera identity implied by the connection. Cameras that never send a
// register message get an identity derived from their remote address on
// the first frame.
func (c *wsConn) handleBinaryFrame(data []byte) {
	if c.sess == nil {
		cameraID := c.conn.RemoteAddr().String()
		c.register(cameraID, "")
		c.logger.Infof("implicit registration of camera %s on first binary frame", cameraID)
	}
	c.submitFrame(c.sess, data, "")
}

func (c *wsConn) handleText(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.replyError("malformed message: %v", err)
		return
	}

	switch msg.Type {
	case "register":
		c.handleRegister(msg)
	case "ping":
		c.reply(map[string]any{
			"type":      "pong",
			"timestamp": float64(time.Now().UnixNano()) / 1e9,
		})
	case "stats":
		c.reply(map[string]any{
			"type": "stats",
			"data": c.server.collector.Snapshot(),
		})
	case "":
		// Single-expert frame: no type field, addressed by expert name.
		c.handleExpertFrame(msg)
	default:
		c.replyError("unknown message type: %s", msg.Type)
	}
}

func (c *wsConn) handleRegister(msg inboundMessage) {
	if msg.CameraID == "" {
		c.replyError("register requires camera_id")
		return
	}
	if c.sess != nil {
		c.replyError("already registered as %s", c.sess.CameraID)
		return
	}
	c.register(msg.CameraID, msg.Name)
	c.reply(map[string]any{"type": "registered", "camera_id": msg.CameraID})
}

func (c *wsConn) register(cameraID, name string) {
	c.sess = c.server.manager.Register(cameraID, name)
	c.server.collector.RegisterCamera(cameraID, name)
	go c.forwardSession(c.sess)
}

func (c *wsConn) handleExpertFrame(msg inboundMessage) {
	if msg.Expert == "" {
		c.replyError("missing expert")
		return
	}
	if msg.CameraID == "" {
		c.replyError("missing camera_id")
		return
	}
	if msg.Frame == "" {
		c.replyError("missing frame")
		return
	}

	if c.sess == nil {
		// First frame doubles as registration.
		c.register(msg.CameraID, "")
	} else if c.sess.CameraID != msg.CameraID {
		c.replyError("camera_id %s does not match registered camera %s", msg.CameraID, c.sess.CameraID)
		return
	}

	data, err := base64.StdEncoding.DecodeString(msg.Frame)
	if err != nil {
		c.replyError("invalid frame encoding: %v", err)
		return
	}
	c.submitFrame(c.sess, data, msg.Expert)
}

// submitFrame hands decode + rescale to the preprocessing pool, then
// routes. The read loop never does image work itself. The pool is
// shared, so two frames from one camera may reach the worker queues
// out of arrival order; aggregation and delivery stay correct because
// everything downstream is keyed by sequence.
func (c *wsConn) submitFrame(sess *session.Session, data []byte, expertName string) {
	sess.Touch()
	seq := c.sequence.Add(1)
	scale := c.server.config.Server.ScaleFactor

	c.server.preprocess.Submit(func(ctx context.Context) error {
		f, err := frame.Normalize(seq, data, scale)
		if err != nil {
			c.replyError("bad frame: %v", err)
			return nil
		}
		c.server.collector.RecordFrame(sess.CameraID)

		if expertName == "" {
			c.server.router.DispatchFanOut(sess, f)
			return nil
		}
		if err := c.server.router.DispatchSingle(sess, expertName, f); err != nil {
			c.replyError("%v", err)
		}
		return nil
	})
}
