// Package client implements the websocket camera client for the
// dispatch server. The client owns its own frame pacing: the server
// never throttles, it only drops when a worker queue is full.
package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Mentat-Vision/moe/util/logger"
)

// Client is one camera connection to the dispatch server. Safe for one
// writer and one reader goroutine; Send* and Recv may run concurrently.
type Client struct {
	logger *logger.Logger
	conn   *websocket.Conn

	writeMu sync.Mutex
}

// Connect dials the dispatch server's data plane. The address is
// mandatory and explicit ("host:port"); there is no default server.
func Connect(ctx context.Context, address string) (*Client, error) {
	if address == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}

	url := fmt.Sprintf("ws://%s/ws", address)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	return &Client{
		logger: logger.NewLogger("Client"),
		conn:   conn,
	}, nil
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Register announces the camera identity. The server replies with a
// "registered" message on the channel.
func (c *Client) Register(cameraID, name string) error {
	return c.writeJSON(map[string]any{
		"type":      "register",
		"camera_id": cameraID,
		"name":      name,
	})
}

// SendFrame sends one JPEG for fan-out to all active experts. Requires
// a prior Register: the camera identity is implied by the session.
func (c *Client) SendFrame(jpegData []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, jpegData)
}

// SendExpertFrame sends one JPEG to a single named expert.
func (c *Client) SendExpertFrame(expertName, cameraID string, jpegData []byte) error {
	return c.writeJSON(map[string]any{
		"expert":    expertName,
		"camera_id": cameraID,
		"frame":     base64.StdEncoding.EncodeToString(jpegData),
	})
}

// Ping requests a pong with the server's clock.
func (c *Client) Ping() error {
	return c.writeJSON(map[string]any{"type": "ping"})
}

// RequestStats requests a server stats snapshot on the channel.
func (c *Client) RequestStats() error {
	return c.writeJSON(map[string]any{"type": "stats"})
}

// Recv blocks for the next server message and decodes it. Results,
// pongs, stats and in-band errors all arrive here.
func (c *Client) Recv() (map[string]any, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType != websocket.TextMessage {
			c.logger.Warnf("ignoring unexpected message type %d", msgType)
			continue
		}
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, fmt.Errorf("malformed server message: %w", err)
		}
		return decoded, nil
	}
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
