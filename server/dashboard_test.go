package server

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialDashboard(t *testing.T, addr string, global bool) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws://%s/dashboard", addr)
	if global {
		url += "?global=1"
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil pulls dashboard messages until match returns true, skipping
// interleaved periodic stats pushes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		if match(decoded) {
			return decoded
		}
	}
	t.Fatal("expected dashboard message never arrived")
	return nil
}

func TestDashboardRoomReceivesCombined(t *testing.T) {
	_, addr := startTestServer(t)

	dash := dialDashboard(t, addr, false)
	require.NoError(t, dash.WriteJSON(map[string]any{"type": "subscribe", "camera_id": "cam1"}))

	// Give the subscription a moment to land before the frame.
	time.Sleep(50 * time.Millisecond)

	c := dialCamera(t, addr, "cam1")
	require.NoError(t, c.SendFrame(testJPEG(t)))
	_, err := c.Recv()
	require.NoError(t, err)

	combined := readUntil(t, dash, func(m map[string]any) bool {
		return m["camera_id"] == "cam1"
	})
	assert.Contains(t, combined, "results")
}

func TestDashboardUnsubscribedCameraFiltered(t *testing.T) {
	_, addr := startTestServer(t)

	dash := dialDashboard(t, addr, false)
	require.NoError(t, dash.WriteJSON(map[string]any{"type": "subscribe", "camera_id": "other"}))
	time.Sleep(50 * time.Millisecond)

	c := dialCamera(t, addr, "cam1")
	require.NoError(t, c.SendFrame(testJPEG(t)))
	_, err := c.Recv()
	require.NoError(t, err)

	// Only periodic stats reach this subscriber, never cam1 results.
	dash.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	for {
		_, data, err := dash.ReadMessage()
		if err != nil {
			break // deadline: nothing unexpected arrived
		}
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "stats", decoded["type"], "unexpected message: %s", data)
	}
}

func TestDashboardGlobalReceivesEverything(t *testing.T) {
	_, addr := startTestServer(t)

	dash := dialDashboard(t, addr, true)

	c := dialCamera(t, addr, "cam9")
	require.NoError(t, c.SendFrame(testJPEG(t)))
	_, err := c.Recv()
	require.NoError(t, err)

	combined := readUntil(t, dash, func(m map[string]any) bool {
		return m["camera_id"] == "cam9"
	})
	assert.Contains(t, combined, "results")
}

func TestDashboardPeriodicStats(t *testing.T) {
	_, addr := startTestServer(t)

	dash := dialDashboard(t, addr, false)
	snapshot := readUntil(t, dash, func(m map[string]any) bool {
		return m["type"] == "stats"
	})
	assert.Contains(t, snapshot, "data")
}
