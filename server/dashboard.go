package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// dashboardMessage is what a dashboard connection may send: room
// membership changes only, everything else flows server -> dashboard.
type dashboardMessage struct {
	Type     string `json:"type"`
	CameraID string `json:"camera_id"`
}

// handleDashboard serves dashboard subscribers. Each connection gets a
// publisher subscription; "subscribe"/"unsubscribe" messages manage its
// camera rooms, and ?global=1 joins the firehose instead.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("dashboard upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	global := r.URL.Query().Get("global") == "1"
	sub := s.publisher.Subscribe(global)
	defer s.publisher.Unsubscribe(sub.ID)

	go func() {
		for msg := range sub.C {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg dashboardMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "subscribe":
			if msg.CameraID != "" {
				sub.Join(msg.CameraID)
			}
		case "unsubscribe":
			if msg.CameraID != "" {
				sub.Leave(msg.CameraID)
			}
		}
	}
}
