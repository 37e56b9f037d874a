package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a connection for userID to the hub and blocks until the
// peer disconnects. greeting, when set, is the first frame the peer receives.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, greeting []byte) {
	serve(hub, c, userID, greeting)
}

func serve(hub *Hub, c conn, userID uuid.UUID, greeting []byte) {
	client := newClient(hub, c, userID)
	if greeting != nil {
		client.send <- greeting
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
