package realtime

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// inboundMessage is what clients send over the socket. Only joinRoom is
// understood; anything else is ignored.
type inboundMessage struct {
	Event   string `json:"event"`
	OrderID string `json:"orderId"`
}

// SocketHandler bridges WebSocket connections onto the hub.
type SocketHandler struct {
	Hub *Hub
}

// NewSocketHandler creates a SocketHandler.
func NewSocketHandler(hub *Hub) *SocketHandler {
	return &SocketHandler{Hub: hub}
}

// ServeHTTP upgrades the connection and runs the read loop. A client joins
// rooms by sending {"event":"joinRoom","orderId":"..."}; closing the
// connection removes it from all rooms.
func (sh *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade:", err)
		return
	}

	client := sh.Hub.NewClient()
	go writePump(conn, client)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Event == "joinRoom" {
			sh.Hub.JoinRoom(client, msg.OrderID)
		}
	}

	sh.Hub.Unregister(client)
	conn.Close()
}

// writePump drains the client's outbound queue onto the wire. It exits when
// Unregister closes the queue or the connection dies.
func writePump(conn *websocket.Conn, client *Client) {
	for event := range client.Outbound {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
}
