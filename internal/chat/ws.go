package chat

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type incomingMessage struct {
	Text   string `json:"text"`
	User   string `json:"user"`
	GameID string `json:"game_id"`
}

func HistoryHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomName := strings.TrimSpace(c.Query("room"))
		if roomName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room is required"})
			return
		}

		c.JSON(http.StatusOK, hub.History(roomName))
	}
}

// WSHandler upgrades the request and pumps messages for one connection.
// Plain text frames are accepted too; they become messages without a
// game reference.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomName := strings.TrimSpace(c.Query("room"))
		if roomName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room is required"})
			return
		}

		user := strings.TrimSpace(c.Query("user"))
		if user == "" {
			user = "floor"
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		history := hub.Join(roomName, ws, user)
		for _, msg := range history {
			_ = ws.WriteJSON(msg)
		}

		for {
			_, payload, err := ws.ReadMessage()
			if err != nil {
				break
			}

			var incoming incomingMessage
			if err := json.Unmarshal(payload, &incoming); err != nil {
				text := strings.TrimSpace(string(payload))
				if text == "" {
					continue
				}
				hub.Broadcast(Message{
					Type: "message",
					Room: roomName,
					User: hub.User(roomName, ws),
					Text: text,
					At:   time.Now().UTC(),
				})
				continue
			}

			text := strings.TrimSpace(incoming.Text)
			if text == "" {
				continue
			}

			msgUser := strings.TrimSpace(incoming.User)
			if msgUser == "" {
				msgUser = hub.User(roomName, ws)
			}

			hub.Broadcast(Message{
				Type:   "message",
				Room:   roomName,
				User:   msgUser,
				Text:   text,
				GameID: strings.TrimSpace(incoming.GameID),
				At:     time.Now().UTC(),
			})
		}

		hub.Leave(roomName, ws)
	}
}
