package wsocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"wingman_go_backend/internal/broker"
	"wingman_go_backend/internal/models"
	"wingman_go_backend/internal/services"

	"github.com/gorilla/websocket"
)

type Handler struct {
	turnService services.TurnService
	upgrader    websocket.Upgrader
}

type Message struct {
	Type           string `json:"type"`
	Content        string `json:"content"`
	ConversationID string `json:"conversationId,omitempty"`
}

// connWriter serializes writes to one connection. The reply path and the
// broker-forwarding goroutine both write, and gorilla/websocket allows only
// one concurrent writer.
type connWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *connWriter) writeJSON(msg Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(msg)
}

func NewHandler(turnService services.TurnService, upgrader websocket.Upgrader) *Handler {
	return &Handler{
		turnService: turnService,
		upgrader:    upgrader,
	}
}

// HandleWebSocket runs a persistent chat connection for an authenticated
// user. Inbound "message" frames run a full assistant turn; conversation
// updates published elsewhere (e.g. via the REST chat endpoint) are pushed
// down the same socket.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request, user interface{}, messageBroker *broker.Broker) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	writer := &connWriter{conn: conn}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	currentUser, ok := user.(*models.User)
	if !ok || currentUser == nil {
		writer.writeJSON(Message{Type: "error", Content: "Unauthorized"})
		return
	}

	topic := "conversation_update_" + currentUser.ID.String()
	updateChan := messageBroker.Subscribe(topic)
	defer messageBroker.Unsubscribe(topic, updateChan)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case conversationID, open := <-updateChan:
				if !open {
					return
				}
				if err := writer.writeJSON(Message{
					Type:           "conversation_update",
					ConversationID: conversationID,
				}); err != nil {
					log.Printf("Error sending conversation update: %v", err)
					return
				}
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			writer.writeJSON(Message{Type: "error", Content: "Invalid message payload"})
			continue
		}

		switch msg.Type {
		case "message":
			h.handleChatMessage(ctx, writer, currentUser, msg)
		default:
			log.Printf("Unknown websocket message type: %s", msg.Type)
		}
	}
}

func (h *Handler) handleChatMessage(ctx context.Context, writer *connWriter, user *models.User, msg Message) {
	if msg.Content == "" {
		writer.writeJSON(Message{Type: "error", Content: "Message is required"})
		return
	}

	reply, conversationID, err := h.turnService.RunUserTurn(ctx, user, msg.ConversationID, msg.Content)
	if err != nil {
		writer.writeJSON(Message{
			Type:           "error",
			Content:        fmt.Sprintf("Failed to process message: %v", err),
			ConversationID: msg.ConversationID,
		})
		return
	}

	if err := writer.writeJSON(Message{
		Type:           "reply",
		Content:        reply,
		ConversationID: conversationID,
	}); err != nil {
		log.Printf("Error sending reply: %v", err)
	}
}
