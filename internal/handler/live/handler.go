package live

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"voicewidget/internal/model/chat"
	"voicewidget/internal/service/session"
	"voicewidget/pkg/protocol"
)

// Handler streams a session's transcript over a websocket: the full history
// on connect, then every turn appended afterwards. The widget uses it to
// keep secondary views (or reconnecting tabs) in sync without polling.
type Handler struct {
	sessions *session.Store
	upgrader websocket.Upgrader
}

// New creates the live-feed handler.
func New(sessions *session.Store) *Handler {
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/live/{sessionID}", h.handleLive)
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	// Snapshot and watcher registration happen under one store lock, so a
	// turn appended during the handshake lands in exactly one of the two.
	history, turns, cancel, err := h.sessions.ReadAndSubscribe(ctx, sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] upgrade failed session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	if err := h.writeEnvelope(conn, protocol.MsgHistory, protocol.HistoryPayload{
		SessionID: sessionID,
		Turns:     toWireTurns(history),
	}); err != nil {
		log.Printf("[live] history write failed session=%s: %v", sessionID, err)
		return
	}

	// Read pump: the feed is one-way. A read error is how gorilla surfaces
	// the peer closing the connection; a data frame is flagged so the write
	// loop can reject it. All writes stay on the main goroutine.
	closed := make(chan struct{})
	inbound := make(chan struct{}, 1)
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			select {
			case inbound <- struct{}{}:
			default:
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-inbound:
			err := h.writeEnvelope(conn, protocol.MsgError, protocol.ErrorPayload{
				Message: "inbound messages are not supported",
			})
			if err != nil {
				log.Printf("[live] error write failed session=%s: %v", sessionID, err)
				return
			}
		case turn, ok := <-turns:
			if !ok {
				return
			}
			if err := h.writeEnvelope(conn, protocol.MsgTurn, toWireTurn(turn)); err != nil {
				log.Printf("[live] turn write failed session=%s: %v", sessionID, err)
				return
			}
		}
	}
}

func (h *Handler) writeEnvelope(conn *websocket.Conn, msgType protocol.MessageType, payload interface{}) error {
	data, err := protocol.Marshal(msgType, payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func toWireTurns(turns []chat.Turn) []protocol.TurnPayload {
	wire := make([]protocol.TurnPayload, 0, len(turns))
	for _, t := range turns {
		wire = append(wire, toWireTurn(t))
	}
	return wire
}

func toWireTurn(turn chat.Turn) protocol.TurnPayload {
	payload := protocol.TurnPayload{
		Role:    string(turn.Role),
		Content: turn.Content,
	}
	for _, part := range turn.Parts {
		payload.Parts = append(payload.Parts, protocol.PartPayload{
			Type:     string(part.Type),
			Text:     part.Text,
			ImageURL: part.ImageURL,
		})
	}
	return payload
}
