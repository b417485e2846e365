package protocol

import "encoding/json"

// MessageType enumerates the live-feed message types.
type MessageType string

const (
	// Server -> subscriber
	MsgHistory MessageType = "history"
	MsgTurn    MessageType = "turn"
	MsgError   MessageType = "error"
)

// Envelope is the outer JSON wrapper for all live-feed websocket messages.
type Envelope struct {
	Type    MessageType     `json:"type"`
	UID     string          `json:"uid"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TurnPayload is one conversation turn as it appears on the wire.
type TurnPayload struct {
	Role    string        `json:"role"`
	Content string        `json:"content,omitempty"`
	Parts   []PartPayload `json:"parts,omitempty"`
}

// PartPayload is one element of a structured turn.
type PartPayload struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// HistoryPayload replays the full session transcript on subscription.
type HistoryPayload struct {
	SessionID string        `json:"sessionId"`
	Turns     []TurnPayload `json:"turns"`
}

// ErrorPayload carries a one-line failure message to the subscriber.
type ErrorPayload struct {
	Message string `json:"message"`
}
