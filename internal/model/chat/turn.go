package chat

import (
	"encoding/base64"
	"fmt"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType distinguishes structured content parts.
type PartType string

const (
	PartTypeText     PartType = "text"
	PartTypeImageURL PartType = "image_url"
)

// ContentPart is one element of a structured turn: either plain text or an
// image referenced by a data URI.
type ContentPart struct {
	Type     PartType `json:"type"`
	Text     string   `json:"text,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// Turn is one message in a conversation. Content carries plain text; Parts,
// when non-empty, carries structured multimodal content and takes precedence.
// Turns are immutable once appended to a session.
type Turn struct {
	Role    Role          `json:"role"`
	Content string        `json:"content,omitempty"`
	Parts   []ContentPart `json:"parts,omitempty"`
}

// TextTurn builds a plain-text turn.
func TextTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}

// ImageTurn builds a two-part user turn: the accompanying text plus the image
// embedded as a base64 data URI, the shape multimodal chat APIs expect.
func ImageTurn(role Role, text string, image []byte, mimeType string) Turn {
	uri := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	return Turn{
		Role: role,
		Parts: []ContentPart{
			{Type: PartTypeText, Text: text},
			{Type: PartTypeImageURL, ImageURL: uri},
		},
	}
}
