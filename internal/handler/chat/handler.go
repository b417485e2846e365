package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"voicewidget/internal/model/chat"
	"voicewidget/internal/model/scenario"
	"voicewidget/internal/service/ai"
	"voicewidget/internal/service/session"
	"voicewidget/pkg/utils"
)

const maxUploadBytes = 32 << 20

// defaultImagePrompt accompanies an image sent without any message text.
const defaultImagePrompt = "Please analyze this image."

// Completer is the external AI collaborator: full turn history in, one
// assistant reply out.
type Completer interface {
	Complete(ctx context.Context, turns []chat.Turn) (string, error)
}

// Handler is the chat gateway. It validates incoming turns, maintains the
// per-session history, and relays the conversation to the completion service.
type Handler struct {
	sessions  *session.Store
	scenarios scenario.Store
	completer Completer
}

// New creates the chat gateway handler.
func New(sessions *session.Store, scenarios scenario.Store, completer Completer) *Handler {
	return &Handler{
		sessions:  sessions,
		scenarios: scenarios,
		completer: completer,
	}
}

// RegisterRoutes mounts the gateway endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

// handleChat accepts one user turn as a multipart form (sessionId, scenario,
// optional message, optional image file) and answers {"reply": ...}.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	sessionID := strings.TrimSpace(r.FormValue("sessionId"))
	scenarioTag := strings.TrimSpace(r.FormValue("scenario"))
	if sessionID == "" || scenarioTag == "" {
		utils.RespondError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	message := strings.TrimSpace(r.FormValue("message"))
	image, mimeType, err := readImage(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read image upload")
		return
	}
	if message == "" && image == nil {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()

	// First message for this id creates the session. The scenario bound here
	// is fixed for the session's lifetime; a different tag on later calls is
	// ignored.
	if !h.sessions.Exists(ctx, sessionID) {
		prompt, err := h.scenarios.SystemPrompt(scenarioTag)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "unknown scenario")
			return
		}
		if err := h.sessions.Create(ctx, sessionID, prompt); err != nil && !errors.Is(err, session.ErrSessionExists) {
			log.Printf("[chat] create session=%s: %v", sessionID, err)
			utils.RespondError(w, http.StatusInternalServerError, "chat processing failed")
			return
		}
	}

	userTurn := chat.TextTurn(chat.RoleUser, message)
	if image != nil {
		text := message
		if text == "" {
			text = defaultImagePrompt
		}
		userTurn = chat.ImageTurn(chat.RoleUser, text, image, mimeType)
	}

	if err := h.sessions.Append(ctx, sessionID, userTurn); err != nil {
		log.Printf("[chat] append user turn session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "chat processing failed")
		return
	}

	history, err := h.sessions.Read(ctx, sessionID)
	if err != nil {
		log.Printf("[chat] read history session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "chat processing failed")
		return
	}

	reply, err := h.completer.Complete(ctx, history)
	if err != nil {
		// Keep upstream detail in the server log only; the client gets the
		// generic failure message.
		if errors.Is(err, ai.ErrEmptyCompletion) {
			log.Printf("[chat] empty completion session=%s", sessionID)
		} else {
			log.Printf("[chat] completion failed session=%s: %v", sessionID, err)
		}
		utils.RespondError(w, http.StatusInternalServerError, "chat processing failed")
		return
	}

	if err := h.sessions.Append(ctx, sessionID, chat.TextTurn(chat.RoleAssistant, reply)); err != nil {
		log.Printf("[chat] append assistant turn session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "chat processing failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// readImage pulls the optional image file out of the form. A missing file is
// not an error.
func readImage(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
