package widget

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const greeting = "Hello dear. How can I help you today?"

// Entry is one displayed transcript message.
type Entry struct {
	ID      string
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config wires the controller to its collaborators.
type Config struct {
	Recognizer  Recognizer
	Synthesizer Synthesizer
	Gateway     Gateway
}

// Controller owns the interaction state machine of the voice widget: it
// coordinates microphone capture, text-to-speech playback, and outbound chat
// requests so that the widget never listens while speaking and never speaks
// over a pending listen.
//
// All public methods and Dispatch process exactly one event at a time under
// an internal lock, so transitions observe a consistent state. Collaborators
// deliver their callbacks as events via Dispatch from their own goroutines.
type Controller struct {
	mu sync.Mutex

	recognizer  Recognizer
	synthesizer Synthesizer
	gateway     Gateway

	ctx    context.Context
	cancel context.CancelFunc

	sessionID string
	scenario  string
	input     string

	listening     bool
	speaking      bool
	awaitingReply bool
	resumeMic     bool
	closed        bool

	transcript []Entry
	attachment *Attachment
	preview    Preview
}

// New creates a controller bound to a fresh session id. Start must be called
// to deliver the opening greeting.
func New(cfg Config) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		recognizer:  cfg.Recognizer,
		synthesizer: cfg.Synthesizer,
		gateway:     cfg.Gateway,
		ctx:         ctx,
		cancel:      cancel,
		sessionID:   uuid.NewString(),
	}
}

// SessionID returns the opaque id under which all turns of this widget
// instance are grouped on the server.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Start speaks the opening greeting. The widget stays in scenario selection
// until SelectScenario is called.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.appendEntry(RoleAssistant, greeting)
	c.speak(greeting)
}

// SelectScenario fixes the conversational scenario for the lifetime of the
// session and speaks a confirmation. Re-selection after a scenario is active
// is ignored; resetting mid-conversation would silently discard server-side
// history.
func (c *Controller) SelectScenario(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scenario != "" {
		log.Printf("[widget] scenario already selected, ignoring %q", tag)
		return
	}
	c.scenario = tag

	confirmation := fmt.Sprintf("Great! You selected %s. Please tell me your issue.", tag)
	c.appendEntry(RoleAssistant, confirmation)
	c.speak(confirmation)
}

// SetInput mirrors the text field.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// ToggleMic flips microphone capture. Stopping pends until the recognizer
// confirms via RecognitionEnded; starting is refused while speaking, before a
// scenario is chosen, or when already listening.
func (c *Controller) ToggleMic() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listening {
		c.recognizer.Stop()
		return
	}
	c.startMic()
}

// startMic attempts to begin capture. Failures log and leave the mic off so
// the UI never believes a dead microphone is live. Callers hold the lock.
func (c *Controller) startMic() {
	if c.speaking || c.scenario == "" || c.listening {
		return
	}
	if err := c.recognizer.Start(); err != nil {
		log.Printf("[widget] failed to start mic: %v", err)
	}
}

// AttachImage stores a pending image and its preview handle, releasing any
// previous preview.
func (c *Controller) AttachImage(att Attachment, preview Preview) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releasePreview()
	c.attachment = &att
	c.preview = preview
}

// ClearAttachment drops the pending image and releases its preview.
func (c *Controller) ClearAttachment() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releasePreview()
	c.attachment = nil
}

// Send submits the current text input (plus any pending image) as one turn.
func (c *Controller) Send() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send(c.input)
}

// Dispatch feeds one collaborator event through the transition function.
func (c *Controller) Dispatch(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	switch ev := event.(type) {
	case RecognitionStarted:
		c.listening = true
	case RecognitionResult:
		// A completed utterance sends immediately, independent of the text
		// input field.
		c.send(ev.Text)
	case RecognitionError:
		log.Printf("[widget] speech error: %s", ev.Code)
		c.listening = false
	case RecognitionEnded:
		c.listening = false
	case SpeechStarted:
		c.speaking = true
	case SpeechEnded:
		c.speaking = false
		if c.resumeMic {
			c.resumeMic = false
			c.startMic()
		}
	case replyReceived:
		c.awaitingReply = false
		c.appendEntry(RoleAssistant, ev.Text)
		c.speak(ev.Text)
	case replyFailed:
		// No retry and no error bubble: the transcript simply gains no
		// assistant entry.
		c.awaitingReply = false
		log.Printf("[widget] send failed: %v", ev.Err)
	}
}

// Close tears the controller down: cancels playback, stops capture, releases
// the preview handle, and cancels any in-flight send's context.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.synthesizer.Cancel()
	if c.listening {
		c.recognizer.Stop()
	}
	c.releasePreview()
	c.attachment = nil
	c.cancel()
}

// speak cancels any in-progress synthesis, suspends the mic, and remembers
// whether it was active so SpeechEnded can resume it. Callers hold the lock.
func (c *Controller) speak(text string) {
	c.synthesizer.Cancel()

	c.resumeMic = c.listening
	if c.listening {
		c.recognizer.Stop()
	}
	c.synthesizer.Speak(text)
}

// send is the shared submission path for typed and spoken input. Callers
// hold the lock.
func (c *Controller) send(text string) {
	if c.scenario == "" {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" && c.attachment == nil {
		return
	}

	shown := text
	if shown == "" {
		shown = "Image uploaded"
	}
	c.appendEntry(RoleUser, shown)

	req := SendRequest{
		SessionID: c.sessionID,
		Scenario:  c.scenario,
		Message:   text,
		Image:     c.attachment,
	}

	// The attachment and its preview are consumed by this send exactly once,
	// whatever the outcome of the network call.
	c.input = ""
	c.releasePreview()
	c.attachment = nil

	c.awaitingReply = true
	go func() {
		reply, err := c.gateway.Send(c.ctx, req)
		if err != nil {
			c.Dispatch(replyFailed{Err: err})
			return
		}
		c.Dispatch(replyReceived{Text: reply})
	}()
}

// releasePreview drops the current preview handle. Callers hold the lock.
func (c *Controller) releasePreview() {
	if c.preview != nil {
		c.preview.Release()
		c.preview = nil
	}
}

// appendEntry adds one transcript message. Callers hold the lock.
func (c *Controller) appendEntry(role, content string) {
	c.transcript = append(c.transcript, Entry{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
	})
}

// Snapshot is an observable copy of the controller state.
type Snapshot struct {
	Scenario      string
	Input         string
	MicActive     bool
	Speaking      bool
	AwaitingReply bool
	HasAttachment bool
	Transcript    []Entry
}

// Snapshot returns a consistent copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	transcript := make([]Entry, len(c.transcript))
	copy(transcript, c.transcript)

	return Snapshot{
		Scenario:      c.scenario,
		Input:         c.input,
		MicActive:     c.listening,
		Speaking:      c.speaking,
		AwaitingReply: c.awaitingReply,
		HasAttachment: c.attachment != nil,
		Transcript:    transcript,
	}
}
