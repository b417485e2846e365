package widget

import "context"

// Recognizer abstracts one-shot speech capture. Start begins listening for a
// single utterance; Stop requests an early end. Outcomes arrive as events
// (RecognitionStarted, RecognitionResult, RecognitionError, RecognitionEnded)
// dispatched to the controller. Implementations must deliver events
// asynchronously, never from inside Start or Stop.
type Recognizer interface {
	Start() error
	Stop()
}

// Synthesizer abstracts text-to-speech playback. Speak queues an utterance,
// Cancel discards anything queued or playing. Playback progress arrives as
// SpeechStarted/SpeechEnded events, delivered asynchronously.
type Synthesizer interface {
	Speak(text string)
	Cancel()
}

// SendRequest is one outbound chat turn.
type SendRequest struct {
	SessionID string
	Scenario  string
	Message   string
	Image     *Attachment
}

// Gateway delivers a turn to the chat backend and returns the assistant reply.
type Gateway interface {
	Send(ctx context.Context, req SendRequest) (string, error)
}

// Attachment is a pending image selected through the file picker.
type Attachment struct {
	Name string
	Mime string
	Data []byte
}

// Preview is the locally rendered handle derived from an attachment (an
// object URL in a browser host). The controller releases it on every exit
// path: replace, clear, send, and teardown.
type Preview interface {
	URL() string
	Release()
}
