package widget

// Event is a discrete message delivered to the controller's transition
// function. Collaborator callbacks are represented as events and processed
// one at a time, which preserves single-threaded ordering without callback
// nesting. The set is closed.
type Event interface {
	eventName() string
}

// RecognitionStarted reports that the microphone is capturing.
type RecognitionStarted struct{}

// RecognitionResult carries one final transcribed utterance.
type RecognitionResult struct {
	Text string
}

// RecognitionError reports a capture failure (permission, device, no-speech).
type RecognitionError struct {
	Code string
}

// RecognitionEnded reports that the recognizer stopped, for any reason.
type RecognitionEnded struct{}

// SpeechStarted reports that synthesized playback began.
type SpeechStarted struct{}

// SpeechEnded reports that synthesized playback finished naturally.
type SpeechEnded struct{}

// replyReceived and replyFailed close the network round trip; they are
// dispatched internally by the send goroutine.
type replyReceived struct {
	Text string
}

type replyFailed struct {
	Err error
}

func (RecognitionStarted) eventName() string { return "recognition_started" }
func (RecognitionResult) eventName() string  { return "recognition_result" }
func (RecognitionError) eventName() string   { return "recognition_error" }
func (RecognitionEnded) eventName() string   { return "recognition_ended" }
func (SpeechStarted) eventName() string      { return "speech_started" }
func (SpeechEnded) eventName() string        { return "speech_ended" }
func (replyReceived) eventName() string      { return "reply_received" }
func (replyFailed) eventName() string        { return "reply_failed" }
