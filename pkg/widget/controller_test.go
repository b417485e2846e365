package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeRecognizer struct {
	mu         sync.Mutex
	startCalls int
	stopCalls  int
	startErr   error
}

func (f *fakeRecognizer) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.startCalls++
	return nil
}

func (f *fakeRecognizer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
}

func (f *fakeRecognizer) starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls
}

func (f *fakeRecognizer) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

type fakeSynthesizer struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
}

func (f *fakeSynthesizer) Speak(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
}

func (f *fakeSynthesizer) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeSynthesizer) utterances() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

type fakeGateway struct {
	mu    sync.Mutex
	reply string
	err   error
	reqs  []SendRequest
}

func (f *fakeGateway) Send(_ context.Context, req SendRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGateway) requests() []SendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SendRequest(nil), f.reqs...)
}

type fakePreview struct {
	mu       sync.Mutex
	releases int
}

func (f *fakePreview) URL() string { return "blob:test" }

func (f *fakePreview) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
}

func (f *fakePreview) released() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases
}

func newTestController() (*Controller, *fakeRecognizer, *fakeSynthesizer, *fakeGateway) {
	rec := &fakeRecognizer{}
	synth := &fakeSynthesizer{}
	gw := &fakeGateway{reply: "assistant reply"}
	c := New(Config{Recognizer: rec, Synthesizer: synth, Gateway: gw})
	return c, rec, synth, gw
}

// waitFor polls until cond holds or the deadline passes. The reply leg of a
// send runs on its own goroutine, so reply-dependent assertions need it.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestStartSpeaksGreeting(t *testing.T) {
	c, _, synth, _ := newTestController()
	c.Start()

	snap := c.Snapshot()
	if len(snap.Transcript) != 1 || snap.Transcript[0].Role != RoleAssistant {
		t.Fatalf("expected one assistant greeting entry, got %+v", snap.Transcript)
	}
	if got := synth.utterances(); len(got) != 1 || !strings.HasPrefix(got[0], "Hello") {
		t.Fatalf("greeting was not spoken: %v", got)
	}
}

func TestMicRefusedWithoutScenario(t *testing.T) {
	c, rec, _, _ := newTestController()

	c.ToggleMic()

	if rec.starts() != 0 {
		t.Fatal("mic must not start before a scenario is selected")
	}
}

func TestMicRefusedWhileSpeaking(t *testing.T) {
	c, rec, _, _ := newTestController()
	c.SelectScenario("technicalAssistant")
	c.Dispatch(SpeechStarted{})

	c.ToggleMic()
	if rec.starts() != 0 {
		t.Fatal("mic must not start while the assistant is speaking")
	}

	c.Dispatch(SpeechEnded{})
	c.ToggleMic()
	if rec.starts() != 1 {
		t.Fatal("mic should start once speech has ended")
	}
}

func TestMicStartFailureLeavesMicOff(t *testing.T) {
	c, rec, _, _ := newTestController()
	rec.startErr = errors.New("permission denied")
	c.SelectScenario("technicalAssistant")

	c.ToggleMic()

	if c.Snapshot().MicActive {
		t.Fatal("UI must not believe a failed mic is on")
	}
}

// The turn-taking protocol: mic on, assistant speaks, mic observed off during
// speech, speech ends, mic observed on again.
func TestSpeakingSuspendsAndResumesMic(t *testing.T) {
	c, rec, _, _ := newTestController()
	c.SelectScenario("technicalAssistant")
	c.Dispatch(SpeechEnded{})

	c.ToggleMic()
	c.Dispatch(RecognitionStarted{})
	if !c.Snapshot().MicActive {
		t.Fatal("mic should be active before speech begins")
	}

	c.SetInput("hello")
	c.Send()

	waitFor(t, func() bool { return !c.Snapshot().AwaitingReply })

	// The reply triggered speak, which requested a mic stop; the recognizer
	// confirms, then playback runs.
	if rec.stops() == 0 {
		t.Fatal("speak must request a mic stop")
	}
	c.Dispatch(RecognitionEnded{})
	c.Dispatch(SpeechStarted{})

	snap := c.Snapshot()
	if snap.MicActive {
		t.Fatal("mic observed on during speech")
	}
	if !snap.Speaking {
		t.Fatal("expected speaking state")
	}

	startsBefore := rec.starts()
	c.Dispatch(SpeechEnded{})
	if rec.starts() != startsBefore+1 {
		t.Fatal("mic that was active before speech must be restarted after it")
	}
	c.Dispatch(RecognitionStarted{})
	if !c.Snapshot().MicActive {
		t.Fatal("mic observed off after speech ended")
	}
}

func TestMicNotResumedWhenItWasOff(t *testing.T) {
	c, rec, _, _ := newTestController()
	c.SelectScenario("technicalAssistant")
	c.Dispatch(SpeechStarted{})
	c.Dispatch(SpeechEnded{})

	if rec.starts() != 0 {
		t.Fatal("a mic that was off before speech must stay off after it")
	}
}

func TestRecognitionResultSendsTranscribedText(t *testing.T) {
	c, _, _, gw := newTestController()
	c.SelectScenario("technicalAssistant")
	c.SetInput("half-typed draft")

	c.Dispatch(RecognitionResult{Text: "my phone screen is cracked"})

	waitFor(t, func() bool { return len(gw.requests()) == 1 })
	req := gw.requests()[0]
	if req.Message != "my phone screen is cracked" {
		t.Fatalf("expected transcribed text to be sent, got %q", req.Message)
	}
	if req.Scenario != "technicalAssistant" {
		t.Fatalf("unexpected scenario: %q", req.Scenario)
	}
	if req.SessionID != c.SessionID() {
		t.Fatal("send must carry the controller session id")
	}
}

func TestSendRequiresScenario(t *testing.T) {
	c, _, _, gw := newTestController()
	c.SetInput("hello")
	c.Send()

	time.Sleep(10 * time.Millisecond)
	if len(gw.requests()) != 0 {
		t.Fatal("send must be refused before a scenario is selected")
	}
}

func TestSendRequiresTextOrImage(t *testing.T) {
	c, _, _, gw := newTestController()
	c.SelectScenario("customerSupport")
	entries := len(c.Snapshot().Transcript)

	c.SetInput("   ")
	c.Send()

	time.Sleep(10 * time.Millisecond)
	if len(gw.requests()) != 0 {
		t.Fatal("empty send must be a no-op")
	}
	if len(c.Snapshot().Transcript) != entries {
		t.Fatal("empty send must not touch the transcript")
	}
}

func TestSendAppendsOptimisticallyAndSpeaksReply(t *testing.T) {
	c, _, synth, _ := newTestController()
	c.SelectScenario("customerSupport")

	c.SetInput("my order is late")
	c.Send()

	snap := c.Snapshot()
	foundUser := false
	for _, entry := range snap.Transcript {
		if entry.Role == RoleUser && entry.Content == "my order is late" {
			foundUser = true
		}
	}
	if !foundUser {
		t.Fatalf("optimistic user entry missing: %+v", snap.Transcript)
	}
	if snap.Input != "" {
		t.Fatal("input field must be cleared on send")
	}

	waitFor(t, func() bool {
		entries := c.Snapshot().Transcript
		return entries[len(entries)-1].Content == "assistant reply"
	})
	waitFor(t, func() bool {
		for _, u := range synth.utterances() {
			if u == "assistant reply" {
				return true
			}
		}
		return false
	})
}

func TestSendFailureLeavesNoAssistantEntry(t *testing.T) {
	c, _, _, gw := newTestController()
	gw.err = errors.New("network down")
	c.SelectScenario("customerSupport")

	c.SetInput("hello")
	c.Send()

	waitFor(t, func() bool { return !c.Snapshot().AwaitingReply })

	snap := c.Snapshot()
	last := snap.Transcript[len(snap.Transcript)-1]
	if last.Role != RoleUser {
		t.Fatalf("failed send must leave the transcript without an assistant entry, got %+v", last)
	}
}

func TestAttachmentReleasedExactlyOnceEvenOnFailedSend(t *testing.T) {
	c, _, _, gw := newTestController()
	gw.err = errors.New("network down")
	c.SelectScenario("technicalAssistant")

	preview := &fakePreview{}
	c.AttachImage(Attachment{Name: "photo.png", Mime: "image/png", Data: []byte{1}}, preview)

	c.Send()

	waitFor(t, func() bool { return len(gw.requests()) == 1 })
	waitFor(t, func() bool { return !c.Snapshot().AwaitingReply })

	if got := gw.requests()[0]; got.Image == nil || got.Message != "" {
		t.Fatalf("image-only send malformed: %+v", got)
	}
	if preview.released() != 1 {
		t.Fatalf("preview released %d times, want 1", preview.released())
	}
	if c.Snapshot().HasAttachment {
		t.Fatal("attachment must be cleared by the send")
	}

	// Later clears must not double-release.
	c.ClearAttachment()
	c.Close()
	if preview.released() != 1 {
		t.Fatalf("preview released %d times after cleanup, want 1", preview.released())
	}
}

func TestAttachmentReplacementReleasesPrevious(t *testing.T) {
	c, _, _, _ := newTestController()

	first := &fakePreview{}
	second := &fakePreview{}
	c.AttachImage(Attachment{Name: "a.png", Mime: "image/png"}, first)
	c.AttachImage(Attachment{Name: "b.png", Mime: "image/png"}, second)

	if first.released() != 1 {
		t.Fatal("replaced preview must be released")
	}
	if second.released() != 0 {
		t.Fatal("current preview must stay live")
	}

	c.Close()
	if second.released() != 1 {
		t.Fatal("teardown must release the pending preview")
	}
}

func TestScenarioReselectionIgnored(t *testing.T) {
	c, _, _, gw := newTestController()
	c.SelectScenario("callingAgent")
	c.SelectScenario("customerSupport")

	if c.Snapshot().Scenario != "callingAgent" {
		t.Fatal("scenario must be immutable once selected")
	}

	c.SetInput("book me in")
	c.Send()
	waitFor(t, func() bool { return len(gw.requests()) == 1 })
	if gw.requests()[0].Scenario != "callingAgent" {
		t.Fatal("sends must carry the originally selected scenario")
	}
}

func TestDispatchAfterCloseIsInert(t *testing.T) {
	c, rec, _, _ := newTestController()
	c.SelectScenario("technicalAssistant")
	c.Close()

	c.Dispatch(SpeechEnded{})
	c.Dispatch(RecognitionStarted{})

	if c.Snapshot().MicActive {
		t.Fatal("closed controller must not change state")
	}
	if rec.starts() != 0 {
		t.Fatal("closed controller must not drive collaborators")
	}
}
