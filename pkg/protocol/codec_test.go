package protocol

import "testing"

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := HistoryPayload{
		SessionID: "s1",
		Turns: []TurnPayload{
			{Role: "system", Content: "prompt"},
			{Role: "user", Parts: []PartPayload{
				{Type: "text", Text: "look at this"},
				{Type: "image_url", ImageURL: "data:image/png;base64,AAAA"},
			}},
		},
	}

	data, err := Marshal(MsgHistory, payload)
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}

	msgType, raw, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if msgType != MsgHistory {
		t.Fatalf("expected %s, got %s", MsgHistory, msgType)
	}

	got, err := UnmarshalPayload[HistoryPayload](raw)
	if err != nil {
		t.Fatalf("UnmarshalPayload err: %v", err)
	}
	if got.SessionID != "s1" || len(got.Turns) != 2 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Turns[1].Parts[1].ImageURL != "data:image/png;base64,AAAA" {
		t.Fatalf("image part lost in transit: %+v", got.Turns[1])
	}
}

func TestUnmarshalRejectsMissingType(t *testing.T) {
	if _, _, err := Unmarshal([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("expected error for envelope without type")
	}
}

func TestMarshalNilPayload(t *testing.T) {
	data, err := Marshal(MsgError, nil)
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}
	msgType, raw, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if msgType != MsgError || len(raw) != 0 {
		t.Fatalf("unexpected envelope: type=%s payload=%s", msgType, raw)
	}
}
