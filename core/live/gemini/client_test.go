package gemini

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/souschef/voice-core/core/audio"
	"github.com/souschef/voice-core/core/live"
)

func TestBuildSetupCarriesSessionConfiguration(t *testing.T) {
	setup := buildSetup(live.Config{
		Voice:             "Zephyr",
		SystemInstruction: "You are a sous chef.",
		Tools: []live.ToolDescriptor{
			{Name: "navigate_to_step", Description: "Move to a recipe step"},
			{Name: "set_timer", Description: "Start a countdown"},
		},
		InputEncoding:    audio.CaptureEncoding(),
		OutputEncoding:   audio.PlaybackEncoding(),
		TranscribeInput:  true,
		TranscribeOutput: true,
	})

	raw, err := json.Marshal(clientMessage{Setup: setup})
	if err != nil {
		t.Fatalf("expected setup message to marshal, got %v", err)
	}

	payload := string(raw)
	for _, want := range []string{
		`"models/` + DefaultModel + `"`,
		`"voiceName":"Zephyr"`,
		`"responseModalities":["AUDIO"]`,
		`"text":"You are a sous chef."`,
		`"name":"navigate_to_step"`,
		`"name":"set_timer"`,
		`"inputAudioTranscription":{}`,
		`"outputAudioTranscription":{}`,
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("expected setup payload to contain %s, got %s", want, payload)
		}
	}
}

func TestDispatchRoutesCombinedServerContent(t *testing.T) {
	raw := `{
		"serverContent": {
			"inputTranscription": {"text": "Hel"},
			"outputTranscription": {"text": "Sure"},
			"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "AAAA"}}]},
			"turnComplete": true
		}
	}`
	var message serverMessage
	if err := json.Unmarshal([]byte(raw), &message); err != nil {
		t.Fatalf("expected server message to parse, got %v", err)
	}

	var userText, modelText, audioPayload string
	turnCompletions := 0
	dispatch(message, live.Callbacks{
		OnUserTranscript:  func(text string) { userText += text },
		OnModelTranscript: func(text string) { modelText += text },
		OnAudioChunk:      func(payload string) { audioPayload = payload },
		OnTurnComplete:    func() { turnCompletions++ },
	})

	if userText != "Hel" {
		t.Fatalf("expected user transcript fragment, got %q", userText)
	}
	if modelText != "Sure" {
		t.Fatalf("expected model transcript fragment, got %q", modelText)
	}
	if audioPayload != "AAAA" {
		t.Fatalf("expected inline audio payload, got %q", audioPayload)
	}
	if turnCompletions != 1 {
		t.Fatalf("expected exactly one turn completion, got %d", turnCompletions)
	}
}

func TestDispatchRoutesToolCallBatch(t *testing.T) {
	raw := `{
		"toolCall": {
			"functionCalls": [
				{"id": "call-1", "name": "set_timer", "args": {"durationSeconds": 300, "label": "rice"}},
				{"id": "call-2", "name": "navigate_to_step", "args": {"stepNumber": 3}}
			]
		}
	}`
	var message serverMessage
	if err := json.Unmarshal([]byte(raw), &message); err != nil {
		t.Fatalf("expected server message to parse, got %v", err)
	}

	var batch []live.ToolCall
	dispatch(message, live.Callbacks{OnToolCalls: func(calls []live.ToolCall) { batch = calls }})

	if len(batch) != 2 {
		t.Fatalf("expected two tool calls in batch, got %d", len(batch))
	}
	if batch[0].ID != "call-1" || batch[0].Name != "set_timer" {
		t.Fatalf("unexpected first call: %+v", batch[0])
	}
	if label, ok := batch[0].Args["label"].(string); !ok || label != "rice" {
		t.Fatalf("expected label argument to survive, got %+v", batch[0].Args)
	}
	if batch[1].ID != "call-2" || batch[1].Name != "navigate_to_step" {
		t.Fatalf("unexpected second call: %+v", batch[1])
	}
}

func TestDispatchRoutesInterruption(t *testing.T) {
	var message serverMessage
	if err := json.Unmarshal([]byte(`{"serverContent": {"interrupted": true}}`), &message); err != nil {
		t.Fatalf("expected server message to parse, got %v", err)
	}

	interruptions := 0
	dispatch(message, live.Callbacks{OnInterrupted: func() { interruptions++ }})

	if interruptions != 1 {
		t.Fatalf("expected exactly one interruption, got %d", interruptions)
	}
}

func TestDispatchIgnoresUnconfiguredCallbacks(t *testing.T) {
	var message serverMessage
	if err := json.Unmarshal([]byte(`{"serverContent": {"turnComplete": true}}`), &message); err != nil {
		t.Fatalf("expected server message to parse, got %v", err)
	}

	// Must not panic with a zero callback set.
	dispatch(message, live.Callbacks{})
}
