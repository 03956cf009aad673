// Package gemini implements the live session transport over the Gemini
// BidiGenerateContent websocket protocol.
package gemini

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/codes"

	"github.com/souschef/voice-core/core/live"
	"github.com/souschef/voice-core/internal/utils"
)

const (
	defaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	// DefaultModel is the native-audio duplex model the cooking session uses.
	DefaultModel = "gemini-2.5-flash-native-audio-preview-09-2025"

	handshakeTimeout = 15 * time.Second
)

// Client opens live sessions against the Gemini websocket endpoint.
type Client struct {
	endpoint string
	apiKey   string
}

type ClientOption func(*Client)

// WithEndpoint overrides the websocket endpoint, used for test servers.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithAPIKey sets the API key explicitly instead of reading the environment.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{endpoint: defaultEndpoint}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Connect dials the websocket, performs the setup handshake and starts the
// read loop. The returned session is ready to stream audio.
func (c *Client) Connect(ctx context.Context, config live.Config, callbacks live.Callbacks) (live.Session, error) {
	ctx, span := tracer.Start(ctx, "connect live session")
	defer span.End()

	apiKey := c.apiKey
	if apiKey == "" {
		var ok bool
		if apiKey, ok = os.LookupEnv("GEMINI_API_KEY"); !ok {
			return nil, fmt.Errorf("gemini api key not found")
		}
	}

	connectURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	queryParams := connectURL.Query()
	queryParams.Set("key", apiKey)
	connectURL.RawQuery = queryParams.Encode()

	dialCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, connectURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to gemini: %w", err)
	}

	if err := conn.WriteJSON(clientMessage{Setup: buildSetup(config)}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send session setup: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	var ack serverMessage
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		recordedErr := fmt.Errorf("failed to read setup acknowledgement: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return nil, recordedErr
	}
	if ack.SetupComplete == nil {
		conn.Close()
		if ack.Error != nil {
			return nil, fmt.Errorf("session setup rejected: %s", ack.Error.Message)
		}
		return nil, fmt.Errorf("session setup rejected")
	}
	conn.SetReadDeadline(time.Time{})

	session := &liveSession{conn: conn}
	go session.readAndProcessMessages(callbacks)

	return session, nil
}

func buildSetup(config live.Config) *setupPayload {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	setup := &setupPayload{
		Model: "models/" + model,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
	}
	if config.Voice != "" {
		setup.GenerationConfig.SpeechConfig = &speechConfig{
			VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: config.Voice}},
		}
	}
	if config.SystemInstruction != "" {
		setup.SystemInstruction = &content{Parts: []part{{Text: config.SystemInstruction}}}
	}
	if len(config.Tools) > 0 {
		declarations := make([]functionDeclaration, 0, len(config.Tools))
		for _, tool := range config.Tools {
			declarations = append(declarations, functionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		setup.Tools = []toolDeclaration{{FunctionDeclarations: declarations}}
	}
	if config.TranscribeInput {
		setup.InputAudioTranscription = utils.Ptr(struct{}{})
	}
	if config.TranscribeOutput {
		setup.OutputAudioTranscription = utils.Ptr(struct{}{})
	}

	return setup
}

type liveSession struct {
	conn *websocket.Conn

	connMu    sync.Mutex
	closeOnce sync.Once
	closed    bool
}

func (s *liveSession) SendAudioChunk(mimeType, payload string) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.closed {
		return fmt.Errorf("session closed")
	}
	if err := s.conn.WriteJSON(clientMessage{
		RealtimeInput: &realtimeInputPayload{MediaChunks: []inlineData{{MimeType: mimeType, Data: payload}}},
	}); err != nil {
		return fmt.Errorf("failed to write audio chunk: %w", err)
	}
	return nil
}

func (s *liveSession) SendToolResults(results ...live.ToolResult) error {
	if len(results) == 0 {
		return nil
	}

	responses := make([]functionResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, functionResponse{
			ID:       result.ID,
			Name:     result.Name,
			Response: functionResultBody{Result: result.Payload},
		})
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.closed {
		return fmt.Errorf("session closed")
	}
	if err := s.conn.WriteJSON(clientMessage{ToolResponse: &toolResponsePayload{FunctionResponses: responses}}); err != nil {
		return fmt.Errorf("failed to write tool results: %w", err)
	}
	return nil
}

func (s *liveSession) Close() error {
	s.closeOnce.Do(func() {
		s.connMu.Lock()
		s.closed = true
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.connMu.Unlock()
		s.conn.Close()
	})
	return nil
}

func (s *liveSession) readAndProcessMessages(callbacks live.Callbacks) {
	for {
		var message serverMessage
		if err := s.conn.ReadJSON(&message); err != nil {
			s.connMu.Lock()
			closedLocally := s.closed
			s.connMu.Unlock()

			if closedLocally || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				if callbacks.OnClosed != nil {
					callbacks.OnClosed(nil)
				}
				return
			}

			logger.Warn("live session read failed", "error", err)
			if callbacks.OnClosed != nil {
				callbacks.OnClosed(err)
			}
			return
		}

		dispatch(message, callbacks)
	}
}

// dispatch forwards one server message to the configured callbacks. A single
// message may carry transcript fragments, tool calls, inline audio and the
// turn boundary at once; dispatch order matches field significance: text
// first, then tool calls, then audio, then the boundary.
func dispatch(message serverMessage, callbacks live.Callbacks) {
	if message.Error != nil && callbacks.OnError != nil {
		callbacks.OnError(fmt.Errorf("live session error: %s", message.Error.Message))
	}

	if serverContent := message.ServerContent; serverContent != nil {
		if serverContent.InputTranscription != nil && callbacks.OnUserTranscript != nil {
			callbacks.OnUserTranscript(serverContent.InputTranscription.Text)
		}
		if serverContent.OutputTranscription != nil && callbacks.OnModelTranscript != nil {
			callbacks.OnModelTranscript(serverContent.OutputTranscription.Text)
		}
		if serverContent.Interrupted && callbacks.OnInterrupted != nil {
			callbacks.OnInterrupted()
		}
	}

	if message.ToolCall != nil && callbacks.OnToolCalls != nil {
		calls := make([]live.ToolCall, 0, len(message.ToolCall.FunctionCalls))
		for _, call := range message.ToolCall.FunctionCalls {
			calls = append(calls, live.ToolCall{ID: call.ID, Name: call.Name, Args: call.Args})
		}
		callbacks.OnToolCalls(calls)
	}

	if serverContent := message.ServerContent; serverContent != nil {
		if modelTurn := serverContent.ModelTurn; modelTurn != nil && callbacks.OnAudioChunk != nil {
			for _, turnPart := range modelTurn.Parts {
				if turnPart.InlineData != nil && turnPart.InlineData.Data != "" {
					callbacks.OnAudioChunk(turnPart.InlineData.Data)
				}
			}
		}
		if serverContent.TurnComplete && callbacks.OnTurnComplete != nil {
			callbacks.OnTurnComplete()
		}
	}
}
