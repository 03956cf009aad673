package substitutions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultGenerateURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"

// GeminiLookup resolves substitutes with a single non-streaming model call.
type GeminiLookup struct {
	url    string
	apiKey string
	client *http.Client
}

type GeminiLookupOption func(*GeminiLookup)

// WithGenerateURL overrides the REST endpoint, used for test servers.
func WithGenerateURL(url string) GeminiLookupOption {
	return func(l *GeminiLookup) { l.url = url }
}

// WithAPIKey sets the API key explicitly instead of reading the environment.
func WithAPIKey(apiKey string) GeminiLookupOption {
	return func(l *GeminiLookup) { l.apiKey = apiKey }
}

func NewGeminiLookup(opts ...GeminiLookupOption) *GeminiLookup {
	lookup := &GeminiLookup{
		url:    defaultGenerateURL,
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(lookup)
	}
	return lookup
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (l *GeminiLookup) Substitute(ctx context.Context, ingredient, recipeTitle string) (string, error) {
	ctx, span := tracer.Start(ctx, "lookup ingredient substitute")
	defer span.End()
	span.SetAttributes(attribute.String("substitute.ingredient", ingredient))

	apiKey := l.apiKey
	if apiKey == "" {
		var ok bool
		if apiKey, ok = os.LookupEnv("GEMINI_API_KEY"); !ok {
			return "", fmt.Errorf("gemini api key not found")
		}
	}

	prompt := fmt.Sprintf(
		"Suggest up to three practical substitutes for %q in the recipe %q. Answer in one short sentence.",
		ingredient, recipeTitle)
	requestBodyBytes, err := json.Marshal(generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		recordedErr := fmt.Errorf("error sending request: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return "", recordedErr
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("error parsing response body: %w", err)
	}

	texts := []string{}
	for _, candidate := range parsed.Candidates {
		for _, candidatePart := range candidate.Content.Parts {
			if candidatePart.Text != "" {
				texts = append(texts, candidatePart.Text)
			}
		}
		break
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("no substitute suggestion in response")
	}

	return strings.TrimSpace(strings.Join(texts, " ")), nil
}
