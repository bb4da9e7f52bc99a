// File: services/intelligence/geminiClient.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"chatbook/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "models/gemini-1.5-flash"

// generator is the slice of *genai.GenerativeModel the classifier needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier classifies messages with Gemini using a JSON response schema so
// the reply always has the action/response/service/preferred_time shape.
type GeminiClassifier struct {
	client   *genai.Client
	modelFor func(systemPrompt string) generator
}

func NewGeminiClassifier(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is empty")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g := &GeminiClassifier{client: client}
	g.modelFor = func(systemPrompt string) generator {
		// GenerativeModel carries per-call settings, so each classification gets its own.
		model := client.GenerativeModel(modelName)
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = responseSchema()
		model.SetTemperature(0.2)
		return model
	}
	return g, nil
}

func (g *GeminiClassifier) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiClassifier) Classify(ctx context.Context, systemContext, userText string) (*models.ClassifierResult, error) {
	resp, err := g.modelFor(systemContext).GenerateContent(ctx, genai.Text(userText))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", ErrUnusableOutput)
	}
	return decodeClassifierResult(raw)
}

func responseSchema() *genai.Schema {
	actions := make([]string, 0, len(models.Actions))
	for _, a := range models.Actions {
		actions = append(actions, string(a))
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"action":         {Type: genai.TypeString, Format: "enum", Enum: actions},
			"response":       {Type: genai.TypeString},
			"service":        {Type: genai.TypeString},
			"preferred_time": {Type: genai.TypeString, Description: "Natural language preferred time expression, if any."},
		},
		Required: []string{"action", "response"},
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return strings.TrimSpace(sb.String())
}

// decodeClassifierResult tolerates a fenced ```json block around the object.
func decodeClassifierResult(raw string) (*models.ClassifierResult, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var out models.ClassifierResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableOutput, err)
	}
	out.Action = models.Action(strings.ToUpper(strings.TrimSpace(string(out.Action))))
	if !out.Action.Valid() {
		return nil, fmt.Errorf("%w: action %q", ErrUnusableOutput, out.Action)
	}
	out.Response = strings.TrimSpace(out.Response)
	out.Service = strings.TrimSpace(out.Service)
	out.PreferredTime = strings.TrimSpace(out.PreferredTime)
	return &out, nil
}
