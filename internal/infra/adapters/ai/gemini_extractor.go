package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"matchday-reports/internal/domain/ports/adapter"
)

var _ adapter.MomentExtractor = (*GeminiExtractor)(nil)

// GeminiExtractor extracts match moments with the official Gemini SDK using
// structured JSON output.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiExtractor{client: c, model: model}, nil
}

var momentsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"gimp_name": {
			Type:        genai.TypeString,
			Description: "Name of gimp of the day, if mentioned.",
			Nullable:    genai.Ptr(true),
		},
		"champagne_moment": {
			Type:        genai.TypeString,
			Description: "Best moment excerpt, if mentioned.",
			Nullable:    genai.Ptr(true),
		},
	},
}

func (g *GeminiExtractor) ExtractMoments(ctx context.Context, content string) (*adapter.Moments, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(buildExtractPrompt(content)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   momentsSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini extract: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini response was empty")
	}

	var m adapter.Moments
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("gemini extract decode: %w", err)
	}
	return &m, nil
}

// buildExtractPrompt is shared by all extractor backends so they produce the
// same two fields under the same rules.
func buildExtractPrompt(content string) string {
	return "Extract the following fields from this 5-a-side match report.\n" +
		"- gimp_name: who is 'gimp of the day' (if explicitly implied)\n" +
		"- champagne_moment: the best moment as a short excerpt\n\n" +
		"Rules:\n" +
		"- If a field is not present, return null for that field.\n" +
		"- Output will be validated against the provided JSON schema.\n\n" +
		"REPORT:\n" + content + "\n"
}
