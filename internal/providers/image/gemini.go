package image

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash-exp"

// GeminiGenerator drives Google's generative image API through the official
// SDK. One instance is shared across requests; the underlying client is
// safe for concurrent use.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator dials the Gemini API. Model may be empty to use the
// default image-capable model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: API key is missing")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Close releases the underlying API connection.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Generate sends the prompt plus up to maxReferenceImages likeness
// references and returns the first image payload in the response.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, refs [][]byte) ([]byte, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.7)

	var parts []genai.Part
	refs = truncateRefs(refs)
	if len(refs) > 0 {
		parts = append(parts, genai.Text("Using these reference images of the person:"))
		for _, ref := range refs {
			parts = append(parts, genai.ImageData(sniffFormat(ref), ref))
		}
	}
	parts = append(parts, genai.Text(framePrompt(prompt)))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, &GenerationError{Message: err.Error()}
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return blob.Data, nil
			}
		}
	}
	return nil, &GenerationError{Message: "no image payload in response"}
}

// framePrompt wraps the scenario prompt with the fixed quality requirements
// used for every calendar render.
func framePrompt(prompt string) string {
	return fmt.Sprintf(`Create a photorealistic, high-quality image:

%s

Requirements:
- High resolution and detailed
- Professional photography quality
- Suitable for calendar printing
- Center-focused composition
- Vibrant colors
- If person reference images provided, maintain their facial features and likeness`, prompt)
}

// sniffFormat guesses the reference image format for the SDK's inline-data
// part. Uploads are normalized to JPEG, so that is the fallback.
func sniffFormat(data []byte) string {
	if bytes.HasPrefix(data, []byte("\x89PNG")) {
		return "png"
	}
	return "jpeg"
}

var _ Generator = (*GeminiGenerator)(nil)
