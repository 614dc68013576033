// Package genai adapts the Gemini API to the service.Generator contract.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"habit-garden/internal/config"
	"habit-garden/internal/domain/service"

	"go.uber.org/zap"
	googleai "google.golang.org/genai"
)

// models is the subset of the SDK's Models the generator calls
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*googleai.Content, config *googleai.GenerateContentConfig) (*googleai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model string, prompt string, config *googleai.GenerateImagesConfig) (*googleai.GenerateImagesResponse, error)
}

// Generator implements service.Generator on top of Gemini
type Generator struct {
	models models
	cfg    config.GenAIConfig
	logger *zap.Logger
}

var _ service.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini API client
func NewGenerator(ctx context.Context, cfg config.GenAIConfig, logger *zap.Logger) (*Generator, error) {
	client, err := googleai.NewClient(ctx, &googleai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: googleai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newGenerator(client.Models, cfg, logger), nil
}

func newGenerator(m models, cfg config.GenAIConfig, logger *zap.Logger) *Generator {
	return &Generator{models: m, cfg: cfg, logger: logger}
}

func userText(text string) []*googleai.Content {
	return []*googleai.Content{{
		Role:  "user",
		Parts: []*googleai.Part{{Text: text}},
	}}
}

func (g *Generator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.cfg.Timeout)
}

func (g *Generator) text(ctx context.Context, kind, prompt string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.cfg.TextModel, userText(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", kind, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%s response had no text", kind)
	}

	g.logger.Debug("genai_text_generated", zap.String("kind", kind), zap.Int("length", len(text)))
	return text, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *googleai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func (g *Generator) Motivation(ctx context.Context, p service.MotivationPrompt) (string, error) {
	prompt, err := motivationPrompt(p)
	if err != nil {
		return "", err
	}
	return g.text(ctx, "motivation", prompt)
}

func (g *Generator) StruggleSuggestion(ctx context.Context, p service.StrugglePrompt) (string, error) {
	prompt, err := strugglePrompt(p)
	if err != nil {
		return "", err
	}
	return g.text(ctx, "struggle", prompt)
}

func (g *Generator) Story(ctx context.Context, p service.StoryPrompt) (string, error) {
	prompt, err := storyPrompt(p)
	if err != nil {
		return "", err
	}
	return g.text(ctx, "story", prompt)
}

// Speech narrates text and returns it as WAV
func (g *Generator) Speech(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	cfg := &googleai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &googleai.SpeechConfig{
			VoiceConfig: &googleai.VoiceConfig{
				PrebuiltVoiceConfig: &googleai.PrebuiltVoiceConfig{VoiceName: g.cfg.Voice},
			},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.cfg.SpeechModel, userText(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}

	blob := firstInlineData(resp, "audio/")
	if blob == nil {
		return nil, errors.New("speech response had no audio")
	}

	if strings.HasPrefix(blob.MIMEType, "audio/wav") {
		return blob.Data, nil
	}
	return encodeWAV(blob.Data, sampleRate(blob.MIMEType)), nil
}

func firstInlineData(resp *googleai.GenerateContentResponse, mimePrefix string) *googleai.Blob {
	if resp == nil {
		return nil
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 &&
				strings.HasPrefix(part.InlineData.MIMEType, mimePrefix) {
				return part.InlineData
			}
		}
	}
	return nil
}

// Avatar draws an abstract portrait from a display name
func (g *Generator) Avatar(ctx context.Context, name string) ([]byte, string, error) {
	prompt, err := avatarPrompt(name)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.models.GenerateImages(ctx, g.cfg.ImageModel, prompt, nil)
	if err != nil {
		return nil, "", fmt.Errorf("avatar request failed: %w", err)
	}

	if resp == nil {
		return nil, "", errors.New("avatar response had no image")
	}
	for _, img := range resp.GeneratedImages {
		if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := img.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return img.Image.ImageBytes, mimeType, nil
	}
	return nil, "", errors.New("avatar response had no image")
}
