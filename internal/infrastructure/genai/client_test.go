package genai

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"habit-garden/internal/config"
	"habit-garden/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	googleai "google.golang.org/genai"
)

type fakeModels struct {
	model   string
	prompt  string
	config  *googleai.GenerateContentConfig
	content *googleai.GenerateContentResponse
	images  *googleai.GenerateImagesResponse
	err     error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*googleai.Content, cfg *googleai.GenerateContentConfig) (*googleai.GenerateContentResponse, error) {
	f.model = model
	f.config = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.content, f.err
}

func (f *fakeModels) GenerateImages(ctx context.Context, model string, prompt string, cfg *googleai.GenerateImagesConfig) (*googleai.GenerateImagesResponse, error) {
	f.model = model
	f.prompt = prompt
	return f.images, f.err
}

func textResponse(parts ...string) *googleai.GenerateContentResponse {
	content := &googleai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &googleai.Part{Text: p})
	}
	return &googleai.GenerateContentResponse{
		Candidates: []*googleai.Candidate{{Content: content}},
	}
}

func testConfig() config.GenAIConfig {
	return config.GenAIConfig{
		TextModel:   "text-model",
		ImageModel:  "image-model",
		SpeechModel: "speech-model",
		Voice:       "Kore",
	}
}

func TestGenerator_Motivation(t *testing.T) {
	m := &fakeModels{content: textResponse("You're ", "growing! ")}
	g := newGenerator(m, testConfig(), zap.NewNop())

	text, err := g.Motivation(context.Background(), service.MotivationPrompt{
		HabitName:      "Read",
		Streak:         4,
		LongestStreak:  9,
		CompletedToday: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "You're growing!", text)
	assert.Equal(t, "text-model", m.model)
	assert.Contains(t, m.prompt, `"Read"`)
	assert.Contains(t, m.prompt, "Current streak: 4")
	assert.Contains(t, m.prompt, "already completed it today")
}

func TestGenerator_StruggleAndStoryPrompts(t *testing.T) {
	m := &fakeModels{content: textResponse("ok")}
	g := newGenerator(m, testConfig(), zap.NewNop())

	_, err := g.StruggleSuggestion(context.Background(), service.StrugglePrompt{HabitName: "Run", MissedDays: 5})
	require.NoError(t, err)
	assert.Contains(t, m.prompt, "for 5 days")
	assert.NotContains(t, m.prompt, "Habit description")

	_, err = g.Story(context.Background(), service.StoryPrompt{UserName: "sam", HabitName: "Run", Streak: 3})
	require.NoError(t, err)
	assert.Contains(t, m.prompt, "sam")
	assert.Contains(t, m.prompt, "3 day streak")
}

func TestGenerator_EmptyOrFailedText(t *testing.T) {
	g := newGenerator(&fakeModels{content: &googleai.GenerateContentResponse{}}, testConfig(), zap.NewNop())
	_, err := g.Motivation(context.Background(), service.MotivationPrompt{HabitName: "Read"})
	assert.Error(t, err)

	g = newGenerator(&fakeModels{err: errors.New("quota")}, testConfig(), zap.NewNop())
	_, err = g.Story(context.Background(), service.StoryPrompt{HabitName: "Read"})
	assert.ErrorContains(t, err, "quota")
}

func TestGenerator_SpeechWrapsPCM(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	m := &fakeModels{content: &googleai.GenerateContentResponse{
		Candidates: []*googleai.Candidate{{Content: &googleai.Content{Parts: []*googleai.Part{
			{InlineData: &googleai.Blob{MIMEType: "audio/L16;codec=pcm;rate=16000", Data: pcm}},
		}}}},
	}}
	g := newGenerator(m, testConfig(), zap.NewNop())

	wav, err := g.Speech(context.Background(), "Once upon a time")
	require.NoError(t, err)
	assert.Equal(t, "speech-model", m.model)
	require.NotNil(t, m.config)
	assert.Equal(t, []string{"AUDIO"}, m.config.ResponseModalities)
	assert.Equal(t, "Kore", m.config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.True(t, bytes.Equal(pcm, wav[44:]))
}

func TestGenerator_SpeechWithoutAudio(t *testing.T) {
	g := newGenerator(&fakeModels{content: textResponse("no audio")}, testConfig(), zap.NewNop())
	_, err := g.Speech(context.Background(), "hi")
	assert.Error(t, err)
}

func TestGenerator_Avatar(t *testing.T) {
	m := &fakeModels{images: &googleai.GenerateImagesResponse{
		GeneratedImages: []*googleai.GeneratedImage{
			{Image: &googleai.Image{ImageBytes: []byte("img"), MIMEType: "image/jpeg"}},
		},
	}}
	g := newGenerator(m, testConfig(), zap.NewNop())

	data, mimeType, err := g.Avatar(context.Background(), "sam")
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)
	assert.Equal(t, "image/jpeg", mimeType)
	assert.Equal(t, "image-model", m.model)
	assert.Contains(t, m.prompt, `"sam"`)

	g = newGenerator(&fakeModels{images: &googleai.GenerateImagesResponse{}}, testConfig(), zap.NewNop())
	_, _, err = g.Avatar(context.Background(), "sam")
	assert.Error(t, err)
}

func TestSampleRate(t *testing.T) {
	assert.Equal(t, 24000, sampleRate("audio/L16;codec=pcm;rate=24000"))
	assert.Equal(t, 16000, sampleRate("audio/L16; rate=16000"))
	assert.Equal(t, defaultSampleRate, sampleRate("audio/L16"))
	assert.Equal(t, defaultSampleRate, sampleRate("audio/L16;rate=abc"))
}
