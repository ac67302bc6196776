package ai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAI implements Transcriber and Translator on the OpenAI API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a provider. model is the chat model used for
// translation; transcription always goes through whisper.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("ai: transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (o *OpenAI) Translate(ctx context.Context, text, languageTag string) (string, error) {
	if languageTag == "" {
		return "", fmt.Errorf("ai: translation target language is required")
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You are a translator. Translate the user's text into the language with tag %q. "+
						"Reply with the translation only, no commentary.", languageTag),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("ai: translation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai: translation returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
