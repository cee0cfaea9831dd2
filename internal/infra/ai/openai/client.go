package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
	"github.com/bryanwahyu/logsentinel/internal/infra/ai/prompt"
)

const maxTokens = 4096

// Client implements analysis.Analyzer against OpenAI-compatible backends.
// The API has no native response schema for JSON-object mode, so the schema
// rides in the system prompt and the local parse does the enforcement.
type Client struct {
	*openai.Client
	Model           string
	CheckScoreLevel bool
}

func NewClient(apiKey, model string, checkScoreLevel bool) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, CheckScoreLevel: checkScoreLevel}
}

func (c *Client) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	userParts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt(req.LogText)},
	}
	for _, img := range req.Images {
		userParts = append(userParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data)),
			},
		})
	}

	creq := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, MultiContent: userParts},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		creq.MaxCompletionTokens = maxTokens
	} else {
		creq.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, creq)
	if err != nil {
		if apiErr, ok := err.(*openai.APIError); ok {
			return nil, &analysis.TransportError{StatusCode: apiErr.HTTPStatusCode, Err: err}
		}
		return nil, &analysis.TransportError{Err: err}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, analysis.ErrEmptyResponse
	}

	result, err := analysis.ParseResult([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, err
	}
	if c.CheckScoreLevel {
		if err := analysis.CheckScoreLevel(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}
