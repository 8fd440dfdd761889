// Package openai adapts the OpenAI chat completions API to insights.Generator.
package openai

import (
	"context"
	"errors"
	"strings"

	"fingenius-server/src/insights"
	"fingenius-server/src/models"

	goopenai "github.com/sashabaranov/go-openai"
)

const provider = "openai"

type Generator struct {
	client *goopenai.Client
	model  string
}

var _ insights.Generator = (*Generator)(nil)

// New builds a generator. baseURL is optional and overrides the public
// endpoint, e.g. for a proxy.
func New(apiKey, model, baseURL string) *Generator {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Generator{client: goopenai.NewClientWithConfig(cfg), model: model}
}

func (g *Generator) Generate(ctx context.Context, window []models.Transaction, question string) (string, error) {
	prompt, err := insights.BuildPrompt(window, question)
	if err != nil {
		return "", err
	}

	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		return "", upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func upstreamError(err error) error {
	e := &insights.UpstreamError{Provider: provider, Err: err}
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		e.StatusCode = apiErr.HTTPStatusCode
		e.Err = errors.New(apiErr.Message)
	case errors.As(err, &reqErr):
		e.StatusCode = reqErr.HTTPStatusCode
	}
	e.Overloaded = insights.OverloadedStatus(e.StatusCode)
	return e
}
