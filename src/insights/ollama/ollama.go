// Package ollama adapts a local Ollama server to insights.Generator.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fingenius-server/src/insights"
	"fingenius-server/src/models"

	"github.com/rs/zerolog/log"
)

const provider = "ollama"

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ insights.Generator = (*Generator)(nil)

func New(baseURL, model string) *Generator {
	return &Generator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (g *Generator) Generate(ctx context.Context, window []models.Transaction, question string) (string, error) {
	prompt, err := insights.BuildPrompt(window, question)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(generateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{NumPredict: 200, Temperature: 0.7},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("error connecting to Ollama API")
		return "", &insights.UpstreamError{Provider: provider, Err: errors.New("connection error")}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &insights.UpstreamError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Overloaded: insights.OverloadedStatus(resp.StatusCode),
			Err:        fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &insights.UpstreamError{Provider: provider, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	log.Debug().Str("model", out.Model).Int("chars", len(out.Response)).Msg("ollama response")
	return strings.TrimSpace(out.Response), nil
}
