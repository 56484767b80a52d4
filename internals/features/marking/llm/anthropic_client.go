// file: internals/features/marking/llm/anthropic_client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ujianku_backend/internals/configs"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"

	ProviderAnthropic = "anthropic"
)

// DefaultSystemPrompt instruksi dasar examiner (JSON only, no markdown)
const DefaultSystemPrompt = `You are an expert academic examiner. Evaluate student answers objectively and provide fair, constructive feedback. Always respond with valid JSON only, no markdown formatting.`

// Completer kemampuan minimum yang dibutuhkan orchestrator dari gateway
type Completer interface {
	Complete(ctx context.Context, prompt, systemPrompt string) (*Completion, error)
	GetModel() string
}

type AnthropicClient struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	endpoint string
	httpc    *http.Client
}

func NewAnthropicClient(apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) *AnthropicClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicClient{
		APIKey:      apiKey,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
		endpoint:    anthropicEndpoint,
		httpc:       &http.Client{Timeout: timeout},
	}
}

// NewAnthropicClientFromEnv pakai konfigurasi global (configs.LoadEnv)
func NewAnthropicClientFromEnv() *AnthropicClient {
	return NewAnthropicClient(
		configs.AnthropicAPIKey,
		configs.AnthropicModel,
		configs.AnthropicTemperature,
		configs.AnthropicMaxTokens,
		configs.LLMTimeout,
	)
}

func (c *AnthropicClient) GetModel() string { return c.Model }

// Complete kirim prompt ke Anthropic Messages API, balikin teks + metadata.
// Semua kegagalan (transport, status non-200, body aneh) dibungkus
// *ExternalServiceError supaya batch marking bisa skip per jawaban.
func (c *AnthropicClient) Complete(ctx context.Context, prompt, systemPrompt string) (*Completion, error) {
	if c.APIKey == "" {
		return nil, &ExternalServiceError{Provider: ProviderAnthropic, Err: fmt.Errorf("ANTHROPIC_API_KEY is empty")}
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}

	body := map[string]any{
		"model":       c.Model,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"system":      systemPrompt,
		"messages": []any{
			map[string]any{"role": "user", "content": prompt},
		},
	}
	payload, _ := json.Marshal(body)

	// per-call timeout di atas timeout http.Client (caller batch bisa
	// kasih ctx yang lebih ketat)
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &ExternalServiceError{Provider: ProviderAnthropic, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &ExternalServiceError{Provider: ProviderAnthropic, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExternalServiceError{Provider: ProviderAnthropic, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ExternalServiceError{
			Provider: ProviderAnthropic,
			Err:      fmt.Errorf("anthropic %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var decoded struct {
		Model   string `json:"model"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ExternalServiceError{Provider: ProviderAnthropic, Err: err}
	}

	text := ""
	for _, blk := range decoded.Content {
		if blk.Type == "text" {
			text = blk.Text
			break
		}
	}
	if text == "" {
		return nil, &ExternalServiceError{Provider: ProviderAnthropic, Err: fmt.Errorf("empty response content")}
	}

	model := decoded.Model
	if model == "" {
		model = c.Model
	}

	return &Completion{
		Text:           text,
		Model:          model,
		Provider:       ProviderAnthropic,
		RawResponse:    json.RawMessage(raw),
		ProcessingTime: time.Since(start).Milliseconds(),
	}, nil
}
