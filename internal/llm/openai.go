package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Known OpenAI-compatible chat endpoints.
const (
	GroqEndpoint       = "https://api.groq.com/openai/v1/chat/completions"
	OpenRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

// ChatClient calls an OpenAI-compatible /chat/completions endpoint. Groq and
// OpenRouter both speak this protocol.
type ChatClient struct {
	endpoint     string
	apiKey       string
	extraHeaders map[string]string
	client       *http.Client
	logger       *zap.Logger
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewChatClient(endpoint, apiKey string, logger *zap.Logger) (*ChatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	return &ChatClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{},
		logger:   logger,
	}, nil
}

// NewOpenRouterClient returns a ChatClient with the attribution headers
// OpenRouter expects.
func NewOpenRouterClient(apiKey string, logger *zap.Logger) (*ChatClient, error) {
	client, err := NewChatClient(OpenRouterEndpoint, apiKey, logger)
	if err != nil {
		return nil, err
	}
	client.extraHeaders = map[string]string{
		"HTTP-Referer": "https://faqgen.local",
		"X-Title":      "faqgen",
	}
	return client, nil
}

func (c *ChatClient) Complete(ctx context.Context, messages []Message, model string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for key, value := range c.extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", ClassifyError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Chat completion failed",
			zap.String("model", model),
			zap.Int("status", resp.StatusCode),
		)
		return "", &BackendError{
			Kind:       classifyStatus(resp.StatusCode, string(respBody)),
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResp.Error != nil {
		return "", &BackendError{
			Kind:    classifyStatus(0, apiResp.Error.Message),
			Message: apiResp.Error.Message,
		}
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return apiResp.Choices[0].Message.Content, nil
}
