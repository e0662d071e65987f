package llm

import (
	"context"
	"fmt"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// GigaChatClient adapts the gigago SDK to the Completer interface.
type GigaChatClient struct {
	client *gigago.Client
	logger *zap.Logger
}

func NewGigaChatClient(ctx context.Context, apiKey, scope string, logger *zap.Logger) (*GigaChatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gigachat api key is required")
	}

	opts := []gigago.Option{}
	if scope != "" {
		opts = append(opts, gigago.WithCustomScope(scope))
	}

	client, err := gigago.NewClient(ctx, apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	return &GigaChatClient{client: client, logger: logger}, nil
}

func (g *GigaChatClient) Complete(ctx context.Context, messages []Message, model string) (string, error) {
	if model == "" {
		model = "GigaChat"
	}
	gen := g.client.GenerativeModel(model)
	gen.Temperature = defaultTemperature

	gigaMessages := make([]gigago.Message, 0, len(messages))
	for _, msg := range messages {
		role := gigago.RoleUser
		if msg.Role == RoleSystem {
			gen.SystemInstruction = msg.Content
			continue
		}
		gigaMessages = append(gigaMessages, gigago.Message{Role: role, Content: msg.Content})
	}

	resp, err := gen.Generate(ctx, gigaMessages)
	if err != nil {
		return "", ClassifyError(fmt.Errorf("GigaChat generation failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty GigaChat response")
	}

	return resp.Choices[0].Message.Content, nil
}
