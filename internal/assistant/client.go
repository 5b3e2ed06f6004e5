package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a study planning assistant for a calendar app. ` +
	`Users plan exams and the app schedules study sessions for them. Answer ` +
	`questions about studying, time management and exam preparation. Keep ` +
	`answers short and practical.`

const (
	maxRetries = 3
	retryDelay = 2 * time.Second
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Reply answers a single user message. Transient upstream failures are
// retried a few times before giving up.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", errors.New("empty message")
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("empty completion response")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("chat completion failed after %d attempts: %w", maxRetries, lastErr)
}
