package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
)

const (
	openAIChatURL     = "https://api.openai.com/v1/chat/completions"
	openAIModel       = "gpt-4o-mini"
	cerebrasChatURL   = "https://api.cerebras.ai/v1/chat/completions"
	cerebrasModel     = "llama-3.3-70b"
	openRouterChatURL = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModel   = "meta-llama/llama-3.3-70b-instruct"
)

// ChatClient talks to any OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	name       string
	url        string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *ChatClient {
	return NewChatClient("openai", openAIChatURL, openAIModel, apiKey)
}

func NewCerebrasClient(apiKey string) *ChatClient {
	return NewChatClient("cerebras", cerebrasChatURL, cerebrasModel, apiKey)
}

func NewOpenRouterClient(apiKey string) *ChatClient {
	return NewChatClient("openrouter", openRouterChatURL, openRouterModel, apiKey)
}

func NewChatClient(name, url, model, apiKey string) *ChatClient {
	return &ChatClient{
		name:       name,
		url:        url,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *ChatClient) complete(ctx context.Context, messages []chatMessage, temp float32) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temp,
	})
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create %s request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", c.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API returned status %d: %s", c.name, resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal %s response: %w", c.name, err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("%s API error: %s", c.name, result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s API returned no choices", c.name)
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *ChatClient) SecondOpinion(ctx context.Context, req domain.OpinionRequest) (*domain.SecondaryOpinion, error) {
	messages := []chatMessage{
		{Role: "system", Content: opinionSystemPrompt},
		{Role: "user", Content: buildOpinionPrompt(req)},
	}

	result, err := c.complete(ctx, messages, 0)
	if err != nil {
		return nil, fmt.Errorf("second opinion: %w", err)
	}
	return ParseOpinion(result), nil
}
