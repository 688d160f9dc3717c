package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"docqa/internal/domain"
)

// Client calls an OpenAI-compatible /chat/completions endpoint. Groq,
// Ollama and other compatible providers work through the same wire format.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewOpenAIClient(apiKeyEnv, model string, temperature float64) (*Client, error) {
	return NewCompatibleClient(apiKeyEnv, model, "https://api.openai.com/v1", temperature)
}

func NewGroqClient(apiKeyEnv, model string, temperature float64) (*Client, error) {
	return NewCompatibleClient(apiKeyEnv, model, "https://api.groq.com/openai/v1", temperature)
}

func NewOllamaClient(model, baseURL string, temperature float64) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	return &Client{
		apiKey:      "ollama",
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func NewCompatibleClient(apiKeyEnv, model, baseURL string, temperature float64) (*Client, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable %s: %w", apiKeyEnv, domain.ErrInvalidConfig)
	}
	return &Client{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (c *Client) Generate(prompt string) (string, error) {
	return c.chat([]chatMessage{
		{Role: "user", Content: prompt},
	})
}

func (c *Client) GenerateWithSystem(systemPrompt, userPrompt string) (string, error) {
	return c.chat([]chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}

func (c *Client) ModelName() string {
	return c.model
}

func (c *Client) chat(messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("model API throttled the request: %w", domain.ErrRateLimited)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		if isQuotaError(chatResp.Error.Type) {
			return "", fmt.Errorf("model API error: %s: %w", chatResp.Error.Message, domain.ErrRateLimited)
		}
		return "", fmt.Errorf("model API error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model API returned status %d: %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("model API returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func isQuotaError(errType string) bool {
	switch errType {
	case "rate_limit_exceeded", "insufficient_quota", "quota_exceeded", "tokens_exhausted":
		return true
	}
	return false
}
