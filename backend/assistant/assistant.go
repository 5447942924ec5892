// Package assistant — непрозрачный коллаборатор-ассистент. Запрос —
// упорядоченный список частей (текст, опционально картинка), ответ —
// простой текст. Внутреннее поведение сервиса не наше дело: сбой на
// границе превращается в одно запасное сообщение и никогда не
// пробрасывается наружу необработанным.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// FallbackMessage — ответ, который видит пользователь при любом сбое
// коллаборатора.
const FallbackMessage = "Sorry, I couldn't process that right now. Please try again later."

// Part — одна часть запроса: текст или картинка в base64.
type Part struct {
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

// Client — транспорт до ассистента.
type Client interface {
	Generate(ctx context.Context, parts []Part) (string, error)
}

// HTTPClient шлёт части POST-ом на настроенный эндпоинт.
type HTTPClient struct {
	Endpoint string
	APIKey   string
	HTTP     *http.Client
}

func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		Endpoint: endpoint,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, parts []Part) (string, error) {
	if c.Endpoint == "" {
		return "", errors.New("assistant: endpoint not configured")
	}

	body, err := json.Marshal(map[string]any{"parts": parts})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", errors.New("assistant: empty response")
	}
	return out.Text, nil
}
