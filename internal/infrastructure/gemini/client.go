// Package gemini is a thin client for the Gemini generateContent API.
// Transient failures (network errors, rate limiting, upstream 5xx) are
// retried with exponential backoff; malformed responses are terminal.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 30 * time.Second

	maxRetries     = 3
	initialBackoff = time.Second
)

// ErrInvalidResponse marks a structurally broken response body. It is never
// retried: the request reached the service, the payload is just unusable.
var ErrInvalidResponse = errors.New("invalid response structure from text generation service")

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	http   *fasthttp.Client
	cfg    Config
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:   &fasthttp.Client{},
		cfg:    cfg,
		logger: logger,
	}
}

// request/response wire shapes, trimmed to the fields this client uses.

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

type taskSuggestion struct {
	TaskName string `json:"taskName"`
}

// taskListSchema asks the service for a JSON array of {taskName} objects.
var taskListSchema = json.RawMessage(`{
	"type": "ARRAY",
	"items": {
		"type": "OBJECT",
		"properties": {
			"taskName": {"type": "STRING", "description": "Name of the task to do"}
		},
		"required": ["taskName"]
	}
}`)

// GenerateText sends a plain prompt and returns the model's free text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{Parts: []part{{
			Text: "You are a productivity assistant. Answer briefly and to the point.",
		}}},
	}
	return c.generate(ctx, payload)
}

// GenerateTaskNames sends a prompt with a JSON response schema and returns
// the suggested task names.
func (c *Client) GenerateTaskNames(ctx context.Context, prompt string) ([]string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{Parts: []part{{
			Text: "You are a productivity assistant. Answer exactly in the requested JSON structure.",
		}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   taskListSchema,
		},
	}

	text, err := c.generate(ctx, payload)
	if err != nil {
		return nil, err
	}
	return parseTaskNames([]byte(text))
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)

	var text string
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(initialBackoff))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, respBody, err := c.post(url, body)
		if err != nil {
			c.logger.Warn("text generation request failed", zap.Error(err))
			return retry.RetryableError(err)
		}
		if status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError {
			c.logger.Warn("text generation service unavailable", zap.Int("status", status))
			return retry.RetryableError(fmt.Errorf("text generation returned status %d", status))
		}
		if status != fasthttp.StatusOK {
			return fmt.Errorf("text generation returned status %d", status)
		}

		extracted, err := extractText(respBody)
		if err != nil {
			return err
		}
		text = extracted
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) post(url string, body []byte) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, c.cfg.Timeout); err != nil {
		return 0, nil, err
	}

	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

func extractText(body []byte) (string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrInvalidResponse
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrInvalidResponse
	}
	return text, nil
}

func parseTaskNames(data []byte) ([]string, error) {
	var suggestions []taskSuggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	names := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		if s.TaskName != "" {
			names = append(names, s.TaskName)
		}
	}
	return names, nil
}
