// Package ai is the gateway to an OpenAI-compatible chat-completions
// service. It backs three enrichment features: normalizing free-text
// task input, generating step plans, and summarizing productivity data.
// A slow or failed call never touches timer state; everything here runs
// off the update loop.
package ai

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

	"grove/internal/config"
)

// ErrMissingKey is returned when no API key is configured and the
// credential policy is set to error.
var ErrMissingKey = errors.New("ai: no API key configured")

// RequestError covers everything that can go wrong talking to the
// service: transport failures, non-2xx responses, and content that
// should have been JSON but was not. Status is zero for transport
// errors.
type RequestError struct {
	Op     string
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ai: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("ai: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Analysis is the structured result of normalizing raw task input.
type Analysis struct {
	Title    string   `json:"title"`
	Subtasks []string `json:"subtasks"`
}

// Client talks to a chat-completions endpoint. The zero credentials
// case is handled according to the configured policy rather than by
// failing outright.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	policy  config.Policy
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a client from the AI settings, filling in the
// default endpoint and model where the config leaves them blank.
func NewClient(cfg config.AIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		policy:  cfg.OnMissingKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = config.DefaultBaseURL
	}
	if c.model == "" {
		c.model = config.DefaultModel
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Analyze normalizes a raw task description into a title plus an
// ordered step list.
func (c *Client) Analyze(ctx context.Context, input string) (Analysis, error) {
	if c.apiKey == "" {
		if c.policy == config.PolicyError {
			return Analysis{}, ErrMissingKey
		}
		return mockAnalysis(input), nil
	}
	content, err := c.chat(ctx, "analyze", promptAnalyze, input, true)
	if err != nil {
		return Analysis{}, err
	}
	var a Analysis
	if err := json.Unmarshal([]byte(content), &a); err != nil {
		return Analysis{}, &RequestError{Op: "analyze", Err: fmt.Errorf("malformed content: %w", err)}
	}
	if a.Title == "" {
		return Analysis{}, &RequestError{Op: "analyze", Err: errors.New("content missing title")}
	}
	return a, nil
}

// GeneratePlan produces an ordered step list for an existing task title.
func (c *Client) GeneratePlan(ctx context.Context, taskTitle string) ([]string, error) {
	if c.apiKey == "" {
		if c.policy == config.PolicyError {
			return nil, ErrMissingKey
		}
		return mockPlan(taskTitle), nil
	}
	content, err := c.chat(ctx, "plan", promptPlan, "Task: "+taskTitle, true)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Subtasks []string `json:"subtasks"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &RequestError{Op: "plan", Err: fmt.Errorf("malformed content: %w", err)}
	}
	return parsed.Subtasks, nil
}

// Summarize turns formatted session/task data into a natural-language
// productivity summary (markdown).
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		if c.policy == config.PolicyError {
			return "", ErrMissingKey
		}
		return mockSummary(prompt), nil
	}
	return c.chat(ctx, "summarize", promptSummarize, prompt, false)
}

// Wire types for the chat-completions endpoint.

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type payload struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// chat sends one system+user exchange and returns the assistant reply.
// jsonMode requests a json_object response for the structured calls.
func (c *Client) chat(ctx context.Context, op, system, user string, jsonMode bool) (string, error) {
	body := payload{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	}
	if jsonMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", &RequestError{Op: op, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RequestError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	var result apiResponse
	if resp.StatusCode != http.StatusOK {
		_ = json.Unmarshal(respBody, &result)
		msg := result.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &RequestError{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &RequestError{Op: op, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if len(result.Choices) == 0 {
		return "", &RequestError{Op: op, Err: errors.New("empty response (no choices)")}
	}
	return result.Choices[0].Message.Content, nil
}
