// Package ai talks to an OpenAI-compatible chat completions endpoint to turn
// natural-language audience descriptions into segment predicates and to draft
// message suggestions. The model itself is an external collaborator; this
// package only implements the request/response contract and its failure modes.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/targetly/crm-backend/internal/errors"
	"github.com/targetly/crm-backend/internal/predicate"
)

const translateSystemPrompt = "You are an assistant that converts user segmentation descriptions into MongoDB query objects. " +
	"Only return a JSON object compatible with MongoDB's find() query. " +
	"The known customer attributes are name, email, phone, gender, totalSpend, visits, lastActive and createdAt."

const suggestSystemPrompt = "You are a marketing assistant. Given the MongoDB filter describing a customer segment, " +
	"suggest one short promotional message for that segment. Use {{name}} as the recipient placeholder. " +
	"Return only the message text."

type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Model      string
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Model:      model,
	}
}

// TranslateSegment converts a natural-language audience description into a
// predicate. Anything unparsable in the model response surfaces as a
// translation failure; the caller re-validates the predicate separately.
func (c *Client) TranslateSegment(ctx context.Context, prompt string) (predicate.Predicate, error) {
	content, err := c.chat(ctx, translateSystemPrompt, "Convert this to a MongoDB query: "+prompt)
	if err != nil {
		return predicate.Predicate{}, &apperrors.TranslationFailedError{Cause: err}
	}
	p, err := predicate.Parse([]byte(stripFences(content)))
	if err != nil {
		return predicate.Predicate{}, &apperrors.TranslationFailedError{Cause: err}
	}
	return p, nil
}

// SuggestMessage drafts a template suggestion for the given segment rules.
func (c *Client) SuggestMessage(ctx context.Context, rules predicate.Predicate) (string, error) {
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return "", err
	}
	content, err := c.chat(ctx, suggestSystemPrompt, "Segment rules: "+string(rulesJSON))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stripFences(content)), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completions returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat completions response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completions response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// stripFences removes a markdown code fence the model may wrap its JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
