package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const suggestInstruction = "You are a professional school administrator. Keep your response formal and helpful."

// Suggester drafts a reply to a visitor inquiry. The implementation is an
// opaque text-in/text-out collaborator: any failure is terminal for that
// attempt, no retries.
type Suggester interface {
	Suggest(ctx context.Context, inquiry string) (string, error)
}

// GenAIClient calls a Gemini-style generateContent endpoint.
type GenAIClient struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

type genAIPart struct {
	Text string `json:"text"`
}

type genAIContent struct {
	Parts []genAIPart `json:"parts"`
}

type genAIRequest struct {
	Contents          []genAIContent `json:"contents"`
	SystemInstruction *genAIContent  `json:"systemInstruction,omitempty"`
}

type genAIResponse struct {
	Candidates []struct {
		Content genAIContent `json:"content"`
	} `json:"candidates"`
}

func (c *GenAIClient) Suggest(ctx context.Context, inquiry string) (string, error) {
	if c.Endpoint == "" {
		return "", ErrBadRequest("Suggestion service is not configured")
	}
	payload := genAIRequest{
		Contents: []genAIContent{{
			Parts: []genAIPart{{Text: fmt.Sprintf("Draft a professional response to this inquiry: %q", inquiry)}},
		}},
		SystemInstruction: &genAIContent{Parts: []genAIPart{{Text: suggestInstruction}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-goog-api-key", c.APIKey)
	}

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("suggestion service: status %d: %s", resp.StatusCode, raw)
	}
	var parsed genAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "Thank you for your inquiry.", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
