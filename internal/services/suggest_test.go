package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGenAI(t *testing.T, candidateText string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req genAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		require.NotNil(t, req.SystemInstruction)

		resp := genAIResponse{}
		if candidateText != "" {
			resp.Candidates = append(resp.Candidates, struct {
				Content genAIContent `json:"content"`
			}{Content: genAIContent{Parts: []genAIPart{{Text: candidateText}}}})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSuggestReturnsCandidate(t *testing.T) {
	ts := fakeGenAI(t, "Dear parent, the term starts on 6 January.")
	client := &GenAIClient{Endpoint: ts.URL, APIKey: "test-key"}

	got, err := client.Suggest(context.Background(), "When does the term start?")
	require.NoError(t, err)
	assert.Equal(t, "Dear parent, the term starts on 6 January.", got)
}

func TestSuggestFallbackOnEmptyCandidates(t *testing.T) {
	ts := fakeGenAI(t, "")
	client := &GenAIClient{Endpoint: ts.URL, APIKey: "test-key"}

	got, err := client.Suggest(context.Background(), "Hello?")
	require.NoError(t, err)
	assert.Equal(t, "Thank you for your inquiry.", got)
}

func TestSuggestUnconfigured(t *testing.T) {
	client := &GenAIClient{}

	_, err := client.Suggest(context.Background(), "anything")
	assert.Error(t, err)
}

func TestSuggestUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(ts.Close)
	client := &GenAIClient{Endpoint: ts.URL}

	_, err := client.Suggest(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
