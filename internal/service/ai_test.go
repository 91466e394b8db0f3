package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletionServer(t *testing.T, reply string, capture *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if capture != nil {
			json.NewDecoder(r.Body).Decode(capture)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func TestSummarizeDaily(t *testing.T) {
	var req map[string]interface{}
	srv := chatCompletionServer(t, "  Did: x\nDo: y  ", &req)
	defer srv.Close()

	svc := NewAIService(srv.URL, "test-key", "gpt-4o-mini")
	out, err := svc.SummarizeDaily(context.Background(), "worked on x, next y")
	require.NoError(t, err)
	assert.Equal(t, "Did: x\nDo: y", out)
	assert.Equal(t, "gpt-4o-mini", req["model"])
}

func TestSummarizeWeeklyEmptyStatuses(t *testing.T) {
	// No statuses means no oracle call at all.
	svc := NewAIService("http://127.0.0.1:0", "test-key", "gpt-4o-mini")
	out, err := svc.SummarizeWeekly(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "There are no status updates for this week.", out)
}

func TestSummarizeCommitsEmpty(t *testing.T) {
	svc := NewAIService("http://127.0.0.1:0", "test-key", "gpt-4o-mini")
	out, err := svc.SummarizeCommits(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No technical updates found based on commit messages.", out)
}

func TestChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewAIService(srv.URL, "test-key", "gpt-4o-mini")
	_, err := svc.SummarizeDaily(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	svc := NewAIService(srv.URL, "test-key", "gpt-4o-mini")
	_, err := svc.Revise(context.Background(), "report", "shorter please")
	require.Error(t, err)
}
