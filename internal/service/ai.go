package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AIService talks to an OpenAI-compatible chat-completions endpoint. It is
// the summarization oracle: callers treat its output as opaque text and fall
// back to the raw status when it fails.
type AIService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewAIService(baseURL, apiKey, model string) *AIService {
	return &AIService{baseURL: baseURL, apiKey: apiKey, model: model, client: &http.Client{}}
}

func (s *AIService) chat(ctx context.Context, system, user string) (string, error) {
	body := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm status %d: %s", resp.StatusCode, data)
	}

	data, _ := io.ReadAll(resp.Body)
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// SummarizeDaily condenses a raw status into Did/Do sections.
func (s *AIService) SummarizeDaily(ctx context.Context, status string) (string, error) {
	system := "Please summarize the user's update into two sections: 'Did' for tasks completed yesterday and 'Do' for tasks planned for today."
	out, err := s.chat(ctx, system, status)
	if err != nil {
		return "", fmt.Errorf("daily summary: %w", err)
	}
	return out, nil
}

// SummarizeWeekly builds a weekly report from the member's daily statuses,
// keeping only accomplished work.
func (s *AIService) SummarizeWeekly(ctx context.Context, statuses []string) (string, error) {
	if len(statuses) == 0 {
		return "There are no status updates for this week.", nil
	}
	system := "Please generate a comprehensive weekly summary based on the provided daily status updates, including only tasks that have been accomplished. Ignore tasks that are not in the 'Did' section."
	out, err := s.chat(ctx, system, strings.Join(statuses, "\n"))
	if err != nil {
		return "", fmt.Errorf("weekly summary: %w", err)
	}
	return out, nil
}

// SummarizeCommits condenses a day's commit messages into a technical update.
func (s *AIService) SummarizeCommits(ctx context.Context, commitMessages []string) (string, error) {
	if len(commitMessages) == 0 {
		return "No technical updates found based on commit messages.", nil
	}
	system := "Please provide a concise summary of the technical updates based on the provided commit messages."
	out, err := s.chat(ctx, system, strings.Join(commitMessages, "\n"))
	if err != nil {
		return "", fmt.Errorf("commit summary: %w", err)
	}
	return out, nil
}

// Revise rewrites a report according to the member's feedback.
func (s *AIService) Revise(ctx context.Context, original, feedback string) (string, error) {
	system := "Revise the original report based on the user's feedback."
	user := fmt.Sprintf("Original Report: %s\n\nFeedback: %s", original, feedback)
	out, err := s.chat(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("revise summary: %w", err)
	}
	return out, nil
}

// SummarizeGoals condenses the member's stated goals for the day.
func (s *AIService) SummarizeGoals(ctx context.Context, goals string) (string, error) {
	system := "Please provide a concise summary of the user's goals for today."
	out, err := s.chat(ctx, system, goals)
	if err != nil {
		return "", fmt.Errorf("goals summary: %w", err)
	}
	return out, nil
}
