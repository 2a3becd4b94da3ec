package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type SuggestService struct {
	client *openai.Client
}

type SuggestedTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
}

func NewSuggestService(apiKey string) *SuggestService {
	return &SuggestService{
		client: openai.NewClient(apiKey),
	}
}

// SuggestTasksFromText analyzes free text and extracts task suggestions.
func (s *SuggestService) SuggestTasksFromText(ctx context.Context, text string) ([]SuggestedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are a task extraction assistant. Extract concrete tasks from the text below.

Text:
%s

Return a JSON array of extracted tasks in this shape:
[
  {
    "title": "short task title",
    "description": "task details",
    "priority": "low, medium or high",
    "tags": ["short", "keywords"]
  }
]

Rules:
- Return an empty array [] when the text contains no tasks
- priority must be exactly one of: low, medium, high
- Return only the JSON, no prose`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var tasks []SuggestedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
