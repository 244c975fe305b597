package inbox

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tmc/langchaingo/llms"

	"mealer/internal/models"
)

// MockLLM is a mock implementation of the LLM interface
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func TestSummarizeEmptyInbox(t *testing.T) {
	mockLLM := new(MockLLM)
	triage := NewTriage(mockLLM)

	in, _ := NewAdminInbox(nil)
	summary, err := triage.Summarize(context.Background(), in)

	assert.NoError(t, err)
	assert.Equal(t, "No complaints to review.", summary)
	mockLLM.AssertNotCalled(t, "Call")
}

func TestSummarizePromptsOldestFirst(t *testing.T) {
	mockLLM := new(MockLLM)
	triage := NewTriage(mockLLM)

	older := complaint("c1", "cold food")
	older.Date = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	newer := complaint("c2", "late delivery")
	newer.Date = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in, _ := NewAdminInbox([]*models.Complaint{newer, older})

	mockLLM.On("Call", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Index(prompt, "cold food") < strings.Index(prompt, "late delivery")
	})).Return("chef-x needs attention", nil)

	summary, err := triage.Summarize(context.Background(), in)

	assert.NoError(t, err)
	assert.Equal(t, "chef-x needs attention", summary)
	mockLLM.AssertExpectations(t)
}

func TestSummarizeModelError(t *testing.T) {
	mockLLM := new(MockLLM)
	triage := NewTriage(mockLLM)

	in, _ := NewAdminInbox([]*models.Complaint{complaint("c1", "cold food")})
	mockLLM.On("Call", mock.Anything, mock.Anything).Return("", fmt.Errorf("model unavailable"))

	_, err := triage.Summarize(context.Background(), in)
	assert.Error(t, err)
}

func TestSummarizeWithoutModel(t *testing.T) {
	triage := NewTriage(nil)
	in, _ := NewAdminInbox([]*models.Complaint{complaint("c1", "cold food")})

	_, err := triage.Summarize(context.Background(), in)
	assert.Error(t, err)
}
