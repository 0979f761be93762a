package llm

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
)

// MockClient is a configurable secondary-opinion client for testing and
// local runs. Set Response or Reply to control what SecondOpinion returns.
type MockClient struct {
	mu sync.Mutex

	// Reply, when set, is parsed as a provider reply and takes precedence
	// over Response.
	Reply    string
	Response *domain.SecondaryOpinion
	Error    error

	// Call tracking for assertions
	Calls []domain.OpinionRequest
}

// NewMockClient returns a mock that always agrees with the candidate.
func NewMockClient() *MockClient {
	c := &MockClient{}
	c.Reset()
	return c
}

func (c *MockClient) SecondOpinion(ctx context.Context, req domain.OpinionRequest) (*domain.SecondaryOpinion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, req)
	if c.Error != nil {
		return nil, c.Error
	}
	if c.Reply != "" {
		return ParseOpinion(c.Reply), nil
	}
	if c.Response == nil {
		return nil, nil
	}
	op := *c.Response
	return &op, nil
}

// CallCount is safe to use while other goroutines are calling the mock.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// Reset clears all recorded calls and resets responses to defaults.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	agree := true
	c.Reply = ""
	c.Response = &domain.SecondaryOpinion{
		Match:      &agree,
		Confidence: domain.OpinionHigh,
		Reason:     "Mock agreement",
	}
	c.Error = nil
	c.Calls = nil
}
