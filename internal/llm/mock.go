package llm

import "context"

// MockClient is a scriptable Client for tests.
type MockClient struct {
	StructuredFunc func(ctx context.Context, req Request) (string, error)
	TextFunc       func(ctx context.Context, req Request) (string, error)

	StructuredCalls []Request
	TextCalls       []Request
}

func (m *MockClient) GenerateStructured(ctx context.Context, req Request) (string, error) {
	m.StructuredCalls = append(m.StructuredCalls, req)
	if m.StructuredFunc != nil {
		return m.StructuredFunc(ctx, req)
	}
	return "{}", nil
}

func (m *MockClient) GenerateText(ctx context.Context, req Request) (string, error) {
	m.TextCalls = append(m.TextCalls, req)
	if m.TextFunc != nil {
		return m.TextFunc(ctx, req)
	}
	return "", nil
}

func (m *MockClient) Model() string {
	return "mock"
}
