package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response     string
	InputTokens  int
	OutputTokens int
	Err          error

	Embedding    []float32
	EmbeddingErr error

	LastTask   TaskType
	LastPrompt string
	Calls      int
}

func (m *MockClient) Complete(ctx context.Context, task TaskType, prompt string) (Completion, error) {
	m.LastTask = task
	m.LastPrompt = prompt
	m.Calls++
	if m.Err != nil {
		return Completion{}, m.Err
	}
	return Completion{
		Text:         m.Response,
		InputTokens:  m.InputTokens,
		OutputTokens: m.OutputTokens,
	}, nil
}

func (m *MockClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.EmbeddingErr != nil {
		return nil, m.EmbeddingErr
	}
	return m.Embedding, nil
}
