package generator

import (
	"context"

	"google.golang.org/genai"
)

// --- Mocks ---

type mockInvoker struct {
	env       *Envelope
	err       error
	callCount int
	lastReq   ModelRequest
}

func (m *mockInvoker) Invoke(ctx context.Context, req ModelRequest) (*Envelope, error) {
	m.callCount++
	m.lastReq = req
	return m.env, m.err
}

type mockTextModel struct {
	text       string
	err        error
	lastModel  string
	lastPrompt string
}

func (m *mockTextModel) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	m.lastModel = model
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockPreparer struct {
	part    *genai.Part
	called  bool
	lastURL string
}

func (m *mockPreparer) Prepare(ctx context.Context, rawURL string) *genai.Part {
	m.called = true
	m.lastURL = rawURL
	return m.part
}
