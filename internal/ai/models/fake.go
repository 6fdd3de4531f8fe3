package models

import (
	"context"
	"strings"

	"github.com/atinylittleshell/shcopilot/internal/ai"
	"go.uber.org/zap"
)

// FakeName is the registry key of the fake model.
const FakeName = "fake"

// FakeResponse is the canned reply of the fake model.
const FakeResponse = "This is a fake response."

// Fake is a model with no backend. It always answers FakeResponse, which
// makes it useful for demos and tests.
type Fake struct{}

// NewFake creates the fake model. It accepts no configuration.
func NewFake(_ DecodeFunc, logger *zap.Logger) (Model, error) {
	logger.Debug("initialized fake model")
	return &Fake{}, nil
}

func (f *Fake) Name() string {
	return FakeName
}

func (f *Fake) ChatCompletion(_ context.Context, _ *ai.Context) (ai.Message, error) {
	return ai.NewMessage(ai.AI, FakeResponse), nil
}

// ChatCompletionStream streams FakeResponse one word at a time.
func (f *Fake) ChatCompletionStream(_ context.Context, _ *ai.Context) (Stream, error) {
	words := strings.SplitAfter(FakeResponse, " ")
	chunks := make([]ai.ChunkedMessage, 0, len(words))
	for _, word := range words {
		chunks = append(chunks, ai.Chunk(word))
	}
	return newSliceStream(chunks), nil
}
