package models

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinylittleshell/shcopilot/internal/ai"
)

func TestFake_ChatCompletion(t *testing.T) {
	model, err := NewFake(NoConfig, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, FakeName, model.Name())

	empty := ai.NewContext()
	empty.Clear()

	busy := ai.NewContext()
	busy.Add(ai.NewMessage(ai.Human, "how do I list hidden files?"))

	for _, conversation := range []*ai.Context{empty, busy} {
		before := conversation.Get()
		msg, err := model.ChatCompletion(context.Background(), conversation)
		require.NoError(t, err)
		assert.Equal(t, ai.NewMessage(ai.AI, "This is a fake response."), msg)
		assert.Equal(t, before, conversation.Get())
	}
}

func TestFake_ChatCompletionStream(t *testing.T) {
	model, err := NewFake(NoConfig, zap.NewNop())
	require.NoError(t, err)

	stream, err := model.ChatCompletionStream(context.Background(), ai.NewContext())
	require.NoError(t, err)

	var deltas []string
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Nil(t, chunk.Author)
		deltas = append(deltas, chunk.Text())
	}
	require.NoError(t, stream.Close())

	assert.Equal(t, []string{"This ", "is ", "a ", "fake ", "response."}, deltas)

	// Exhausted streams keep reporting the end.
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCollect(t *testing.T) {
	model, err := NewFake(NoConfig, zap.NewNop())
	require.NoError(t, err)

	stream, err := model.ChatCompletionStream(context.Background(), ai.NewContext())
	require.NoError(t, err)

	msg, err := Collect(stream)
	require.NoError(t, err)
	assert.Equal(t, ai.NewMessage(ai.AI, FakeResponse), msg)
}

type failingStream struct {
	sent   bool
	closed bool
}

func (s *failingStream) Recv() (ai.ChunkedMessage, error) {
	if !s.sent {
		s.sent = true
		return ai.Chunk("partial"), nil
	}
	return ai.ChunkedMessage{}, &BackendError{Model: "test", Err: io.ErrUnexpectedEOF}
}

func (s *failingStream) Close() error {
	s.closed = true
	return nil
}

func TestCollect_Error(t *testing.T) {
	stream := &failingStream{}
	_, err := Collect(stream)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, stream.closed)
}
