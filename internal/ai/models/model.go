// Package models defines the pluggable chat backends and the registry used
// to pick one by name at startup.
package models

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/atinylittleshell/shcopilot/internal/ai"
)

// Model is a chat completion backend.
type Model interface {
	// Name returns the registry key of the model variant (e.g., "fake", "openai")
	Name() string

	// ChatCompletion sends the whole conversation and blocks until the
	// backend returns a single AI message.
	ChatCompletion(ctx context.Context, conversation *ai.Context) (ai.Message, error)

	// ChatCompletionStream sends the whole conversation and returns a stream
	// of incremental deltas. The caller must Close the stream.
	ChatCompletionStream(ctx context.Context, conversation *ai.Context) (Stream, error)
}

// Stream is a forward-only, one-shot sequence of chunks. Recv returns io.EOF
// once the backend signals completion.
type Stream interface {
	Recv() (ai.ChunkedMessage, error)
	Close() error
}

// DecodeFunc unmarshals a model's configuration section into v.
type DecodeFunc func(v any) error

// NoConfig is a DecodeFunc for models constructed without a config section.
func NoConfig(any) error {
	return nil
}

// Collect drains stream and joins its deltas into one AI message. The stream
// is closed before Collect returns.
func Collect(stream Stream) (ai.Message, error) {
	defer stream.Close()

	var content strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return ai.NewMessage(ai.AI, content.String()), nil
		}
		if err != nil {
			return ai.Message{}, err
		}
		content.WriteString(chunk.Text())
	}
}

// sliceStream replays a fixed list of chunks.
type sliceStream struct {
	chunks []ai.ChunkedMessage
	closed bool
}

func newSliceStream(chunks []ai.ChunkedMessage) *sliceStream {
	return &sliceStream{chunks: chunks}
}

func (s *sliceStream) Recv() (ai.ChunkedMessage, error) {
	if s.closed || len(s.chunks) == 0 {
		return ai.ChunkedMessage{}, io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}
