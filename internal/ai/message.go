// Package ai holds the conversation primitives shared by the REPL and the
// model backends: authors, messages, streamed chunks and the bounded
// conversation context.
package ai

import "fmt"

// Author identifies who produced a message.
type Author string

const (
	Human Author = "human"
	AI    Author = "ai"
)

// Message is one turn of the conversation.
type Message struct {
	Author  Author
	Content string
}

// NewMessage creates a message authored by author.
func NewMessage(author Author, content string) Message {
	return Message{Author: author, Content: content}
}

func (m Message) String() string {
	return fmt.Sprintf("%s > %s", m.Author, m.Content)
}

// ChunkedMessage is one increment of a streamed response. Either field may
// be absent; backends only set Content on continuation chunks.
type ChunkedMessage struct {
	Author  *Author
	Content *string
}

// Chunk builds a ChunkedMessage carrying only a content delta.
func Chunk(content string) ChunkedMessage {
	return ChunkedMessage{Content: &content}
}

// Header builds a ChunkedMessage carrying only an author.
func Header(author Author) ChunkedMessage {
	return ChunkedMessage{Author: &author}
}

// Text returns the content of the chunk, or "" when absent.
func (c ChunkedMessage) Text() string {
	if c.Content == nil {
		return ""
	}
	return *c.Content
}

func (c ChunkedMessage) String() string {
	if c.Author == nil {
		return c.Text()
	}
	if c.Content == nil {
		return fmt.Sprintf("%s > ", *c.Author)
	}
	return fmt.Sprintf("%s > %s", *c.Author, *c.Content)
}
