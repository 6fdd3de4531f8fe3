package ai

import (
	"fmt"
	"slices"
)

// DefaultMaxHistory is the number of messages kept when no limit is configured.
const DefaultMaxHistory = 10

// DefaultSystemPrompt seeds every new conversation.
const DefaultSystemPrompt = `You are an helpful assistant for the Shell.
A user will ask you questions about command line he is typing.
You will help him troubleshoot his problems.
You will ask him questions to get more information.
Sometimes the user will directly prompt you with the result of a command.`

// EvictionPolicy trims a conversation after a message has been appended.
type EvictionPolicy interface {
	Evict(conversation []Message) []Message
}

// MaxMessages drops the single oldest message once the conversation holds
// more than the given number of messages.
type MaxMessages int

func (n MaxMessages) Evict(conversation []Message) []Message {
	if len(conversation) > int(n) {
		return conversation[1:]
	}
	return conversation
}

// Context is the bounded, ordered history of a conversation. It is owned by
// a single REPL session and is not safe for concurrent use.
type Context struct {
	maxHistory   int
	policy       EvictionPolicy
	conversation []Message
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithMaxHistory caps the number of messages kept in the conversation.
func WithMaxHistory(n int) ContextOption {
	return func(c *Context) {
		c.maxHistory = n
	}
}

// WithSystemPrompt replaces the seed message of the conversation. An empty
// prompt starts the conversation empty.
func WithSystemPrompt(prompt string) ContextOption {
	return func(c *Context) {
		if prompt == "" {
			c.conversation = []Message{}
			return
		}
		c.conversation = []Message{NewMessage(AI, prompt)}
	}
}

// WithEvictionPolicy overrides the default message-count eviction.
func WithEvictionPolicy(policy EvictionPolicy) ContextOption {
	return func(c *Context) {
		c.policy = policy
	}
}

// NewContext creates a conversation seeded with the system instruction.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		maxHistory:   DefaultMaxHistory,
		conversation: []Message{NewMessage(AI, DefaultSystemPrompt)},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy == nil {
		c.policy = MaxMessages(c.maxHistory)
	}
	return c
}

// MaxHistory returns the configured message cap.
func (c *Context) MaxHistory() int {
	return c.maxHistory
}

// Get returns the conversation in insertion order.
func (c *Context) Get() []Message {
	return slices.Clone(c.conversation)
}

// Len returns the number of messages currently held.
func (c *Context) Len() int {
	return len(c.conversation)
}

// Add appends message and applies the eviction policy.
func (c *Context) Add(message Message) []Message {
	c.conversation = c.policy.Evict(append(c.conversation, message))
	return c.Get()
}

// Clear empties the conversation, seed included.
func (c *Context) Clear() []Message {
	c.conversation = []Message{}
	return c.Get()
}

// ContextConfig is the `context` section of the configuration file.
type ContextConfig struct {
	MaxHistory   *int    `yaml:"max_history,omitempty"`
	SystemPrompt *string `yaml:"system_prompt,omitempty"`
}

// NewContextFromConfig builds a Context from its configuration section.
func NewContextFromConfig(cfg ContextConfig) (*Context, error) {
	opts := []ContextOption{}
	if cfg.MaxHistory != nil {
		if *cfg.MaxHistory <= 0 {
			return nil, fmt.Errorf("context max_history must be positive, got %d", *cfg.MaxHistory)
		}
		opts = append(opts, WithMaxHistory(*cfg.MaxHistory))
	}
	if cfg.SystemPrompt != nil {
		opts = append(opts, WithSystemPrompt(*cfg.SystemPrompt))
	}
	return NewContext(opts...), nil
}
