package models

import (
	"slices"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Constructor validates the configuration decoded by decode and returns an
// initialized model.
type Constructor func(decode DecodeFunc, logger *zap.Logger) (Model, error)

// Registry maps model names to their constructors.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// DefaultRegistry returns a registry holding every built-in model.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FakeName, NewFake)
	r.Register(OpenAIName, NewOpenAI)
	return r
}

// Register adds or replaces a constructor.
func (r *Registry) Register(name string, constructor Constructor) {
	r.constructors[name] = constructor
}

// Get returns the constructor registered under name.
func (r *Registry) Get(name string) (Constructor, error) {
	constructor, ok := r.constructors[name]
	if !ok {
		return nil, &UnknownModelError{Name: name}
	}
	return constructor, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.constructors[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := lo.Keys(r.constructors)
	slices.Sort(names)
	return names
}

// Suggest returns the registered names that fuzzily match name, best
// match first.
func (r *Registry) Suggest(name string) []string {
	return lo.Map(fuzzy.Find(name, r.Names()), func(match fuzzy.Match, _ int) string {
		return match.Str
	})
}

// New looks up name and constructs the model.
func (r *Registry) New(name string, decode DecodeFunc, logger *zap.Logger) (Model, error) {
	constructor, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if decode == nil {
		decode = NoConfig
	}
	return constructor(decode, logger.Named(name))
}
