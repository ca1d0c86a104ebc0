package analysis

import (
	"fmt"
	"sync"
)

// Names of the built-in tokenizers.
const (
	Standard   = "standard"
	Whitespace = "whitespace"
	Keyword    = "keyword"
)

// Registry manages Tokenizer instances by name.
type Registry struct {
	tokenizers map[string]Tokenizer
	mu         sync.RWMutex
}

// NewRegistry creates a Registry with the built-in tokenizers registered.
func NewRegistry() *Registry {
	r := &Registry{
		tokenizers: make(map[string]Tokenizer),
	}
	r.tokenizers[Standard] = NewStandardTokenizer()
	r.tokenizers[Whitespace] = NewWhitespaceTokenizer()
	r.tokenizers[Keyword] = NewKeywordTokenizer()
	return r
}

// Get returns the tokenizer registered under the given name.
func (r *Registry) Get(name string) (Tokenizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokenizers[name]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown tokenizer %q", name)
	}
	return t, nil
}

// Register adds a custom tokenizer to the registry.
func (r *Registry) Register(name string, t Tokenizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokenizers[name]; exists {
		return fmt.Errorf("analysis: tokenizer already registered: %q", name)
	}
	r.tokenizers[name] = t
	return nil
}

// Names returns the names of all registered tokenizers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tokenizers))
	for name := range r.tokenizers {
		names = append(names, name)
	}
	return names
}
