package extract

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownExtractor is returned by Get for unregistered languages.
var ErrUnknownExtractor = errors.New("unknown extractor")

var (
	mu         sync.RWMutex
	extractors = make(map[string]Extractor)
)

// Register adds an extractor to the global registry.
func Register(e Extractor) {
	mu.Lock()
	defer mu.Unlock()
	extractors[e.Name()] = e
}

// Get returns an extractor by language name.
func Get(name string) (Extractor, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := extractors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtractor, name)
	}
	return e, nil
}

// List returns all registered language names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
