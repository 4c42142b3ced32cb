package doctree

import (
	"fmt"
	"sort"
	"sync"
)

// Config holds the provider configuration.
type Config struct {
	// Type is the driver name: "local", "rclone", etc.
	Type string `json:"type" yaml:"type"`

	// BasePath is the volume root for file-based providers.
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`

	// Options holds driver-specific configuration.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// StringOption returns the option called key, or def when it is unset or not a string.
func (c *Config) StringOption(key, def string) string {
	if v, ok := c.Options[key].(string); ok && v != "" {
		return v
	}
	return def
}

// BoolOption returns the option called key, or def when it is unset or not a bool.
func (c *Config) BoolOption(key string, def bool) bool {
	if v, ok := c.Options[key].(bool); ok {
		return v
	}
	return def
}

// Factory is a function that creates a [Provider] from a [Config].
type Factory func(cfg *Config) (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a provider driver available by the provided name.
// This is typically called from the driver package's init() function.
// It panics if called twice with the same name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("doctree: driver %q already registered", name))
	}
	factories[name] = factory
}

// Drivers returns a sorted list of all registered driver names.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates a new [Provider] using the registered driver specified in cfg.Type.
func Open(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("doctree: config must not be nil")
	}

	mu.RLock()
	factory, ok := factories[cfg.Type]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("doctree: unknown driver %q (forgotten import?)", cfg.Type)
	}

	return factory(cfg)
}

// MustOpen is like [Open] but panics on error.
func MustOpen(cfg *Config) Provider {
	p, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	return p
}
