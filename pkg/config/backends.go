package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// BackendDescriptor declares one text-completion backend in backends.yaml.
// Lower priority values are tried first.
type BackendDescriptor struct {
	Name     string  `yaml:"name"`
	Provider string  `yaml:"provider"` // "groq" | "openrouter" | "gigachat"
	Model    string  `yaml:"model"`
	Endpoint string  `yaml:"endpoint,omitempty"`
	Priority int     `yaml:"priority"`
	RPS      float64 `yaml:"rps,omitempty"`
}

type backendsFile struct {
	Backends []BackendDescriptor `yaml:"backends"`
}

var knownProviders = map[string]bool{
	"groq":       true,
	"openrouter": true,
	"gigachat":   true,
}

// LoadBackends reads and validates the backend descriptor list.
// Descriptors are returned sorted by ascending priority.
func LoadBackends(path string) ([]BackendDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backends file: %w", err)
	}

	var file backendsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse backends file: %w", err)
	}

	if len(file.Backends) == 0 {
		return nil, fmt.Errorf("backends file %s declares no backends", path)
	}

	seen := make(map[string]bool, len(file.Backends))
	for i, b := range file.Backends {
		if b.Name == "" {
			return nil, fmt.Errorf("backend %d: name is required", i)
		}
		if seen[b.Name] {
			return nil, fmt.Errorf("backend %q declared twice", b.Name)
		}
		seen[b.Name] = true

		if !knownProviders[b.Provider] {
			return nil, fmt.Errorf("backend %q: unknown provider %q", b.Name, b.Provider)
		}
		if b.Model == "" {
			return nil, fmt.Errorf("backend %q: model is required", b.Name)
		}
		if b.RPS < 0 {
			return nil, fmt.Errorf("backend %q: rps must be non-negative", b.Name)
		}
	}

	sort.SliceStable(file.Backends, func(i, j int) bool {
		return file.Backends[i].Priority < file.Backends[j].Priority
	})

	return file.Backends, nil
}
