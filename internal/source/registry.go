package source

import (
	"fmt"

	"eumenides/internal/ports"
)

// Registry keeps a mapping from platform names to their metadata sources.
// One platform is scanned at a time; the registry is how the pipeline
// resolves the concrete client for it.
type Registry struct {
	sources map[string]ports.MetadataSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.MetadataSource{}}
}

// Register adds or replaces a source for its platform.
func (r *Registry) Register(src ports.MetadataSource) {
	if r.sources == nil {
		r.sources = map[string]ports.MetadataSource{}
	}
	r.sources[src.Platform()] = src
}

// Resolve returns the source for a platform or an error if it is absent.
func (r *Registry) Resolve(platform string) (ports.MetadataSource, error) {
	if src, ok := r.sources[platform]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("platform %s has no registered source", platform)
}
