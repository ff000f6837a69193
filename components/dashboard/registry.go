package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidWidgetCode is returned for codes without a namespace segment.
var ErrInvalidWidgetCode = errors.New("dashboard: widget code must be namespaced (e.g. hub.widget.name)")

// Registry implements ProviderRegistry. It starts with the hub widgets and
// their providers; manifests add definitions that rebind those providers.
type Registry struct {
	mu           sync.RWMutex
	definitions  map[string]WidgetDefinition
	providers    map[string]Provider
	manifestMeta map[string]ManifestProvider
}

var _ ProviderRegistry = (*Registry)(nil)

// RegistryOption customizes a registry built by NewRegistry.
type RegistryOption func(*Registry)

// WithProviders replaces built-in providers, e.g. chart providers that share
// a render cache. Codes without a built-in definition are ignored.
func WithProviders(providers map[string]Provider) RegistryOption {
	return func(r *Registry) {
		for code, provider := range providers {
			if provider == nil {
				continue
			}
			if _, ok := r.definitions[code]; ok {
				r.providers[code] = provider
			}
		}
	}
}

// NewRegistry builds a registry holding the hub widgets.
func NewRegistry(opts ...RegistryOption) *Registry {
	reg := &Registry{
		definitions:  map[string]WidgetDefinition{},
		providers:    map[string]Provider{},
		manifestMeta: map[string]ManifestProvider{},
	}
	providers := defaultProviders()
	for _, def := range DefaultWidgetDefinitions() {
		reg.definitions[def.Code] = def
		if provider, ok := providers[def.Code]; ok {
			reg.providers[def.Code] = provider
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}
	return reg
}

// RegisterDefinition stores widget metadata, replacing any previous
// definition with the same code.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	code := strings.TrimSpace(def.Code)
	if code == "" {
		return fmt.Errorf("widget definition code is required")
	}
	if !strings.Contains(code, ".") || strings.HasPrefix(code, ".") || strings.HasSuffix(code, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidWidgetCode, def.Code)
	}
	def.Code = code
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[code] = def
	return nil
}

// RegisterProvider associates a provider implementation with a definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if code == "" {
		return fmt.Errorf("widget definition code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("widget definition %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

// Definition fetches a widget definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a widget provider by code.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// ProviderMetadata returns the manifest provider entry recorded for a widget.
func (r *Registry) ProviderMetadata(code string) (ManifestProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.manifestMeta[code]
	return meta, ok
}

// Definitions returns all registered definitions ordered by category, then code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Category != defs[j].Category {
			return defs[i].Category < defs[j].Category
		}
		return defs[i].Code < defs[j].Code
	})
	return defs
}

// Unbound lists definitions that have no provider; their widgets render empty.
func (r *Registry) Unbound() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var codes []string
	for code := range r.definitions {
		if _, ok := r.providers[code]; !ok {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func (r *Registry) recordProviderMetadata(code string, meta ManifestProvider) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifestMeta[code] = meta
}
