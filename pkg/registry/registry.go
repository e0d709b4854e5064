// Package registry manages the named external storage services known to the
// server and the account store backing the catalog.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/storelink/storelink/pkg/account"
	"github.com/storelink/storelink/pkg/storage"
)

// Service is a named external storage service: a provider type plus the
// factory that builds adapters bound to per-account credentials.
//
// Accounts reference services by name, so a service can be reconfigured
// (endpoint, defaults) without touching the accounts authorized against it.
type Service struct {
	// Name uniquely identifies the service in the registry.
	Name string

	// Provider is the provider type the service is backed by.
	Provider storage.ProviderType

	// Factory builds an adapter for the service using the credentials of
	// a specific authorized account.
	Factory storage.AdapterFactory
}

// Registry provides thread-safe registration and lookup of external storage
// services, and holds the account store used to resolve accounts to their
// services.
//
// Example usage:
//
//	reg := NewRegistry(accountStore)
//	reg.RegisterService("owncloud-eu", storage.ProviderWebDAV, factory)
//
//	adapter, _ := reg.AdapterForAccount(ctx, acc)
type Registry struct {
	mu       sync.RWMutex
	services map[string]*Service
	accounts account.Store
}

// NewRegistry creates a registry backed by the given account store.
func NewRegistry(accounts account.Store) *Registry {
	return &Registry{
		services: make(map[string]*Service),
		accounts: accounts,
	}
}

// AccountStore returns the account store the registry was created with.
func (r *Registry) AccountStore() account.Store {
	return r.accounts
}

// RegisterService adds a named service to the registry.
// Returns an error if a service with the same name already exists.
func (r *Registry) RegisterService(name string, provider storage.ProviderType, factory storage.AdapterFactory) error {
	if name == "" {
		return fmt.Errorf("cannot register service with empty name")
	}
	if !provider.Valid() {
		return fmt.Errorf("cannot register service %q with unknown provider %q", name, provider)
	}
	if factory == nil {
		return fmt.Errorf("cannot register service %q with nil factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %q already registered", name)
	}

	r.services[name] = &Service{
		Name:     name,
		Provider: provider,
		Factory:  factory,
	}
	return nil
}

// GetService retrieves a service by name.
// Returns nil, error if the service doesn't exist.
func (r *Registry) GetService(name string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %q not found", name)
	}
	return service, nil
}

// AdapterForAccount builds an adapter for the service the account is
// authorized against, bound to the account's credentials.
func (r *Registry) AdapterForAccount(ctx context.Context, acc *account.AuthorizedStorageAccount) (storage.Adapter, error) {
	service, err := r.GetService(acc.ServiceName)
	if err != nil {
		return nil, err
	}

	adapter, err := service.Factory(ctx, acc.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s adapter for service %q: %w", service.Provider, service.Name, err)
	}
	return adapter, nil
}

// ListServices returns all registered service names.
// The returned slice is a copy and safe to modify.
func (r *Registry) ListServices() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	return names
}

// CountServices returns the number of registered services.
func (r *Registry) CountServices() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// ServiceExists checks if a service with the given name is registered.
func (r *Registry) ServiceExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.services[name]
	return exists
}
