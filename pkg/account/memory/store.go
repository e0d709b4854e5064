// Package memory provides an in-memory implementation of account.Store.
//
// It is intended for development and testing. All data is lost when the
// process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/storelink/storelink/pkg/account"
)

// Store implements account.Store with mutex-protected maps.
type Store struct {
	mu        sync.RWMutex
	accounts  map[uuid.UUID]*account.AuthorizedStorageAccount
	resources map[uuid.UUID]*account.ResourceReference
	// resourceByURI indexes resource references by their unique URI.
	resourceByURI map[string]uuid.UUID
	addons        map[uuid.UUID]*account.ConfiguredStorageAddon
}

var _ account.Store = (*Store)(nil)

// NewStore creates an empty in-memory account store.
func NewStore() *Store {
	return &Store{
		accounts:      make(map[uuid.UUID]*account.AuthorizedStorageAccount),
		resources:     make(map[uuid.UUID]*account.ResourceReference),
		resourceByURI: make(map[string]uuid.UUID),
		addons:        make(map[uuid.UUID]*account.ConfiguredStorageAddon),
	}
}

func (s *Store) CreateAccount(ctx context.Context, acc *account.AuthorizedStorageAccount) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acc.ID]; ok {
		return fmt.Errorf("account %s: %w", acc.ID, account.ErrExists)
	}

	stored := *acc
	s.accounts[acc.ID] = &stored
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.AuthorizedStorageAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, account.ErrNotFound)
	}

	result := *acc
	return &result, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acc *account.AuthorizedStorageAccount) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acc.ID]; !ok {
		return fmt.Errorf("account %s: %w", acc.ID, account.ErrNotFound)
	}

	stored := *acc
	s.accounts[acc.ID] = &stored
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return fmt.Errorf("account %s: %w", id, account.ErrNotFound)
	}

	delete(s.accounts, id)
	for addonID, addon := range s.addons {
		if addon.AccountID == id {
			delete(s.addons, addonID)
		}
	}
	return nil
}

func (s *Store) ListAccountsByOwner(ctx context.Context, ownerURI string) ([]*account.AuthorizedStorageAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*account.AuthorizedStorageAccount{}
	for _, acc := range s.accounts {
		if acc.OwnerURI == ownerURI {
			stored := *acc
			result = append(result, &stored)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) GetOrCreateResourceReference(ctx context.Context, resourceURI string) (*account.ResourceReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.resourceByURI[resourceURI]; ok {
		result := *s.resources[id]
		return &result, nil
	}

	ref := &account.ResourceReference{
		ID:          uuid.New(),
		ResourceURI: resourceURI,
	}
	s.resources[ref.ID] = ref
	s.resourceByURI[resourceURI] = ref.ID

	result := *ref
	return &result, nil
}

func (s *Store) GetResourceReference(ctx context.Context, id uuid.UUID) (*account.ResourceReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, ok := s.resources[id]
	if !ok {
		return nil, fmt.Errorf("resource reference %s: %w", id, account.ErrNotFound)
	}

	result := *ref
	return &result, nil
}

func (s *Store) CreateAddon(ctx context.Context, addon *account.ConfiguredStorageAddon) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.addons[addon.ID]; ok {
		return fmt.Errorf("addon %s: %w", addon.ID, account.ErrExists)
	}
	if _, ok := s.accounts[addon.AccountID]; !ok {
		return fmt.Errorf("account %s: %w", addon.AccountID, account.ErrNotFound)
	}
	if _, ok := s.resources[addon.ResourceID]; !ok {
		return fmt.Errorf("resource reference %s: %w", addon.ResourceID, account.ErrNotFound)
	}

	stored := *addon
	s.addons[addon.ID] = &stored
	return nil
}

func (s *Store) GetAddon(ctx context.Context, id uuid.UUID) (*account.ConfiguredStorageAddon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	addon, ok := s.addons[id]
	if !ok {
		return nil, fmt.Errorf("addon %s: %w", id, account.ErrNotFound)
	}

	result := *addon
	return &result, nil
}

func (s *Store) UpdateAddon(ctx context.Context, addon *account.ConfiguredStorageAddon) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.addons[addon.ID]; !ok {
		return fmt.Errorf("addon %s: %w", addon.ID, account.ErrNotFound)
	}

	stored := *addon
	s.addons[addon.ID] = &stored
	return nil
}

func (s *Store) DeleteAddon(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.addons[id]; !ok {
		return fmt.Errorf("addon %s: %w", id, account.ErrNotFound)
	}

	delete(s.addons, id)
	return nil
}

func (s *Store) ListAddonsByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.ConfiguredStorageAddon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterAddons(func(a *account.ConfiguredStorageAddon) bool {
		return a.AccountID == accountID
	}), nil
}

func (s *Store) ListAddonsByResource(ctx context.Context, resourceID uuid.UUID) ([]*account.ConfiguredStorageAddon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterAddons(func(a *account.ConfiguredStorageAddon) bool {
		return a.ResourceID == resourceID
	}), nil
}

// filterAddons must be called with the mutex held.
func (s *Store) filterAddons(keep func(*account.ConfiguredStorageAddon) bool) []*account.ConfiguredStorageAddon {
	result := []*account.ConfiguredStorageAddon{}
	for _, addon := range s.addons {
		if keep(addon) {
			stored := *addon
			result = append(result, &stored)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
