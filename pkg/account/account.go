// Package account defines the catalog of authorized storage accounts,
// the resources they are linked to, and the configured addons binding the
// two together. It is persistence-agnostic: concrete stores live in the
// memory and badger subpackages.
package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storelink/storelink/pkg/storage"
)

// AuthorizedStorageAccount represents a user's authorization against one
// named external storage service. The credentials it carries are handed to
// the adapter factory when operations are invoked on the account.
type AuthorizedStorageAccount struct {
	ID uuid.UUID `json:"id"`

	// OwnerURI identifies the user that authorized the account.
	OwnerURI string `json:"owner_uri"`

	// ServiceName names the registered external service this account
	// is authorized against.
	ServiceName string `json:"service_name"`

	Credentials storage.Credentials `json:"credentials"`

	// DefaultRootFolder scopes the account to a subtree of the remote
	// storage. Empty means the remote root.
	DefaultRootFolder storage.ItemID `json:"default_root_folder"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResourceReference points at a resource (by URI) that addons can be
// configured for. URIs are unique within the store.
type ResourceReference struct {
	ID          uuid.UUID `json:"id"`
	ResourceURI string    `json:"resource_uri"`
}

// ConfiguredStorageAddon connects an authorized account to a resource,
// optionally rooted at a folder inside the account.
type ConfiguredStorageAddon struct {
	ID         uuid.UUID `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	ResourceID uuid.UUID `json:"resource_id"`

	// RootFolder narrows the addon to a folder within the account.
	// Empty means the account's default root.
	RootFolder storage.ItemID `json:"root_folder"`

	// ConnectedOperations lists the operation names enabled for this
	// addon. Empty means all operations.
	ConnectedOperations []string `json:"connected_operations"`
}

// Store is the persistence contract for the account catalog.
//
// All methods are safe for concurrent use. Lookups for missing entities
// return errors wrapping ErrNotFound; creations that collide with an
// existing entity return errors wrapping ErrExists.
type Store interface {
	// CreateAccount persists a new account. The account's ID must be set
	// by the caller.
	CreateAccount(ctx context.Context, acc *AuthorizedStorageAccount) error

	// GetAccount returns the account with the given ID.
	GetAccount(ctx context.Context, id uuid.UUID) (*AuthorizedStorageAccount, error)

	// UpdateAccount replaces an existing account.
	UpdateAccount(ctx context.Context, acc *AuthorizedStorageAccount) error

	// DeleteAccount removes an account and its configured addons.
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	// ListAccountsByOwner returns all accounts authorized by the owner,
	// ordered by creation time.
	ListAccountsByOwner(ctx context.Context, ownerURI string) ([]*AuthorizedStorageAccount, error)

	// GetOrCreateResourceReference returns the reference for the URI,
	// creating it if it does not exist yet.
	GetOrCreateResourceReference(ctx context.Context, resourceURI string) (*ResourceReference, error)

	// GetResourceReference returns the reference with the given ID.
	GetResourceReference(ctx context.Context, id uuid.UUID) (*ResourceReference, error)

	// CreateAddon persists a new configured addon. Its account and
	// resource must exist.
	CreateAddon(ctx context.Context, addon *ConfiguredStorageAddon) error

	// GetAddon returns the addon with the given ID.
	GetAddon(ctx context.Context, id uuid.UUID) (*ConfiguredStorageAddon, error)

	// UpdateAddon replaces an existing addon.
	UpdateAddon(ctx context.Context, addon *ConfiguredStorageAddon) error

	// DeleteAddon removes a configured addon.
	DeleteAddon(ctx context.Context, id uuid.UUID) error

	// ListAddonsByAccount returns the addons configured for an account.
	ListAddonsByAccount(ctx context.Context, accountID uuid.UUID) ([]*ConfiguredStorageAddon, error)

	// ListAddonsByResource returns the addons configured for a resource.
	ListAddonsByResource(ctx context.Context, resourceID uuid.UUID) ([]*ConfiguredStorageAddon, error)

	// Close releases any resources held by the store.
	Close() error
}
