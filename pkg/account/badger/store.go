// Package badger provides a persistent implementation of account.Store
// backed by BadgerDB, an embedded key-value store.
//
// It is suitable for production deployments where the account catalog must
// survive restarts. All operations run inside Badger transactions, so
// entity writes and their secondary-index writes are atomic. See keys.go
// for the key schema.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"

	"github.com/storelink/storelink/pkg/account"
)

// Config contains the configuration for opening a BadgerDB account store.
type Config struct {
	// DBPath is the directory where BadgerDB stores its files. Ignored
	// when InMemory is set.
	DBPath string `mapstructure:"db_path"`

	// InMemory opens the database without persistence. Used in tests.
	InMemory bool `mapstructure:"in_memory"`
}

// Store implements account.Store on top of BadgerDB.
type Store struct {
	db *badger.DB
}

var _ account.Store = (*Store)(nil)

// NewStore opens (or creates) the database at the configured path.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.DBPath)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Catalog values are tiny, compression overhead is not worth it.
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateAccount(ctx context.Context, acc *account.AuthorizedStorageAccount) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyAccount(acc.ID))
		if err == nil {
			return fmt.Errorf("account %s: %w", acc.ID, account.ErrExists)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check account: %w", err)
		}

		encoded, err := encodeAccount(acc)
		if err != nil {
			return err
		}
		if err := txn.Set(keyAccount(acc.ID), encoded); err != nil {
			return fmt.Errorf("failed to store account: %w", err)
		}
		if err := txn.Set(keyOwnerIndex(acc.OwnerURI, acc.ID), acc.ID[:]); err != nil {
			return fmt.Errorf("failed to index account owner: %w", err)
		}
		return nil
	})
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.AuthorizedStorageAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var acc *account.AuthorizedStorageAccount
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		acc, err = getAccount(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acc *account.AuthorizedStorageAccount) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		existing, err := getAccount(txn, acc.ID)
		if err != nil {
			return err
		}

		encoded, err := encodeAccount(acc)
		if err != nil {
			return err
		}
		if err := txn.Set(keyAccount(acc.ID), encoded); err != nil {
			return fmt.Errorf("failed to store account: %w", err)
		}

		if existing.OwnerURI != acc.OwnerURI {
			if err := txn.Delete(keyOwnerIndex(existing.OwnerURI, acc.ID)); err != nil {
				return fmt.Errorf("failed to drop stale owner index: %w", err)
			}
			if err := txn.Set(keyOwnerIndex(acc.OwnerURI, acc.ID), acc.ID[:]); err != nil {
				return fmt.Errorf("failed to index account owner: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		acc, err := getAccount(txn, id)
		if err != nil {
			return err
		}

		// Cascade to the account's configured addons.
		addonIDs, err := scanIndex(txn, keyAddonByAccountPrefix(id))
		if err != nil {
			return err
		}
		for _, addonID := range addonIDs {
			addon, err := getAddon(txn, addonID)
			if err != nil {
				return err
			}
			if err := deleteAddonEntries(txn, addon); err != nil {
				return err
			}
		}

		if err := txn.Delete(keyAccount(id)); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		if err := txn.Delete(keyOwnerIndex(acc.OwnerURI, id)); err != nil {
			return fmt.Errorf("failed to delete owner index: %w", err)
		}
		return nil
	})
}

func (s *Store) ListAccountsByOwner(ctx context.Context, ownerURI string) ([]*account.AuthorizedStorageAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := []*account.AuthorizedStorageAccount{}
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := scanIndex(txn, keyOwnerIndexPrefix(ownerURI))
		if err != nil {
			return err
		}
		for _, id := range ids {
			acc, err := getAccount(txn, id)
			if err != nil {
				return err
			}
			result = append(result, acc)
		}
		return nil
	})
	if err != nil {
		return nil, err
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

	var ref *account.ResourceReference
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keyResourceURI(resourceURI))
		if err == nil {
			var id uuid.UUID
			err = item.Value(func(val []byte) error {
				id, err = uuid.FromBytes(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to read resource URI index: %w", err)
			}
			ref, err = getResource(txn, id)
			return err
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check resource URI: %w", err)
		}

		ref = &account.ResourceReference{
			ID:          uuid.New(),
			ResourceURI: resourceURI,
		}
		encoded, err := encodeResource(ref)
		if err != nil {
			return err
		}
		if err := txn.Set(keyResource(ref.ID), encoded); err != nil {
			return fmt.Errorf("failed to store resource reference: %w", err)
		}
		if err := txn.Set(keyResourceURI(resourceURI), ref.ID[:]); err != nil {
			return fmt.Errorf("failed to index resource URI: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *Store) GetResourceReference(ctx context.Context, id uuid.UUID) (*account.ResourceReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ref *account.ResourceReference
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ref, err = getResource(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *Store) CreateAddon(ctx context.Context, addon *account.ConfiguredStorageAddon) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyAddon(addon.ID))
		if err == nil {
			return fmt.Errorf("addon %s: %w", addon.ID, account.ErrExists)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check addon: %w", err)
		}

		// Referential checks: account and resource must exist.
		if _, err := getAccount(txn, addon.AccountID); err != nil {
			return err
		}
		if _, err := getResource(txn, addon.ResourceID); err != nil {
			return err
		}

		return setAddonEntries(txn, addon)
	})
}

func (s *Store) GetAddon(ctx context.Context, id uuid.UUID) (*account.ConfiguredStorageAddon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var addon *account.ConfiguredStorageAddon
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		addon, err = getAddon(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return addon, nil
}

func (s *Store) UpdateAddon(ctx context.Context, addon *account.ConfiguredStorageAddon) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		existing, err := getAddon(txn, addon.ID)
		if err != nil {
			return err
		}
		// Re-keying the indexes on every update is simpler than diffing
		// the account and resource relationships.
		if err := deleteAddonEntries(txn, existing); err != nil {
			return err
		}
		return setAddonEntries(txn, addon)
	})
}

func (s *Store) DeleteAddon(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		addon, err := getAddon(txn, id)
		if err != nil {
			return err
		}
		return deleteAddonEntries(txn, addon)
	})
}

func (s *Store) ListAddonsByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.ConfiguredStorageAddon, error) {
	return s.listAddons(ctx, keyAddonByAccountPrefix(accountID))
}

func (s *Store) ListAddonsByResource(ctx context.Context, resourceID uuid.UUID) ([]*account.ConfiguredStorageAddon, error) {
	return s.listAddons(ctx, keyAddonByResourcePrefix(resourceID))
}

func (s *Store) listAddons(ctx context.Context, indexPrefix []byte) ([]*account.ConfiguredStorageAddon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := []*account.ConfiguredStorageAddon{}
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := scanIndex(txn, indexPrefix)
		if err != nil {
			return err
		}
		for _, id := range ids {
			addon, err := getAddon(txn, id)
			if err != nil {
				return err
			}
			result = append(result, addon)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// Transaction helpers
// ===================

func getAccount(txn *badger.Txn, id uuid.UUID) (*account.AuthorizedStorageAccount, error) {
	item, err := txn.Get(keyAccount(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("account %s: %w", id, account.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var acc *account.AuthorizedStorageAccount
	err = item.Value(func(val []byte) error {
		acc, err = decodeAccount(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func getResource(txn *badger.Txn, id uuid.UUID) (*account.ResourceReference, error) {
	item, err := txn.Get(keyResource(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("resource reference %s: %w", id, account.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource reference: %w", err)
	}

	var ref *account.ResourceReference
	err = item.Value(func(val []byte) error {
		ref, err = decodeResource(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func getAddon(txn *badger.Txn, id uuid.UUID) (*account.ConfiguredStorageAddon, error) {
	item, err := txn.Get(keyAddon(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("addon %s: %w", id, account.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get addon: %w", err)
	}

	var addon *account.ConfiguredStorageAddon
	err = item.Value(func(val []byte) error {
		addon, err = decodeAddon(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return addon, nil
}

func setAddonEntries(txn *badger.Txn, addon *account.ConfiguredStorageAddon) error {
	encoded, err := encodeAddon(addon)
	if err != nil {
		return err
	}
	if err := txn.Set(keyAddon(addon.ID), encoded); err != nil {
		return fmt.Errorf("failed to store addon: %w", err)
	}
	if err := txn.Set(keyAddonByAccount(addon.AccountID, addon.ID), addon.ID[:]); err != nil {
		return fmt.Errorf("failed to index addon account: %w", err)
	}
	if err := txn.Set(keyAddonByResource(addon.ResourceID, addon.ID), addon.ID[:]); err != nil {
		return fmt.Errorf("failed to index addon resource: %w", err)
	}
	return nil
}

func deleteAddonEntries(txn *badger.Txn, addon *account.ConfiguredStorageAddon) error {
	if err := txn.Delete(keyAddon(addon.ID)); err != nil {
		return fmt.Errorf("failed to delete addon: %w", err)
	}
	if err := txn.Delete(keyAddonByAccount(addon.AccountID, addon.ID)); err != nil {
		return fmt.Errorf("failed to delete addon account index: %w", err)
	}
	if err := txn.Delete(keyAddonByResource(addon.ResourceID, addon.ID)); err != nil {
		return fmt.Errorf("failed to delete addon resource index: %w", err)
	}
	return nil
}

// scanIndex collects the UUID values stored under an index prefix.
func scanIndex(txn *badger.Txn, prefix []byte) ([]uuid.UUID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	ids := []uuid.UUID{}
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var id uuid.UUID
		err := it.Item().Value(func(val []byte) error {
			var err error
			id, err = uuid.FromBytes(val)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read index entry: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
