package badger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/storelink/pkg/account"
	"github.com/storelink/storelink/pkg/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(context.Background(), Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func newTestAccount(owner string) *account.AuthorizedStorageAccount {
	now := time.Now().UTC()
	return &account.AuthorizedStorageAccount{
		ID:          uuid.New(),
		OwnerURI:    owner,
		ServiceName: "owncloud-eu",
		Credentials: storage.Credentials{Username: "alice", Password: "secret"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	acc := newTestAccount("https://osf.example/u/alice")
	acc.DefaultRootFolder = storage.MakeItemID(storage.ItemTypeFolder, "research")
	require.NoError(t, store.CreateAccount(ctx, acc))

	got, err := store.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.OwnerURI, got.OwnerURI)
	assert.Equal(t, acc.Credentials, got.Credentials)
	assert.Equal(t, acc.DefaultRootFolder, got.DefaultRootFolder)
	assert.True(t, acc.CreatedAt.Equal(got.CreatedAt))

	assert.ErrorIs(t, store.CreateAccount(ctx, acc), account.ErrExists)

	_, err = store.GetAccount(ctx, uuid.New())
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestUpdateAccountReindexesOwner(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	acc := newTestAccount("https://osf.example/u/alice")
	require.NoError(t, store.CreateAccount(ctx, acc))

	acc.OwnerURI = "https://osf.example/u/alice-renamed"
	require.NoError(t, store.UpdateAccount(ctx, acc))

	old, err := store.ListAccountsByOwner(ctx, "https://osf.example/u/alice")
	require.NoError(t, err)
	assert.Empty(t, old)

	renamed, err := store.ListAccountsByOwner(ctx, "https://osf.example/u/alice-renamed")
	require.NoError(t, err)
	require.Len(t, renamed, 1)
	assert.Equal(t, acc.ID, renamed[0].ID)
}

func TestListAccountsByOwnerSortsByCreation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := newTestAccount("https://osf.example/u/alice")
	first.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := newTestAccount("https://osf.example/u/alice")
	second.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateAccount(ctx, second))
	require.NoError(t, store.CreateAccount(ctx, first))

	accounts, err := store.ListAccountsByOwner(ctx, "https://osf.example/u/alice")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, first.ID, accounts[0].ID)
	assert.Equal(t, second.ID, accounts[1].ID)
}

func TestListAccountsByOwnerIsolatesNestedURIs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	parent := newTestAccount("urn:user")
	child := newTestAccount("urn:user:sub")
	require.NoError(t, store.CreateAccount(ctx, parent))
	require.NoError(t, store.CreateAccount(ctx, child))

	accounts, err := store.ListAccountsByOwner(ctx, "urn:user")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, parent.ID, accounts[0].ID)
	for _, acc := range accounts {
		assert.Equal(t, "urn:user", acc.OwnerURI)
	}

	nested, err := store.ListAccountsByOwner(ctx, "urn:user:sub")
	require.NoError(t, err)
	require.Len(t, nested, 1)
	assert.Equal(t, child.ID, nested[0].ID)
}

func TestResourceReferenceGetOrCreate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ref, err := store.GetOrCreateResourceReference(ctx, "https://osf.example/p/abcde")
	require.NoError(t, err)

	same, err := store.GetOrCreateResourceReference(ctx, "https://osf.example/p/abcde")
	require.NoError(t, err)
	assert.Equal(t, ref.ID, same.ID)

	other, err := store.GetOrCreateResourceReference(ctx, "https://osf.example/p/zzzzz")
	require.NoError(t, err)
	assert.NotEqual(t, ref.ID, other.ID)

	byID, err := store.GetResourceReference(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://osf.example/p/abcde", byID.ResourceURI)
}

func TestAddonLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	acc := newTestAccount("https://osf.example/u/alice")
	require.NoError(t, store.CreateAccount(ctx, acc))
	ref, err := store.GetOrCreateResourceReference(ctx, "https://osf.example/p/abcde")
	require.NoError(t, err)

	addon := &account.ConfiguredStorageAddon{
		ID:                  uuid.New(),
		AccountID:           acc.ID,
		ResourceID:          ref.ID,
		RootFolder:          storage.MakeItemID(storage.ItemTypeFolder, "project-data"),
		ConnectedOperations: []string{"list_root_items", "get_item_info"},
	}
	require.NoError(t, store.CreateAddon(ctx, addon))
	assert.ErrorIs(t, store.CreateAddon(ctx, addon), account.ErrExists)

	got, err := store.GetAddon(ctx, addon.ID)
	require.NoError(t, err)
	assert.Equal(t, addon.ConnectedOperations, got.ConnectedOperations)

	byAccount, err := store.ListAddonsByAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, byAccount, 1)

	byResource, err := store.ListAddonsByResource(ctx, ref.ID)
	require.NoError(t, err)
	require.Len(t, byResource, 1)

	t.Run("update re-keys the resource index", func(t *testing.T) {
		newRef, err := store.GetOrCreateResourceReference(ctx, "https://osf.example/p/moved")
		require.NoError(t, err)

		addon.ResourceID = newRef.ID
		require.NoError(t, store.UpdateAddon(ctx, addon))

		stale, err := store.ListAddonsByResource(ctx, ref.ID)
		require.NoError(t, err)
		assert.Empty(t, stale)

		moved, err := store.ListAddonsByResource(ctx, newRef.ID)
		require.NoError(t, err)
		require.Len(t, moved, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteAddon(ctx, addon.ID))
		_, err := store.GetAddon(ctx, addon.ID)
		assert.ErrorIs(t, err, account.ErrNotFound)

		remaining, err := store.ListAddonsByAccount(ctx, acc.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}

func TestDeleteAccountCascadesAddons(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	acc := newTestAccount("https://osf.example/u/alice")
	require.NoError(t, store.CreateAccount(ctx, acc))
	ref, err := store.GetOrCreateResourceReference(ctx, "https://osf.example/p/abcde")
	require.NoError(t, err)

	addon := &account.ConfiguredStorageAddon{
		ID:         uuid.New(),
		AccountID:  acc.ID,
		ResourceID: ref.ID,
	}
	require.NoError(t, store.CreateAddon(ctx, addon))

	require.NoError(t, store.DeleteAccount(ctx, acc.ID))

	_, err = store.GetAccount(ctx, acc.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)
	_, err = store.GetAddon(ctx, addon.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)

	orphans, err := store.ListAddonsByResource(ctx, ref.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}
