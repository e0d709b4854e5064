package invocation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/storelink/pkg/account"
	accountmem "github.com/storelink/storelink/pkg/account/memory"
	"github.com/storelink/storelink/pkg/registry"
	"github.com/storelink/storelink/pkg/storage"
	"github.com/storelink/storelink/pkg/storage/memory"
)

// recordingMetrics captures observations for assertions.
type recordingMetrics struct {
	operations []string
	errors     int
}

func (m *recordingMetrics) ObserveInvocation(operation string, _ time.Duration, err error) {
	m.operations = append(m.operations, operation)
	if err != nil {
		m.errors++
	}
}

func newTestInvoker(t *testing.T) (*Invoker, uuid.UUID, *recordingMetrics) {
	t.Helper()

	store := accountmem.NewStore()
	reg := registry.NewRegistry(store)

	err := reg.RegisterService("mem-main", storage.ProviderMemory,
		func(_ context.Context, creds storage.Credentials) (storage.Adapter, error) {
			adapter := memory.New(creds.Username)
			adapter.AddFolder("docs")
			adapter.AddFile("docs/report.pdf")
			return adapter, nil
		})
	require.NoError(t, err)

	acc := &account.AuthorizedStorageAccount{
		ID:          uuid.New(),
		OwnerURI:    "https://osf.example/u/alice",
		ServiceName: "mem-main",
		Credentials: storage.Credentials{Username: "alice"},
	}
	require.NoError(t, store.CreateAccount(context.Background(), acc))

	metrics := &recordingMetrics{}
	return NewInvoker(reg, metrics), acc.ID, metrics
}

func TestInvokeGetExternalIdentity(t *testing.T) {
	invoker, accountID, metrics := newTestInvoker(t)

	record, err := invoker.Invoke(context.Background(), Request{
		AccountID: accountID,
		Operation: OperationGetExternalIdentity,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, record.Status)
	assert.Empty(t, record.ErrorMessage)

	var identity storage.ExternalIdentity
	require.NoError(t, json.Unmarshal(record.Result, &identity))
	assert.Equal(t, "alice", identity.AccountID)

	assert.Equal(t, []string{"get_external_identity"}, metrics.operations)
	assert.Zero(t, metrics.errors)
}

func TestInvokeListChildItems(t *testing.T) {
	invoker, accountID, _ := newTestInvoker(t)

	args, err := json.Marshal(Args{
		ItemID: storage.MakeItemID(storage.ItemTypeFolder, "docs"),
	})
	require.NoError(t, err)

	record, err := invoker.Invoke(context.Background(), Request{
		AccountID: accountID,
		Operation: OperationListChildItems,
		Args:      args,
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, record.Status)

	var page storage.ItemPage
	require.NoError(t, json.Unmarshal(record.Result, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "report.pdf", page.Items[0].Name)
}

func TestInvokeListChildItemsDefaultsToRoot(t *testing.T) {
	invoker, accountID, _ := newTestInvoker(t)

	record, err := invoker.Invoke(context.Background(), Request{
		AccountID: accountID,
		Operation: OperationListChildItems,
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, record.Status)

	var page storage.ItemPage
	require.NoError(t, json.Unmarshal(record.Result, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "docs", page.Items[0].Name)
}

func TestInvokeOperationFailureIsRecorded(t *testing.T) {
	invoker, accountID, metrics := newTestInvoker(t)

	args, err := json.Marshal(Args{
		ItemID: storage.MakeItemID(storage.ItemTypeFile, "missing.txt"),
	})
	require.NoError(t, err)

	record, err := invoker.Invoke(context.Background(), Request{
		AccountID: accountID,
		Operation: OperationGetItemInfo,
		Args:      args,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusError, record.Status)
	assert.Contains(t, record.ErrorMessage, "not found")
	assert.Nil(t, record.Result)
	assert.Equal(t, 1, metrics.errors)

	// The terminal record is retrievable afterwards.
	stored, err := invoker.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, stored.Status)
}

func TestInvokeRequestValidation(t *testing.T) {
	invoker, accountID, _ := newTestInvoker(t)

	t.Run("unknown operation", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), Request{
			AccountID: accountID,
			Operation: Operation("rm_rf"),
		})
		assert.ErrorIs(t, err, ErrUnknownOperation)
	})

	t.Run("malformed args", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), Request{
			AccountID: accountID,
			Operation: OperationListRootItems,
			Args:      json.RawMessage(`{"cursor":`),
		})
		assert.ErrorIs(t, err, ErrInvalidArgs)
	})

	t.Run("misspelled filter", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), Request{
			AccountID: accountID,
			Operation: OperationListChildItems,
			Args:      json.RawMessage(`{"item_id":"folder:/","filter":"fodler"}`),
		})
		assert.ErrorIs(t, err, ErrInvalidArgs)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := invoker.Invoke(context.Background(), Request{
			AccountID: uuid.New(),
			Operation: OperationListRootItems,
		})
		assert.ErrorIs(t, err, account.ErrNotFound)
	})
}

func TestGetAndListByAccount(t *testing.T) {
	invoker, accountID, _ := newTestInvoker(t)

	_, err := invoker.Get(uuid.New())
	assert.ErrorIs(t, err, ErrInvocationNotFound)

	first, err := invoker.Invoke(context.Background(), Request{
		AccountID: accountID,
		Operation: OperationBuildClientConfig,
	})
	require.NoError(t, err)

	second, err := invoker.Invoke(context.Background(), Request{
		AccountID: accountID,
		Operation: OperationListRootItems,
	})
	require.NoError(t, err)

	records := invoker.ListByAccount(accountID)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)

	assert.Empty(t, invoker.ListByAccount(uuid.New()))
}
