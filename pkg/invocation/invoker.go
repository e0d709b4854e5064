package invocation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storelink/storelink/internal/logging"
	"github.com/storelink/storelink/pkg/account"
	"github.com/storelink/storelink/pkg/registry"
	"github.com/storelink/storelink/pkg/storage"
)

// Invoker executes operations against the adapter of an account's service
// and keeps a record of every invocation.
//
// Execution is blocking: Invoke returns once the operation has reached a
// terminal status. Records are held in memory and are not persisted across
// restarts.
type Invoker struct {
	registry *registry.Registry
	metrics  Metrics

	mu      sync.RWMutex
	records map[uuid.UUID]*Invocation
}

// NewInvoker creates an invoker backed by the given registry. A nil metrics
// implementation disables metrics collection.
func NewInvoker(reg *registry.Registry, metrics Metrics) *Invoker {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Invoker{
		registry: reg,
		metrics:  metrics,
		records:  make(map[uuid.UUID]*Invocation),
	}
}

// Invoke validates the request, dispatches the operation, and returns the
// finished invocation record.
//
// Request-level failures (unknown operation, malformed arguments, unknown
// account) are returned as errors without creating a record. Failures of
// the operation itself are captured in the record with StatusError, and
// Invoke returns the record with a nil error.
func (inv *Invoker) Invoke(ctx context.Context, req Request) (*Invocation, error) {
	if err := ValidateOperation(req.Operation); err != nil {
		return nil, err
	}

	var args Args
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
	}
	if args.Filter != storage.ItemTypeAny && !args.Filter.Valid() {
		return nil, fmt.Errorf("%w: unknown item type filter %q", ErrInvalidArgs, args.Filter)
	}

	acc, err := inv.registry.AccountStore().GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	record := &Invocation{
		ID:        uuid.New(),
		AccountID: req.AccountID,
		Operation: req.Operation,
		Args:      req.Args,
		Status:    StatusStarting,
		CreatedAt: time.Now().UTC(),
	}
	record.ModifiedAt = record.CreatedAt
	inv.put(record)

	logging.Debug("dispatching invocation",
		zap.String("invocation_id", record.ID.String()),
		zap.String("account_id", req.AccountID.String()),
		zap.String("operation", string(req.Operation)))

	start := time.Now()
	inv.setStatus(record.ID, StatusGoing)

	result, opErr := inv.dispatch(ctx, acc, req.Operation, args)
	inv.metrics.ObserveInvocation(string(req.Operation), time.Since(start), opErr)

	if opErr != nil {
		logging.Error("invocation failed",
			zap.String("invocation_id", record.ID.String()),
			zap.String("operation", string(req.Operation)),
			zap.Error(opErr))
		return inv.finish(record.ID, StatusError, nil, opErr.Error()), nil
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return inv.finish(record.ID, StatusError, nil, err.Error()), nil
	}
	return inv.finish(record.ID, StatusSuccess, encoded, ""), nil
}

// dispatch builds the adapter for the account's service and runs the
// requested operation.
func (inv *Invoker) dispatch(ctx context.Context, acc *account.AuthorizedStorageAccount, op Operation, args Args) (any, error) {
	adapter, err := inv.registry.AdapterForAccount(ctx, acc)
	if err != nil {
		return nil, err
	}

	switch op {
	case OperationGetExternalIdentity:
		return adapter.GetExternalIdentity(ctx, args.Extras)
	case OperationListRootItems:
		return adapter.ListRootItems(ctx, args.Cursor)
	case OperationGetItemInfo:
		return adapter.GetItemInfo(ctx, args.ItemID)
	case OperationListChildItems:
		id := args.ItemID
		if id == "" {
			id = storage.RootItemID()
		}
		return adapter.ListChildItems(ctx, id, args.Cursor, args.Filter)
	case OperationBuildClientConfig:
		return adapter.BuildClientConfig()
	}
	return nil, fmt.Errorf("operation %q: %w", op, ErrUnknownOperation)
}

// Get returns a snapshot of the invocation with the given ID.
func (inv *Invoker) Get(id uuid.UUID) (*Invocation, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	record, ok := inv.records[id]
	if !ok {
		return nil, fmt.Errorf("invocation %s: %w", id, ErrInvocationNotFound)
	}

	snapshot := *record
	return &snapshot, nil
}

// ListByAccount returns snapshots of all invocations recorded for an
// account, ordered by creation time.
func (inv *Invoker) ListByAccount(accountID uuid.UUID) []*Invocation {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	result := []*Invocation{}
	for _, record := range inv.records {
		if record.AccountID == accountID {
			snapshot := *record
			result = append(result, &snapshot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (inv *Invoker) put(record *Invocation) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.records[record.ID] = record
}

func (inv *Invoker) setStatus(id uuid.UUID, status Status) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if record, ok := inv.records[id]; ok {
		record.Status = status
		record.ModifiedAt = time.Now().UTC()
	}
}

// finish moves the record to a terminal status and returns a snapshot.
func (inv *Invoker) finish(id uuid.UUID, status Status, result json.RawMessage, errMsg string) *Invocation {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	record := inv.records[id]
	record.Status = status
	record.Result = result
	record.ErrorMessage = errMsg
	record.ModifiedAt = time.Now().UTC()

	snapshot := *record
	return &snapshot
}
