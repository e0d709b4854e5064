// Package invocation dispatches named storage operations against authorized
// accounts and records their outcomes.
//
// Operations and statuses form controlled vocabularies: values outside the
// known sets are rejected before any adapter is built.
package invocation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storelink/storelink/pkg/storage"
)

// Operation names an adapter operation that can be invoked on an account.
type Operation string

const (
	OperationGetExternalIdentity Operation = "get_external_identity"
	OperationListRootItems       Operation = "list_root_items"
	OperationGetItemInfo         Operation = "get_item_info"
	OperationListChildItems      Operation = "list_child_items"
	OperationBuildClientConfig   Operation = "build_client_config"
)

// Operations lists every known operation, in dispatch order.
func Operations() []Operation {
	return []Operation{
		OperationGetExternalIdentity,
		OperationListRootItems,
		OperationGetItemInfo,
		OperationListChildItems,
		OperationBuildClientConfig,
	}
}

// ValidateOperation checks op against the controlled vocabulary.
func ValidateOperation(op Operation) error {
	switch op {
	case OperationGetExternalIdentity, OperationListRootItems,
		OperationGetItemInfo, OperationListChildItems,
		OperationBuildClientConfig:
		return nil
	}
	return fmt.Errorf("operation %q: %w", op, ErrUnknownOperation)
}

// Status is the lifecycle state of an invocation.
type Status string

const (
	StatusStarting Status = "starting"
	StatusGoing    Status = "going"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
)

// ValidateStatus checks status against the controlled vocabulary.
func ValidateStatus(status Status) error {
	switch status {
	case StatusStarting, StatusGoing, StatusSuccess, StatusError:
		return nil
	}
	return fmt.Errorf("status %q: %w", status, ErrUnknownStatus)
}

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// Request describes one operation invocation against an account.
type Request struct {
	AccountID uuid.UUID       `json:"account_id" validate:"required"`
	Operation Operation       `json:"operation" validate:"required,oneof=get_external_identity list_root_items get_item_info list_child_items build_client_config"`
	Args      json.RawMessage `json:"args,omitempty"`
}

// Args are the decoded operation arguments. Operations ignore the fields
// they do not use.
type Args struct {
	// ItemID selects the item for get_item_info and list_child_items.
	ItemID storage.ItemID `json:"item_id,omitempty"`

	// Cursor continues a paged listing.
	Cursor string `json:"cursor,omitempty"`

	// Filter restricts listings to one item type. Empty means both.
	Filter storage.ItemType `json:"filter,omitempty"`

	// Extras carries provider-specific hints, such as the username used
	// when the remote cannot report the account's own identity.
	Extras map[string]string `json:"extras,omitempty"`
}

// Invocation is the recorded execution of one operation.
type Invocation struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Operation Operation       `json:"operation"`
	Args      json.RawMessage `json:"args,omitempty"`

	Status       Status          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}
