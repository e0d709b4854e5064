package badger

import (
	"encoding/json"
	"fmt"

	"github.com/storelink/storelink/pkg/account"
)

// Catalog entities are stored as JSON. The values are small and read far
// more often than written, and JSON keeps the database debuggable with
// standard tooling. Index values are raw UUID bytes.

func encodeAccount(acc *account.AuthorizedStorageAccount) ([]byte, error) {
	bytes, err := json.Marshal(acc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode account: %w", err)
	}
	return bytes, nil
}

func decodeAccount(bytes []byte) (*account.AuthorizedStorageAccount, error) {
	var acc account.AuthorizedStorageAccount
	if err := json.Unmarshal(bytes, &acc); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return &acc, nil
}

func encodeResource(ref *account.ResourceReference) ([]byte, error) {
	bytes, err := json.Marshal(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource reference: %w", err)
	}
	return bytes, nil
}

func decodeResource(bytes []byte) (*account.ResourceReference, error) {
	var ref account.ResourceReference
	if err := json.Unmarshal(bytes, &ref); err != nil {
		return nil, fmt.Errorf("failed to decode resource reference: %w", err)
	}
	return &ref, nil
}

func encodeAddon(addon *account.ConfiguredStorageAddon) ([]byte, error) {
	bytes, err := json.Marshal(addon)
	if err != nil {
		return nil, fmt.Errorf("failed to encode addon: %w", err)
	}
	return bytes, nil
}

func decodeAddon(bytes []byte) (*account.ConfiguredStorageAddon, error) {
	var addon account.ConfiguredStorageAddon
	if err := json.Unmarshal(bytes, &addon); err != nil {
		return nil, fmt.Errorf("failed to decode addon: %w", err)
	}
	return &addon, nil
}
