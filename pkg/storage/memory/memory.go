// Package memory provides an in-memory storage adapter.
//
// It backs the "memory" provider type, used for development environments and
// tests that need a working adapter without an external service.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/storelink/storelink/pkg/storage"
)

// DefaultIdentity is returned by GetExternalIdentity when no identity is
// configured for the adapter.
const DefaultIdentity = "memory-user"

type entry struct {
	name     string
	itemType storage.ItemType
}

// Adapter implements storage.Adapter over an in-memory tree of items.
//
// Items are keyed by normalized slash-delimited paths; the root folder "/"
// always exists. Safe for concurrent use.
type Adapter struct {
	identity string

	mu    sync.RWMutex
	items map[string]entry
}

var _ storage.Adapter = (*Adapter)(nil)

// New creates an empty adapter holding only the root folder.
func New(identity string) *Adapter {
	if identity == "" {
		identity = DefaultIdentity
	}
	return &Adapter{
		identity: identity,
		items: map[string]entry{
			"/": {name: "", itemType: storage.ItemTypeFolder},
		},
	}
}

// normalizePath trims surrounding slashes; the empty path is the root.
func normalizePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// parentPath returns the normalized parent of a normalized path.
func parentPath(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return "/"
}

// baseName returns the last segment of a normalized path.
func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// AddFolder inserts a folder at the given path, creating missing parents.
func (a *Adapter) AddFolder(path string) {
	a.add(normalizePath(path), storage.ItemTypeFolder)
}

// AddFile inserts a file at the given path, creating missing parent folders.
func (a *Adapter) AddFile(path string) {
	a.add(normalizePath(path), storage.ItemTypeFile)
}

func (a *Adapter) add(path string, itemType storage.ItemType) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for parent := parentPath(path); parent != "/"; parent = parentPath(parent) {
		if _, ok := a.items[parent]; !ok {
			a.items[parent] = entry{name: baseName(parent), itemType: storage.ItemTypeFolder}
		}
	}
	a.items[path] = entry{name: baseName(path), itemType: itemType}
}

// GetExternalIdentity returns the configured identity. The extras hint is
// unused: there is no external principal to resolve.
func (a *Adapter) GetExternalIdentity(ctx context.Context, extras map[string]string) (storage.ExternalIdentity, error) {
	return storage.ExternalIdentity{AccountID: a.identity}, nil
}

// ListRootItems lists the immediate children of the root folder.
func (a *Adapter) ListRootItems(ctx context.Context, cursor string) (storage.ItemPage, error) {
	return a.ListChildItems(ctx, storage.RootItemID(), cursor, storage.ItemTypeAny)
}

// GetItemInfo returns the item stored at the identifier's path.
func (a *Adapter) GetItemInfo(ctx context.Context, id storage.ItemID) (storage.Item, error) {
	_, itemPath, err := id.Parse()
	if err != nil {
		return storage.Item{}, err
	}
	path := normalizePath(itemPath)

	a.mu.RLock()
	defer a.mu.RUnlock()

	e, ok := a.items[path]
	if !ok {
		return storage.Item{}, fmt.Errorf("item %q: %w", path, storage.ErrItemNotFound)
	}
	return a.itemAt(path, e), nil
}

// ListChildItems lists the immediate children of the identified folder in
// lexical order. The cursor is accepted for interface symmetry; listings
// always fit one page.
func (a *Adapter) ListChildItems(ctx context.Context, id storage.ItemID, cursor string, filter storage.ItemType) (storage.ItemPage, error) {
	_, itemPath, err := id.Parse()
	if err != nil {
		return storage.ItemPage{}, err
	}
	path := normalizePath(itemPath)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.items[path]; !ok {
		return storage.ItemPage{}, fmt.Errorf("folder %q: %w", path, storage.ErrItemNotFound)
	}

	items := []storage.Item{}
	for childPath, e := range a.items {
		if childPath == "/" || parentPath(childPath) != path {
			continue
		}
		if filter != storage.ItemTypeAny && e.itemType != filter {
			continue
		}
		items = append(items, a.itemAt(childPath, e))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return storage.ItemPage{Items: items}, nil
}

// BuildClientConfig returns a static client configuration.
func (a *Adapter) BuildClientConfig() (storage.ClientConfig, error) {
	return storage.ClientConfig{
		Folder:    "",
		Host:      "memory://" + a.identity,
		VerifySSL: true,
	}, nil
}

func (a *Adapter) itemAt(path string, e entry) storage.Item {
	return storage.Item{
		ID:   storage.MakeItemID(e.itemType, path),
		Name: e.name,
		Type: e.itemType,
	}
}
