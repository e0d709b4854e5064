package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storelink/storelink/pkg/storage"
)

func newPopulated() *Adapter {
	a := New("tester")
	a.AddFolder("docs")
	a.AddFile("docs/report.pdf")
	a.AddFile("docs/notes.txt")
	a.AddFolder("docs/archive")
	a.AddFile("readme.md")
	return a
}

func TestGetExternalIdentity(t *testing.T) {
	a := New("")
	identity, err := a.GetExternalIdentity(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, DefaultIdentity, identity.AccountID)

	a = New("tester")
	identity, err = a.GetExternalIdentity(context.Background(), map[string]string{"username": "ignored"})
	require.NoError(t, err)
	require.Equal(t, "tester", identity.AccountID)
}

func TestListRootItems(t *testing.T) {
	a := newPopulated()
	page, err := a.ListRootItems(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "docs", page.Items[0].Name)
	require.Equal(t, storage.ItemTypeFolder, page.Items[0].Type)
	require.Equal(t, "readme.md", page.Items[1].Name)
}

func TestListChildItems_TypeFilter(t *testing.T) {
	a := newPopulated()
	id := storage.MakeItemID(storage.ItemTypeFolder, "docs")

	files, err := a.ListChildItems(context.Background(), id, "", storage.ItemTypeFile)
	require.NoError(t, err)
	require.Len(t, files.Items, 2)

	folders, err := a.ListChildItems(context.Background(), id, "", storage.ItemTypeFolder)
	require.NoError(t, err)
	require.Len(t, folders.Items, 1)
	require.Equal(t, "archive", folders.Items[0].Name)
}

func TestListChildItems_NotFound(t *testing.T) {
	a := newPopulated()
	_, err := a.ListChildItems(context.Background(), storage.MakeItemID(storage.ItemTypeFolder, "nope"), "", storage.ItemTypeAny)
	require.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestGetItemInfo(t *testing.T) {
	a := newPopulated()

	item, err := a.GetItemInfo(context.Background(), storage.MakeItemID(storage.ItemTypeFile, "docs/report.pdf"))
	require.NoError(t, err)
	require.Equal(t, "report.pdf", item.Name)
	require.Equal(t, storage.ItemTypeFile, item.Type)

	_, err = a.GetItemInfo(context.Background(), storage.MakeItemID(storage.ItemTypeFile, "missing"))
	require.ErrorIs(t, err, storage.ErrItemNotFound)

	_, err = a.GetItemInfo(context.Background(), "bogus")
	require.ErrorIs(t, err, storage.ErrInvalidItemID)
}

func TestGetItemInfo_Root(t *testing.T) {
	a := New("tester")
	item, err := a.GetItemInfo(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, storage.ItemTypeFolder, item.Type)
}

func TestAddFileCreatesParents(t *testing.T) {
	a := New("tester")
	a.AddFile("a/b/c.txt")

	item, err := a.GetItemInfo(context.Background(), storage.MakeItemID(storage.ItemTypeFolder, "a/b"))
	require.NoError(t, err)
	require.Equal(t, storage.ItemTypeFolder, item.Type)
	require.Equal(t, "b", item.Name)
}

func TestBuildClientConfig(t *testing.T) {
	a := New("tester")
	cfg, err := a.BuildClientConfig()
	require.NoError(t, err)
	require.Equal(t, "memory://tester", cfg.Host)
	require.True(t, cfg.VerifySSL)
}
