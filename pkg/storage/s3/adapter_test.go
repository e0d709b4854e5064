package s3

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/storelink/pkg/storage"
)

// fakeClient replays canned responses and records the inputs it received.
type fakeClient struct {
	listBucketsOut *s3sdk.ListBucketsOutput
	listOut        *s3sdk.ListObjectsV2Output
	listErr        error
	headErr        error

	listInputs []*s3sdk.ListObjectsV2Input
	headInputs []*s3sdk.HeadObjectInput
}

func (f *fakeClient) ListBuckets(_ context.Context, _ *s3sdk.ListBucketsInput, _ ...func(*s3sdk.Options)) (*s3sdk.ListBucketsOutput, error) {
	return f.listBucketsOut, nil
}

func (f *fakeClient) ListObjectsV2(_ context.Context, params *s3sdk.ListObjectsV2Input, _ ...func(*s3sdk.Options)) (*s3sdk.ListObjectsV2Output, error) {
	f.listInputs = append(f.listInputs, params)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeClient) HeadObject(_ context.Context, params *s3sdk.HeadObjectInput, _ ...func(*s3sdk.Options)) (*s3sdk.HeadObjectOutput, error) {
	f.headInputs = append(f.headInputs, params)
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3sdk.HeadObjectOutput{}, nil
}

func testConfig() Config {
	return Config{
		Region:    "eu-west-1",
		Bucket:    "research-data",
		KeyPrefix: "shared",
	}
}

func TestGetExternalIdentity(t *testing.T) {
	tests := []struct {
		name  string
		owner *types.Owner
		want  string
	}{
		{
			name:  "display name",
			owner: &types.Owner{DisplayName: aws.String("alice"), ID: aws.String("abc123")},
			want:  "alice",
		},
		{
			name:  "falls back to owner ID",
			owner: &types.Owner{ID: aws.String("abc123")},
			want:  "abc123",
		},
		{
			name: "falls back to bucket name",
			want: "research-data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{listBucketsOut: &s3sdk.ListBucketsOutput{Owner: tt.owner}}
			adapter := New(testConfig(), client)

			identity, err := adapter.GetExternalIdentity(context.Background(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, identity.AccountID)
		})
	}
}

func TestListChildItems(t *testing.T) {
	client := &fakeClient{
		listOut: &s3sdk.ListObjectsV2Output{
			CommonPrefixes: []types.CommonPrefix{
				{Prefix: aws.String("shared/docs/archive/")},
			},
			Contents: []types.Object{
				{Key: aws.String("shared/docs/")}, // placeholder for the listed prefix
				{Key: aws.String("shared/docs/report.pdf")},
			},
		},
	}
	adapter := New(testConfig(), client)

	page, err := adapter.ListChildItems(context.Background(),
		storage.MakeItemID(storage.ItemTypeFolder, "docs"), "", storage.ItemTypeAny)
	require.NoError(t, err)

	require.Len(t, client.listInputs, 1)
	assert.Equal(t, "shared/docs/", aws.ToString(client.listInputs[0].Prefix))
	assert.Equal(t, "/", aws.ToString(client.listInputs[0].Delimiter))

	require.Len(t, page.Items, 2)
	assert.Equal(t, storage.Item{
		ID:   storage.MakeItemID(storage.ItemTypeFolder, "docs/archive"),
		Name: "archive",
		Type: storage.ItemTypeFolder,
	}, page.Items[0])
	assert.Equal(t, storage.Item{
		ID:   storage.MakeItemID(storage.ItemTypeFile, "docs/report.pdf"),
		Name: "report.pdf",
		Type: storage.ItemTypeFile,
	}, page.Items[1])
	assert.Empty(t, page.NextCursor)
}

func TestListChildItemsTypeFilter(t *testing.T) {
	client := &fakeClient{
		listOut: &s3sdk.ListObjectsV2Output{
			CommonPrefixes: []types.CommonPrefix{{Prefix: aws.String("shared/docs/archive/")}},
			Contents:       []types.Object{{Key: aws.String("shared/docs/report.pdf")}},
		},
	}
	adapter := New(testConfig(), client)

	page, err := adapter.ListChildItems(context.Background(),
		storage.MakeItemID(storage.ItemTypeFolder, "docs"), "", storage.ItemTypeFolder)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, storage.ItemTypeFolder, page.Items[0].Type)
}

func TestListChildItemsPagination(t *testing.T) {
	client := &fakeClient{
		listOut: &s3sdk.ListObjectsV2Output{
			Contents:              []types.Object{{Key: aws.String("shared/a.txt")}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("token-2"),
		},
	}
	adapter := New(testConfig(), client)

	page, err := adapter.ListRootItems(context.Background(), "token-1")
	require.NoError(t, err)

	require.Len(t, client.listInputs, 1)
	assert.Equal(t, "token-1", aws.ToString(client.listInputs[0].ContinuationToken))
	assert.Equal(t, "token-2", page.NextCursor)
}

func TestGetItemInfoFile(t *testing.T) {
	client := &fakeClient{}
	adapter := New(testConfig(), client)

	item, err := adapter.GetItemInfo(context.Background(),
		storage.MakeItemID(storage.ItemTypeFile, "docs/report.pdf"))
	require.NoError(t, err)

	require.Len(t, client.headInputs, 1)
	assert.Equal(t, "shared/docs/report.pdf", aws.ToString(client.headInputs[0].Key))
	assert.Equal(t, "report.pdf", item.Name)
	assert.Equal(t, storage.ItemTypeFile, item.Type)
}

func TestGetItemInfoFileNotFound(t *testing.T) {
	client := &fakeClient{headErr: &types.NotFound{}}
	adapter := New(testConfig(), client)

	_, err := adapter.GetItemInfo(context.Background(),
		storage.MakeItemID(storage.ItemTypeFile, "missing.txt"))
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestGetItemInfoFolder(t *testing.T) {
	client := &fakeClient{
		listOut: &s3sdk.ListObjectsV2Output{KeyCount: aws.Int32(1)},
	}
	adapter := New(testConfig(), client)

	item, err := adapter.GetItemInfo(context.Background(),
		storage.MakeItemID(storage.ItemTypeFolder, "docs"))
	require.NoError(t, err)
	assert.Equal(t, storage.MakeItemID(storage.ItemTypeFolder, "docs"), item.ID)
}

func TestGetItemInfoFolderNotFound(t *testing.T) {
	client := &fakeClient{
		listOut: &s3sdk.ListObjectsV2Output{KeyCount: aws.Int32(0)},
	}
	adapter := New(testConfig(), client)

	_, err := adapter.GetItemInfo(context.Background(),
		storage.MakeItemID(storage.ItemTypeFolder, "missing"))
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestGetItemInfoRootFolder(t *testing.T) {
	// Root always exists, no listing call needed.
	client := &fakeClient{}
	adapter := New(testConfig(), client)

	item, err := adapter.GetItemInfo(context.Background(), storage.RootItemID())
	require.NoError(t, err)
	assert.Equal(t, storage.RootItemID(), item.ID)
	assert.Empty(t, client.listInputs)
}

func TestBuildClientConfig(t *testing.T) {
	adapter := New(testConfig(), &fakeClient{})

	cfg, err := adapter.BuildClientConfig()
	require.NoError(t, err)
	assert.Equal(t, storage.ClientConfig{
		Folder:    "shared",
		Host:      "https://research-data.s3.eu-west-1.amazonaws.com",
		VerifySSL: true,
	}, cfg)
}

func TestBuildClientConfigCustomEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Endpoint = "http://localhost:9000"
	adapter := New(cfg, &fakeClient{})

	clientCfg, err := adapter.BuildClientConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", clientCfg.Host)
}
