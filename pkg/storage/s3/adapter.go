// Package s3 implements the storage.Adapter contract over Amazon S3 or
// S3-compatible object storage.
//
// Folders are modelled as key prefixes: listings use the "/" delimiter, so
// common prefixes become folders and object keys become files. Unlike the
// WebDAV provider, S3 listings page natively, and the opaque cursor carries
// the continuation token between calls.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/storelink/storelink/pkg/storage"
)

// Config holds the static, per-service configuration of an S3 adapter.
type Config struct {
	// Region is the AWS region of the bucket.
	Region string `mapstructure:"region" validate:"required"`

	// Bucket is the bucket backing the account.
	Bucket string `mapstructure:"bucket" validate:"required"`

	// KeyPrefix optionally roots all items under a key prefix.
	KeyPrefix string `mapstructure:"key_prefix"`

	// Endpoint overrides the S3 endpoint for compatible storage
	// (MinIO, Localstack, ...).
	Endpoint string `mapstructure:"endpoint"`
}

// client is the subset of the S3 API the adapter uses.
type client interface {
	ListBuckets(ctx context.Context, params *s3sdk.ListBucketsInput, optFns ...func(*s3sdk.Options)) (*s3sdk.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3sdk.ListObjectsV2Input, optFns ...func(*s3sdk.Options)) (*s3sdk.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3sdk.HeadObjectInput, optFns ...func(*s3sdk.Options)) (*s3sdk.HeadObjectOutput, error)
}

// Adapter implements storage.Adapter against an S3 bucket.
type Adapter struct {
	cfg    Config
	client client
}

var _ storage.Adapter = (*Adapter)(nil)

// New creates an adapter using the given client. Intended for tests and
// callers that bring their own configured client.
func New(cfg Config, client client) *Adapter {
	return &Adapter{cfg: cfg, client: client}
}

// NewWithCredentials creates an adapter with an S3 client built from the
// account credentials (access key ID and secret key). Empty credentials use
// the default AWS credential chain.
func NewWithCredentials(ctx context.Context, cfg Config, creds storage.Credentials) (*Adapter, error) {
	var opts []func(*awsConfig.LoadOptions) error
	opts = append(opts, awsConfig.WithRegion(cfg.Region))

	if creds.Username != "" && creds.Password != "" {
		provider := credentials.NewStaticCredentialsProvider(creds.Username, creds.Password, "")
		opts = append(opts, awsConfig.WithCredentialsProvider(provider))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	s3Client := s3sdk.NewFromConfig(awsCfg, func(o *s3sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(cfg, s3Client), nil
}

// keyForFolder maps a normalized item path to the listing prefix.
func (a *Adapter) keyForFolder(path string) string {
	prefix := strings.Trim(a.cfg.KeyPrefix, "/")
	folder := strings.Trim(path, "/")
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if folder != "" {
		parts = append(parts, folder)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "/") + "/"
}

// keyForFile maps a normalized item path to the object key.
func (a *Adapter) keyForFile(path string) string {
	prefix := strings.Trim(a.cfg.KeyPrefix, "/")
	file := strings.Trim(path, "/")
	if prefix == "" {
		return file
	}
	return prefix + "/" + file
}

// pathForKey converts an object key back to an account-relative path.
func (a *Adapter) pathForKey(key string) string {
	prefix := strings.Trim(a.cfg.KeyPrefix, "/")
	path := strings.Trim(key, "/")
	if prefix != "" {
		path = strings.TrimPrefix(path, prefix)
		path = strings.Trim(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

// GetExternalIdentity resolves the bucket owner's display name. Buckets
// without owner display names fall back to the owner ID, then to the bucket
// name itself.
func (a *Adapter) GetExternalIdentity(ctx context.Context, extras map[string]string) (storage.ExternalIdentity, error) {
	out, err := a.client.ListBuckets(ctx, &s3sdk.ListBucketsInput{})
	if err != nil {
		return storage.ExternalIdentity{}, fmt.Errorf("list buckets: %w", err)
	}
	if out.Owner != nil {
		if name := aws.ToString(out.Owner.DisplayName); name != "" {
			return storage.ExternalIdentity{AccountID: name}, nil
		}
		if id := aws.ToString(out.Owner.ID); id != "" {
			return storage.ExternalIdentity{AccountID: id}, nil
		}
	}
	return storage.ExternalIdentity{AccountID: a.cfg.Bucket}, nil
}

// ListRootItems lists the immediate children of the bucket root (or of the
// configured key prefix).
func (a *Adapter) ListRootItems(ctx context.Context, cursor string) (storage.ItemPage, error) {
	return a.ListChildItems(ctx, storage.RootItemID(), cursor, storage.ItemTypeAny)
}

// GetItemInfo returns the item for the given identifier. Files are verified
// with HeadObject; folders with a single-key listing under their prefix.
func (a *Adapter) GetItemInfo(ctx context.Context, id storage.ItemID) (storage.Item, error) {
	itemType, itemPath, err := id.Parse()
	if err != nil {
		return storage.Item{}, err
	}
	path := strings.Trim(itemPath, "/")
	if path == "" {
		path = "/"
	}

	if itemType == storage.ItemTypeFile {
		_, err := a.client.HeadObject(ctx, &s3sdk.HeadObjectInput{
			Bucket: aws.String(a.cfg.Bucket),
			Key:    aws.String(a.keyForFile(path)),
		})
		if err != nil {
			var notFound *types.NotFound
			if errors.As(err, &notFound) {
				return storage.Item{}, fmt.Errorf("object %q: %w", path, storage.ErrItemNotFound)
			}
			return storage.Item{}, fmt.Errorf("head object %q: %w", path, err)
		}
		return storage.Item{
			ID:   storage.MakeItemID(storage.ItemTypeFile, path),
			Name: lastSegment(path),
			Type: storage.ItemTypeFile,
		}, nil
	}

	if path != "/" {
		out, err := a.client.ListObjectsV2(ctx, &s3sdk.ListObjectsV2Input{
			Bucket:  aws.String(a.cfg.Bucket),
			Prefix:  aws.String(a.keyForFolder(path)),
			MaxKeys: aws.Int32(1),
		})
		if err != nil {
			return storage.Item{}, fmt.Errorf("list prefix %q: %w", path, err)
		}
		if aws.ToInt32(out.KeyCount) == 0 {
			return storage.Item{}, fmt.Errorf("folder %q: %w", path, storage.ErrItemNotFound)
		}
	}
	return storage.Item{
		ID:   storage.MakeItemID(storage.ItemTypeFolder, path),
		Name: lastSegment(path),
		Type: storage.ItemTypeFolder,
	}, nil
}

// ListChildItems lists the immediate children under the folder's prefix.
// The cursor carries the S3 continuation token across pages.
func (a *Adapter) ListChildItems(ctx context.Context, id storage.ItemID, cursor string, filter storage.ItemType) (storage.ItemPage, error) {
	_, itemPath, err := id.Parse()
	if err != nil {
		return storage.ItemPage{}, err
	}
	prefix := a.keyForFolder(itemPath)

	input := &s3sdk.ListObjectsV2Input{
		Bucket:    aws.String(a.cfg.Bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	if cursor != "" {
		input.ContinuationToken = aws.String(cursor)
	}

	out, err := a.client.ListObjectsV2(ctx, input)
	if err != nil {
		return storage.ItemPage{}, fmt.Errorf("list prefix %q: %w", prefix, err)
	}

	items := []storage.Item{}
	for _, cp := range out.CommonPrefixes {
		childPath := a.pathForKey(aws.ToString(cp.Prefix))
		if filter == storage.ItemTypeFile {
			continue
		}
		items = append(items, storage.Item{
			ID:   storage.MakeItemID(storage.ItemTypeFolder, childPath),
			Name: lastSegment(childPath),
			Type: storage.ItemTypeFolder,
		})
	}
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		// Skip the folder placeholder object for the listed prefix itself.
		if key == prefix {
			continue
		}
		if filter == storage.ItemTypeFolder {
			continue
		}
		childPath := a.pathForKey(key)
		items = append(items, storage.Item{
			ID:   storage.MakeItemID(storage.ItemTypeFile, childPath),
			Name: lastSegment(childPath),
			Type: storage.ItemTypeFile,
		})
	}

	page := storage.ItemPage{Items: items}
	if aws.ToBool(out.IsTruncated) {
		page.NextCursor = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// BuildClientConfig derives the client connection configuration from the
// bucket configuration. No network call is made.
func (a *Adapter) BuildClientConfig() (storage.ClientConfig, error) {
	host := a.cfg.Endpoint
	if host == "" {
		host = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", a.cfg.Bucket, a.cfg.Region)
	}
	return storage.ClientConfig{
		Folder:    strings.Trim(a.cfg.KeyPrefix, "/"),
		Host:      host,
		VerifySSL: true,
	}, nil
}

func lastSegment(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
