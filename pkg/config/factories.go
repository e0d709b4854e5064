package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/storelink/storelink/internal/logging"
	"github.com/storelink/storelink/pkg/account"
	accountBadger "github.com/storelink/storelink/pkg/account/badger"
	accountMemory "github.com/storelink/storelink/pkg/account/memory"
	"github.com/storelink/storelink/pkg/storage"
	"github.com/storelink/storelink/pkg/storage/memory"
	"github.com/storelink/storelink/pkg/storage/s3"
	"github.com/storelink/storelink/pkg/storage/webdav"
)

// CreateAccountStore creates an account store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/account/memory (in-memory storage, ephemeral)
//   - "badger": Uses pkg/account/badger (BadgerDB storage, persistent)
func CreateAccountStore(ctx context.Context, cfg *AccountsConfig) (account.Store, error) {
	switch cfg.Type {
	case "memory":
		return accountMemory.NewStore(), nil
	case "badger":
		return createBadgerAccountStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown account store type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createBadgerAccountStore creates a BadgerDB-backed persistent account store.
func createBadgerAccountStore(ctx context.Context, options map[string]any) (account.Store, error) {
	var storeCfg accountBadger.Config
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger account store config: %w", err)
	}

	if storeCfg.DBPath == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger account store: db_path is required")
	}

	store, err := accountBadger.NewStore(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger account store: %w", err)
	}

	logging.Info("badger account store initialized", zap.String("db_path", storeCfg.DBPath))
	return store, nil
}

// CreateAdapterFactory builds the adapter factory for one configured
// service.
//
// The returned factory captures the service's static configuration; the
// per-account credentials are supplied at invocation time.
//
// Supported providers:
//   - "webdav": Uses pkg/storage/webdav (PROPFIND over HTTP)
//   - "s3": Uses pkg/storage/s3 (aws-sdk-go-v2)
//   - "memory": Uses pkg/storage/memory (in-memory fixture provider)
func CreateAdapterFactory(cfg *ServiceConfig) (storage.AdapterFactory, error) {
	switch cfg.Provider {
	case "webdav":
		return createWebDAVFactory(cfg.WebDAV)
	case "s3":
		return createS3Factory(cfg.S3)
	case "memory":
		return createMemoryFactory(cfg.Memory)
	default:
		return nil, fmt.Errorf("unknown provider: %q (supported: webdav, s3, memory)", cfg.Provider)
	}
}

// createWebDAVFactory builds a factory for WebDAV adapters.
func createWebDAVFactory(options map[string]any) (storage.AdapterFactory, error) {
	var adapterCfg webdav.Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &adapterCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("failed to decode webdav service config: %w", err)
	}

	if err := validate.Struct(&adapterCfg); err != nil {
		return nil, formatValidationError(err)
	}

	return func(_ context.Context, creds storage.Credentials) (storage.Adapter, error) {
		return webdav.NewWithCredentials(adapterCfg, creds), nil
	}, nil
}

// createS3Factory builds a factory for S3 adapters.
func createS3Factory(options map[string]any) (storage.AdapterFactory, error) {
	var adapterCfg s3.Config
	if err := mapstructure.Decode(options, &adapterCfg); err != nil {
		return nil, fmt.Errorf("failed to decode s3 service config: %w", err)
	}

	if err := validate.Struct(&adapterCfg); err != nil {
		return nil, formatValidationError(err)
	}

	return func(ctx context.Context, creds storage.Credentials) (storage.Adapter, error) {
		return s3.NewWithCredentials(ctx, adapterCfg, creds)
	}, nil
}

// createMemoryFactory builds a factory for the in-memory provider.
//
// The optional "folders" and "files" lists pre-populate the adapter, which
// makes the provider useful for integration tests and demos.
func createMemoryFactory(options map[string]any) (storage.AdapterFactory, error) {
	type memoryOptions struct {
		Identity string   `mapstructure:"identity"`
		Folders  []string `mapstructure:"folders"`
		Files    []string `mapstructure:"files"`
	}

	var opts memoryOptions
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode memory service config: %w", err)
	}

	return func(_ context.Context, creds storage.Credentials) (storage.Adapter, error) {
		identity := opts.Identity
		if identity == "" {
			identity = creds.Username
		}
		adapter := memory.New(identity)
		for _, folder := range opts.Folders {
			adapter.AddFolder(folder)
		}
		for _, file := range opts.Files {
			adapter.AddFile(file)
		}
		return adapter, nil
	}, nil
}
