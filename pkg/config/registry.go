package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storelink/storelink/internal/logging"
	"github.com/storelink/storelink/pkg/registry"
	"github.com/storelink/storelink/pkg/storage"
)

// InitializeRegistry creates a fully configured Registry from the provided
// configuration.
//
// This function orchestrates the complete initialization process:
//  1. Creates the account store from cfg.Accounts
//  2. Builds an adapter factory for every configured service
//  3. Registers the services in the registry
//
// The resulting Registry holds everything the invoker and the HTTP API need
// to resolve accounts to adapters.
//
// Example:
//
//	cfg, _ := config.Load("config.yaml")
//	reg, err := config.InitializeRegistry(ctx, cfg)
//	if err != nil {
//	    logging.Fatal("failed to initialize registry", zap.Error(err))
//	}
func InitializeRegistry(ctx context.Context, cfg *Config) (*registry.Registry, error) {
	logging.Debug("initializing registry from configuration")

	store, err := CreateAccountStore(ctx, &cfg.Accounts)
	if err != nil {
		return nil, fmt.Errorf("failed to create account store: %w", err)
	}

	reg := registry.NewRegistry(store)

	for i := range cfg.Services {
		service := &cfg.Services[i]

		factory, err := CreateAdapterFactory(service)
		if err != nil {
			return nil, fmt.Errorf("failed to create factory for service %q: %w", service.Name, err)
		}

		provider := storage.ProviderType(service.Provider)
		if err := reg.RegisterService(service.Name, provider, factory); err != nil {
			return nil, fmt.Errorf("failed to register service %q: %w", service.Name, err)
		}

		logging.Info("registered external storage service",
			zap.String("name", service.Name),
			zap.String("provider", service.Provider))
	}

	logging.Debug("registry initialized",
		zap.Int("services", reg.CountServices()),
		zap.String("account_store", cfg.Accounts.Type))

	return reg, nil
}
