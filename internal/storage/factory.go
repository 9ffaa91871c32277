// Package storage selects and opens the configured basket store.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/interfaces"
	"github.com/bobmcallan/basket/internal/storage/badger"
	"github.com/bobmcallan/basket/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendBadger    = "badger"
	BackendSurrealDB = "surrealdb"
)

// NewBasketStore opens the basket store named by config.Storage.Backend.
// Supported backends: "badger" (default), "surrealdb".
func NewBasketStore(ctx context.Context, logger *common.Logger, config *common.Config) (interfaces.BasketStore, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendBadger
	}

	switch backend {
	case BackendBadger:
		store, err := badger.NewStore(logger, config.Storage.Path)
		if err != nil {
			return nil, err
		}
		return badger.NewBasketStorage(store, logger), nil

	case BackendSurrealDB:
		return surrealdb.Connect(ctx, logger, config.Storage)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: %s, %s)", backend, BackendBadger, BackendSurrealDB)
	}
}
