// Package badger keeps baskets in an embedded BadgerHold database.
package badger

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bobmcallan/basket/internal/common"
)

// Store owns the basket database directory.
type Store struct {
	db     *badgerhold.Store
	dir    string
	logger *common.Logger
}

// NewStore opens the basket database in dir, creating the directory on first
// use. Records are msgpack encoded.
func NewStore(logger *common.Logger, dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("basket store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create basket store directory %s: %w", dir, err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	opts.Logger = nil
	opts.Encoder = msgpack.Marshal
	opts.Decoder = msgpack.Unmarshal

	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open basket store %s: %w", dir, err)
	}

	logger.Info().Str("dir", dir).Msg("Basket store opened")
	return &Store{db: db, dir: dir, logger: logger}, nil
}

// Close releases the database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if s.logger != nil {
		s.logger.Debug().Str("dir", s.dir).Msg("Basket store closed")
	}
	return err
}
