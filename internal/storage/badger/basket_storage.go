package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/models"
)

// BasketStorage implements interfaces.BasketStore on BadgerHold.
type BasketStorage struct {
	store  *Store
	logger *common.Logger
}

// NewBasketStorage creates a new BasketStore backed by BadgerHold.
func NewBasketStorage(store *Store, logger *common.Logger) *BasketStorage {
	return &BasketStorage{store: store, logger: logger}
}

func (s *BasketStorage) GetBasket(_ context.Context, id string) (*models.Basket, error) {
	var basket models.Basket
	if err := s.store.db.Get(id, &basket); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrBasketNotFound, id)
		}
		return nil, fmt.Errorf("failed to get basket '%s': %w", id, err)
	}
	return &basket, nil
}

func (s *BasketStorage) SaveBasket(_ context.Context, basket *models.Basket) error {
	if basket.ID == "" {
		return fmt.Errorf("%w: basket id is required", models.ErrInvalidBasket)
	}
	basket.UpdatedAt = time.Now()
	if basket.CreatedAt.IsZero() {
		basket.CreatedAt = basket.UpdatedAt
	}

	if err := s.store.db.Upsert(basket.ID, basket); err != nil {
		return fmt.Errorf("failed to save basket: %w", err)
	}
	s.logger.Debug().Str("id", basket.ID).Str("name", basket.Name).Msg("Basket saved")
	return nil
}

// ListBaskets returns all baskets oldest first; ties keep id order.
func (s *BasketStorage) ListBaskets(_ context.Context) ([]*models.Basket, error) {
	var baskets []models.Basket
	if err := s.store.db.Find(&baskets, nil); err != nil {
		return nil, fmt.Errorf("failed to list baskets: %w", err)
	}

	out := make([]*models.Basket, len(baskets))
	for i := range baskets {
		out[i] = &baskets[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *BasketStorage) DeleteBasket(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Basket{})
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("%w: %s", models.ErrBasketNotFound, id)
		}
		return fmt.Errorf("failed to delete basket '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Basket deleted")
	return nil
}

// Close closes the underlying BadgerHold store.
func (s *BasketStorage) Close() error {
	return s.store.Close()
}
