package interfaces

import (
	"context"

	"github.com/bobmcallan/basket/internal/models"
)

// BasketStore persists baskets. Implementations return models.ErrBasketNotFound
// for unknown ids from GetBasket.
type BasketStore interface {
	// ListBaskets returns every basket ordered by CreatedAt ascending
	ListBaskets(ctx context.Context) ([]*models.Basket, error)

	GetBasket(ctx context.Context, id string) (*models.Basket, error)

	// SaveBasket inserts or replaces a basket by id
	SaveBasket(ctx context.Context, basket *models.Basket) error

	DeleteBasket(ctx context.Context, id string) error

	Close() error
}
