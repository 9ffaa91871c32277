// Package surrealdb provides the SurrealDB basket store.
package surrealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/models"
)

const basketTable = "basket"

// basketSelectFields aliases basket_id to id for struct mapping.
const basketSelectFields = "basket_id as id, name, created_at, updated_at, stocks"

// basketRecord is the stored shape of a basket. Stocks are kept as a JSON
// document so older records with string-typed numbers or sell_time still decode.
type basketRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Stocks    string    `json:"stocks"`
}

func (r *basketRecord) toBasket() (*models.Basket, error) {
	b := &models.Basket{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Stocks:    []models.Stock{},
	}
	if strings.TrimSpace(r.Stocks) != "" {
		if err := json.Unmarshal([]byte(r.Stocks), &b.Stocks); err != nil {
			return nil, fmt.Errorf("failed to decode stocks for basket %s: %w", r.ID, err)
		}
	}
	return b, nil
}

// BasketStore implements interfaces.BasketStore using SurrealDB.
type BasketStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// Connect opens a SurrealDB connection, signs in, selects the namespace and
// database, and ensures the basket table exists.
func Connect(ctx context.Context, logger *common.Logger, cfg common.StorageConfig) (*BasketStore, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	store, err := NewBasketStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB basket store initialized")

	return store, nil
}

// NewBasketStore wraps an already selected database connection.
func NewBasketStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*BasketStore, error) {
	// SurrealDB v3 errors on querying tables that were never defined
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", basketTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", basketTable, err)
	}
	return &BasketStore{db: db, logger: logger}, nil
}

func (s *BasketStore) GetBasket(ctx context.Context, id string) (*models.Basket, error) {
	sql := "SELECT " + basketSelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(basketTable, id)}

	results, err := surrealdb.Query[[]basketRecord](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrBasketNotFound, id)
		}
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrBasketNotFound, id)
	}
	return (*results)[0].Result[0].toBasket()
}

func (s *BasketStore) SaveBasket(ctx context.Context, basket *models.Basket) error {
	if basket.ID == "" {
		return fmt.Errorf("%w: basket id is required", models.ErrInvalidBasket)
	}
	basket.UpdatedAt = time.Now()
	if basket.CreatedAt.IsZero() {
		basket.CreatedAt = basket.UpdatedAt
	}

	stocks := basket.Stocks
	if stocks == nil {
		stocks = []models.Stock{}
	}
	payload, err := json.Marshal(stocks)
	if err != nil {
		return fmt.Errorf("failed to encode stocks: %w", err)
	}

	sql := `UPSERT $rid SET
		basket_id = $basket_id, name = $name, stocks = $stocks,
		created_at = $created_at, updated_at = $updated_at`
	vars := map[string]any{
		"rid":        surrealmodels.NewRecordID(basketTable, basket.ID),
		"basket_id":  basket.ID,
		"name":       basket.Name,
		"stocks":     string(payload),
		"created_at": basket.CreatedAt,
		"updated_at": basket.UpdatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save basket: %w", err)
	}
	s.logger.Debug().Str("id", basket.ID).Str("name", basket.Name).Msg("Basket saved")
	return nil
}

// ListBaskets returns all baskets oldest first.
func (s *BasketStore) ListBaskets(ctx context.Context) ([]*models.Basket, error) {
	sql := "SELECT " + basketSelectFields + " FROM " + basketTable + " ORDER BY created_at ASC"

	results, err := surrealdb.Query[[]basketRecord](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list baskets: %w", err)
	}

	out := []*models.Basket{}
	if results == nil || len(*results) == 0 {
		return out, nil
	}
	for i := range (*results)[0].Result {
		b, err := (*results)[0].Result[i].toBasket()
		if err != nil {
			s.logger.Warn().Err(err).Msg("Skipping unreadable basket")
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *BasketStore) DeleteBasket(ctx context.Context, id string) error {
	sql := "DELETE $rid RETURN BEFORE"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(basketTable, id)}

	results, err := surrealdb.Query[[]map[string]any](ctx, s.db, sql, vars)
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete basket: %w", err)
	}
	if err != nil || results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("%w: %s", models.ErrBasketNotFound, id)
	}
	s.logger.Debug().Str("id", id).Msg("Basket deleted")
	return nil
}

func (s *BasketStore) Close() error {
	s.db.Close(context.Background())
	return nil
}

// isNotFoundError reports whether err is SurrealDB's missing record/table error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}
