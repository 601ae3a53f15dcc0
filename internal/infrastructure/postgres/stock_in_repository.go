package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

var _ repository.StockInRepository = (*StockInRepo)(nil)

// StockInRepo implementación del puerto StockInRepository sobre PostgreSQL.
type StockInRepo struct {
	q Querier
}

// NewStockInRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockInRepository(q Querier) *StockInRepo {
	return &StockInRepo{q: q}
}

// Create persiste el ingreso y sus líneas. batch_number (padre) es único.
func (r *StockInRepo) Create(ctx context.Context, in *entity.StockIn) error {
	query := `
		INSERT INTO stock_ins (id, batch_number, supplier, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, in.ID, in.BatchNumber, in.Supplier, in.CreatedBy, in.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateBatchNumber
		}
		return fmt.Errorf("create stock in: %w", err)
	}

	itemQuery := `
		INSERT INTO stock_in_items (stock_in_id, position, ingredient_id, quantity, unit, expiration_date)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, it := range in.Items {
		if _, err := r.q.Exec(ctx, itemQuery, in.ID, i, it.IngredientID, it.Quantity, it.Unit, it.ExpirationDate); err != nil {
			return fmt.Errorf("create stock in item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el ingreso con sus líneas.
func (r *StockInRepo) GetByID(ctx context.Context, id string) (*entity.StockIn, error) {
	query := `SELECT id, batch_number, supplier, created_by, created_at FROM stock_ins WHERE id = $1`
	var in entity.StockIn
	err := r.q.QueryRow(ctx, query, id).Scan(&in.ID, &in.BatchNumber, &in.Supplier, &in.CreatedBy, &in.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock in: %w", err)
	}

	itemsQuery := `
		SELECT ingredient_id, quantity, unit, expiration_date
		FROM stock_in_items WHERE stock_in_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("load stock in items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.StockInItem
		if err := rows.Scan(&it.IngredientID, &it.Quantity, &it.Unit, &it.ExpirationDate); err != nil {
			return nil, fmt.Errorf("scan stock in item: %w", err)
		}
		in.Items = append(in.Items, it)
	}
	return &in, rows.Err()
}
