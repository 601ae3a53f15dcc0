package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL
// (usable con pool o tx). Los lotes nunca se borran.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, ingredient_id, batch_number, original_quantity, current_quantity, unit,
	stock_in_date, expiration_date, status, snapshot_name, snapshot_category, snapshot_unit,
	stock_in_id, created_at, updated_at`

// fifoOrder orden FIFO total y estable: fecha de ingreso, luego orden de
// creación, luego id como desempate final.
const fifoOrder = ` ORDER BY stock_in_date ASC, created_at ASC, id ASC`

// Create persiste un lote nuevo. batch_number tiene constraint único global;
// la violación se propaga como ErrDuplicateBatchNumber.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.IngredientID, b.BatchNumber, b.OriginalQuantity, b.CurrentQuantity, b.Unit,
		b.StockInDate, b.ExpirationDate, b.Status, b.Snapshot.Name, b.Snapshot.Category, b.Snapshot.Unit,
		b.StockInID, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateBatchNumber
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por id.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Update persiste current_quantity, status y updated_at. original_quantity es
// inmutable y no se toca.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	query := `
		UPDATE batches
		SET current_quantity = $2, status = $3, expiration_date = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, b.ID, b.CurrentQuantity, b.Status, b.ExpirationDate, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// ListActive lotes activos con cantidad > 0 de un ingrediente, en orden FIFO.
func (r *BatchRepo) ListActive(ctx context.Context, ingredientID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches
		WHERE ingredient_id = $1 AND status = $2 AND current_quantity > 0` + fifoOrder
	return r.list(ctx, query, ingredientID, entity.BatchStatusActive)
}

// ListActiveForUpdate igual que ListActive, bloqueando las filas para la
// deducción transaccional.
func (r *BatchRepo) ListActiveForUpdate(ctx context.Context, ingredientID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches
		WHERE ingredient_id = $1 AND status = $2 AND current_quantity > 0` + fifoOrder + ` FOR UPDATE`
	return r.list(ctx, query, ingredientID, entity.BatchStatusActive)
}

// ListExpired lotes vencidos con cantidad restante, pendientes de reconciliar.
// Incluye los que el generador de alertas ya marcó expired pero que el job aún
// no vació: ambos disparadores son seguros en cualquier orden.
func (r *BatchRepo) ListExpired(ctx context.Context, now time.Time) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches
		WHERE status IN ($1, $2) AND expiration_date IS NOT NULL AND expiration_date < $3
		  AND current_quantity > 0` + fifoOrder
	return r.list(ctx, query, entity.BatchStatusActive, entity.BatchStatusExpired, now)
}

// ListExpiringWithin lotes activos que vencen dentro de los próximos days días.
func (r *BatchRepo) ListExpiringWithin(ctx context.Context, now time.Time, days int) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches
		WHERE status = $1 AND current_quantity > 0
		  AND expiration_date IS NOT NULL AND expiration_date >= $2 AND expiration_date <= $3
		ORDER BY expiration_date ASC`
	return r.list(ctx, query, entity.BatchStatusActive, now, now.AddDate(0, 0, days))
}

// ListByIngredient histórico completo de lotes de un ingrediente.
func (r *BatchRepo) ListByIngredient(ctx context.Context, ingredientID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE ingredient_id = $1` + fifoOrder
	return r.list(ctx, query, ingredientID)
}

func (r *BatchRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.IngredientID, &b.BatchNumber, &b.OriginalQuantity, &b.CurrentQuantity, &b.Unit,
		&b.StockInDate, &b.ExpirationDate, &b.Status, &b.Snapshot.Name, &b.Snapshot.Category, &b.Snapshot.Unit,
		&b.StockInID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
