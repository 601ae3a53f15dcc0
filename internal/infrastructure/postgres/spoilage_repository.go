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

var _ repository.SpoilageRepository = (*SpoilageRepo)(nil)

// SpoilageRepo implementación del puerto SpoilageRepository sobre PostgreSQL
// (usable con pool o tx). Cabecera en spoilage_records, líneas en
// spoilage_items.
type SpoilageRepo struct {
	q Querier
}

// NewSpoilageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSpoilageRepository(q Querier) *SpoilageRepo {
	return &SpoilageRepo{q: q}
}

// Create persiste el registro y sus líneas.
func (r *SpoilageRepo) Create(ctx context.Context, rec *entity.SpoilageRecord) error {
	query := `
		INSERT INTO spoilage_records (id, total_waste, auto, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, rec.ID, rec.TotalWaste, rec.Auto, rec.CreatedBy, rec.CreatedAt); err != nil {
		return fmt.Errorf("create spoilage record: %w", err)
	}

	itemQuery := `
		INSERT INTO spoilage_items (spoilage_id, position, batch_id, batch_number, ingredient_id,
			snapshot_name, snapshot_category, snapshot_unit, quantity, unit, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for i, it := range rec.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			rec.ID, i, it.BatchID, it.BatchNumber, it.IngredientID,
			it.Snapshot.Name, it.Snapshot.Category, it.Snapshot.Unit,
			it.Quantity, it.Unit, it.Reason,
		)
		if err != nil {
			return fmt.Errorf("create spoilage item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el registro con sus líneas.
func (r *SpoilageRepo) GetByID(ctx context.Context, id string) (*entity.SpoilageRecord, error) {
	query := `SELECT id, total_waste, auto, created_by, created_at FROM spoilage_records WHERE id = $1`
	var rec entity.SpoilageRecord
	err := r.q.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.TotalWaste, &rec.Auto, &rec.CreatedBy, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get spoilage record: %w", err)
	}
	if err := r.loadItems(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete borra el registro; las líneas caen por ON DELETE CASCADE.
func (r *SpoilageRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM spoilage_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete spoilage record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBetween registros creados en [from, to), más recientes primero.
func (r *SpoilageRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*entity.SpoilageRecord, error) {
	query := `
		SELECT id, total_waste, auto, created_by, created_at
		FROM spoilage_records
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list spoilage records: %w", err)
	}
	defer rows.Close()

	var out []*entity.SpoilageRecord
	for rows.Next() {
		var rec entity.SpoilageRecord
		if err := rows.Scan(&rec.ID, &rec.TotalWaste, &rec.Auto, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan spoilage record: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rec := range out {
		if err := r.loadItems(ctx, rec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SpoilageRepo) loadItems(ctx context.Context, rec *entity.SpoilageRecord) error {
	query := `
		SELECT batch_id, batch_number, ingredient_id, snapshot_name, snapshot_category, snapshot_unit,
		       quantity, unit, reason
		FROM spoilage_items WHERE spoilage_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, rec.ID)
	if err != nil {
		return fmt.Errorf("load spoilage items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.SpoilageItem
		err := rows.Scan(&it.BatchID, &it.BatchNumber, &it.IngredientID,
			&it.Snapshot.Name, &it.Snapshot.Category, &it.Snapshot.Unit,
			&it.Quantity, &it.Unit, &it.Reason)
		if err != nil {
			return fmt.Errorf("scan spoilage item: %w", err)
		}
		rec.Items = append(rec.Items, it)
	}
	return rows.Err()
}
