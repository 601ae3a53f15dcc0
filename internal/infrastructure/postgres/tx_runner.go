package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cafe-stock-api/internal/application/expiration"
	"github.com/jhoicas/cafe-stock-api/internal/application/inventory"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

// Un solo Run sirve a ambos puertos: tienen la misma firma.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ expiration.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Las
// escrituras por lote y la del agregado del ingrediente confirman juntas: el
// invariante Σ(batch.currentQuantity) == ingredient.quantity no puede quedar
// a medias ante un fallo tardío.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ingRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	spoilRepo repository.SpoilageRepository,
	stockInRepo repository.StockInRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ingRepo := NewIngredientRepository(tx)
	batchRepo := NewBatchRepository(tx)
	spoilRepo := NewSpoilageRepository(tx)
	stockInRepo := NewStockInRepository(tx)

	if err := fn(ingRepo, batchRepo, spoilRepo, stockInRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
