// Package alerts deriva notificaciones de inventario (stock bajo, sin stock,
// por vencer, vencido) del estado actual de ingredientes y lotes, con
// deduplicación contra las notificaciones aún abiertas.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// qtyHighWatermark por debajo de esta cantidad el stock bajo sube a prioridad high.
var qtyHighWatermark = decimal.NewFromInt(5)

// condition alerta vigente para un ingrediente, independiente del usuario.
type condition struct {
	Type     string
	Priority string
	Message  string
	BatchID  *string
}

// UseCase generador de notificaciones. Evalúa las cuatro condiciones por
// (usuario activo × ingrediente no eliminado) y las reconcilia contra las
// notificaciones abiertas usando la clave estructurada
// (user, ingredient, batch, type) — no la heurística de buscar el número de
// lote dentro del texto del mensaje que usaba el sistema anterior.
type UseCase struct {
	userRepo  repository.UserRepository
	ingRepo   repository.IngredientRepository
	batchRepo repository.BatchRepository
	notifRepo repository.NotificationRepository
	log       *logger.Logger
}

// NewUseCase construye el generador.
func NewUseCase(
	userRepo repository.UserRepository,
	ingRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	notifRepo repository.NotificationRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		userRepo:  userRepo,
		ingRepo:   ingRepo,
		batchRepo: batchRepo,
		notifRepo: notifRepo,
		log:       log,
	}
}

// Generate evalúa condiciones, limpia notificaciones resueltas, crea las
// nuevas y devuelve solo las recién creadas (para la capa de entrega).
// Correr dos veces seguidas sobre el mismo estado no duplica notificaciones
// abiertas: segundo punto de idempotencia junto al job de caducados.
func (uc *UseCase) Generate(ctx context.Context) ([]*entity.Notification, error) {
	now := time.Now()

	users, err := uc.userRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ingredients, err := uc.ingRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	open, err := uc.notifRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	openByKey := make(map[entity.DedupKey]*entity.Notification, len(open))
	for _, n := range open {
		openByKey[n.Key()] = n
	}

	// Condiciones por ingrediente (independientes del usuario).
	conditionsByIng := make(map[string][]condition, len(ingredients))
	for _, ing := range ingredients {
		conds, err := uc.evaluateIngredient(ctx, ing, now)
		if err != nil {
			return nil, err
		}
		conditionsByIng[ing.ID] = conds
	}

	// Set deseado: (usuario, ingrediente, lote, tipo) → borrador.
	type draft struct {
		userID       string
		ingredientID string
		c            condition
	}
	desired := make(map[entity.DedupKey]draft)
	for _, u := range users {
		for _, ing := range ingredients {
			for _, c := range conditionsByIng[ing.ID] {
				batchID := ""
				if c.BatchID != nil {
					batchID = *c.BatchID
				}
				key := entity.DedupKey{UserID: u.ID, IngredientID: ing.ID, BatchID: batchID, Type: c.Type}
				desired[key] = draft{userID: u.ID, ingredientID: ing.ID, c: c}
			}
		}
	}

	// Reconciliación: primero limpiar lo resuelto, luego crear lo nuevo.
	for key, n := range openByKey {
		if _, still := desired[key]; !still {
			if err := uc.notifRepo.Clear(ctx, n.ID); err != nil {
				return nil, err
			}
		}
	}

	var created []*entity.Notification
	for key, d := range desired {
		if _, exists := openByKey[key]; exists {
			continue
		}
		n := &entity.Notification{
			ID:           uuid.New().String(),
			UserID:       d.userID,
			Type:         d.c.Type,
			Priority:     d.c.Priority,
			Message:      d.c.Message,
			IngredientID: d.ingredientID,
			BatchID:      d.c.BatchID,
			CreatedAt:    now,
		}
		if err := uc.notifRepo.Create(ctx, n); err != nil {
			return nil, err
		}
		created = append(created, n)
	}

	uc.log.Info().
		Int("created", len(created)).
		Int("open_before", len(open)).
		Msg("generación de notificaciones completada")
	return created, nil
}

// evaluateIngredient condiciones vigentes para un ingrediente: stock bajo /
// sin stock sobre el agregado, y por-vencer / vencido por lote (o sobre la
// fecha plana legada si el ingrediente nunca tuvo lotes).
func (uc *UseCase) evaluateIngredient(ctx context.Context, ing *entity.Ingredient, now time.Time) ([]condition, error) {
	var conds []condition

	if !ing.Quantity.GreaterThan(decimal.Zero) {
		conds = append(conds, condition{
			Type:     entity.NotificationOutOfStock,
			Priority: entity.PriorityCritical,
			Message:  fmt.Sprintf("Sin stock: %s", ing.Name),
		})
	} else if ing.Quantity.LessThanOrEqual(ing.AlertThreshold) {
		priority := entity.PriorityMedium
		if ing.Quantity.LessThanOrEqual(qtyHighWatermark) {
			priority = entity.PriorityHigh
		}
		conds = append(conds, condition{
			Type:     entity.NotificationLowStock,
			Priority: priority,
			Message: fmt.Sprintf("Stock bajo: %s (%s %s, umbral %s)",
				ing.Name, ing.Quantity.String(), ing.Unit, ing.AlertThreshold.String()),
		})
	}

	batches, err := uc.batchRepo.ListByIngredient(ctx, ing.ID)
	if err != nil {
		return nil, err
	}

	hasBatches := len(batches) > 0
	for _, b := range batches {
		// Solo lotes con cantidad restante generan alertas de caducidad; un
		// lote expired aún no vaciado por el job sigue alertando como vencido.
		if !b.CurrentQuantity.GreaterThan(decimal.Zero) || b.Status == entity.BatchStatusDepleted {
			continue
		}
		days, hasExpiry := b.DaysUntilExpiry(now)
		if !hasExpiry {
			continue
		}
		batchID := b.ID
		switch {
		case days < 0:
			// Segundo punto de disparo a expired, junto al job de
			// reconciliación; la cantidad la vacía solo el job.
			if b.RefreshStatus(now) {
				if err := uc.batchRepo.Update(ctx, b); err != nil {
					return nil, err
				}
			}
			conds = append(conds, condition{
				Type:     entity.NotificationExpired,
				Priority: entity.PriorityCritical,
				Message:  fmt.Sprintf("El lote %s de %s está vencido", b.BatchNumber, b.Snapshot.Name),
				BatchID:  &batchID,
			})
		case days <= 3 && b.Status == entity.BatchStatusActive:
			conds = append(conds, condition{
				Type:     entity.NotificationExpiring,
				Priority: expiringPriority(days),
				Message:  fmt.Sprintf("El lote %s de %s vence en %d día(s)", b.BatchNumber, b.Snapshot.Name, days),
				BatchID:  &batchID,
			})
		}
	}

	// Modo legado: ingrediente sin lotes con fecha de caducidad plana.
	if !hasBatches && ing.ExpirationDate != nil && ing.Quantity.GreaterThan(decimal.Zero) {
		days := int(ing.ExpirationDate.Sub(now).Hours() / 24)
		switch {
		case days < 0:
			conds = append(conds, condition{
				Type:     entity.NotificationExpired,
				Priority: entity.PriorityCritical,
				Message:  fmt.Sprintf("%s está vencido", ing.Name),
			})
		case days <= 3:
			conds = append(conds, condition{
				Type:     entity.NotificationExpiring,
				Priority: expiringPriority(days),
				Message:  fmt.Sprintf("%s vence en %d día(s)", ing.Name, days),
			})
		}
	}

	return conds, nil
}

// expiringPriority crítica a ≤1 día, high a ≤2, medium a 3.
func expiringPriority(days int) string {
	switch {
	case days <= 1:
		return entity.PriorityCritical
	case days <= 2:
		return entity.PriorityHigh
	default:
		return entity.PriorityMedium
	}
}

// ClearNotification marca una notificación como atendida por su dueño.
func (uc *UseCase) ClearNotification(ctx context.Context, id, userID string) error {
	n, err := uc.notifRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return domain.ErrNotFound
	}
	if n.UserID != userID {
		return domain.ErrForbidden
	}
	if n.IsCleared {
		return nil
	}
	return uc.notifRepo.Clear(ctx, id)
}
