// Package memrepo implementa los puertos de persistencia en memoria para los
// tests de la capa de aplicación. Copia las entidades al leer y al escribir,
// igual que una fila de BD: una mutación sin Update no se observa.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu            sync.Mutex
	ingredients   map[string]*entity.Ingredient
	batches       map[string]*entity.Batch
	spoilages     map[string]*entity.SpoilageRecord
	notifications map[string]*entity.Notification
	users         map[string]*entity.User
	stockIns      map[string]*entity.StockIn
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		ingredients:   make(map[string]*entity.Ingredient),
		batches:       make(map[string]*entity.Batch),
		spoilages:     make(map[string]*entity.SpoilageRecord),
		notifications: make(map[string]*entity.Notification),
		users:         make(map[string]*entity.User),
		stockIns:      make(map[string]*entity.StockIn),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Seeds y lecturas directas para asserts
// ──────────────────────────────────────────────────────────────────────────────

// SeedIngredient inserta el ingrediente sin pasar por el repositorio.
func (s *Store) SeedIngredient(i *entity.Ingredient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingredients[i.ID] = copyIngredient(i)
}

// SeedBatch inserta el lote sin pasar por el repositorio.
func (s *Store) SeedBatch(b *entity.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = copyBatch(b)
}

// SeedUser inserta el usuario sin pasar por el repositorio.
func (s *Store) SeedUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

// Ingredient devuelve una copia del ingrediente almacenado, o nil.
func (s *Store) Ingredient(id string) *entity.Ingredient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.ingredients[id]; ok {
		return copyIngredient(i)
	}
	return nil
}

// Batch devuelve una copia del lote almacenado, o nil.
func (s *Store) Batch(id string) *entity.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.batches[id]; ok {
		return copyBatch(b)
	}
	return nil
}

// Spoilages devuelve una copia de todos los registros de merma, por fecha de
// creación ascendente.
func (s *Store) Spoilages() []*entity.SpoilageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.SpoilageRecord, 0, len(s.spoilages))
	for _, rec := range s.spoilages {
		out = append(out, copySpoilage(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// OpenNotifications devuelve una copia de las notificaciones abiertas.
func (s *Store) OpenNotifications() []*entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Notification
	for _, n := range s.notifications {
		if !n.IsCleared {
			out = append(out, copyNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Constructores de repositorios y TxRunner
// ──────────────────────────────────────────────────────────────────────────────

// IngredientRepo repositorio de ingredientes atado al Store.
func (s *Store) IngredientRepo() *IngredientRepo { return &IngredientRepo{s: s} }

// BatchRepo repositorio de lotes atado al Store.
func (s *Store) BatchRepo() *BatchRepo { return &BatchRepo{s: s} }

// SpoilageRepo repositorio de mermas atado al Store.
func (s *Store) SpoilageRepo() *SpoilageRepo { return &SpoilageRepo{s: s} }

// NotificationRepo repositorio de notificaciones atado al Store.
func (s *Store) NotificationRepo() *NotificationRepo { return &NotificationRepo{s: s} }

// UserRepo repositorio de usuarios atado al Store.
func (s *Store) UserRepo() *UserRepo { return &UserRepo{s: s} }

// StockInRepo repositorio de ingresos atado al Store.
func (s *Store) StockInRepo() *StockInRepo { return &StockInRepo{s: s} }

// TxRunner devuelve un runner que ejecuta fn contra este Store. No simula
// rollback: la capa de aplicación se testea por su semántica, no por la
// atomicidad, que pertenece al runner de Postgres.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// TxRunner runner en memoria con la misma forma que el de Postgres.
type TxRunner struct {
	s *Store
}

// Run ejecuta fn con los repositorios del Store.
func (t *TxRunner) Run(ctx context.Context, fn func(
	ingRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	spoilRepo repository.SpoilageRepository,
	stockInRepo repository.StockInRepository,
) error) error {
	return fn(t.s.IngredientRepo(), t.s.BatchRepo(), t.s.SpoilageRepo(), t.s.StockInRepo())
}

// ──────────────────────────────────────────────────────────────────────────────
// IngredientRepo
// ──────────────────────────────────────────────────────────────────────────────

// IngredientRepo implementación en memoria de repository.IngredientRepository.
type IngredientRepo struct {
	s *Store
}

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

func (r *IngredientRepo) Create(_ context.Context, ing *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.ingredients {
		if existing.Name == ing.Name && !existing.IsDeleted() {
			return domain.ErrConflict
		}
	}
	r.s.ingredients[ing.ID] = copyIngredient(ing)
	return nil
}

func (r *IngredientRepo) GetByID(_ context.Context, id string) (*entity.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i, ok := r.s.ingredients[id]; ok {
		return copyIngredient(i), nil
	}
	return nil, nil
}

func (r *IngredientRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error) {
	return r.GetByID(ctx, id)
}

func (r *IngredientRepo) Update(_ context.Context, ing *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ingredients[ing.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.ingredients[ing.ID] = copyIngredient(ing)
	return nil
}

func (r *IngredientRepo) ListActive(_ context.Context) ([]*entity.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Ingredient
	for _, i := range r.s.ingredients {
		if !i.IsDeleted() {
			out = append(out, copyIngredient(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *IngredientRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.ingredients[id]
	if !ok || i.IsDeleted() {
		return domain.ErrNotFound
	}
	now := time.Now()
	i.DeletedAt = &now
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// BatchRepo
// ──────────────────────────────────────────────────────────────────────────────

// BatchRepo implementación en memoria de repository.BatchRepository. Mantiene
// el mismo orden FIFO total que la consulta SQL: stock_in_date, created_at, id.
type BatchRepo struct {
	s *Store
}

var _ repository.BatchRepository = (*BatchRepo)(nil)

func (r *BatchRepo) Create(_ context.Context, batch *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.batches {
		if existing.BatchNumber == batch.BatchNumber {
			return domain.ErrDuplicateBatchNumber
		}
	}
	r.s.batches[batch.ID] = copyBatch(batch)
	return nil
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.batches[id]; ok {
		return copyBatch(b), nil
	}
	return nil, nil
}

func (r *BatchRepo) Update(_ context.Context, batch *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.batches[batch.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.batches[batch.ID] = copyBatch(batch)
	return nil
}

func (r *BatchRepo) ListActive(_ context.Context, ingredientID string) ([]*entity.Batch, error) {
	return r.listWhere(func(b *entity.Batch) bool {
		return b.IngredientID == ingredientID &&
			b.Status == entity.BatchStatusActive &&
			b.CurrentQuantity.IsPositive()
	}, fifoLess)
}

func (r *BatchRepo) ListActiveForUpdate(ctx context.Context, ingredientID string) ([]*entity.Batch, error) {
	return r.ListActive(ctx, ingredientID)
}

func (r *BatchRepo) ListExpired(_ context.Context, now time.Time) ([]*entity.Batch, error) {
	return r.listWhere(func(b *entity.Batch) bool {
		if b.Status != entity.BatchStatusActive && b.Status != entity.BatchStatusExpired {
			return false
		}
		return b.ExpirationDate != nil && b.ExpirationDate.Before(now) &&
			b.CurrentQuantity.IsPositive()
	}, fifoLess)
}

func (r *BatchRepo) ListExpiringWithin(_ context.Context, now time.Time, days int) ([]*entity.Batch, error) {
	limit := now.AddDate(0, 0, days)
	return r.listWhere(func(b *entity.Batch) bool {
		if b.Status != entity.BatchStatusActive || !b.CurrentQuantity.IsPositive() {
			return false
		}
		return b.ExpirationDate != nil &&
			!b.ExpirationDate.Before(now) && !b.ExpirationDate.After(limit)
	}, func(a, b *entity.Batch) bool {
		return a.ExpirationDate.Before(*b.ExpirationDate)
	})
}

func (r *BatchRepo) ListByIngredient(_ context.Context, ingredientID string) ([]*entity.Batch, error) {
	return r.listWhere(func(b *entity.Batch) bool {
		return b.IngredientID == ingredientID
	}, fifoLess)
}

func (r *BatchRepo) listWhere(pred func(*entity.Batch) bool, less func(a, b *entity.Batch) bool) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Batch
	for _, b := range r.s.batches {
		if pred(b) {
			out = append(out, copyBatch(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func fifoLess(a, b *entity.Batch) bool {
	if !a.StockInDate.Equal(b.StockInDate) {
		return a.StockInDate.Before(b.StockInDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// SpoilageRepo
// ──────────────────────────────────────────────────────────────────────────────

// SpoilageRepo implementación en memoria de repository.SpoilageRepository.
type SpoilageRepo struct {
	s *Store
}

var _ repository.SpoilageRepository = (*SpoilageRepo)(nil)

func (r *SpoilageRepo) Create(_ context.Context, rec *entity.SpoilageRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.spoilages[rec.ID] = copySpoilage(rec)
	return nil
}

func (r *SpoilageRepo) GetByID(_ context.Context, id string) (*entity.SpoilageRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec, ok := r.s.spoilages[id]; ok {
		return copySpoilage(rec), nil
	}
	return nil, nil
}

func (r *SpoilageRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.spoilages[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.spoilages, id)
	return nil
}

func (r *SpoilageRepo) ListBetween(_ context.Context, from, to time.Time) ([]*entity.SpoilageRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SpoilageRecord
	for _, rec := range r.s.spoilages {
		if !rec.CreatedAt.Before(from) && !rec.CreatedAt.After(to) {
			out = append(out, copySpoilage(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// NotificationRepo
// ──────────────────────────────────────────────────────────────────────────────

// NotificationRepo implementación en memoria de repository.NotificationRepository.
type NotificationRepo struct {
	s *Store
}

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notifications[n.ID] = copyNotification(n)
	return nil
}

func (r *NotificationRepo) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n, ok := r.s.notifications[id]; ok {
		return copyNotification(n), nil
	}
	return nil, nil
}

func (r *NotificationRepo) ListOpen(_ context.Context) ([]*entity.Notification, error) {
	return r.listOpen(func(*entity.Notification) bool { return true })
}

func (r *NotificationRepo) ListOpenByUser(_ context.Context, userID string) ([]*entity.Notification, error) {
	return r.listOpen(func(n *entity.Notification) bool { return n.UserID == userID })
}

func (r *NotificationRepo) listOpen(pred func(*entity.Notification) bool) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.s.notifications {
		if !n.IsCleared && pred(n) {
			out = append(out, copyNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *NotificationRepo) Clear(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.IsCleared {
		return domain.ErrNotFound
	}
	now := time.Now()
	n.IsCleared = true
	n.ClearedAt = &now
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// UserRepo y StockInRepo
// ──────────────────────────────────────────────────────────────────────────────

// UserRepo implementación en memoria de repository.UserRepository.
type UserRepo struct {
	s *Store
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return domain.ErrConflict
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ListActive(_ context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if u.IsActive() {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// StockInRepo implementación en memoria de repository.StockInRepository.
type StockInRepo struct {
	s *Store
}

var _ repository.StockInRepository = (*StockInRepo)(nil)

func (r *StockInRepo) Create(_ context.Context, in *entity.StockIn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.stockIns {
		if existing.BatchNumber == in.BatchNumber {
			return domain.ErrDuplicateBatchNumber
		}
	}
	cp := *in
	cp.Items = append([]entity.StockInItem(nil), in.Items...)
	r.s.stockIns[in.ID] = &cp
	return nil
}

func (r *StockInRepo) GetByID(_ context.Context, id string) (*entity.StockIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if in, ok := r.s.stockIns[id]; ok {
		cp := *in
		cp.Items = append([]entity.StockInItem(nil), in.Items...)
		return &cp, nil
	}
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Copias
// ──────────────────────────────────────────────────────────────────────────────

func copyIngredient(i *entity.Ingredient) *entity.Ingredient {
	cp := *i
	cp.ExpirationDate = copyTime(i.ExpirationDate)
	cp.DeletedAt = copyTime(i.DeletedAt)
	return &cp
}

func copyBatch(b *entity.Batch) *entity.Batch {
	cp := *b
	cp.ExpirationDate = copyTime(b.ExpirationDate)
	return &cp
}

func copySpoilage(rec *entity.SpoilageRecord) *entity.SpoilageRecord {
	cp := *rec
	cp.Items = make([]entity.SpoilageItem, len(rec.Items))
	for i, it := range rec.Items {
		cp.Items[i] = it
		if it.BatchID != nil {
			id := *it.BatchID
			cp.Items[i].BatchID = &id
		}
	}
	return &cp
}

func copyNotification(n *entity.Notification) *entity.Notification {
	cp := *n
	if n.BatchID != nil {
		id := *n.BatchID
		cp.BatchID = &id
	}
	cp.ClearedAt = copyTime(n.ClearedAt)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
