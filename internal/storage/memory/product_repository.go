package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu     sync.RWMutex
	items  map[int64]domain.Product
	nextID int64

	rowLocks *productLockTable
}

func newProductRepository(rowLocks *productLockTable) *productRepositoryInMemory {
	return &productRepositoryInMemory{
		items:    make(map[int64]domain.Product),
		rowLocks: rowLocks,
	}
}

// Create сохраняет новый товар, присваивая ему свежий ID.
func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	product.ID = r.nextID
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.items[product.ID] = product
	return product, nil
}

// List возвращает все товары, отсортированные по ID для стабильности выборки.
func (r *productRepositoryInMemory) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(_ context.Context, id int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// AdjustStock добавляет delta к остатку. Корректировка, уводящая остаток
// ниже нуля, отклоняется с ErrStockBelowZero без изменения состояния.
// Запись ждёт строчную блокировку товара: пока открыта транзакция
// резервирования этого товара, корректировка не может вклиниться между
// чтением остатка и его коммитом.
func (r *productRepositoryInMemory) AdjustStock(_ context.Context, id int64, delta int64) (domain.Product, error) {
	rowMu := r.rowLocks.acquire(id)
	rowMu.Lock()
	defer rowMu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if product.Stock+delta < 0 {
		return domain.Product{}, domain.ErrStockBelowZero
	}
	product.Stock += delta
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return product, nil
}

// snapshot возвращает товар для unit of work без долгого удержания блокировки.
func (r *productRepositoryInMemory) snapshot(id int64) (domain.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.items[id]
	return product, ok
}

// applyStock перезаписывает остаток товара при коммите транзакции.
func (r *productRepositoryInMemory) applyStock(id int64, stock int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.items[id]
	if !ok {
		return
	}
	product.Stock = stock
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
