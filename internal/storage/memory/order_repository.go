package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu     sync.RWMutex
	items  map[int64]domain.Order
	nextID int64
}

func newOrderRepository() *orderRepositoryInMemory {
	return &orderRepositoryInMemory{
		items: make(map[int64]domain.Order),
	}
}

// List возвращает все заказы, отсортированные по ID.
func (r *orderRepositoryInMemory) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, order)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListByProduct возвращает заказы по товару (производный запрос, не владение).
func (r *orderRepositoryInMemory) ListByProduct(_ context.Context, productID int64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.Product.ID != productID {
			continue
		}
		result = append(result, order)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// allocateID резервирует идентификатор для заказа, создаваемого в транзакции.
// Как и сиквенс в БД, идентификатор не возвращается при откате.
func (r *orderRepositoryInMemory) allocateID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID
}

// applyInsert сохраняет заказ при коммите транзакции.
func (r *orderRepositoryInMemory) applyInsert(order domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[order.ID] = order
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
