package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Store объединяет in-memory репозитории и unit of work оформления заказа.
// Роль строчной блокировки Postgres здесь играет карта пер-товарных мьютексов:
// мьютекс создаётся лениво при первом резервировании и никогда не удаляется.
type Store struct {
	products *productRepositoryInMemory
	orders   *orderRepositoryInMemory
	locks    *productLockTable
}

// productLockTable раздаёт пер-товарные мьютексы. Таблица общая для unit of
// work и репозитория товаров: прямая запись остатка обязана ждать завершения
// открытой транзакции резервирования того же товара, как UPDATE в Postgres
// ждёт снятия строчной блокировки FOR UPDATE.
type productLockTable struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// acquire возвращает мьютекс товара, создавая его при первом обращении.
func (t *productLockTable) acquire(productID int64) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	mu, ok := t.locks[productID]
	if !ok {
		mu = &sync.Mutex{}
		t.locks[productID] = mu
	}
	return mu
}

// NewStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewStore() *Store {
	locks := &productLockTable{locks: make(map[int64]*sync.Mutex)}
	return &Store{
		products: newProductRepository(locks),
		orders:   newOrderRepository(),
		locks:    locks,
	}
}

// Products возвращает репозиторий товаров.
func (s *Store) Products() domain.ProductRepository { return s.products }

// Orders возвращает репозиторий заказов.
func (s *Store) Orders() domain.OrderRepository { return s.orders }

// Ping всегда успешен: хранилище живёт в памяти процесса.
func (s *Store) Ping(context.Context) error { return nil }

// WithinTx выполняет fn в рамках одной атомарной транзакции: резервирование
// остатка и вставка заказа фиксируются вместе либо вместе отбрасываются.
// Пер-товарный мьютекс удерживается до конца транзакции, поэтому конкурентные
// резервирования одного товара строго сериализуются по порядку захвата.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.OrderTx) error) error {
	t := &memoryTx{store: s}
	defer t.release()

	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// memoryTx накапливает изменения и применяет их только при коммите,
// чтобы незафиксированное состояние не было видно читателям.
type memoryTx struct {
	store *Store

	held     *sync.Mutex
	lockedID int64

	reserved      bool
	reservedID    int64
	reservedStock int64

	inserted []domain.Order
}

// ReserveStock захватывает блокировку строки товара и уменьшает остаток на
// единицу, если он положителен. Сам декремент становится видимым при коммите.
func (t *memoryTx) ReserveStock(ctx context.Context, productID int64) (domain.ReservationOutcome, domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.Product{}, err
	}
	if t.held != nil && t.lockedID != productID {
		// Одна транзакция оформления касается ровно одного товара;
		// второй замок означал бы риск взаимоблокировки.
		return "", domain.Product{}, fmt.Errorf("transaction already holds lock for product %d", t.lockedID)
	}

	if t.held == nil {
		mu := t.store.locks.acquire(productID)
		mu.Lock()
		t.held = mu
		t.lockedID = productID
	}

	product, ok := t.store.products.snapshot(productID)
	if !ok {
		return domain.OutcomeNotFound, domain.Product{}, nil
	}
	if product.Stock <= 0 {
		return domain.OutcomeOutOfStock, product, nil
	}

	product.Stock--
	t.reserved = true
	t.reservedID = productID
	t.reservedStock = product.Stock
	return domain.OutcomeReserved, product, nil
}

// InsertOrder присваивает заказу ID и ставит его в очередь на коммит.
func (t *memoryTx) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	order.ID = t.store.orders.allocateID()
	order.CreatedAt = time.Now().UTC()
	t.inserted = append(t.inserted, order)
	return order, nil
}

// commit применяет накопленные изменения. Вызывается до release, поэтому
// следующий в очереди на мьютекс товара видит уже зафиксированный остаток.
func (t *memoryTx) commit() {
	if t.reserved {
		t.store.products.applyStock(t.reservedID, t.reservedStock)
	}
	for _, order := range t.inserted {
		t.store.orders.applyInsert(order)
	}
	t.reserved = false
	t.inserted = nil
}

// release снимает блокировку товара; незакоммиченные изменения отбрасываются.
func (t *memoryTx) release() {
	if t.held != nil {
		t.held.Unlock()
		t.held = nil
	}
}

var _ domain.TxRunner = (*Store)(nil)
var _ domain.OrderTx = (*memoryTx)(nil)
