// Package cart holds the in-memory authoritative cart with snapshot
// persistence to a key-value store.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopfolio/storefront/pkg/kv"
	"github.com/shopfolio/storefront/pkg/logger"
)

const persistTimeout = 5 * time.Second

// Product is the minimum payload required to add a line item.
type Product struct {
	ID          string
	Title       string
	Price       decimal.Decimal
	Image       string
	Description string
	Category    string
}

// LineItem is one product entry in the cart. Extra product fields are
// carried through persistence verbatim.
type LineItem struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
}

type persistOp struct {
	snapshot []LineItem
	remove   bool
}

// Store owns the cart state. Mutations update memory synchronously and hand
// the full snapshot to a single writer goroutine; persistence failures are
// logged and never surfaced to callers.
type Store struct {
	mu    sync.Mutex
	items []LineItem

	kvStore kv.Store
	key     string
	logg    *logger.Logger

	pending chan persistOp
	wg      sync.WaitGroup
	closed  chan struct{}
}

// NewStore builds a cart store persisting under the given owner's key and
// starts its persistence writer.
func NewStore(kvStore kv.Store, owner string, logg *logger.Logger) *Store {
	s := &Store{
		kvStore: kvStore,
		key:     kv.CartKey(owner),
		logg:    logg,
		pending: make(chan persistOp, 1),
		closed:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.writer()
	return s
}

// Initialize hydrates the cart from the key-value store. A missing or
// unreadable blob leaves the current state unchanged; it is never an error.
// Safe to call more than once.
func (s *Store) Initialize(ctx context.Context) {
	raw, err := s.kvStore.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) && s.logg != nil {
			s.logg.Warn(ctx, "cart hydrate failed, starting empty: "+err.Error())
		}
		return
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "saved cart unreadable, ignoring: "+err.Error())
		}
		return
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// AddItem merges the product into the cart. An existing line item keeps its
// recorded price and gains quantity; a new one is appended at the tail.
func (s *Store) AddItem(product Product, quantity int) {
	if quantity < 1 {
		if s.logg != nil {
			s.logg.Warn(context.Background(), "ignoring add with non-positive quantity")
		}
		return
	}

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, LineItem{
			ID:          product.ID,
			Title:       product.Title,
			Price:       product.Price,
			Image:       product.Image,
			Quantity:    quantity,
			Description: product.Description,
			Category:    product.Category,
		})
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.enqueue(persistOp{snapshot: snapshot})
}

// RemoveItem drops the line item with the given id. Absent ids are a no-op.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.enqueue(persistOp{snapshot: snapshot})
}

// UpdateQuantity sets the line item's quantity to an absolute value.
// A quantity of zero or below removes the line item entirely.
func (s *Store) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(id)
		return
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			break
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.enqueue(persistOp{snapshot: snapshot})
}

// Clear empties the cart and deletes the persisted key.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.enqueue(persistOp{remove: true})
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Total sums price times quantity over all line items. No rounding is
// applied at this layer.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TotalItems counts units across all line items.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Close flushes any pending persistence write and stops the writer.
func (s *Store) Close() {
	close(s.closed)
	s.wg.Wait()
}

func (s *Store) snapshotLocked() []LineItem {
	snapshot := make([]LineItem, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

// enqueue replaces any not-yet-written op so the writer only ever persists
// the latest full snapshot. A stale write can therefore never land after a
// newer one.
func (s *Store) enqueue(op persistOp) {
	for {
		select {
		case s.pending <- op:
			return
		default:
			select {
			case <-s.pending:
			default:
			}
		}
	}
}

func (s *Store) writer() {
	defer s.wg.Done()
	for {
		select {
		case op := <-s.pending:
			s.persist(op)
		case <-s.closed:
			// drain the last pending op, if any
			select {
			case op := <-s.pending:
				s.persist(op)
			default:
			}
			return
		}
	}
}

func (s *Store) persist(op persistOp) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if op.remove {
		if err := s.kvStore.Delete(ctx, s.key); err != nil && s.logg != nil {
			s.logg.Error(ctx, "cart delete failed", err)
		}
		return
	}

	blob, err := json.Marshal(op.snapshot)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart serialize failed", err)
		}
		return
	}
	if err := s.kvStore.Set(ctx, s.key, string(blob)); err != nil && s.logg != nil {
		s.logg.Error(ctx, "cart persist failed", err)
	}
}
