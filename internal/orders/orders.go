// Package orders records completed checkouts under the purchasing user.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopfolio/storefront/internal/cart"
	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
	"github.com/shopfolio/storefront/pkg/kv"
)

// Item is one purchased line within an order.
type Item struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order is a completed checkout.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	UID       string          `json:"uid"`
	Items     []Item          `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// FromCart builds an order from a cart snapshot and the computed shipping.
func FromCart(uid string, lines []cart.LineItem, subtotal, shipping decimal.Decimal) Order {
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, Item{
			ProductID: line.ID,
			Title:     line.Title,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	return Order{
		ID:        uuid.New(),
		UID:       uid,
		Items:     items,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
		CreatedAt: time.Now().UTC(),
	}
}

// Repository persists orders as a JSON list under the user's key.
type Repository struct {
	kvStore kv.Store
}

func NewRepository(kvStore kv.Store) *Repository {
	return &Repository{kvStore: kvStore}
}

// Record appends the order to the user's recorded orders. At-least-once:
// a retried checkout confirmation may append a duplicate.
func (r *Repository) Record(ctx context.Context, order Order) error {
	if order.UID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order uid is required")
	}

	key := kv.OrdersKey(order.UID)
	existing, err := r.ListByUser(ctx, order.UID)
	if err != nil {
		return err
	}

	existing = append(existing, order)
	blob, err := json.Marshal(existing)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode orders")
	}
	if err := r.kvStore.Set(ctx, key, string(blob)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist orders")
	}
	return nil
}

// ListByUser returns the user's recorded orders, oldest first.
func (r *Repository) ListByUser(ctx context.Context, uid string) ([]Order, error) {
	raw, err := r.kvStore.Get(ctx, kv.OrdersKey(uid))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}

	var out []Order
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode orders")
	}
	return out, nil
}
