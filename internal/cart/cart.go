// internal/cart/cart.go
//
// The cart is an ordered sequence of (product, quantity) lines: at most
// one line per product id, quantities always positive, insertion order
// preserved. Every mutation re-persists the full snapshot and returns an
// Outcome so the view layer decides how to surface the result.

package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/swiftcart/internal/catalog"
	"github.com/example/swiftcart/internal/storage"
)

// Item is one cart line.
type Item struct {
	Product  catalog.Product
	Quantity int
}

// LineTotal is price times quantity for this line.
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Store persists the cart sequence between runs.
type Store interface {
	Save(records []storage.CartRecord) error
	Load() ([]storage.CartRecord, error)
}

// Logger receives persistence problems the cart swallows.
type Logger interface {
	Warn(format string, args ...any)
}

// Outcome reports what a mutation did. Message is the user-facing
// transient notice text; an empty message means nothing to announce.
type Outcome struct {
	Changed bool
	Message string
}

// Cart owns the in-memory sequence and its persistence side effect.
type Cart struct {
	items []Item
	store Store
	log   Logger
}

// New builds an empty cart backed by the given store.
func New(store Store, log Logger) *Cart {
	return &Cart{store: store, log: log}
}

// ReadSnapshot loads the persisted sequence without touching cart state,
// so it is safe to call from a background goroutine. A malformed or
// unreadable blob degrades to an empty snapshot; the failure lands in the
// logbook, never in front of the user.
func (c *Cart) ReadSnapshot() []Item {
	if c.store == nil {
		return nil
	}
	records, err := c.store.Load()
	if err != nil {
		c.warn("cart restore discarded: %v", err)
		return nil
	}
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		if rec.Quantity < 1 || rec.Product.ID == 0 {
			continue
		}
		items = append(items, Item{Product: rec.Product, Quantity: rec.Quantity})
	}
	return items
}

// Restore installs a previously read snapshot. No persist side effect;
// the snapshot is already the stored state.
func (c *Cart) Restore(items []Item) {
	c.items = items
}

// Load restores the persisted sequence in one step.
func (c *Cart) Load() {
	c.Restore(c.ReadSnapshot())
}

// Add puts one unit of the product in the cart: a new line for an unseen
// id, one more unit on the existing line otherwise.
func (c *Cart) Add(p catalog.Product) Outcome {
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity++
			c.persist()
			return Outcome{Changed: true, Message: fmt.Sprintf("Added another %s to cart", p.Title)}
		}
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
	c.persist()
	return Outcome{Changed: true, Message: fmt.Sprintf("%s added to cart", p.Title)}
}

// Remove deletes the line for the given product id. Removing an absent id
// changes nothing and announces nothing.
func (c *Cart) Remove(productID int) Outcome {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			title := c.items[i].Product.Title
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persist()
			return Outcome{Changed: true, Message: fmt.Sprintf("%s removed from cart", title)}
		}
	}
	return Outcome{}
}

// SetQuantity sets the line's quantity in place. A quantity of zero or
// below removes the line exactly like Remove. An unknown id is a silent
// no-op.
func (c *Cart) SetQuantity(productID, quantity int) Outcome {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			c.persist()
			return Outcome{Changed: true}
		}
	}
	return Outcome{}
}

// Clear empties the sequence.
func (c *Cart) Clear() Outcome {
	c.items = nil
	c.persist()
	return Outcome{Changed: true, Message: "Cart cleared"}
}

// Total is the sum of price times quantity across all lines, computed on
// demand from the in-memory state.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

// ItemCount is the sum of quantities, not the number of distinct lines.
// It drives the header badge.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy of the sequence for rendering.
func (c *Cart) Items() []Item {
	if len(c.items) == 0 {
		return nil
	}
	dup := make([]Item, len(c.items))
	copy(dup, c.items)
	return dup
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.items) == 0 }

func (c *Cart) persist() {
	if c.store == nil {
		return
	}
	records := make([]storage.CartRecord, len(c.items))
	for i, item := range c.items {
		records[i] = storage.CartRecord{Product: item.Product, Quantity: item.Quantity}
	}
	if err := c.store.Save(records); err != nil {
		c.warn("cart persist failed: %v", err)
	}
}

func (c *Cart) warn(format string, args ...any) {
	if c.log == nil {
		return
	}
	c.log.Warn(format, args...)
}
