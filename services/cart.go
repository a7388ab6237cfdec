package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"momo-telegram/db"
	"momo-telegram/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrNotOrderable = errors.New("item has neither a price nor sizes")
	ErrSizeRequired = errors.New("a size must be selected for this item")
	ErrUnknownSize  = errors.New("size is not offered for this item")
)

// Cart is an ordered list of lines. Lines keep insertion order.
type Cart struct {
	Lines []models.CartLine `json:"lines"`
}

type lineKey struct {
	itemID  int64
	hasSize bool
	size    string
	extras  string
}

// extrasKey is order independent: the same add-ons picked in any order give the same key.
func extrasKey(extras []models.ExtraOption) string {
	parts := make([]string, len(extras))
	for i, e := range extras {
		parts[i] = e.Name + "\x1f" + e.Price.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x1e")
}

func keyFor(itemID int64, size *models.SizeOption, extras []models.ExtraOption) lineKey {
	k := lineKey{itemID: itemID, extras: extrasKey(extras)}
	if size != nil {
		k.hasSize = true
		k.size = size.Size
	}
	return k
}

func (c *Cart) indexOf(k lineKey) int {
	for i, l := range c.Lines {
		if keyFor(l.ItemID, l.Size, l.Extras) == k {
			return i
		}
	}
	return -1
}

// AddLine adds one unit of the configuration, merging with an existing line when the identity matches.
func (c *Cart) AddLine(item models.MenuItem, size *models.SizeOption, extras []models.ExtraOption) error {
	if !item.Orderable() {
		return ErrNotOrderable
	}
	var chosen *models.SizeOption
	if len(item.Sizes) > 0 {
		if size == nil {
			return ErrSizeRequired
		}
		s, ok := item.SizeByLabel(size.Size)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSize, size.Size)
		}
		chosen = &s
	} else if size != nil {
		return fmt.Errorf("%w: %q", ErrUnknownSize, size.Size)
	}

	if i := c.indexOf(keyFor(item.ID, chosen, extras)); i >= 0 {
		c.Lines[i].Quantity++
		return nil
	}

	unit, _ := DisplayPrice(item, chosen, extras)
	c.Lines = append(c.Lines, models.CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		Size:      chosen,
		Extras:    append([]models.ExtraOption(nil), extras...),
		UnitPrice: unit,
		Quantity:  1,
	})
	return nil
}

// RemoveOneUnit decrements the matching line and drops it once it would reach zero.
func (c *Cart) RemoveOneUnit(item models.MenuItem, size *models.SizeOption, extras []models.ExtraOption) {
	i := c.indexOf(keyFor(item.ID, size, extras))
	if i < 0 {
		return
	}
	if c.Lines[i].Quantity > 1 {
		c.Lines[i].Quantity--
		return
	}
	c.RemoveLine(i)
}

func (c *Cart) RemoveLine(index int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
}

// SetQuantity never goes below 1; use RemoveLine to drop a line.
func (c *Cart) SetQuantity(index, qty int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	if qty < 1 {
		qty = 1
	}
	c.Lines[index].Quantity = qty
}

// Subtract removes the units of ordered from c, line by line. Lines or
// units added since ordered was taken stay in the cart.
func (c *Cart) Subtract(ordered *Cart) {
	if ordered == nil {
		return
	}
	for _, o := range ordered.Lines {
		i := c.indexOf(keyFor(o.ItemID, o.Size, o.Extras))
		if i < 0 {
			continue
		}
		if c.Lines[i].Quantity > o.Quantity {
			c.Lines[i].Quantity -= o.Quantity
			continue
		}
		c.RemoveLine(i)
	}
}

func (c *Cart) QuantityFor(item models.MenuItem, size *models.SizeOption, extras []models.ExtraOption) int {
	if i := c.indexOf(keyFor(item.ID, size, extras)); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// FormatLine renders "Name (Size) [Extra +₹30, ...] x2".
func FormatLine(l models.CartLine) string {
	var b strings.Builder
	b.WriteString(l.Name)
	if l.Size != nil {
		fmt.Fprintf(&b, " (%s)", l.Size.Size)
	}
	if len(l.Extras) > 0 {
		parts := make([]string, len(l.Extras))
		for i, e := range l.Extras {
			parts[i] = fmt.Sprintf("%s +₹%s", e.Name, e.Price.String())
		}
		b.WriteString(" [" + strings.Join(parts, ", ") + "]")
	}
	fmt.Fprintf(&b, " x%d", l.Quantity)
	return b.String()
}

// Summary is the order text posted to the backend.
func (c *Cart) Summary() string {
	parts := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		parts[i] = FormatLine(l)
	}
	return strings.Join(parts, ", ")
}

func GetCart(ctx context.Context, userID int64) (*Cart, error) {
	var linesJSON []byte
	err := db.Pool.QueryRow(ctx, `SELECT lines FROM carts WHERE user_id = $1`, userID).Scan(&linesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart := &Cart{}
	if len(linesJSON) > 0 {
		if err := json.Unmarshal(linesJSON, &cart.Lines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart lines: %w", err)
		}
	}
	return cart, nil
}

func SaveCart(ctx context.Context, userID int64, cart *Cart) error {
	if cart.Empty() {
		return DeleteCart(ctx, userID)
	}
	linesJSON, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart lines: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO carts (user_id, lines, items_total, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET
			lines = $2,
			items_total = $3,
			updated_at = now()`,
		userID, linesJSON, cart.Total().String(),
	)
	return err
}

func DeleteCart(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}
