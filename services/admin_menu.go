package services

import (
	"errors"
	"fmt"
	"strings"

	"momo-telegram/models"

	"github.com/shopspring/decimal"
)

var (
	ErrIncompleteItem = errors.New("name, category and a price or sizes are required")
	ErrItemNotFound   = errors.New("menu item not found")
)

// MenuCategories lists categories in first-seen order.
func MenuCategories(items []models.MenuItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}

func ValidateMenuItem(it models.MenuItem) error {
	if strings.TrimSpace(it.Name) == "" || strings.TrimSpace(it.Category) == "" || !it.Orderable() {
		return ErrIncompleteItem
	}
	return nil
}

// InsertMenuItem assigns the next id and places the item before the
// position-th existing item of its category. Past the end it goes after the
// category's last item; a new category goes at the end of the menu.
func InsertMenuItem(items []models.MenuItem, it models.MenuItem, position int) ([]models.MenuItem, models.MenuItem, error) {
	if err := ValidateMenuItem(it); err != nil {
		return items, it, err
	}
	var maxID int64
	for _, m := range items {
		if m.ID > maxID {
			maxID = m.ID
		}
	}
	it.ID = maxID + 1

	idx := len(items)
	seen := 0
	for i, m := range items {
		if m.Category != it.Category {
			continue
		}
		if seen == position {
			idx = i
			break
		}
		seen++
		idx = i + 1
	}

	out := make([]models.MenuItem, 0, len(items)+1)
	out = append(out, items[:idx]...)
	out = append(out, it)
	out = append(out, items[idx:]...)
	return out, it, nil
}

func RemoveMenuItem(items []models.MenuItem, id int64) ([]models.MenuItem, error) {
	out := make([]models.MenuItem, 0, len(items))
	found := false
	for _, m := range items {
		if m.ID == id {
			found = true
			continue
		}
		out = append(out, m)
	}
	if !found {
		return items, ErrItemNotFound
	}
	return out, nil
}

// UpdateMenuItem applies fn to the item with the given id. The id itself cannot change.
func UpdateMenuItem(items []models.MenuItem, id int64, fn func(*models.MenuItem)) ([]models.MenuItem, error) {
	out := append([]models.MenuItem(nil), items...)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		fn(&out[i])
		out[i].ID = id
		return out, nil
	}
	return items, ErrItemNotFound
}

// EditMenuItem replaces the editable fields of the item with the given id
// (name, category, price, sizes, extras text and extra options). The id and
// image are kept, and the result must still pass ValidateMenuItem.
func EditMenuItem(items []models.MenuItem, id int64, edited models.MenuItem) ([]models.MenuItem, models.MenuItem, error) {
	var result models.MenuItem
	out, err := UpdateMenuItem(items, id, func(it *models.MenuItem) {
		it.Name = strings.TrimSpace(edited.Name)
		it.Category = strings.TrimSpace(edited.Category)
		it.Price = edited.Price
		it.Sizes = edited.Sizes
		it.Extras = edited.Extras
		it.ExtraOptions = edited.ExtraOptions
		result = *it
	})
	if err != nil {
		return items, edited, err
	}
	if err := ValidateMenuItem(result); err != nil {
		return items, result, err
	}
	return out, result, nil
}

type labelPrice struct {
	label string
	price decimal.Decimal
}

func parsePairs(s string) ([]labelPrice, error) {
	var out []labelPrice
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, price, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%q: want Label=Price", part)
		}
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("%q: empty label", part)
		}
		p, err := ParsePrice(price)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", part, err)
		}
		out = append(out, labelPrice{label: label, price: p})
	}
	if len(out) == 0 {
		return nil, errors.New("nothing given")
	}
	return out, nil
}

// ParseSizes reads "Small=200, Medium=300" into size options.
func ParseSizes(s string) ([]models.SizeOption, error) {
	pairs, err := parsePairs(s)
	if err != nil {
		return nil, fmt.Errorf("sizes: %w", err)
	}
	sizes := make([]models.SizeOption, len(pairs))
	for i, p := range pairs {
		sizes[i] = models.SizeOption{Size: p.label, Price: p.price}
	}
	return sizes, nil
}

// ParseExtraList reads "Cheese=30, Mayo=20" into extra options.
func ParseExtraList(s string) ([]models.ExtraOption, error) {
	pairs, err := parsePairs(s)
	if err != nil {
		return nil, fmt.Errorf("extras: %w", err)
	}
	extras := make([]models.ExtraOption, len(pairs))
	for i, p := range pairs {
		extras[i] = models.ExtraOption{Name: p.label, Price: p.price}
	}
	return extras, nil
}

// ParsePrice accepts "120", "₹120" or "Rs 120"; negative values are rejected.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rs."), "Rs")
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	if p.IsNegative() {
		return decimal.Zero, errors.New("price must be >= 0")
	}
	return p, nil
}
