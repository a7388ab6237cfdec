package models

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend expects numeric prices back from POST /admin/menu.
	decimal.MarshalJSONWithoutQuotes = true
}

type SizeOption struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

type ExtraOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type MenuItem struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Extras           string              `json:"extras,omitempty"`
	Price            decimal.NullDecimal `json:"price"`
	Image            string              `json:"image,omitempty"`
	Sizes            []SizeOption        `json:"sizes,omitempty"`
	ExtraOptions     []ExtraOption       `json:"extraOptions,omitempty"`
	Category         string              `json:"category,omitempty"`
	PizzaSubcategory string              `json:"pizzaSubcategory,omitempty"`
}

// Orderable reports whether the item can go into a cart: it needs a flat price or at least one size.
func (m MenuItem) Orderable() bool {
	return m.Price.Valid || len(m.Sizes) > 0
}

// SizeByLabel returns the item's size with the given label.
func (m MenuItem) SizeByLabel(label string) (SizeOption, bool) {
	for _, s := range m.Sizes {
		if s.Size == label {
			return s, true
		}
	}
	return SizeOption{}, false
}

type GroupKind int

const (
	GroupFlat GroupKind = iota
	GroupNested
)

type PizzaSubGroup struct {
	Name  string
	Items []MenuItem
}

// MenuGroup is one entry of GET /menu. Kind is decided once while decoding.
type MenuGroup struct {
	Section   string
	Kind      GroupKind
	Items     []MenuItem      // GroupFlat
	SubGroups []PizzaSubGroup // GroupNested
}

type rawGroup struct {
	Subcategory *string           `json:"subcategory"`
	Category    *string           `json:"category"`
	Items       []json.RawMessage `json:"items"`
}

func (r rawGroup) name() string {
	if r.Subcategory != nil {
		return *r.Subcategory
	}
	if r.Category != nil {
		return *r.Category
	}
	return ""
}

// UnmarshalJSON never fails on a bad item or sub-group; those are skipped
// and logged so the rest of the menu still renders.
func (g *MenuGroup) UnmarshalJSON(data []byte) error {
	var raw rawGroup
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Section = raw.name()
	g.Items, g.SubGroups = nil, nil

	if isNested(raw.Items) {
		g.Kind = GroupNested
		for i, el := range raw.Items {
			var sub rawGroup
			if err := json.Unmarshal(el, &sub); err != nil {
				log.Printf("menu: group %q: skip sub-group %d: %v", g.Section, i, err)
				continue
			}
			g.SubGroups = append(g.SubGroups, PizzaSubGroup{Name: sub.name(), Items: decodeItems(g.Section, sub.Items)})
		}
		return nil
	}

	g.Kind = GroupFlat
	g.Items = decodeItems(g.Section, raw.Items)
	return nil
}

// isNested reports whether every element carries both a group name and an items list.
func isNested(elems []json.RawMessage) bool {
	if len(elems) == 0 {
		return false
	}
	for _, el := range elems {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(el, &keys); err != nil {
			return false
		}
		_, hasItems := keys["items"]
		_, hasSub := keys["subcategory"]
		_, hasCat := keys["category"]
		if !hasItems || !(hasSub || hasCat) {
			return false
		}
	}
	return true
}

func decodeItems(group string, elems []json.RawMessage) []MenuItem {
	items := make([]MenuItem, 0, len(elems))
	for i, el := range elems {
		it, err := decodeItem(el)
		if err != nil {
			log.Printf("menu: group %q: skip item %d: %v", group, i, err)
			continue
		}
		items = append(items, it)
	}
	return items
}

// decodeItem requires a numeric id. Any other field with the wrong type
// falls back to its zero value, so a price of "" becomes no price.
func decodeItem(el json.RawMessage) (MenuItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(el, &fields); err != nil {
		return MenuItem{}, err
	}
	var id int64
	if err := json.Unmarshal(fields["id"], &id); err != nil {
		return MenuItem{}, fmt.Errorf("id: %w", err)
	}

	var it MenuItem
	if err := json.Unmarshal(el, &it); err == nil {
		return it, nil
	}

	it = MenuItem{ID: id}
	optionalField(fields, "name", &it.Name)
	optionalField(fields, "extras", &it.Extras)
	if err := json.Unmarshal(fields["price"], &it.Price); err != nil {
		it.Price = decimal.NullDecimal{}
	}
	optionalField(fields, "image", &it.Image)
	optionalField(fields, "category", &it.Category)
	optionalField(fields, "pizzaSubcategory", &it.PizzaSubcategory)
	it.Sizes = decodeList[SizeOption](fields["sizes"])
	it.ExtraOptions = decodeList[ExtraOption](fields["extraOptions"])
	return it, nil
}

func optionalField(fields map[string]json.RawMessage, key string, dst any) {
	if v, ok := fields[key]; ok {
		_ = json.Unmarshal(v, dst)
	}
}

// decodeList keeps the elements that decode and drops the rest.
func decodeList[T any](data json.RawMessage) []T {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}
	var out []T
	for _, el := range elems {
		var v T
		if err := json.Unmarshal(el, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// ParseMenu decodes a GET /menu payload. Only a payload that is not a JSON
// array is an error; unreadable groups are skipped.
func ParseMenu(data []byte) ([]MenuGroup, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	groups := make([]MenuGroup, 0, len(elems))
	for i, el := range elems {
		var g MenuGroup
		if err := json.Unmarshal(el, &g); err != nil {
			log.Printf("menu: skip group %d: %v", i, err)
			continue
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Section is a normalized, render-ready menu section. Index is the
// position of its group in the backend menu and does not shift when other
// sections are filtered out.
type Section struct {
	Index int
	Name  string
	Pizza bool
	Items []MenuItem
}

type VegFilter string

const (
	FilterAll    VegFilter = "all"
	FilterVeg    VegFilter = "veg"
	FilterNonVeg VegFilter = "non-veg"
)

// ParseVegFilter falls back to FilterAll for anything unknown.
func ParseVegFilter(s string) VegFilter {
	switch VegFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterVeg:
		return FilterVeg
	case FilterNonVeg:
		return FilterNonVeg
	default:
		return FilterAll
	}
}
