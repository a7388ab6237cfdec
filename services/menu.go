package services

import (
	"regexp"
	"strings"

	"momo-telegram/models"

	"github.com/shopspring/decimal"
)

var nonVegKeywords = []string{
	"chicken", "egg", "drumstick", "wings", "non-veg", "chk", "fish", "mutton",
	"omelette", "omelet", "seekh", "kebab", "kebabs", "kabab", "kababs",
}

// A roll is veg unless one of these appears next to it.
var nonVegRollKeywords = []string{"chicken", "egg", "omelette", "seekh", "kebab", "mutton", "fish"}

// IsNonVeg classifies an item by keywords in its name and extras text.
func IsNonVeg(item models.MenuItem) bool {
	text := strings.ToLower(item.Name + " " + item.Extras)
	if containsAny(text, nonVegKeywords) {
		return true
	}
	if strings.Contains(text, "roll") {
		return containsAny(text, nonVegRollKeywords)
	}
	return false
}

func IsVeg(item models.MenuItem) bool {
	return !IsNonVeg(item)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func matchesFilter(item models.MenuItem, filter models.VegFilter) bool {
	switch filter {
	case models.FilterVeg:
		return IsVeg(item)
	case models.FilterNonVeg:
		return IsNonVeg(item)
	default:
		return true
	}
}

func isPizzaSection(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "pizza")
}

// NormalizeMenu turns backend groups into ordered render-ready sections.
// Pizza sections are flattened and never filtered; every other section is
// filtered and dropped when nothing survives.
func NormalizeMenu(groups []models.MenuGroup, filter models.VegFilter) []models.Section {
	var out []models.Section
	for i, g := range groups {
		items := flatten(g)
		if isPizzaSection(g.Section) && g.Kind == models.GroupNested {
			if len(items) == 0 {
				continue
			}
			out = append(out, models.Section{Index: i, Name: g.Section, Pizza: true, Items: items})
			continue
		}

		kept := make([]models.MenuItem, 0, len(items))
		for _, it := range items {
			if matchesFilter(it, filter) {
				kept = append(kept, it)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, models.Section{Index: i, Name: g.Section, Pizza: isPizzaSection(g.Section), Items: kept})
	}
	return out
}

func flatten(g models.MenuGroup) []models.MenuItem {
	if g.Kind != models.GroupNested {
		return g.Items
	}
	var items []models.MenuItem
	for _, sub := range g.SubGroups {
		for _, it := range sub.Items {
			it.PizzaSubcategory = sub.Name
			items = append(items, it)
		}
	}
	return items
}

// SectionByIndex finds the section built from the index-th backend group.
func SectionByIndex(sections []models.Section, index int) (models.Section, bool) {
	for _, s := range sections {
		if s.Index == index {
			return s, true
		}
	}
	return models.Section{}, false
}

// FindItem returns the first item with the given id.
func FindItem(sections []models.Section, id int64) (models.MenuItem, bool) {
	for _, s := range sections {
		for _, it := range s.Items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return models.MenuItem{}, false
}

var (
	cheeseBurstRe    = regexp.MustCompile(`(?i)cheese burst`)
	burstRegularRe   = regexp.MustCompile(`(?i)Regular\s*-\s*Rs\.\s*(\d+)`)
	burstMediumRe    = regexp.MustCompile(`(?i)Medium\s*-\s*Rs\.\s*(\d+)`)
	addCheeseRe      = regexp.MustCompile(`(?i)add cheese`)
	addCheesePriceRe = regexp.MustCompile(`(?i)Add Cheese\s*Rs\s*(\d+)`)
)

// ParseExtraOptions reads add-ons out of free-text extras such as "(Add Cheese Rs 30)".
func ParseExtraOptions(extras string) []models.ExtraOption {
	if extras == "" {
		return nil
	}
	var opts []models.ExtraOption
	switch {
	case cheeseBurstRe.MatchString(extras):
		if m := burstRegularRe.FindStringSubmatch(extras); m != nil {
			opts = append(opts, models.ExtraOption{Name: "Cheese Burst (Regular)", Price: decimal.RequireFromString(m[1])})
		}
		if m := burstMediumRe.FindStringSubmatch(extras); m != nil {
			opts = append(opts, models.ExtraOption{Name: "Cheese Burst (Medium)", Price: decimal.RequireFromString(m[1])})
		}
	case addCheeseRe.MatchString(extras):
		if m := addCheesePriceRe.FindStringSubmatch(extras); m != nil {
			opts = append(opts, models.ExtraOption{Name: "Add Cheese", Price: decimal.RequireFromString(m[1])})
		}
	}
	return opts
}

// AvailableExtras prefers structured extraOptions over parsing the extras text.
// Once a size is picked, extras named after one of the item's other sizes
// are hidden; extras that name no size stay available.
func AvailableExtras(item models.MenuItem, size *models.SizeOption) []models.ExtraOption {
	all := item.ExtraOptions
	if len(all) == 0 {
		all = ParseExtraOptions(item.Extras)
	}
	if size == nil {
		return all
	}
	want := strings.ToLower(size.Size)
	var out []models.ExtraOption
	for _, e := range all {
		name := strings.ToLower(e.Name)
		if strings.Contains(name, want) || !namesSize(name, item.Sizes) {
			out = append(out, e)
		}
	}
	return out
}

func namesSize(name string, sizes []models.SizeOption) bool {
	for _, s := range sizes {
		if s.Size != "" && strings.Contains(name, strings.ToLower(s.Size)) {
			return true
		}
	}
	return false
}

// DisplayPrice is the price shown for the current selection. ok is false
// when nothing can be shown yet (sized item without a size, or no price).
func DisplayPrice(item models.MenuItem, size *models.SizeOption, extras []models.ExtraOption) (decimal.Decimal, bool) {
	var base decimal.Decimal
	switch {
	case len(item.Sizes) > 0:
		if size == nil {
			return decimal.Zero, false
		}
		base = size.Price
	case item.Price.Valid:
		base = item.Price.Decimal
	default:
		return decimal.Zero, false
	}
	return base.Add(sumExtras(extras)), true
}

func sumExtras(extras []models.ExtraOption) decimal.Decimal {
	total := decimal.Zero
	for _, e := range extras {
		total = total.Add(e.Price)
	}
	return total
}
