package services

import (
	"testing"

	"momo-telegram/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNonVeg(t *testing.T) {
	tests := []struct {
		name, extras string
		want         bool
	}{
		{"Chicken Roll", "", true},
		{"Paneer Roll", "", false},
		{"Aloo Paratha", "", false},
		{"Egg Noodles", "", true},
		{"Mushroom Delight", "", false},
		{"Omelette Roll", "", true},
		{"Seekh Kebab Roll", "", true},
		{"Bucket (1 Chk Drumstick+3 Chk Wings)", "", true},
		{"Paratha (Non- Veg Combo)", "with chicken curry", true},
		{"Veg Spring Roll (5pcs)", "", false},
		{"Hara Bhara Kebab(5 pcs)", "", true},
		{"Burger Combo", "fries + coke", false},
	}
	for _, tt := range tests {
		item := models.MenuItem{Name: tt.name, Extras: tt.extras}
		assert.Equal(t, tt.want, IsNonVeg(item), "IsNonVeg(%q, %q)", tt.name, tt.extras)
		assert.Equal(t, !tt.want, IsVeg(item), "IsVeg(%q, %q)", tt.name, tt.extras)
	}
}

func item(id int64, name string) models.MenuItem {
	return flatItem(id, name, 100)
}

func sampleMenu() []models.MenuGroup {
	return []models.MenuGroup{
		{Section: "Momos", Kind: models.GroupFlat, Items: []models.MenuItem{
			item(1, "Veg Steam Momo"), item(2, "Chicken Fried Momo"),
		}},
		{Section: "Pizza", Kind: models.GroupNested, SubGroups: []models.PizzaSubGroup{
			{Name: "Classic", Items: []models.MenuItem{item(10, "Margherita"), item(11, "Chilli Chicken Pizza")}},
			{Name: "Specialty", Items: []models.MenuItem{item(12, "Paneer Makhni Pizza")}},
		}},
		{Section: "Rolls", Kind: models.GroupFlat, Items: []models.MenuItem{
			item(20, "Chicken Tikka Roll"), item(21, "Egg Roll"),
		}},
		{Section: "Drinks", Kind: models.GroupFlat, Items: []models.MenuItem{
			item(30, "Cold Coffee"),
		}},
	}
}

func sectionNames(sections []models.Section) []string {
	var names []string
	for _, s := range sections {
		names = append(names, s.Name)
	}
	return names
}

func itemIDs(items []models.MenuItem) []int64 {
	var ids []int64
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestNormalizeMenu_PizzaFlattening(t *testing.T) {
	sections := NormalizeMenu(sampleMenu(), models.FilterAll)
	require.Len(t, sections, 4)

	p := sections[1]
	assert.True(t, p.Pizza)
	assert.Equal(t, []int64{10, 11, 12}, itemIDs(p.Items))
	assert.Equal(t, "Classic", p.Items[0].PizzaSubcategory)
	assert.Equal(t, "Classic", p.Items[1].PizzaSubcategory)
	assert.Equal(t, "Specialty", p.Items[2].PizzaSubcategory)
}

func TestNormalizeMenu_EmptyPizzaDropped(t *testing.T) {
	groups := []models.MenuGroup{
		{Section: "pizza", Kind: models.GroupNested, SubGroups: []models.PizzaSubGroup{{Name: "Classic"}}},
		{Section: "PIZZA", Kind: models.GroupFlat},
		{Section: "Drinks", Kind: models.GroupFlat, Items: []models.MenuItem{item(30, "Lemonade")}},
	}
	sections := NormalizeMenu(groups, models.FilterAll)
	assert.Equal(t, []string{"Drinks"}, sectionNames(sections))
}

func TestNormalizeMenu_Filters(t *testing.T) {
	veg := NormalizeMenu(sampleMenu(), models.FilterVeg)
	assert.Equal(t, []string{"Momos", "Pizza", "Drinks"}, sectionNames(veg))
	assert.Equal(t, []int64{1}, itemIDs(veg[0].Items))
	// pizza is never filtered
	assert.Equal(t, []int64{10, 11, 12}, itemIDs(veg[1].Items))

	nonVeg := NormalizeMenu(sampleMenu(), models.FilterNonVeg)
	assert.Equal(t, []string{"Momos", "Pizza", "Rolls"}, sectionNames(nonVeg))
	assert.Equal(t, []int64{2}, itemIDs(nonVeg[0].Items))
	assert.Equal(t, []int64{20, 21}, itemIDs(nonVeg[2].Items))
}

func TestNormalizeMenu_FromPayload(t *testing.T) {
	payload := `[
		{"category": "Maggi", "items": [{"id": 1, "name": "Egg Maggi", "price": 70}, {"id": 2, "name": "Veg Maggi", "price": 60}]},
		{"subcategory": "Pizza", "items": [
			{"subcategory": "Classic", "items": [{"id": 5, "name": "A", "sizes": [{"size": "Medium", "price": 300}]}, {"id": 6, "name": "B", "sizes": [{"size": "Medium", "price": 320}]}]},
			{"subcategory": "Specialty", "items": [{"id": 7, "name": "C", "sizes": [{"size": "Medium", "price": 350}]}]}
		]}
	]`
	groups, err := models.ParseMenu([]byte(payload))
	require.NoError(t, err)

	sections := NormalizeMenu(groups, models.FilterVeg)
	require.Len(t, sections, 2)
	assert.Equal(t, "Maggi", sections[0].Name)
	assert.Equal(t, []int64{2}, itemIDs(sections[0].Items))
	assert.Equal(t, []int64{5, 6, 7}, itemIDs(sections[1].Items))
	assert.Equal(t, "Specialty", sections[1].Items[2].PizzaSubcategory)
}

func TestNormalizeMenu_NestedNonPizzaIsFiltered(t *testing.T) {
	groups := []models.MenuGroup{
		{Section: "Combos", Kind: models.GroupNested, SubGroups: []models.PizzaSubGroup{
			{Name: "Veg", Items: []models.MenuItem{item(40, "Noodle Combo (Veg)")}},
			{Name: "Non-Veg", Items: []models.MenuItem{item(41, "Burger Combo (Non-Veg)")}},
		}},
	}
	sections := NormalizeMenu(groups, models.FilterVeg)
	require.Len(t, sections, 1)
	assert.False(t, sections[0].Pizza)
	assert.Equal(t, []int64{40}, itemIDs(sections[0].Items))
}

func TestFindItem(t *testing.T) {
	sections := NormalizeMenu(sampleMenu(), models.FilterAll)
	it, ok := FindItem(sections, 12)
	require.True(t, ok)
	assert.Equal(t, "Paneer Makhni Pizza", it.Name)
	assert.Equal(t, "Specialty", it.PizzaSubcategory)

	_, ok = FindItem(sections, 999)
	assert.False(t, ok)
}

func TestParseExtraOptions(t *testing.T) {
	opts := ParseExtraOptions("(Add Cheese Rs 30)")
	require.Len(t, opts, 1)
	assert.Equal(t, "Add Cheese", opts[0].Name)
	assert.Equal(t, "30", opts[0].Price.String())

	opts = ParseExtraOptions("Cheese Burst: Regular - Rs. 50, Medium - Rs. 80")
	require.Len(t, opts, 2)
	assert.Equal(t, "Cheese Burst (Regular)", opts[0].Name)
	assert.Equal(t, "50", opts[0].Price.String())
	assert.Equal(t, "Cheese Burst (Medium)", opts[1].Name)
	assert.Equal(t, "80", opts[1].Price.String())

	assert.Empty(t, ParseExtraOptions(""))
	assert.Empty(t, ParseExtraOptions("served with mayo"))
	assert.Empty(t, ParseExtraOptions("add cheese available"))
}

func TestAvailableExtras_PrefersStructured(t *testing.T) {
	it := models.MenuItem{Extras: "(Add Cheese Rs 30)", ExtraOptions: []models.ExtraOption{jalapeno}}
	assert.Equal(t, []models.ExtraOption{jalapeno}, AvailableExtras(it, nil))

	it.ExtraOptions = nil
	assert.Equal(t, "Add Cheese", AvailableExtras(it, nil)[0].Name)
}

func TestAvailableExtras_FollowsSize(t *testing.T) {
	regular := models.SizeOption{Size: "Regular", Price: dec(200)}
	med := models.SizeOption{Size: "Medium", Price: dec(300)}
	it := models.MenuItem{
		Name:   "Farmhouse",
		Extras: "Cheese Burst: Regular - Rs. 50, Medium - Rs. 80",
		Sizes:  []models.SizeOption{regular, med},
	}
	names := func(extras []models.ExtraOption) []string {
		var out []string
		for _, e := range extras {
			out = append(out, e.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Cheese Burst (Regular)", "Cheese Burst (Medium)"}, names(AvailableExtras(it, nil)))
	assert.Equal(t, []string{"Cheese Burst (Regular)"}, names(AvailableExtras(it, &regular)))
	assert.Equal(t, []string{"Cheese Burst (Medium)"}, names(AvailableExtras(it, &med)))

	it.ExtraOptions = []models.ExtraOption{addCheese, {Name: "Extra Cheese (MEDIUM)", Price: dec(60)}}
	assert.Equal(t, []string{"Add Cheese"}, names(AvailableExtras(it, &regular)))
	assert.Equal(t, []string{"Add Cheese", "Extra Cheese (MEDIUM)"}, names(AvailableExtras(it, &med)))
}

func TestDisplayPrice(t *testing.T) {
	p, ok := DisplayPrice(pizza(), nil, nil)
	assert.False(t, ok)
	assert.True(t, p.IsZero())

	p, ok = DisplayPrice(pizza(), large, []models.ExtraOption{addCheese})
	require.True(t, ok)
	assert.Equal(t, "430", p.String())

	p, ok = DisplayPrice(flatItem(1, "Fries", 90), nil, []models.ExtraOption{addCheese, jalapeno})
	require.True(t, ok)
	assert.Equal(t, "140", p.String())

	_, ok = DisplayPrice(models.MenuItem{Name: "Ask staff"}, nil, nil)
	assert.False(t, ok)
}
