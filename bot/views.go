package bot

import (
	"fmt"
	"strings"

	"momo-telegram/models"
	"momo-telegram/services"

	"github.com/shopspring/decimal"
)

const (
	textMenuHeader  = "🥟 Momo Street menu\nPick a section:"
	textMenuDown    = "⏳ Our server is starting up, this can take up to a minute.\nPlease try again shortly."
	textEmptyMenu   = "Nothing here for this filter right now."
	textCartEmpty   = "🛒 Your cart is empty."
	textAskName     = "👤 Please send your name."
	textAskPhone    = "📞 Share your phone number with the button below, or type it."
	textOrderFailed = "❌ We could not place your order. Your cart is kept, tap Retry to send it again."
	textInFlight    = "⏳ Your order is already being sent."
)

// selection is the size and extras a user has picked on an item card.
type selection struct {
	ItemID int64
	Size   string
	Extras map[string]bool
}

// newSelection preselects the first size so the card always shows a price.
func newSelection(item models.MenuItem) *selection {
	s := &selection{ItemID: item.ID, Extras: make(map[string]bool)}
	if len(item.Sizes) > 0 {
		s.Size = item.Sizes[0].Size
	}
	return s
}

// resolve maps the selection onto the item's current options. Labels the
// menu no longer offers are ignored.
func (s *selection) resolve(item models.MenuItem) (*models.SizeOption, []models.ExtraOption) {
	var size *models.SizeOption
	if sz, ok := item.SizeByLabel(s.Size); ok {
		size = &sz
	}
	var extras []models.ExtraOption
	for _, e := range services.AvailableExtras(item, size) {
		if s.Extras[e.Name] {
			extras = append(extras, e)
		}
	}
	return size, extras
}

func rupees(d decimal.Decimal) string {
	return "₹" + d.String()
}

func itemPriceLabel(item models.MenuItem) string {
	switch {
	case len(item.Sizes) > 0:
		lowest := item.Sizes[0].Price
		for _, s := range item.Sizes[1:] {
			if s.Price.LessThan(lowest) {
				lowest = s.Price
			}
		}
		if len(item.Sizes) == 1 {
			return rupees(lowest)
		}
		return "from " + rupees(lowest)
	case item.Price.Valid:
		return rupees(item.Price.Decimal)
	default:
		return "unavailable"
	}
}

func itemCardText(item models.MenuItem, size *models.SizeOption, extras []models.ExtraOption, inCart int) string {
	var b strings.Builder
	b.WriteString(item.Name)
	if services.IsNonVeg(item) {
		b.WriteString(" 🔴")
	} else {
		b.WriteString(" 🟢")
	}
	if item.PizzaSubcategory != "" {
		fmt.Fprintf(&b, "\n%s", item.PizzaSubcategory)
	}
	if item.Extras != "" {
		fmt.Fprintf(&b, "\n%s", item.Extras)
	}
	if !item.Orderable() {
		b.WriteString("\n\nNot available right now.")
		return b.String()
	}
	if price, ok := services.DisplayPrice(item, size, extras); ok {
		fmt.Fprintf(&b, "\n\nPrice: %s", rupees(price))
	}
	if size != nil {
		fmt.Fprintf(&b, "\nSize: %s", size.Size)
	}
	if len(extras) > 0 {
		names := make([]string, len(extras))
		for i, e := range extras {
			names[i] = e.Name
		}
		fmt.Fprintf(&b, "\nExtras: %s", strings.Join(names, ", "))
	}
	if inCart > 0 {
		fmt.Fprintf(&b, "\n\nIn cart: %d", inCart)
	}
	if item.Image != "" {
		fmt.Fprintf(&b, "\n\n%s", item.Image)
	}
	return b.String()
}

func cartText(cart *services.Cart) string {
	if cart == nil || cart.Empty() {
		return textCartEmpty
	}
	var b strings.Builder
	b.WriteString("🛒 Your cart\n")
	for i, l := range cart.Lines {
		fmt.Fprintf(&b, "\n%d. %s — %s", i+1, services.FormatLine(l), rupees(l.Total()))
	}
	fmt.Fprintf(&b, "\n\nTotal: %s", rupees(cart.Total()))
	return b.String()
}

func confirmText(cart *services.Cart, contact models.Contact) string {
	return fmt.Sprintf("%s\n\n👤 %s\n📞 %s\n\nPlace this order?", cartText(cart), contact.Name, contact.Phone)
}

func orderPlacedText(req models.OrderRequest) string {
	return fmt.Sprintf("✅ Order placed!\n\n%s\n\nWe will call %s at %s if anything comes up.", req.Items, req.Name, req.Phone)
}

func orderCardText(o models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Order #%d", o.ID)
	if o.CreatedAt != "" {
		fmt.Fprintf(&b, "\n🕒 %s", services.FormatIST(o.CreatedAt))
	}
	fmt.Fprintf(&b, "\n👤 %s\n📞 %s\n\n%s", o.Name, o.Phone, o.Items)
	return b.String()
}

func orderListText(title string, orders []models.Order) string {
	if len(orders) == 0 {
		return title + "\n\nNo orders."
	}
	cards := make([]string, len(orders))
	for i, o := range orders {
		cards[i] = orderCardText(o)
	}
	return title + "\n\n" + strings.Join(cards, "\n\n")
}

func adminItemLine(it models.MenuItem) string {
	return fmt.Sprintf("#%d %s — %s", it.ID, it.Name, itemPriceLabel(it))
}

func adminMenuText(items []models.MenuItem) string {
	if len(items) == 0 {
		return "The menu is empty. Use /add to create an item."
	}
	var b strings.Builder
	b.WriteString("📋 Menu")
	cats := services.MenuCategories(items)
	for _, it := range items {
		if it.Category == "" {
			cats = append(cats, "")
			break
		}
	}
	for _, cat := range cats {
		if cat == "" {
			b.WriteString("\n\nOther")
		} else {
			fmt.Fprintf(&b, "\n\n%s", cat)
		}
		for _, it := range items {
			if it.Category == cat {
				fmt.Fprintf(&b, "\n  %s", adminItemLine(it))
			}
		}
	}
	return b.String()
}

// splitMessage cuts text at line breaks so each chunk fits a Telegram message.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	var cur strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if cur.Len() > 0 && cur.Len()+len(line)+1 > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		for len(line) > limit {
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
