package bot

import (
	"fmt"

	"momo-telegram/models"
	"momo-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func checked(on bool, label string) string {
	if on {
		return "✅ " + label
	}
	return label
}

func cartButton(count int) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🛒 Cart (%d)", count), cb(cbCart))
}

func filterRow(current models.VegFilter) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(checked(current == models.FilterAll, "All"), cb(cbFilter, models.FilterAll)),
		tgbotapi.NewInlineKeyboardButtonData(checked(current == models.FilterVeg, "🟢 Veg"), cb(cbFilter, models.FilterVeg)),
		tgbotapi.NewInlineKeyboardButtonData(checked(current == models.FilterNonVeg, "🔴 Non-veg"), cb(cbFilter, models.FilterNonVeg)),
	)
}

func menuKeyboard(sections []models.Section, filter models.VegFilter, cartCount int) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{filterRow(filter)}
	for _, s := range sections {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s (%d)", s.Name, len(s.Items)), cb(cbSection, s.Index)),
		))
	}
	if cartCount > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(cartButton(cartCount)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func menuDownKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Try again", cb(cbMenu))),
	)
}

func sectionKeyboard(section models.Section, cartCount int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range section.Items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s — %s", it.Name, itemPriceLabel(it)), cb(cbItem, it.ID)),
		))
	}
	nav := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Menu", cb(cbMenu)))
	if cartCount > 0 {
		nav = append(nav, cartButton(cartCount))
	}
	rows = append(rows, nav)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// itemKeyboard shows size and extra toggles, then add/remove for the current
// selection. Unorderable items only get navigation.
func itemKeyboard(item models.MenuItem, sel *selection, inCart int, backSection int, cartCount int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if item.Orderable() {
		if len(item.Sizes) > 0 {
			var row []tgbotapi.InlineKeyboardButton
			for i, s := range item.Sizes {
				label := fmt.Sprintf("%s %s", s.Size, rupees(s.Price))
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(checked(sel.Size == s.Size, label), cb(cbSize, item.ID, i)))
			}
			rows = append(rows, row)
		}
		size, _ := sel.resolve(item)
		for i, e := range services.AvailableExtras(item, size) {
			label := fmt.Sprintf("%s +%s", e.Name, rupees(e.Price))
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(checked(sel.Extras[e.Name], label), cb(cbExtra, item.ID, i)),
			))
		}
		if inCart == 0 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Add to cart", cb(cbAdd, item.ID)),
			))
		} else {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➖", cb(cbDec, item.ID)),
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d", inCart), cb(cbNoop)),
				tgbotapi.NewInlineKeyboardButtonData("➕", cb(cbAdd, item.ID)),
			))
		}
	}
	nav := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", cb(cbSection, backSection)))
	if cartCount > 0 {
		nav = append(nav, cartButton(cartCount))
	}
	rows = append(rows, nav)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cartKeyboard(cart *services.Cart) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if cart != nil {
		for i, l := range cart.Lines {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➖", cb(cbLineDec, i)),
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d. ×%d", i+1, l.Quantity), cb(cbNoop)),
				tgbotapi.NewInlineKeyboardButtonData("➕", cb(cbLineInc, i)),
				tgbotapi.NewInlineKeyboardButtonData("🗑", cb(cbLineDel, i)),
			))
		}
		if !cart.Empty() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Checkout "+rupees(cart.Total()), cb(cbCheckout)),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Menu", cb(cbMenu))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func previousDetailsKeyboard(c models.Contact) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Use %s, %s", c.Name, c.Phone), cb(cbUsePrev)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Enter new details", cb(cbNewInfo)),
		),
	)
}

func confirmKeyboard(total string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Place order "+total, cb(cbSubmit))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cb(cbCancel))),
	)
}

func retryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔁 Retry", cb(cbSubmit))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🛒 Edit cart", cb(cbCart))),
	)
}

func backToMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🥟 Back to menu", cb(cbMenu))),
	)
}

func phoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact("📱 Share phone number")),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

func adminRemoveKeyboard(items []models.MenuItem) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 #%d %s", it.ID, it.Name), cb(cbAdmRemove, it.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminCategoryKeyboard(categories []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c, cb(cbAdmCat, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminClearKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⚠️ Yes, clear all orders", cb(cbAdmClear))),
	)
}
