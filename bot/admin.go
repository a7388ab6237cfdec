package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"momo-telegram/config"
	"momo-telegram/models"
	"momo-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

const removeButtonsPerMessage = 50

// AdminBackend is the subset of the backend client the admin bot drives.
type AdminBackend interface {
	Orders(ctx context.Context) ([]models.Order, error)
	History(ctx context.Context) ([]models.Order, error)
	ExportMenu(ctx context.Context) ([]models.MenuItem, error)
	SaveMenu(ctx context.Context, items []models.MenuItem) error
	ClearOrders(ctx context.Context) error
}

type ImageUploader interface {
	Upload(ctx context.Context, name string, body io.Reader, contentType string) (string, error)
}

type MenuInvalidator interface {
	Invalidate(ctx context.Context)
}

// AdminStore persists login throttling and logged-in admin chats.
type AdminStore interface {
	LoginWait(ctx context.Context, tgUserID int64) (int, error)
	LoginFailed(ctx context.Context, tgUserID int64) error
	LoginSucceeded(ctx context.Context, tgUserID int64) error
	SaveSession(ctx context.Context, chatID, tgUserID int64) error
	DeleteSession(ctx context.Context, chatID int64) error
	Sessions(ctx context.Context) ([]int64, error)
}

// PgAdminStore is AdminStore over the services package tables.
type PgAdminStore struct{}

func (PgAdminStore) LoginWait(ctx context.Context, id int64) (int, error) {
	return services.AdminLoginWait(ctx, id)
}
func (PgAdminStore) LoginFailed(ctx context.Context, id int64) error {
	return services.RecordAdminLoginFailed(ctx, id)
}
func (PgAdminStore) LoginSucceeded(ctx context.Context, id int64) error {
	return services.RecordAdminLoginSuccess(ctx, id)
}
func (PgAdminStore) SaveSession(ctx context.Context, chatID, id int64) error {
	return services.SaveAdminSession(ctx, chatID, id)
}
func (PgAdminStore) DeleteSession(ctx context.Context, chatID int64) error {
	return services.DeleteAdminSession(ctx, chatID)
}
func (PgAdminStore) Sessions(ctx context.Context) ([]int64, error) {
	return services.ListAdminSessions(ctx)
}

const (
	addStepCategory = "category"
	addStepName     = "name"
	addStepPrice    = "price"
	addStepExtras   = "extras"
	addStepPosition = "position"

	editStepName     = "edit_name"
	editStepCategory = "edit_category"
	editStepPrice    = "edit_price"
	editStepExtras   = "edit_extras"
	editStepNotes    = "edit_notes"
)

// In the /edit flow "-" keeps the current value and "none" clears an optional one.
const (
	keepValue  = "-"
	clearValue = "none"
)

// itemFlow is an /add or /edit conversation. EditID is 0 while adding.
type itemFlow struct {
	Step       string
	Categories []string
	EditID     int64
	Item       models.MenuItem
}

// AdminBot manages orders and the menu for logged-in admins.
type AdminBot struct {
	messenger
	backend   AdminBackend
	images    ImageUploader
	menu      MenuInvalidator
	store     AdminStore
	password  services.AdminPassword
	alertChat int64
	http      *http.Client

	mu           sync.RWMutex
	loggedIn     map[int64]bool
	flows        map[int64]*itemFlow
	pendingImage map[int64]int64
}

// NewAdminBot uses ADMIN_TOKEN. images may be nil when R2 is not configured.
func NewAdminBot(cfg *config.Config, backend AdminBackend, images ImageUploader, menu MenuInvalidator, store AdminStore) (*AdminBot, error) {
	if cfg.Telegram.AdminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN not set")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.AdminToken)
	if err != nil {
		return nil, err
	}
	return newAdminBot(api, backend, images, menu, store, services.NewAdminPassword(cfg.Telegram.Login), cfg.Admin.ChatID), nil
}

func newAdminBot(api telegramAPI, backend AdminBackend, images ImageUploader, menu MenuInvalidator, store AdminStore, pw services.AdminPassword, alertChat int64) *AdminBot {
	return &AdminBot{
		messenger:    messenger{api: api, name: "admin"},
		backend:      backend,
		images:       images,
		menu:         menu,
		store:        store,
		password:     pw,
		alertChat:    alertChat,
		http:         &http.Client{Timeout: 30 * time.Second},
		loggedIn:     make(map[int64]bool),
		flows:        make(map[int64]*itemFlow),
		pendingImage: make(map[int64]int64),
	}
}

// LoadSessions restores logged-in chats saved before a restart.
func (a *AdminBot) LoadSessions(ctx context.Context) error {
	chats, err := a.store.Sessions(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range chats {
		a.loggedIn[id] = true
	}
	return nil
}

func (a *AdminBot) Start(ctx context.Context) {
	a.setCommands(
		tgbotapi.BotCommand{Command: "orders", Description: "Active orders"},
		tgbotapi.BotCommand{Command: "history", Description: "Order history"},
		tgbotapi.BotCommand{Command: "menu", Description: "Menu items"},
		tgbotapi.BotCommand{Command: "add", Description: "Add a menu item"},
		tgbotapi.BotCommand{Command: "edit", Description: "Edit a menu item"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Cancel the current step"},
	)
	a.poll(ctx, a.handleUpdate)
}

func (a *AdminBot) isLoggedIn(chatID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loggedIn[chatID]
}

// NotifyNewOrders sends a card per new order to every logged-in chat and ADMIN_CHAT_ID.
func (a *AdminBot) NotifyNewOrders(_ context.Context, orders []models.Order) {
	for _, chatID := range a.alertChats() {
		for _, o := range orders {
			a.send(chatID, "🔔 New order!\n\n"+orderCardText(o))
		}
	}
}

func (a *AdminBot) alertChats() []int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	set := make(map[int64]bool, len(a.loggedIn)+1)
	for id, ok := range a.loggedIn {
		if ok {
			set[id] = true
		}
	}
	if a.alertChat != 0 {
		set[a.alertChat] = true
	}
	chats := make([]int64, 0, len(set))
	for id := range set {
		chats = append(chats, id)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i] < chats[j] })
	return chats
}

func (a *AdminBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		a.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}
	a.handleMessage(ctx, update.Message)
}

func (a *AdminBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if !a.isLoggedIn(chatID) {
		a.handleLogin(ctx, msg, text)
		return
	}

	if len(msg.Photo) > 0 {
		a.handlePhoto(ctx, chatID, msg.Photo)
		return
	}

	cmd, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)
	switch cmd {
	case "/start", "/help":
		a.sendPanel(chatID)
	case "/cancel":
		a.resetFlows(chatID)
		a.send(chatID, "Cancelled.")
	case "/logout":
		a.logout(ctx, chatID)
	case "/orders":
		a.sendOrders(ctx, chatID, "📦 Active orders", a.backend.Orders)
	case "/history":
		a.sendOrders(ctx, chatID, "🗂 Order history", a.backend.History)
	case "/clear":
		a.sendWithInline(chatID, "Clear all active orders?", adminClearKeyboard())
	case "/menu":
		a.sendMenu(ctx, chatID)
	case "/add":
		a.startAdd(ctx, chatID)
	case "/edit":
		a.startEdit(ctx, chatID, args)
	case "/price":
		a.handlePrice(ctx, chatID, args)
	case "/image":
		a.handleImageCommand(ctx, chatID, args)
	default:
		if !a.handleItemFlow(ctx, chatID, userID, text) {
			a.sendPanel(chatID)
		}
	}
}

func (a *AdminBot) handleLogin(ctx context.Context, msg *tgbotapi.Message, text string) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	if text == "" || strings.HasPrefix(text, "/") || !a.password.Configured() {
		a.send(chatID, "🔒 Send the admin password to open the panel.")
		return
	}
	wait, err := a.store.LoginWait(ctx, userID)
	if err != nil {
		log.Printf("admin login throttle check user_id=%d: %v", userID, err)
	}
	if wait > 0 {
		a.send(chatID, fmt.Sprintf("⏳ Too many attempts. Try again in %d s.", wait))
		return
	}
	if !a.password.Check(text) {
		if err := a.store.LoginFailed(ctx, userID); err != nil {
			log.Printf("admin login record failure user_id=%d: %v", userID, err)
		}
		a.send(chatID, "❌ Wrong password.")
		return
	}

	if err := a.store.LoginSucceeded(ctx, userID); err != nil {
		log.Printf("admin login record success user_id=%d: %v", userID, err)
	}
	if err := a.store.SaveSession(ctx, chatID, userID); err != nil {
		log.Printf("admin save session chat_id=%d: %v", chatID, err)
	}
	a.mu.Lock()
	a.loggedIn[chatID] = true
	a.mu.Unlock()

	// the password should not stay in the chat history
	if _, err := a.api.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
		log.Printf("admin delete password message: %v", err)
	}
	log.Printf("admin logged in user_id=%d chat_id=%d", userID, chatID)
	a.send(chatID, "✅ Logged in. You will be notified about new orders here.")
	a.sendPanel(chatID)
}

func (a *AdminBot) logout(ctx context.Context, chatID int64) {
	a.resetFlows(chatID)
	a.mu.Lock()
	delete(a.loggedIn, chatID)
	a.mu.Unlock()
	if err := a.store.DeleteSession(ctx, chatID); err != nil {
		log.Printf("admin delete session chat_id=%d: %v", chatID, err)
	}
	a.send(chatID, "👋 Logged out.")
}

func (a *AdminBot) resetFlows(chatID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.flows, chatID)
	delete(a.pendingImage, chatID)
}

func (a *AdminBot) sendPanel(chatID int64) {
	a.send(chatID, strings.Join([]string{
		"🛠 Momo Street admin",
		"",
		"/orders — active orders",
		"/history — order history",
		"/clear — clear active orders",
		"/menu — list and remove items",
		"/add — add a menu item",
		"/edit <id> — edit name, category, price, extras",
		"/price <id> <price or Size=Price,...> — change a price",
		"/image <id> — upload a new photo",
		"/logout",
	}, "\n"))
}

func (a *AdminBot) sendOrders(ctx context.Context, chatID int64, title string, fetch func(context.Context) ([]models.Order, error)) {
	orders, err := fetch(ctx)
	if err != nil {
		log.Printf("admin %s: %v", title, err)
		a.send(chatID, "⚠️ Could not load orders. Please try again.")
		return
	}
	a.sendLong(chatID, orderListText(title, orders))
}

func (a *AdminBot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || !a.isLoggedIn(cq.Message.Chat.ID) {
		a.answer(cq.ID, "Please log in first.")
		return
	}
	chatID := cq.Message.Chat.ID
	c := parseCallback(cq.Data)

	switch c.Action {
	case cbAdmClear:
		if err := a.backend.ClearOrders(ctx); err != nil {
			log.Printf("admin clear orders: %v", err)
			a.answer(cq.ID, "Failed, try again.")
			return
		}
		a.answer(cq.ID, "Cleared")
		a.render(chatID, cq.Message.MessageID, "🧹 All active orders cleared.", tgbotapi.InlineKeyboardMarkup{})
	case cbAdmRemove:
		id, ok := c.Int(0)
		if !ok {
			a.answer(cq.ID, "")
			return
		}
		removed, err := a.editMenu(ctx, func(items []models.MenuItem) ([]models.MenuItem, error) {
			return services.RemoveMenuItem(items, id)
		})
		if err != nil {
			a.answer(cq.ID, menuErrorText(err))
			return
		}
		a.answer(cq.ID, fmt.Sprintf("Removed #%d", id))
		a.render(chatID, cq.Message.MessageID, "🗑 Item removed. Remaining:", adminRemoveKeyboard(pageOf(removed, cq.Message)))
	case cbAdmCat:
		idx, _ := c.Int(0)
		a.answer(cq.ID, "")
		a.pickCategory(chatID, int(idx))
	default:
		a.answer(cq.ID, "")
	}
}

// pageOf keeps a remove keyboard to the slice of items it was rendered for.
func pageOf(items []models.MenuItem, msg *tgbotapi.Message) []models.MenuItem {
	if msg == nil || msg.ReplyMarkup == nil {
		return firstN(items, removeButtonsPerMessage)
	}
	shown := make(map[int64]bool)
	for _, row := range msg.ReplyMarkup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == nil {
				continue
			}
			if id, ok := parseCallback(*btn.CallbackData).Int(0); ok {
				shown[id] = true
			}
		}
	}
	var out []models.MenuItem
	for _, it := range items {
		if shown[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

func firstN(items []models.MenuItem, n int) []models.MenuItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (a *AdminBot) sendMenu(ctx context.Context, chatID int64) {
	items, err := a.backend.ExportMenu(ctx)
	if err != nil {
		log.Printf("admin export menu: %v", err)
		a.send(chatID, "⚠️ Could not load the menu. Please try again.")
		return
	}
	a.sendLong(chatID, adminMenuText(items))
	for start := 0; start < len(items); start += removeButtonsPerMessage {
		end := start + removeButtonsPerMessage
		if end > len(items) {
			end = len(items)
		}
		a.sendWithInline(chatID, "Tap to remove:", adminRemoveKeyboard(items[start:end]))
	}
}

// editMenu fetches the menu, applies fn, saves it and drops the storefront cache.
func (a *AdminBot) editMenu(ctx context.Context, fn func([]models.MenuItem) ([]models.MenuItem, error)) ([]models.MenuItem, error) {
	items, err := a.backend.ExportMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("export menu: %w", err)
	}
	updated, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := a.backend.SaveMenu(ctx, updated); err != nil {
		return nil, fmt.Errorf("save menu: %w", err)
	}
	if a.menu != nil {
		a.menu.Invalidate(ctx)
	}
	return updated, nil
}

func menuErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		return "No item with that id."
	case errors.Is(err, services.ErrIncompleteItem):
		return "Name, category and a price or sizes are required."
	default:
		log.Printf("admin menu edit: %v", err)
		return "Could not save the menu, try again."
	}
}

func (a *AdminBot) startAdd(ctx context.Context, chatID int64) {
	items, err := a.backend.ExportMenu(ctx)
	if err != nil {
		log.Printf("admin export menu: %v", err)
		a.send(chatID, "⚠️ Could not load the menu. Please try again.")
		return
	}
	cats := services.MenuCategories(items)
	a.mu.Lock()
	a.flows[chatID] = &itemFlow{Step: addStepCategory, Categories: cats}
	a.mu.Unlock()
	a.sendWithInline(chatID, "➕ New item\nPick a category or type a new one:", adminCategoryKeyboard(cats))
}

func (a *AdminBot) pickCategory(chatID int64, idx int) {
	a.mu.Lock()
	flow := a.flows[chatID]
	ok := flow != nil && flow.Step == addStepCategory && idx >= 0 && idx < len(flow.Categories)
	if ok {
		flow.Item.Category = flow.Categories[idx]
		flow.Step = addStepName
	}
	a.mu.Unlock()
	if ok {
		a.send(chatID, "Item name?")
	}
}

var positionRe = regexp.MustCompile(`^\d+$`)

// handleItemFlow advances the /add or /edit conversation; false when no flow is active.
func (a *AdminBot) handleItemFlow(ctx context.Context, chatID, userID int64, text string) bool {
	a.mu.Lock()
	flow := a.flows[chatID]
	a.mu.Unlock()
	if flow == nil {
		return false
	}
	if text == "" {
		a.send(chatID, "Please send text, or /cancel.")
		return true
	}

	switch flow.Step {
	case addStepCategory:
		flow.Item.Category = text
		flow.Step = addStepName
		a.send(chatID, "Item name?")
	case addStepName:
		flow.Item.Name = text
		flow.Step = addStepPrice
		a.send(chatID, "Price (e.g. 120) or sizes (e.g. Small=200, Medium=300)?")
	case addStepPrice:
		if err := setPriceFromInput(&flow.Item, text); err != nil {
			a.send(chatID, "⚠️ "+err.Error()+". Try again.")
			return true
		}
		flow.Step = addStepExtras
		a.send(chatID, "Extras (e.g. Add Cheese=30, Mayo=20) or - to skip?")
	case addStepExtras:
		if text != "-" {
			extras, err := services.ParseExtraList(text)
			if err != nil {
				a.send(chatID, "⚠️ "+err.Error()+". Try again.")
				return true
			}
			flow.Item.ExtraOptions = extras
		}
		flow.Step = addStepPosition
		a.send(chatID, fmt.Sprintf("Position within %s (1 = first) or - for last?", flow.Item.Category))
	case addStepPosition:
		pos := math.MaxInt32
		if text != "-" {
			if !positionRe.MatchString(text) {
				a.send(chatID, "⚠️ Send a number or -.")
				return true
			}
			n, _ := strconv.Atoi(text)
			pos = n - 1
			if pos < 0 {
				pos = 0
			}
		}
		a.finishAdd(ctx, chatID, userID, flow.Item, pos)
	default:
		a.handleEditStep(ctx, chatID, userID, flow, text)
	}
	return true
}

func (a *AdminBot) finishAdd(ctx context.Context, chatID, userID int64, item models.MenuItem, pos int) {
	var added models.MenuItem
	_, err := a.editMenu(ctx, func(items []models.MenuItem) ([]models.MenuItem, error) {
		out, it, err := services.InsertMenuItem(items, item, pos)
		added = it
		return out, err
	})
	if err != nil {
		a.send(chatID, "⚠️ "+menuErrorText(err))
		return
	}
	a.mu.Lock()
	delete(a.flows, chatID)
	a.mu.Unlock()
	log.Printf("admin added menu item id=%d user_id=%d", added.ID, userID)
	a.send(chatID, "✅ Added "+adminItemLine(added)+"\nUse /image "+strconv.FormatInt(added.ID, 10)+" to add a photo.")
}

func (a *AdminBot) startEdit(ctx context.Context, chatID int64, args string) {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		a.send(chatID, "Usage: /edit <id>")
		return
	}
	items, err := a.backend.ExportMenu(ctx)
	if err != nil {
		log.Printf("admin export menu: %v", err)
		a.send(chatID, "⚠️ Could not load the menu. Please try again.")
		return
	}
	var (
		item  models.MenuItem
		found bool
	)
	for _, it := range items {
		if it.ID == id {
			item, found = it, true
			break
		}
	}
	if !found {
		a.send(chatID, "No item with that id.")
		return
	}
	a.mu.Lock()
	a.flows[chatID] = &itemFlow{Step: editStepName, EditID: id, Item: item}
	a.mu.Unlock()
	a.send(chatID, fmt.Sprintf("✏️ Editing %s\nSend - to keep a value.\n\nName? (now: %s)", adminItemLine(item), item.Name))
}

func (a *AdminBot) handleEditStep(ctx context.Context, chatID, userID int64, flow *itemFlow, text string) {
	keep := text == keepValue
	switch flow.Step {
	case editStepName:
		if !keep {
			flow.Item.Name = text
		}
		flow.Step = editStepCategory
		a.send(chatID, fmt.Sprintf("Category? (now: %s)", flow.Item.Category))
	case editStepCategory:
		if !keep {
			flow.Item.Category = text
		}
		flow.Step = editStepPrice
		a.send(chatID, fmt.Sprintf("Price (e.g. 120) or sizes (e.g. Small=200, Medium=300)? (now: %s)", priceInput(flow.Item)))
	case editStepPrice:
		if !keep {
			if err := setPriceFromInput(&flow.Item, text); err != nil {
				a.send(chatID, "⚠️ "+err.Error()+". Try again.")
				return
			}
		}
		flow.Step = editStepExtras
		a.send(chatID, fmt.Sprintf("Extras (e.g. Add Cheese=30), or none to clear? (now: %s)", extrasInput(flow.Item.ExtraOptions)))
	case editStepExtras:
		switch {
		case keep:
		case strings.EqualFold(text, clearValue):
			flow.Item.ExtraOptions = nil
		default:
			extras, err := services.ParseExtraList(text)
			if err != nil {
				a.send(chatID, "⚠️ "+err.Error()+". Try again.")
				return
			}
			flow.Item.ExtraOptions = extras
		}
		flow.Step = editStepNotes
		notes := flow.Item.Extras
		if notes == "" {
			notes = clearValue
		}
		a.send(chatID, fmt.Sprintf("Description shown on the card, or none to clear? (now: %s)", notes))
	case editStepNotes:
		switch {
		case keep:
		case strings.EqualFold(text, clearValue):
			flow.Item.Extras = ""
		default:
			flow.Item.Extras = text
		}
		a.finishEdit(ctx, chatID, userID, flow)
	}
}

func (a *AdminBot) finishEdit(ctx context.Context, chatID, userID int64, flow *itemFlow) {
	var saved models.MenuItem
	_, err := a.editMenu(ctx, func(items []models.MenuItem) ([]models.MenuItem, error) {
		out, it, err := services.EditMenuItem(items, flow.EditID, flow.Item)
		saved = it
		return out, err
	})
	a.mu.Lock()
	delete(a.flows, chatID)
	a.mu.Unlock()
	if err != nil {
		a.send(chatID, "⚠️ "+menuErrorText(err)+" Nothing was changed.")
		return
	}
	log.Printf("admin edited menu item id=%d user_id=%d", saved.ID, userID)
	a.send(chatID, "✅ Saved "+adminItemLine(saved))
}

// priceInput renders the item's price in the form /add and /edit accept.
func priceInput(it models.MenuItem) string {
	if len(it.Sizes) > 0 {
		parts := make([]string, len(it.Sizes))
		for i, s := range it.Sizes {
			parts[i] = s.Size + "=" + s.Price.String()
		}
		return strings.Join(parts, ", ")
	}
	if it.Price.Valid {
		return it.Price.Decimal.String()
	}
	return clearValue
}

func extrasInput(extras []models.ExtraOption) string {
	if len(extras) == 0 {
		return clearValue
	}
	parts := make([]string, len(extras))
	for i, e := range extras {
		parts[i] = e.Name + "=" + e.Price.String()
	}
	return strings.Join(parts, ", ")
}

// setPriceFromInput sets either sizes ("Small=200, ...") or a flat price, clearing the other.
func setPriceFromInput(item *models.MenuItem, text string) error {
	if strings.Contains(text, "=") {
		sizes, err := services.ParseSizes(text)
		if err != nil {
			return err
		}
		item.Sizes = sizes
		item.Price = decimal.NullDecimal{}
		return nil
	}
	p, err := services.ParsePrice(text)
	if err != nil {
		return err
	}
	item.Price = decimal.NewNullDecimal(p)
	item.Sizes = nil
	return nil
}

func (a *AdminBot) handlePrice(ctx context.Context, chatID int64, args string) {
	idText, value, _ := strings.Cut(args, " ")
	id, err := strconv.ParseInt(idText, 10, 64)
	value = strings.TrimSpace(value)
	if err != nil || value == "" {
		a.send(chatID, "Usage: /price <id> <price> or /price <id> Small=200, Medium=300")
		return
	}
	var updated models.MenuItem
	_, err = a.editMenu(ctx, func(items []models.MenuItem) ([]models.MenuItem, error) {
		var perr error
		out, err := services.UpdateMenuItem(items, id, func(it *models.MenuItem) {
			perr = setPriceFromInput(it, value)
			updated = *it
		})
		if err != nil {
			return nil, err
		}
		if perr != nil {
			return nil, perr
		}
		return out, nil
	})
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) || errors.Is(err, services.ErrIncompleteItem) {
			a.send(chatID, "⚠️ "+menuErrorText(err))
		} else {
			a.send(chatID, "⚠️ "+err.Error())
		}
		return
	}
	a.send(chatID, "✅ Updated "+adminItemLine(updated))
}

func (a *AdminBot) handleImageCommand(ctx context.Context, chatID int64, args string) {
	if a.images == nil {
		a.send(chatID, "Image storage is not configured.")
		return
	}
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		a.send(chatID, "Usage: /image <id>")
		return
	}
	items, err := a.backend.ExportMenu(ctx)
	if err != nil {
		log.Printf("admin export menu: %v", err)
		a.send(chatID, "⚠️ Could not load the menu. Please try again.")
		return
	}
	var name string
	for _, it := range items {
		if it.ID == id {
			name = it.Name
		}
	}
	if name == "" {
		a.send(chatID, "No item with that id.")
		return
	}
	a.mu.Lock()
	a.pendingImage[chatID] = id
	a.mu.Unlock()
	a.send(chatID, fmt.Sprintf("📷 Send the photo for #%d %s.", id, name))
}

func (a *AdminBot) handlePhoto(ctx context.Context, chatID int64, photos []tgbotapi.PhotoSize) {
	a.mu.RLock()
	id, ok := a.pendingImage[chatID]
	a.mu.RUnlock()
	if !ok || a.images == nil {
		a.send(chatID, "Use /image <id> first.")
		return
	}

	largest := photos[len(photos)-1]
	url, err := a.uploadPhoto(ctx, largest.FileID, id)
	if err != nil {
		log.Printf("admin upload image item=%d: %v", id, err)
		a.send(chatID, "❌ Upload failed. Send the photo again to retry.")
		return
	}
	_, err = a.editMenu(ctx, func(items []models.MenuItem) ([]models.MenuItem, error) {
		return services.UpdateMenuItem(items, id, func(it *models.MenuItem) { it.Image = url })
	})
	if err != nil {
		a.send(chatID, "⚠️ "+menuErrorText(err))
		return
	}
	a.mu.Lock()
	delete(a.pendingImage, chatID)
	a.mu.Unlock()
	a.send(chatID, fmt.Sprintf("✅ Photo updated for #%d.", id))
}

func (a *AdminBot) uploadPhoto(ctx context.Context, fileID string, itemID int64) (string, error) {
	fileURL, err := a.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download photo: status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "image/jpeg"
	}
	return a.images.Upload(ctx, fmt.Sprintf("item-%d.jpg", itemID), resp.Body, contentType)
}
