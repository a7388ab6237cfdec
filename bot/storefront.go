package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"momo-telegram/config"
	"momo-telegram/models"
	"momo-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	stepNone  = ""
	stepName  = "name"
	stepPhone = "phone"
)

// customerSession is what the storefront remembers about a chat between taps.
// Carts live in the CartStore; this holds view state only.
type customerSession struct {
	Filter    models.VegFilter
	Section   int
	Selection *selection
	Step      string
	Contact   models.Contact
}

// Storefront is the customer bot: browse the menu, build a cart, place an order.
type Storefront struct {
	messenger
	catalog  *services.Catalog
	carts    services.CartStore
	checkout *services.Checkout

	mu       sync.Mutex
	sessions map[int64]*customerSession
	submits  sync.WaitGroup
}

func NewStorefront(cfg *config.Config, catalog *services.Catalog, carts services.CartStore, checkout *services.Checkout) (*Storefront, error) {
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("TOKEN not set")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return newStorefront(api, catalog, carts, checkout), nil
}

func newStorefront(api telegramAPI, catalog *services.Catalog, carts services.CartStore, checkout *services.Checkout) *Storefront {
	return &Storefront{
		messenger: messenger{api: api, name: "storefront"},
		catalog:   catalog,
		carts:     carts,
		checkout:  checkout,
		sessions:  make(map[int64]*customerSession),
	}
}

// Start blocks until ctx is cancelled, then waits for in-flight order submissions.
func (s *Storefront) Start(ctx context.Context) {
	s.setCommands(
		tgbotapi.BotCommand{Command: "menu", Description: "Browse the menu"},
		tgbotapi.BotCommand{Command: "cart", Description: "View your cart"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Cancel checkout"},
	)
	s.poll(ctx, s.handleUpdate)
	s.submits.Wait()
}

// withSession runs fn with the chat's session locked.
func (s *Storefront) withSession(chatID int64, fn func(*customerSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &customerSession{Filter: models.FilterAll}
		s.sessions[chatID] = sess
	}
	fn(sess)
}

func (s *Storefront) session(chatID int64) customerSession {
	var cp customerSession
	s.withSession(chatID, func(sess *customerSession) { cp = *sess })
	return cp
}

func (s *Storefront) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		s.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}
	s.handleMessage(ctx, update.Message)
}

func (s *Storefront) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if msg.Contact != nil {
		s.onPhone(ctx, chatID, userID, msg.Contact.PhoneNumber)
		return
	}

	switch text {
	case "/start":
		s.send(chatID, "👋 Welcome to Momo Street! Tap a section to start your order.")
		s.showMenu(ctx, chatID, 0, userID)
		return
	case "/menu":
		s.showMenu(ctx, chatID, 0, userID)
		return
	case "/cart":
		s.showCart(ctx, chatID, 0, userID)
		return
	case "/cancel":
		s.withSession(chatID, func(sess *customerSession) { sess.Step = stepNone })
		s.sendWithReply(chatID, "Checkout cancelled. Your cart is kept.", tgbotapi.NewRemoveKeyboard(true))
		return
	}

	switch s.session(chatID).Step {
	case stepName:
		s.onName(chatID, text)
	case stepPhone:
		s.onPhone(ctx, chatID, userID, text)
	default:
		s.send(chatID, "Tap /menu to browse or /cart to see your order.")
	}
}

func (s *Storefront) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		s.answer(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID
	userID := cq.From.ID
	c := parseCallback(cq.Data)

	switch c.Action {
	case cbNoop:
		s.answer(cq.ID, "")
	case cbMenu:
		s.answer(cq.ID, "")
		s.showMenu(ctx, chatID, msgID, userID)
	case cbFilter:
		s.answer(cq.ID, "")
		s.withSession(chatID, func(sess *customerSession) { sess.Filter = models.ParseVegFilter(c.Arg(0)) })
		s.showMenu(ctx, chatID, msgID, userID)
	case cbSection:
		s.answer(cq.ID, "")
		idx, _ := c.Int(0)
		s.showSection(ctx, chatID, msgID, userID, int(idx))
	case cbItem:
		s.answer(cq.ID, "")
		id, _ := c.Int(0)
		s.withSession(chatID, func(sess *customerSession) { sess.Selection = nil })
		s.showItem(ctx, chatID, msgID, userID, id)
	case cbSize, cbExtra:
		id, _ := c.Int(0)
		idx, _ := c.Int(1)
		s.answer(cq.ID, "")
		s.toggleOption(ctx, chatID, msgID, userID, c.Action, id, int(idx))
	case cbAdd:
		id, _ := c.Int(0)
		s.changeItemQuantity(ctx, cq, id, true)
	case cbDec:
		id, _ := c.Int(0)
		s.changeItemQuantity(ctx, cq, id, false)
	case cbCart:
		s.answer(cq.ID, "")
		s.showCart(ctx, chatID, msgID, userID)
	case cbLineInc, cbLineDec, cbLineDel:
		s.answer(cq.ID, "")
		idx, _ := c.Int(0)
		s.changeLine(ctx, chatID, msgID, userID, c.Action, int(idx))
	case cbCheckout:
		s.answer(cq.ID, "")
		s.startCheckout(ctx, chatID, msgID, userID)
	case cbUsePrev:
		s.answer(cq.ID, "")
		s.usePreviousDetails(ctx, chatID, msgID, userID)
	case cbNewInfo:
		s.answer(cq.ID, "")
		s.askName(chatID)
	case cbCancel:
		s.answer(cq.ID, "")
		s.withSession(chatID, func(sess *customerSession) { sess.Step = stepNone })
		s.showCart(ctx, chatID, msgID, userID)
	case cbSubmit:
		s.answer(cq.ID, "Sending your order…")
		s.submits.Add(1)
		go func() {
			defer s.submits.Done()
			s.submit(ctx, chatID, msgID, userID)
		}()
	default:
		s.answer(cq.ID, "")
	}
}

func (s *Storefront) loadCart(ctx context.Context, userID int64) *services.Cart {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		log.Printf("load cart user_id=%d: %v", userID, err)
		return &services.Cart{}
	}
	return cart
}

func (s *Storefront) saveCart(ctx context.Context, userID int64, cart *services.Cart) {
	if err := s.carts.SaveCart(ctx, userID, cart); err != nil {
		log.Printf("save cart user_id=%d: %v", userID, err)
	}
}

func (s *Storefront) sections(ctx context.Context, chatID int64, msgID int) ([]models.Section, models.VegFilter, bool) {
	filter := s.session(chatID).Filter
	sections, err := s.catalog.Sections(ctx, filter)
	if err != nil {
		log.Printf("load menu: %v", err)
		s.render(chatID, msgID, textMenuDown, menuDownKeyboard())
		return nil, filter, false
	}
	return sections, filter, true
}

func (s *Storefront) showMenu(ctx context.Context, chatID int64, msgID int, userID int64) {
	sections, filter, ok := s.sections(ctx, chatID, msgID)
	if !ok {
		return
	}
	text := textMenuHeader
	if len(sections) == 0 {
		text = textEmptyMenu
	}
	s.render(chatID, msgID, text, menuKeyboard(sections, filter, s.loadCart(ctx, userID).Count()))
}

func (s *Storefront) showSection(ctx context.Context, chatID int64, msgID int, userID int64, idx int) {
	sections, _, ok := s.sections(ctx, chatID, msgID)
	if !ok {
		return
	}
	// idx is the backend group index, so a button from before a filter
	// change still opens the same section, or the menu when it is filtered out.
	sec, found := services.SectionByIndex(sections, idx)
	if !found {
		s.showMenu(ctx, chatID, msgID, userID)
		return
	}
	s.withSession(chatID, func(sess *customerSession) { sess.Section = idx })
	s.render(chatID, msgID, "📋 "+sec.Name, sectionKeyboard(sec, s.loadCart(ctx, userID).Count()))
}

// currentItem loads the item and the chat's selection for it, starting a new
// selection when the user opened a different item.
func (s *Storefront) currentItem(ctx context.Context, chatID int64, msgID int, userID int64, id int64) (models.MenuItem, *selection, bool) {
	item, found, err := s.catalog.Item(ctx, id)
	if err != nil {
		log.Printf("load item %d: %v", id, err)
		s.render(chatID, msgID, textMenuDown, menuDownKeyboard())
		return models.MenuItem{}, nil, false
	}
	if !found {
		s.showMenu(ctx, chatID, msgID, userID)
		return models.MenuItem{}, nil, false
	}
	var sel *selection
	s.withSession(chatID, func(sess *customerSession) {
		if sess.Selection == nil || sess.Selection.ItemID != id {
			sess.Selection = newSelection(item)
		}
		sel = sess.Selection
	})
	return item, sel, true
}

func (s *Storefront) showItem(ctx context.Context, chatID int64, msgID int, userID int64, id int64) {
	item, sel, ok := s.currentItem(ctx, chatID, msgID, userID, id)
	if !ok {
		return
	}
	s.renderItem(ctx, chatID, msgID, userID, item, sel)
}

func (s *Storefront) renderItem(ctx context.Context, chatID int64, msgID int, userID int64, item models.MenuItem, sel *selection) {
	cart := s.loadCart(ctx, userID)
	var size *models.SizeOption
	var extras []models.ExtraOption
	s.withSession(chatID, func(*customerSession) { size, extras = sel.resolve(item) })
	inCart := cart.QuantityFor(item, size, extras)
	back := s.session(chatID).Section
	s.render(chatID, msgID, itemCardText(item, size, extras, inCart), itemKeyboard(item, sel, inCart, back, cart.Count()))
}

func (s *Storefront) toggleOption(ctx context.Context, chatID int64, msgID int, userID int64, action string, id int64, idx int) {
	item, sel, ok := s.currentItem(ctx, chatID, msgID, userID, id)
	if !ok {
		return
	}
	s.withSession(chatID, func(*customerSession) {
		switch action {
		case cbSize:
			if idx >= 0 && idx < len(item.Sizes) && sel.Size != item.Sizes[idx].Size {
				sel.Size = item.Sizes[idx].Size
				sel.Extras = make(map[string]bool)
			}
		case cbExtra:
			size, _ := sel.resolve(item)
			extras := services.AvailableExtras(item, size)
			if idx >= 0 && idx < len(extras) {
				name := extras[idx].Name
				sel.Extras[name] = !sel.Extras[name]
			}
		}
	})
	s.renderItem(ctx, chatID, msgID, userID, item, sel)
}

func (s *Storefront) changeItemQuantity(ctx context.Context, cq *tgbotapi.CallbackQuery, id int64, add bool) {
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID
	userID := cq.From.ID

	item, sel, ok := s.currentItem(ctx, chatID, msgID, userID, id)
	if !ok {
		s.answer(cq.ID, "")
		return
	}
	var size *models.SizeOption
	var extras []models.ExtraOption
	s.withSession(chatID, func(*customerSession) { size, extras = sel.resolve(item) })

	cart := s.loadCart(ctx, userID)
	if add {
		if err := cart.AddLine(item, size, extras); err != nil {
			s.answer(cq.ID, addErrorText(err))
			return
		}
		s.answer(cq.ID, "Added")
	} else {
		cart.RemoveOneUnit(item, size, extras)
		s.answer(cq.ID, "")
	}
	s.saveCart(ctx, userID, cart)
	s.renderItem(ctx, chatID, msgID, userID, item, sel)
}

func addErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrNotOrderable):
		return "This item is not available right now."
	case errors.Is(err, services.ErrSizeRequired), errors.Is(err, services.ErrUnknownSize):
		return "Please pick a size first."
	default:
		return "Could not add this item."
	}
}

func (s *Storefront) showCart(ctx context.Context, chatID int64, msgID int, userID int64) {
	cart := s.loadCart(ctx, userID)
	s.render(chatID, msgID, cartText(cart), cartKeyboard(cart))
}

func (s *Storefront) changeLine(ctx context.Context, chatID int64, msgID int, userID int64, action string, idx int) {
	cart := s.loadCart(ctx, userID)
	if idx >= 0 && idx < len(cart.Lines) {
		q := cart.Lines[idx].Quantity
		switch {
		case action == cbLineInc:
			cart.SetQuantity(idx, q+1)
		case action == cbLineDec && q > 1:
			cart.SetQuantity(idx, q-1)
		default:
			cart.RemoveLine(idx)
		}
		s.saveCart(ctx, userID, cart)
	}
	s.render(chatID, msgID, cartText(cart), cartKeyboard(cart))
}

func (s *Storefront) startCheckout(ctx context.Context, chatID int64, msgID int, userID int64) {
	if s.loadCart(ctx, userID).Empty() {
		s.render(chatID, msgID, textCartEmpty, backToMenuKeyboard())
		return
	}
	last, err := s.checkout.LastContact(ctx, userID)
	if err != nil {
		log.Printf("last contact user_id=%d: %v", userID, err)
	}
	if last != nil {
		s.render(chatID, msgID, "How should we reach you?", previousDetailsKeyboard(*last))
		return
	}
	s.askName(chatID)
}

func (s *Storefront) usePreviousDetails(ctx context.Context, chatID int64, msgID int, userID int64) {
	last, err := s.checkout.LastContact(ctx, userID)
	if err != nil || last == nil {
		s.askName(chatID)
		return
	}
	s.withSession(chatID, func(sess *customerSession) {
		sess.Contact = *last
		sess.Step = stepNone
	})
	s.showConfirm(ctx, chatID, msgID, userID)
}

func (s *Storefront) askName(chatID int64) {
	s.withSession(chatID, func(sess *customerSession) { sess.Step = stepName })
	s.send(chatID, textAskName)
}

func (s *Storefront) onName(chatID int64, text string) {
	if text == "" || strings.HasPrefix(text, "/") {
		s.send(chatID, textAskName)
		return
	}
	s.withSession(chatID, func(sess *customerSession) {
		sess.Contact.Name = text
		sess.Step = stepPhone
	})
	s.sendWithReply(chatID, textAskPhone, phoneKeyboard())
}

func (s *Storefront) onPhone(ctx context.Context, chatID int64, userID int64, phone string) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		s.sendWithReply(chatID, textAskPhone, phoneKeyboard())
		return
	}
	var ready bool
	s.withSession(chatID, func(sess *customerSession) {
		sess.Contact.Phone = phone
		sess.Step = stepNone
		ready = strings.TrimSpace(sess.Contact.Name) != ""
	})
	s.sendWithReply(chatID, "👍 Got it.", tgbotapi.NewRemoveKeyboard(true))
	if !ready {
		s.askName(chatID)
		return
	}
	s.showConfirm(ctx, chatID, 0, userID)
}

func (s *Storefront) showConfirm(ctx context.Context, chatID int64, msgID int, userID int64) {
	cart := s.loadCart(ctx, userID)
	if cart.Empty() {
		s.render(chatID, msgID, textCartEmpty, backToMenuKeyboard())
		return
	}
	contact := s.session(chatID).Contact
	s.render(chatID, msgID, confirmText(cart, contact), confirmKeyboard(rupees(cart.Total())))
}

func (s *Storefront) submit(ctx context.Context, chatID int64, msgID int, userID int64) {
	contact := s.session(chatID).Contact
	req, err := s.checkout.SubmitOrder(ctx, userID, contact)
	switch {
	case err == nil:
		s.withSession(chatID, func(sess *customerSession) {
			sess.Selection = nil
			sess.Step = stepNone
		})
		log.Printf("order placed user_id=%d", userID)
		s.render(chatID, msgID, orderPlacedText(req), backToMenuKeyboard())
	case errors.Is(err, services.ErrSubmitInFlight):
		s.send(chatID, textInFlight)
	case errors.Is(err, services.ErrEmptyCart):
		s.render(chatID, msgID, textCartEmpty, backToMenuKeyboard())
	case errors.Is(err, services.ErrIncompleteOrder):
		s.askName(chatID)
	default:
		log.Printf("submit order user_id=%d: %v", userID, err)
		s.render(chatID, msgID, textOrderFailed, retryKeyboard())
	}
}
