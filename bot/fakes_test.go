package bot

import (
	"context"
	"sync"

	"momo-telegram/models"
	"momo-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	fileBase string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return f.fileBase + "/" + fileID, nil
}

// texts returns the text of every sent message and edit, in order.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func (f *fakeAPI) lastInline() *tgbotapi.InlineKeyboardMarkup {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		switch m := f.sent[i].(type) {
		case tgbotapi.MessageConfig:
			if kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
				return &kb
			}
			return nil
		case tgbotapi.EditMessageTextConfig:
			return m.ReplyMarkup
		}
	}
	return nil
}

func (f *fakeAPI) callbackAnswers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

func buttonData(kb *tgbotapi.InlineKeyboardMarkup) []string {
	if kb == nil {
		return nil
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func contactUpdate(chatID int64, phone string) tgbotapi.Update {
	u := textUpdate(chatID, "")
	u.Message.Contact = &tgbotapi.Contact{PhoneNumber: phone}
	return u
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cq",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

const testMenuJSON = `[
  {"category": "Momos", "items": [
    {"id": 1, "name": "Veg Steam Momo", "price": 90},
    {"id": 2, "name": "Chicken Fried Momo", "price": 120},
    {"id": 3, "name": "Seasonal Momo"}
  ]},
  {"subcategory": "Pizza", "items": [
    {"subcategory": "Classic", "items": [
      {"id": 7, "name": "Margherita", "extras": "(Add Cheese Rs 30)",
       "sizes": [{"size": "Medium", "price": 300}, {"size": "Large", "price": 450}]}
    ]}
  ]}
]`

type menuFetcher struct {
	mu      sync.Mutex
	payload []byte
	err     error
}

func (m *menuFetcher) FetchMenu(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payload, m.err
}

type memStore struct {
	mu       sync.Mutex
	carts    map[int64][]models.CartLine
	contacts map[int64]models.Contact
}

func newMemStore() *memStore {
	return &memStore{carts: map[int64][]models.CartLine{}, contacts: map[int64]models.Contact{}}
}

func (m *memStore) GetCart(_ context.Context, userID int64) (*services.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &services.Cart{Lines: append([]models.CartLine(nil), m.carts[userID]...)}, nil
}

func (m *memStore) SaveCart(_ context.Context, userID int64, c *services.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = append([]models.CartLine(nil), c.Lines...)
	return nil
}

func (m *memStore) DeleteCart(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

func (m *memStore) LastContact(_ context.Context, userID int64) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.contacts[userID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) SaveContact(_ context.Context, userID int64, c models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[userID] = c
	return nil
}

type recordingPlacer struct {
	mu     sync.Mutex
	orders []models.OrderRequest
	err    error
}

func (p *recordingPlacer) PlaceOrder(_ context.Context, o models.OrderRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.orders = append(p.orders, o)
	return nil
}

func contactFixture() models.Contact {
	return models.Contact{Name: "Ravi", Phone: "12345"}
}
