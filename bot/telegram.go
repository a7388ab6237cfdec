package bot

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const messageLimit = 4000

// telegramAPI is the part of *tgbotapi.BotAPI the bots use.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

type messenger struct {
	api  telegramAPI
	name string
}

func (m messenger) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := m.api.Send(msg); err != nil {
		log.Printf("%s send error: %v", m.name, err)
	}
}

func (m messenger) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(kb.InlineKeyboard) > 0 {
		msg.ReplyMarkup = kb
	}
	if _, err := m.api.Send(msg); err != nil {
		log.Printf("%s send error: %v", m.name, err)
	}
}

func (m messenger) sendWithReply(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := m.api.Send(msg); err != nil {
		log.Printf("%s send error: %v", m.name, err)
	}
}

// sendLong splits text that would exceed a single Telegram message.
func (m messenger) sendLong(chatID int64, text string) {
	for _, chunk := range splitMessage(text, messageLimit) {
		m.send(chatID, chunk)
	}
}

// render edits the message a button was pressed on, or sends a new one when msgID is 0.
func (m messenger) render(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if msgID == 0 {
		m.sendWithInline(chatID, text, kb)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	if len(kb.InlineKeyboard) > 0 {
		edit.ReplyMarkup = &kb
	}
	if _, err := m.api.Send(edit); err != nil && !strings.Contains(err.Error(), "message is not modified") {
		log.Printf("%s edit error: %v", m.name, err)
	}
}

func (m messenger) answer(callbackID, text string) {
	if _, err := m.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("%s callback answer error: %v", m.name, err)
	}
}

func (m messenger) setCommands(cmds ...tgbotapi.BotCommand) {
	if _, err := m.api.Request(tgbotapi.SetMyCommandsConfig{Commands: cmds}); err != nil {
		log.Printf("%s set commands error: %v", m.name, err)
	}
}

// poll feeds updates to handle until ctx is cancelled.
func (m messenger) poll(ctx context.Context, handle func(context.Context, tgbotapi.Update)) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := m.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			m.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			handle(ctx, update)
		}
	}
}
