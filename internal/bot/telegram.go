// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nimbusbot/nimbus/internal/logger"
)

// Telegram drives the handler from the Telegram Bot API long-poll stream.
type Telegram struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  *logger.Logger
}

func NewTelegram(token string, handler *Handler, log *logger.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the Telegram API: %w", err)
	}
	log.Info("connected to Telegram", "username", api.Self.UserName)
	return &Telegram{
		api:     api,
		handler: handler,
		logger:  log,
	}, nil
}

// Run consumes updates until the context is cancelled. Each update is
// processed on its own goroutine so one slow weather lookup does not stall
// the stream.
func (t *Telegram) Run(ctx context.Context) error {
	updateConf := tgbotapi.NewUpdate(0)
	updateConf.Timeout = 30
	updates := t.api.GetUpdatesChan(updateConf)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go t.process(ctx, update)
		}
	}
}

// SendMessage delivers a standalone message outside the update loop, such as
// the daily digest.
func (t *Telegram) SendMessage(chatID int64, reply Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(reply.Keyboard) > 0 {
		msg.ReplyMarkup = keyboardMarkup(reply.Keyboard)
	}
	_, err := t.api.Send(msg)
	return err
}

func (t *Telegram) process(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		t.processCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		t.processMessage(ctx, update.Message)
	}
}

func (t *Telegram) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	var act Action
	if msg.IsCommand() {
		act = ParseCommand(msg.Command(), msg.CommandArguments())
	} else {
		// A bare city name is the most common message, treat it as a
		// weather request.
		act = Action{Kind: KindWeather, Arg: msg.Text}
	}

	if _, err := t.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		t.logger.Debug("failed to send typing indicator", logger.Err(err))
	}

	reply := t.handler.Handle(ctx, msg.From.ID, act)
	if err := t.SendMessage(msg.Chat.ID, reply); err != nil {
		t.logger.Error("failed to send reply", logger.Err(err), "chat_id", msg.Chat.ID)
	}
}

func (t *Telegram) processCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Acknowledge right away so the client stops its spinner.
	if _, err := t.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		t.logger.Debug("failed to acknowledge callback", logger.Err(err))
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	reply := t.handler.Handle(ctx, query.From.ID, ParseCallback(query.Data))

	if !reply.Edit {
		if err := t.SendMessage(chatID, reply); err != nil {
			t.logger.Error("failed to send reply", logger.Err(err), "chat_id", chatID)
		}
		return
	}

	var edit tgbotapi.Chattable
	if len(reply.Keyboard) > 0 {
		cfg := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID, reply.Text,
			keyboardMarkup(reply.Keyboard))
		cfg.ParseMode = tgbotapi.ModeHTML
		edit = cfg
	} else {
		cfg := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, reply.Text)
		cfg.ParseMode = tgbotapi.ModeHTML
		edit = cfg
	}
	if _, err := t.api.Send(edit); err != nil {
		t.logger.Error("failed to edit message", logger.Err(err), "chat_id", chatID)
	}
}

func keyboardMarkup(keyboard [][]Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			if button.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(button.Label, button.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
