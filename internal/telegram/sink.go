package telegram

import (
	"context"

	"marquee/internal/delivery"
)

var _ delivery.Sink = (*Client)(nil)

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

// markup converts the transport-neutral keyboard. Telegram rejects an empty
// inline_keyboard array, so an empty keyboard becomes nil (field omitted).
func markup(nav delivery.Keyboard) *inlineKeyboard {
	if nav.Empty() {
		return nil
	}
	rows := make([][]inlineButton, 0, len(nav.Rows))
	for _, row := range nav.Rows {
		buttons := make([]inlineButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, inlineButton{Text: b.Label, CallbackData: b.Data, URL: b.URL})
		}
		rows = append(rows, buttons)
	}
	return &inlineKeyboard{InlineKeyboard: rows}
}

// SendMedia posts a photo by URL or by a previously-captured file_id. The
// returned handle is the file_id of the largest rendition Telegram stored.
func (c *Client) SendMedia(ctx context.Context, dest delivery.Destination, mediaRef, caption string, nav delivery.Keyboard) (delivery.MessageRef, string, error) {
	payload := struct {
		ChatID      int64           `json:"chat_id"`
		Photo       string          `json:"photo"`
		Caption     string          `json:"caption,omitempty"`
		ParseMode   string          `json:"parse_mode,omitempty"`
		ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
	}{dest.ChatID, mediaRef, caption, c.parseMode, markup(nav)}

	var sent message
	if err := c.call(ctx, "sendPhoto", payload, &sent); err != nil {
		return delivery.MessageRef{}, "", err
	}
	return delivery.MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, largestPhoto(sent.Photo), nil
}

// SendText posts a plain message.
func (c *Client) SendText(ctx context.Context, dest delivery.Destination, caption string, nav delivery.Keyboard) (delivery.MessageRef, error) {
	payload := struct {
		ChatID      int64           `json:"chat_id"`
		Text        string          `json:"text"`
		ParseMode   string          `json:"parse_mode,omitempty"`
		ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
	}{dest.ChatID, caption, c.parseMode, markup(nav)}

	var sent message
	if err := c.call(ctx, "sendMessage", payload, &sent); err != nil {
		return delivery.MessageRef{}, err
	}
	return delivery.MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

// EditMedia swaps the photo and caption of an existing message in place.
func (c *Client) EditMedia(ctx context.Context, ref delivery.MessageRef, mediaRef, caption string, nav delivery.Keyboard) error {
	media := struct {
		Type      string `json:"type"`
		Media     string `json:"media"`
		Caption   string `json:"caption,omitempty"`
		ParseMode string `json:"parse_mode,omitempty"`
	}{"photo", mediaRef, caption, c.parseMode}

	payload := struct {
		ChatID      int64           `json:"chat_id"`
		MessageID   int64           `json:"message_id"`
		Media       any             `json:"media"`
		ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
	}{ref.ChatID, ref.MessageID, media, markup(nav)}

	return c.call(ctx, "editMessageMedia", payload, nil)
}

// EditCaption rewrites only the caption of an existing message.
func (c *Client) EditCaption(ctx context.Context, ref delivery.MessageRef, caption string, nav delivery.Keyboard) error {
	payload := struct {
		ChatID      int64           `json:"chat_id"`
		MessageID   int64           `json:"message_id"`
		Caption     string          `json:"caption"`
		ParseMode   string          `json:"parse_mode,omitempty"`
		ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
	}{ref.ChatID, ref.MessageID, caption, c.parseMode, markup(nav)}

	return c.call(ctx, "editMessageCaption", payload, nil)
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, ref delivery.MessageRef) error {
	payload := struct {
		ChatID    int64 `json:"chat_id"`
		MessageID int64 `json:"message_id"`
	}{ref.ChatID, ref.MessageID}

	return c.call(ctx, "deleteMessage", payload, nil)
}

// AnswerCallback acknowledges a callback query so the client stops showing
// a progress spinner. text, when set, appears as a toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	payload := struct {
		CallbackQueryID string `json:"callback_query_id"`
		Text            string `json:"text,omitempty"`
	}{callbackID, text}

	return c.call(ctx, "answerCallbackQuery", payload, nil)
}
