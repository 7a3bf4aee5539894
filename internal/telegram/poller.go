package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/delivery"
	"marquee/internal/logging"
)

// Command is a slash command received from a chat, with the leading slash
// and any @botname suffix stripped.
type Command struct {
	ChatID int64
	Name   string
	Args   string
}

// Callback is a pressed inline button awaiting acknowledgement.
type Callback struct {
	ID      string
	Data    string
	ChatID  int64
	Message delivery.MessageRef
}

// Events routes polled updates. Nil handlers drop their update kind.
type Events struct {
	OnCommand  func(ctx context.Context, cmd Command)
	OnCallback func(ctx context.Context, cb Callback)
}

// Poller drives the getUpdates long-poll loop.
type Poller struct {
	client  *Client
	timeout int
	logger  *slog.Logger
}

// NewPoller builds a poller on top of client. timeoutSeconds is the
// long-poll hold time; values below 1 fall back to 30.
func NewPoller(client *Client, timeoutSeconds int, logger *slog.Logger) *Poller {
	if timeoutSeconds < 1 {
		timeoutSeconds = 30
	}
	if logger == nil {
		logger = logging.NewNop()
	} else {
		logger = logging.NewComponentLogger(logger, "telegram-poller")
	}
	return &Poller{client: client, timeout: timeoutSeconds, logger: logger}
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
	Callback *struct {
		ID      string   `json:"id"`
		Data    string   `json:"data"`
		Message *message `json:"message"`
	} `json:"callback_query"`
}

// Run polls until ctx is cancelled. Transport errors are logged and retried
// after a short pause; handler panics are not recovered.
func (p *Poller) Run(ctx context.Context, events Events) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := p.fetch(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("update poll failed", logging.Error(err))
			if err := sleepCtx(ctx, 3*time.Second); err != nil {
				return err
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			p.dispatch(ctx, u, events)
		}
	}
}

func (p *Poller) fetch(ctx context.Context, offset int64) ([]update, error) {
	payload := struct {
		Offset         int64    `json:"offset,omitempty"`
		Timeout        int      `json:"timeout"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{offset, p.timeout, []string{"message", "callback_query"}}

	var updates []update
	if err := p.client.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (p *Poller) dispatch(ctx context.Context, u update, events Events) {
	switch {
	case u.Callback != nil:
		if events.OnCallback == nil {
			return
		}
		cb := Callback{ID: u.Callback.ID, Data: u.Callback.Data}
		if m := u.Callback.Message; m != nil {
			cb.ChatID = m.Chat.ID
			cb.Message = delivery.MessageRef{ChatID: m.Chat.ID, MessageID: m.MessageID}
		}
		events.OnCallback(ctx, cb)
	case u.Message != nil && strings.HasPrefix(u.Message.Text, "/"):
		if events.OnCommand == nil {
			return
		}
		name, args := splitCommand(u.Message.Text)
		events.OnCommand(ctx, Command{ChatID: u.Message.Chat.ID, Name: name, Args: args})
	}
}

// splitCommand parses "/start@somebot extra words" into ("start", "extra words").
func splitCommand(text string) (string, string) {
	text = strings.TrimPrefix(text, "/")
	name, args, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), strings.TrimSpace(args)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
