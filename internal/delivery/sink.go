package delivery

import "context"

// Destination identifies one chat to deliver into.
type Destination struct {
	ChatID int64
}

// MessageRef identifies a previously-sent message for in-place edits.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Button is one navigation control. Exactly one of Data (opaque callback
// payload) or URL (external link) is set.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Keyboard is the inline control layout attached to a message.
type Keyboard struct {
	Rows [][]Button
}

// Empty reports whether the keyboard has no buttons at all.
func (k Keyboard) Empty() bool {
	return len(k.Rows) == 0
}

// Sink is the messaging provider the deliverer writes to. mediaRef is either
// a raw media URL or a provider handle from an earlier send; the provider
// distinguishes the two itself. SendMedia returns the durable handle the
// provider assigned to the transmitted media.
type Sink interface {
	SendMedia(ctx context.Context, dest Destination, mediaRef, caption string, nav Keyboard) (MessageRef, string, error)
	SendText(ctx context.Context, dest Destination, caption string, nav Keyboard) (MessageRef, error)
	EditMedia(ctx context.Context, ref MessageRef, mediaRef, caption string, nav Keyboard) error
	EditCaption(ctx context.Context, ref MessageRef, caption string, nav Keyboard) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
}
