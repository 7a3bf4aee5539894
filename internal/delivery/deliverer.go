package delivery

import (
	"context"
	"log/slog"

	"marquee/internal/enrich"
	"marquee/internal/logging"
	"marquee/internal/mediaprobe"
)

// Deliverer runs the fallback chain against a Sink.
type Deliverer struct {
	sink           Sink
	placeholderURL string
	logger         *slog.Logger
}

// DelivererOption customizes a Deliverer.
type DelivererOption func(*Deliverer)

// WithPlaceholder sets the static image sent when an item has no usable
// media. Empty disables the placeholder stage.
func WithPlaceholder(url string) DelivererOption {
	return func(d *Deliverer) {
		d.placeholderURL = url
	}
}

// WithLogger attaches a logger for fallback diagnostics.
func WithLogger(logger *slog.Logger) DelivererOption {
	return func(d *Deliverer) {
		if logger != nil {
			d.logger = logging.NewComponentLogger(logger, "delivery")
		}
	}
}

// NewDeliverer builds a Deliverer writing to sink.
func NewDeliverer(sink Sink, opts ...DelivererOption) *Deliverer {
	d := &Deliverer{
		sink:   sink,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver sends item to dest, degrading stage by stage until something gets
// through. A Failed outcome is fatal for this chat/item pair only; callers
// keep delivering to other destinations.
func (d *Deliverer) Deliver(ctx context.Context, item *enrich.Item, dest Destination, view View) Outcome {
	caption, nav := Render(item, view)

	if item.Media.Kind() == mediaprobe.KindVerified {
		if outcome, ok := d.sendVerified(ctx, item, dest, caption, nav); ok {
			return outcome
		}
	}
	return d.sendDegraded(ctx, item, dest, caption, nav)
}

// sendVerified covers the handle and raw-URL stages. The raw send runs
// inside the item's handle critical section so concurrent deliveries of the
// same item never allocate two handles: the loser of the race observes the
// winner's handle and reuses it.
func (d *Deliverer) sendVerified(ctx context.Context, item *enrich.Item, dest Destination, caption string, nav Keyboard) (Outcome, bool) {
	if handle := item.Media.Handle(); handle != "" {
		ref, _, err := d.sink.SendMedia(ctx, dest, handle, caption, nav)
		if err != nil {
			d.logger.Warn("handle send failed",
				logging.Int64(logging.FieldChatID, dest.ChatID),
				logging.Int64(logging.FieldItemID, item.Raw.ID),
				logging.Error(err))
			return Outcome{}, false
		}
		return Outcome{Status: StatusSent, Handle: handle, Message: ref}, true
	}

	var ref MessageRef
	handle, acquired, err := item.Media.EnsureHandle(func() (string, error) {
		sentRef, sentHandle, sendErr := d.sink.SendMedia(ctx, dest, item.Media.Candidate().URL, caption, nav)
		if sendErr != nil {
			return "", sendErr
		}
		ref = sentRef
		return sentHandle, nil
	})
	if err != nil {
		d.logger.Warn("raw media send failed",
			logging.Int64(logging.FieldChatID, dest.ChatID),
			logging.Int64(logging.FieldItemID, item.Raw.ID),
			logging.Error(err))
		return Outcome{}, false
	}
	if !acquired {
		// Another delivery captured the handle while we waited; send
		// with it instead of re-transmitting the raw URL.
		sentRef, _, sendErr := d.sink.SendMedia(ctx, dest, handle, caption, nav)
		if sendErr != nil {
			d.logger.Warn("handle send failed",
				logging.Int64(logging.FieldChatID, dest.ChatID),
				logging.Int64(logging.FieldItemID, item.Raw.ID),
				logging.Error(sendErr))
			return Outcome{}, false
		}
		ref = sentRef
	}
	return Outcome{Status: StatusSent, Handle: handle, Message: ref}, true
}

// unavailableNote marks captions whose media could not be delivered.
const unavailableNote = "_Poster unavailable_"

// sendDegraded covers the placeholder and text stages.
func (d *Deliverer) sendDegraded(ctx context.Context, item *enrich.Item, dest Destination, caption string, nav Keyboard) Outcome {
	caption = caption + "\n\n" + unavailableNote
	if d.placeholderURL != "" {
		ref, _, err := d.sink.SendMedia(ctx, dest, d.placeholderURL, caption, nav)
		if err == nil {
			return Outcome{Status: StatusSentDegraded, Reason: ReasonMediaUnavailable, Message: ref}
		}
		d.logger.Warn("placeholder send failed",
			logging.Int64(logging.FieldChatID, dest.ChatID),
			logging.Int64(logging.FieldItemID, item.Raw.ID),
			logging.Error(err))
	}

	ref, err := d.sink.SendText(ctx, dest, caption, nav)
	if err != nil {
		d.logger.Error("text send failed, giving up on destination",
			logging.Int64(logging.FieldChatID, dest.ChatID),
			logging.Int64(logging.FieldItemID, item.Raw.ID),
			logging.Error(err))
		return Outcome{Status: StatusFailed, Reason: err.Error()}
	}
	return Outcome{Status: StatusSentDegraded, Reason: ReasonMediaSendFailed, Message: ref}
}

// Notify sends a bare text notice with no media or keyboard.
func (d *Deliverer) Notify(ctx context.Context, dest Destination, text string) error {
	_, err := d.sink.SendText(ctx, dest, text, Keyboard{})
	return err
}

// Expire rewrites a message's caption and strips its keyboard, marking the
// underlying session as gone.
func (d *Deliverer) Expire(ctx context.Context, ref MessageRef, text string) error {
	return d.sink.EditCaption(ctx, ref, text, Keyboard{})
}

// Redraw re-renders an existing message in place for navigation. It prefers
// a media edit (handle, then raw URL, then placeholder) and falls back to a
// caption-only edit when the media edit is rejected.
func (d *Deliverer) Redraw(ctx context.Context, item *enrich.Item, ref MessageRef, view View) error {
	caption, nav := Render(item, view)

	mediaRef := d.placeholderURL
	if item.Media.Kind() == mediaprobe.KindVerified {
		if handle := item.Media.Handle(); handle != "" {
			mediaRef = handle
		} else {
			mediaRef = item.Media.Candidate().URL
		}
	} else {
		caption = caption + "\n\n" + unavailableNote
	}

	if mediaRef != "" {
		err := d.sink.EditMedia(ctx, ref, mediaRef, caption, nav)
		if err == nil {
			return nil
		}
		d.logger.Warn("media edit failed, retrying caption only",
			logging.Int64(logging.FieldChatID, ref.ChatID),
			logging.Int64(logging.FieldItemID, item.Raw.ID),
			logging.Error(err))
	}
	return d.sink.EditCaption(ctx, ref, caption, nav)
}
