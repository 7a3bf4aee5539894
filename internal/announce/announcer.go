package announce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/delivery"
	"marquee/internal/enrich"
	"marquee/internal/logging"
	"marquee/internal/session"
	"marquee/internal/subscribers"
	"marquee/internal/token"
)

// User-visible copy for degraded states.
const (
	tryLaterText        = "The release catalog is unavailable right now. Try again later."
	sessionGoneText     = "This list has expired. Request the digest again."
	nothingTodayText    = "Nothing releases today."
	nothingUpcomingText = "Nothing is scheduled in the next 90 days."
)

// Pipeline is the enrichment stage the announcer drives.
type Pipeline interface {
	Enrich(ctx context.Context, raws []catalog.RawItem) []*enrich.Item
}

// SessionStore is the slice of the pagination store the announcer needs.
type SessionStore interface {
	Commit(items []*enrich.Item) string
	Get(key string, index int) (*enrich.Item, error)
	Len(key string) (int, error)
}

// Deliverer sends rendered items, redraws them during navigation, and
// carries plain-text notices.
type Deliverer interface {
	Deliver(ctx context.Context, item *enrich.Item, dest delivery.Destination, view delivery.View) delivery.Outcome
	Redraw(ctx context.Context, item *enrich.Item, ref delivery.MessageRef, view delivery.View) error
	Notify(ctx context.Context, dest delivery.Destination, text string) error
	Expire(ctx context.Context, ref delivery.MessageRef, text string) error
}

// Directory lists the chats that receive scheduled digests.
type Directory interface {
	List(ctx context.Context) ([]subscribers.Subscriber, error)
}

// Config bounds a digest run.
type Config struct {
	Region         string
	ItemLimit      int
	EnrichDeadline time.Duration
}

// Announcer wires the pipeline stages into digest runs and navigation
// handling.
type Announcer struct {
	source    catalog.Source
	pipeline  Pipeline
	sessions  SessionStore
	deliverer Deliverer
	directory Directory
	pacer     *delivery.Pacer
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes an Announcer.
type Option func(*Announcer)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Announcer) {
		if logger != nil {
			a.logger = logging.NewComponentLogger(logger, "announce")
		}
	}
}

// WithClock overrides the time source used to pick the digest day.
func WithClock(now func() time.Time) Option {
	return func(a *Announcer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithPacer spaces consecutive sends per destination.
func WithPacer(pacer *delivery.Pacer) Option {
	return func(a *Announcer) {
		a.pacer = pacer
	}
}

// New builds an Announcer.
func New(source catalog.Source, pipeline Pipeline, sessions SessionStore, deliverer Deliverer, directory Directory, cfg Config, opts ...Option) *Announcer {
	if cfg.ItemLimit <= 0 {
		cfg.ItemLimit = 5
	}
	if cfg.EnrichDeadline <= 0 {
		cfg.EnrichDeadline = 30 * time.Second
	}
	a := &Announcer{
		source:    source,
		pipeline:  pipeline,
		sessions:  sessions,
		deliverer: deliverer,
		directory: directory,
		cfg:       cfg,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunDigest fetches today's releases of the given kind and delivers the
// first page to every subscriber. Per-destination failures are logged and
// skipped; only a source failure aborts the run.
func (a *Announcer) RunDigest(ctx context.Context, kind catalog.Kind, heading string) error {
	dests, err := a.destinations(ctx)
	if err != nil {
		return err
	}
	if len(dests) == 0 {
		a.logger.Info("no subscribers, skipping digest", logging.String(logging.FieldDigestKind, string(kind)))
		return nil
	}
	return a.digest(ctx, kind, heading, dests)
}

// RunNextDigest delivers the soonest upcoming releases of the given kind to
// every subscriber, searching the source's ninety-day window.
func (a *Announcer) RunNextDigest(ctx context.Context, kind catalog.Kind, heading string) error {
	dests, err := a.destinations(ctx)
	if err != nil {
		return err
	}
	if len(dests) == 0 {
		a.logger.Info("no subscribers, skipping upcoming digest", logging.String(logging.FieldDigestKind, string(kind)))
		return nil
	}
	return a.nextDigest(ctx, kind, heading, dests)
}

// NextDigestTo runs an upcoming-releases digest for a single requesting
// chat. Source failures are reported into the chat like DigestTo.
func (a *Announcer) NextDigestTo(ctx context.Context, kind catalog.Kind, heading string, dest delivery.Destination) error {
	err := a.nextDigest(ctx, kind, heading, []delivery.Destination{dest})
	if errors.Is(err, ErrSourceUnavailable) {
		a.reportOutage(ctx, dest)
	}
	return err
}

func (a *Announcer) destinations(ctx context.Context) ([]delivery.Destination, error) {
	subs, err := a.directory.List(ctx)
	if err != nil {
		return nil, Wrap(ErrDeliveryFailed, "digest", "list subscribers", "", err)
	}
	dests := make([]delivery.Destination, 0, len(subs))
	for _, sub := range subs {
		dests = append(dests, delivery.Destination{ChatID: sub.ChatID})
	}
	return dests, nil
}

// DigestTo runs a digest for a single requesting chat. Source failures are
// reported into the chat as a "try later" message in addition to the
// returned error.
func (a *Announcer) DigestTo(ctx context.Context, kind catalog.Kind, heading string, dest delivery.Destination) error {
	err := a.digest(ctx, kind, heading, []delivery.Destination{dest})
	if errors.Is(err, ErrSourceUnavailable) {
		a.reportOutage(ctx, dest)
	}
	return err
}

func (a *Announcer) reportOutage(ctx context.Context, dest delivery.Destination) {
	if err := a.deliverer.Notify(ctx, dest, tryLaterText); err != nil {
		a.logger.Warn("failed to report source outage",
			logging.Int64(logging.FieldChatID, dest.ChatID),
			logging.Error(err))
	}
}

// RunYearDigest delivers the top movies first released on today's calendar
// day in the given year to every subscriber.
func (a *Announcer) RunYearDigest(ctx context.Context, year int, heading string) error {
	dests, err := a.destinations(ctx)
	if err != nil {
		return err
	}
	if len(dests) == 0 {
		a.logger.Info("no subscribers, skipping year digest", logging.Int("year", year))
		return nil
	}

	monthDay := a.now().UTC().Format("01-02")
	raws, err := a.source.YearReleases(ctx, year, monthDay, a.cfg.ItemLimit)
	if err != nil {
		return Wrap(ErrSourceUnavailable, "digest", "fetch year releases", strconv.Itoa(year), err)
	}
	if len(raws) == 0 {
		a.logger.Info("no releases for year day",
			logging.Int("year", year),
			logging.String("month_day", monthDay))
		a.broadcastText(ctx, dests, fmt.Sprintf("Nothing from %d released on this day.", year))
		return nil
	}
	return a.publish(ctx, strconv.Itoa(year), heading, raws, dests)
}

func (a *Announcer) digest(ctx context.Context, kind catalog.Kind, heading string, dests []delivery.Destination) error {
	day := a.now().UTC().Format("2006-01-02")
	raws, err := a.source.DayReleases(ctx, catalog.Query{
		Kind:   kind,
		Day:    day,
		Region: a.cfg.Region,
		Limit:  a.cfg.ItemLimit,
	})
	if err != nil {
		return Wrap(ErrSourceUnavailable, "digest", "fetch releases", string(kind), err)
	}
	if len(raws) == 0 {
		a.logger.Info("no releases for day",
			logging.String(logging.FieldDigestKind, string(kind)),
			logging.String("day", day))
		a.broadcastText(ctx, dests, nothingTodayText)
		return nil
	}
	return a.publish(ctx, string(kind), heading, raws, dests)
}

func (a *Announcer) nextDigest(ctx context.Context, kind catalog.Kind, heading string, dests []delivery.Destination) error {
	day := a.now().UTC().Format("2006-01-02")
	raws, err := a.source.NextReleases(ctx, catalog.Query{
		Kind:   kind,
		Day:    day,
		Region: a.cfg.Region,
		Limit:  a.cfg.ItemLimit,
	})
	if err != nil {
		return Wrap(ErrSourceUnavailable, "digest", "fetch upcoming releases", string(kind), err)
	}
	if len(raws) == 0 {
		a.logger.Info("no upcoming releases in window",
			logging.String(logging.FieldDigestKind, string(kind)),
			logging.String("day", day))
		a.broadcastText(ctx, dests, nothingUpcomingText)
		return nil
	}
	return a.publish(ctx, string(kind), heading, raws, dests)
}

// publish enriches raws, commits them as a pagination session, and delivers
// the first page to every destination.
func (a *Announcer) publish(ctx context.Context, label, heading string, raws []catalog.RawItem, dests []delivery.Destination) error {
	enrichCtx, cancel := context.WithTimeout(ctx, a.cfg.EnrichDeadline)
	items := a.pipeline.Enrich(enrichCtx, raws)
	cancel()
	if len(items) == 0 {
		return Wrap(ErrSourceUnavailable, "digest", "enrich", "no items completed before deadline", ctx.Err())
	}
	if len(items) < len(raws) {
		a.logger.Warn("partial enrichment committed",
			logging.String(logging.FieldDigestKind, label),
			logging.Int("completed", len(items)),
			logging.Int("requested", len(raws)))
	}

	key := a.sessions.Commit(items)
	view := delivery.View{Heading: heading, Index: 0, Total: len(items), SessionKey: key}

	for _, dest := range dests {
		if err := a.pacer.Wait(ctx, dest); err != nil {
			return Wrap(ErrDeliveryFailed, "digest", "pacing", "", err)
		}
		outcome := a.deliverer.Deliver(ctx, items[0], dest, view)
		if outcome.Status == delivery.StatusFailed {
			a.logger.Warn("destination skipped",
				logging.Int64(logging.FieldChatID, dest.ChatID),
				logging.String(logging.FieldSessionKey, key),
				logging.String("reason", outcome.Reason))
			continue
		}
		a.logger.Info("digest delivered",
			logging.Int64(logging.FieldChatID, dest.ChatID),
			logging.String(logging.FieldSessionKey, key),
			logging.String("status", outcome.Status.String()))
	}
	return nil
}

// HandleNavigation serves one callback. Boundary presses and the position
// no-op return nil without touching the message. Expired sessions rewrite
// the caption with a "request again" notice and report ErrSessionExpired so
// the caller can acknowledge the callback accordingly.
func (a *Announcer) HandleNavigation(ctx context.Context, data string, ref delivery.MessageRef) error {
	if data == delivery.NoopData {
		return nil
	}
	tok, err := token.Decode(data)
	if err != nil {
		return Wrap(ErrInvalidToken, "navigate", "decode token", "", err)
	}

	item, err := a.sessions.Get(tok.SessionKey, tok.Index)
	switch {
	case errors.Is(err, session.ErrExpired):
		if editErr := a.deliverer.Expire(ctx, ref, sessionGoneText); editErr != nil {
			a.logger.Warn("failed to mark expired session",
				logging.String(logging.FieldSessionKey, tok.SessionKey),
				logging.Error(editErr))
		}
		return Wrap(ErrSessionExpired, "navigate", "session lookup", tok.SessionKey, err)
	case errors.Is(err, session.ErrNotFound):
		// Boundary press from a stale keyboard; nothing to redraw.
		return nil
	case err != nil:
		return Wrap(ErrDeliveryFailed, "navigate", "session lookup", tok.SessionKey, err)
	}

	total, err := a.sessions.Len(tok.SessionKey)
	if err != nil {
		return Wrap(ErrSessionExpired, "navigate", "session length", tok.SessionKey, err)
	}

	view := delivery.View{Index: tok.Index, Total: total, SessionKey: tok.SessionKey}
	if err := a.deliverer.Redraw(ctx, item, ref, view); err != nil {
		return Wrap(ErrDeliveryFailed, "navigate", "redraw", "", err)
	}
	return nil
}

func (a *Announcer) broadcastText(ctx context.Context, dests []delivery.Destination, text string) {
	for _, dest := range dests {
		if err := a.pacer.Wait(ctx, dest); err != nil {
			return
		}
		if err := a.deliverer.Notify(ctx, dest, text); err != nil {
			a.logger.Warn("text broadcast failed",
				logging.Int64(logging.FieldChatID, dest.ChatID),
				logging.Error(err))
		}
	}
}
