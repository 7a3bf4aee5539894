package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/announce"
	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/delivery"
	"marquee/internal/logging"
	"marquee/internal/subscribers"
	"marquee/internal/telegram"
)

const (
	movieHeading      = "🎬 Digital movie releases today:"
	seriesHeading     = "📺 Series premieres today:"
	nextMovieHeading  = "🎬 Upcoming digital movie releases:"
	nextSeriesHeading = "📺 Upcoming series premieres:"

	welcomeText = "Subscribed. You will receive the daily release digest here.\n" +
		"Commands: /releases_movie, /releases_series, /next_movie, /next_series, /stop."
	goodbyeText = "Unsubscribed. Send /start to subscribe again."
)

// Components are the collaborators the daemon coordinates. All fields are
// required.
type Components struct {
	Announcer *announce.Announcer
	Registry  *subscribers.Store
	Client    *telegram.Client
	Poller    *telegram.Poller
	Deliverer *delivery.Deliverer
}

// Daemon owns the schedule loop and update dispatch for one process.
type Daemon struct {
	cfg    *config.Config
	comps  Components
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock
	loc      *time.Location
	now      func() time.Time
}

// New constructs a daemon. The digest timezone must already be validated by
// config.Validate.
func New(cfg *config.Config, comps Components, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if comps.Announcer == nil || comps.Registry == nil || comps.Client == nil || comps.Poller == nil || comps.Deliverer == nil {
		return nil, errors.New("daemon requires announcer, registry, client, poller, and deliverer")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	loc, err := time.LoadLocation(cfg.Digest.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load digest timezone: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "marquee.lock")
	return &Daemon{
		cfg:      cfg,
		comps:    comps,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		loc:      loc,
		now:      time.Now,
	}, nil
}

// Run acquires the instance lock and blocks serving schedule ticks and
// updates until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another marquee instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release instance lock", logging.Error(err))
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.scheduleLoop(runCtx)
	}()
	go func() {
		defer wg.Done()
		if err := d.comps.Poller.Run(runCtx, telegram.Events{
			OnCommand:  d.handleCommand,
			OnCallback: d.handleCallback,
		}); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("poller stopped", logging.Error(err))
			cancel()
		}
	}()

	d.logger.Info("marquee daemon started",
		logging.String("lock", d.lockPath),
		logging.String("digest_time", fmt.Sprintf("%02d:%02d %s", d.cfg.Digest.Hour, d.cfg.Digest.Minute, d.cfg.Digest.Timezone)))

	<-runCtx.Done()
	wg.Wait()
	d.logger.Info("marquee daemon stopped")
	return ctx.Err()
}

// scheduleLoop fires the movie and series digests once per day at the
// configured local time.
func (d *Daemon) scheduleLoop(ctx context.Context) {
	for {
		next := nextRun(d.now().In(d.loc), d.cfg.Digest.Hour, d.cfg.Digest.Minute)
		d.logger.Info("next digest scheduled", logging.String("at", next.Format(time.RFC3339)))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		d.runScheduledDigests(ctx)
	}
}

func (d *Daemon) runScheduledDigests(ctx context.Context) {
	if err := d.comps.Announcer.RunDigest(ctx, catalog.KindMovie, movieHeading); err != nil {
		d.logger.Error("movie digest failed",
			logging.String(logging.FieldDigestKind, string(catalog.KindMovie)),
			logging.Error(err))
	}
	if err := d.comps.Announcer.RunDigest(ctx, catalog.KindSeries, seriesHeading); err != nil {
		d.logger.Error("series digest failed",
			logging.String(logging.FieldDigestKind, string(catalog.KindSeries)),
			logging.Error(err))
	}
}

// nextRun returns the first hour:minute instant after now in now's location.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (d *Daemon) handleCommand(ctx context.Context, cmd telegram.Command) {
	dest := delivery.Destination{ChatID: cmd.ChatID}
	logger := d.logger.With(logging.Int64(logging.FieldChatID, cmd.ChatID))

	switch cmd.Name {
	case "start":
		if _, err := d.comps.Registry.Add(ctx, cmd.ChatID); err != nil {
			logger.Error("subscribe failed", logging.Error(err))
			return
		}
		if err := d.comps.Deliverer.Notify(ctx, dest, welcomeText); err != nil {
			logger.Warn("welcome send failed", logging.Error(err))
		}
	case "stop":
		if _, err := d.comps.Registry.Remove(ctx, cmd.ChatID); err != nil {
			logger.Error("unsubscribe failed", logging.Error(err))
			return
		}
		if err := d.comps.Deliverer.Notify(ctx, dest, goodbyeText); err != nil {
			logger.Warn("goodbye send failed", logging.Error(err))
		}
	case "releases_movie":
		if err := d.comps.Announcer.DigestTo(ctx, catalog.KindMovie, movieHeading, dest); err != nil {
			logger.Warn("on-demand movie digest failed", logging.Error(err))
		}
	case "releases_series":
		if err := d.comps.Announcer.DigestTo(ctx, catalog.KindSeries, seriesHeading, dest); err != nil {
			logger.Warn("on-demand series digest failed", logging.Error(err))
		}
	case "next_movie":
		if err := d.comps.Announcer.NextDigestTo(ctx, catalog.KindMovie, nextMovieHeading, dest); err != nil {
			logger.Warn("upcoming movie digest failed", logging.Error(err))
		}
	case "next_series":
		if err := d.comps.Announcer.NextDigestTo(ctx, catalog.KindSeries, nextSeriesHeading, dest); err != nil {
			logger.Warn("upcoming series digest failed", logging.Error(err))
		}
	case "help":
		if err := d.comps.Deliverer.Notify(ctx, dest, welcomeText); err != nil {
			logger.Warn("help send failed", logging.Error(err))
		}
	default:
		logger.Debug("ignoring unknown command", logging.String("command", cmd.Name))
	}
}

func (d *Daemon) handleCallback(ctx context.Context, cb telegram.Callback) {
	logger := d.logger.With(logging.Int64(logging.FieldChatID, cb.ChatID))

	err := d.comps.Announcer.HandleNavigation(ctx, cb.Data, cb.Message)
	toast := ""
	switch {
	case errors.Is(err, announce.ErrSessionExpired):
		toast = "This list has expired."
	case errors.Is(err, announce.ErrInvalidToken):
		logger.Debug("dropping invalid callback", logging.Error(err))
	case err != nil:
		logger.Warn("navigation failed", logging.Error(err))
	}
	if ackErr := d.comps.Client.AnswerCallback(ctx, cb.ID, toast); ackErr != nil {
		logger.Warn("callback ack failed", logging.Error(ackErr))
	}
}
