package announce_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"marquee/internal/announce"
	"marquee/internal/catalog"
	"marquee/internal/delivery"
	"marquee/internal/enrich"
	"marquee/internal/mediaprobe"
	"marquee/internal/session"
	"marquee/internal/subscribers"
	"marquee/internal/token"
)

type fakeSource struct {
	raws     []catalog.RawItem
	yearRaws []catalog.RawItem
	nextRaws []catalog.RawItem
	err      error
}

func (f *fakeSource) DayReleases(_ context.Context, q catalog.Query) ([]catalog.RawItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	if q.Limit > 0 && len(f.raws) > q.Limit {
		return f.raws[:q.Limit], nil
	}
	return f.raws, nil
}

func (f *fakeSource) YearReleases(_ context.Context, _ int, _ string, limit int) ([]catalog.RawItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.yearRaws) > limit {
		return f.yearRaws[:limit], nil
	}
	return f.yearRaws, nil
}

func (f *fakeSource) NextReleases(_ context.Context, q catalog.Query) ([]catalog.RawItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	if q.Limit > 0 && len(f.nextRaws) > q.Limit {
		return f.nextRaws[:q.Limit], nil
	}
	return f.nextRaws, nil
}

// passPipeline enriches synchronously: empty pointers become Unavailable,
// everything else Verified.
type passPipeline struct{}

func (passPipeline) Enrich(_ context.Context, raws []catalog.RawItem) []*enrich.Item {
	items := make([]*enrich.Item, 0, len(raws))
	for _, raw := range raws {
		item := &enrich.Item{Raw: raw, Summary: raw.Summary}
		if raw.PosterPath == "" {
			item.Media = mediaprobe.Unavailable()
		} else {
			item.Media = mediaprobe.Verified(mediaprobe.Candidate{URL: "https://img/" + raw.PosterPath, Variant: "w780"})
		}
		items = append(items, item)
	}
	return items
}

type fakeDirectory struct {
	chats []int64
}

func (f *fakeDirectory) List(context.Context) ([]subscribers.Subscriber, error) {
	subs := make([]subscribers.Subscriber, 0, len(f.chats))
	for _, id := range f.chats {
		subs = append(subs, subscribers.Subscriber{ChatID: id})
	}
	return subs, nil
}

type sinkCall struct {
	op       string
	chatID   int64
	mediaRef string
	caption  string
	nav      delivery.Keyboard
}

type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (f *fakeSink) record(c sinkCall) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeSink) SendMedia(_ context.Context, dest delivery.Destination, mediaRef, caption string, nav delivery.Keyboard) (delivery.MessageRef, string, error) {
	f.record(sinkCall{op: "sendMedia", chatID: dest.ChatID, mediaRef: mediaRef, caption: caption, nav: nav})
	return delivery.MessageRef{ChatID: dest.ChatID, MessageID: int64(len(f.calls))}, "handle-x", nil
}

func (f *fakeSink) SendText(_ context.Context, dest delivery.Destination, caption string, nav delivery.Keyboard) (delivery.MessageRef, error) {
	f.record(sinkCall{op: "sendText", chatID: dest.ChatID, caption: caption, nav: nav})
	return delivery.MessageRef{ChatID: dest.ChatID, MessageID: int64(len(f.calls))}, nil
}

func (f *fakeSink) EditMedia(_ context.Context, ref delivery.MessageRef, mediaRef, caption string, nav delivery.Keyboard) error {
	f.record(sinkCall{op: "editMedia", chatID: ref.ChatID, mediaRef: mediaRef, caption: caption, nav: nav})
	return nil
}

func (f *fakeSink) EditCaption(_ context.Context, ref delivery.MessageRef, caption string, nav delivery.Keyboard) error {
	f.record(sinkCall{op: "editCaption", chatID: ref.ChatID, caption: caption, nav: nav})
	return nil
}

func (f *fakeSink) DeleteMessage(context.Context, delivery.MessageRef) error { return nil }

func (f *fakeSink) byOp(op string) []sinkCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sinkCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func digestRaws() []catalog.RawItem {
	raws := make([]catalog.RawItem, 0, 5)
	titles := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}
	for i, title := range titles {
		raw := catalog.RawItem{
			ID:      int64(i + 1),
			Kind:    catalog.KindMovie,
			Title:   title,
			Summary: title + " summary",
		}
		// Items 2 and 5 have no poster at all.
		if i != 1 && i != 4 {
			raw.PosterPath = "/" + strings.ToLower(title) + ".jpg"
		}
		raws = append(raws, raw)
	}
	return raws
}

func newAnnouncer(source *fakeSource, sink *fakeSink, chats ...int64) (*announce.Announcer, *session.Store) {
	sessions := session.NewStore(session.Config{})
	deliverer := delivery.NewDeliverer(sink, delivery.WithPlaceholder("https://cdn/placeholder.png"))
	return announce.New(source, passPipeline{}, sessions, deliverer, &fakeDirectory{chats: chats},
		announce.Config{ItemLimit: 5}), sessions
}

func TestRunDigestDeliversFirstPageToAllSubscribers(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{raws: digestRaws()}, sink, 10, 20)

	if err := announcer.RunDigest(context.Background(), catalog.KindMovie, "Out today:"); err != nil {
		t.Fatalf("RunDigest failed: %v", err)
	}

	sends := sink.byOp("sendMedia")
	if len(sends) != 2 {
		t.Fatalf("expected one send per subscriber, got %d", len(sends))
	}
	seen := map[int64]bool{}
	for _, send := range sends {
		seen[send.chatID] = true
		if !strings.Contains(send.caption, "Alpha") {
			t.Fatalf("first page should show the first item, got %q", send.caption)
		}
		if !strings.Contains(send.caption, "Out today:") {
			t.Fatalf("heading missing from caption: %q", send.caption)
		}
	}
	if !seen[10] || !seen[20] {
		t.Fatalf("not every subscriber was served: %v", seen)
	}
}

func TestRunDigestSourceFailure(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{err: catalog.ErrUnavailable}, sink, 10)

	err := announcer.RunDigest(context.Background(), catalog.KindMovie, "Out today:")
	if !errors.Is(err, announce.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if len(sink.byOp("sendMedia")) != 0 {
		t.Fatal("a failed fetch must not deliver anything")
	}
}

func TestDigestToReportsOutageToChat(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{err: catalog.ErrUnavailable}, sink)

	err := announcer.DigestTo(context.Background(), catalog.KindMovie, "Out today:", delivery.Destination{ChatID: 9})
	if !errors.Is(err, announce.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	texts := sink.byOp("sendText")
	if len(texts) != 1 || !strings.Contains(texts[0].caption, "Try again later") {
		t.Fatalf("expected a try-later notice, got %+v", texts)
	}
}

func TestRunDigestEmptyDayNotifies(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{}, sink, 10)

	if err := announcer.RunDigest(context.Background(), catalog.KindMovie, "Out today:"); err != nil {
		t.Fatalf("RunDigest failed: %v", err)
	}
	texts := sink.byOp("sendText")
	if len(texts) != 1 || !strings.Contains(texts[0].caption, "Nothing releases today") {
		t.Fatalf("expected an empty-day notice, got %+v", texts)
	}
}

func TestRunYearDigestDeliversFirstPage(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{yearRaws: digestRaws()[:2]}, sink, 10)

	if err := announcer.RunYearDigest(context.Background(), 2001, "From 2001:"); err != nil {
		t.Fatalf("RunYearDigest failed: %v", err)
	}
	sends := sink.byOp("sendMedia")
	if len(sends) != 1 {
		t.Fatalf("expected one send, got %d", len(sends))
	}
	if !strings.Contains(sends[0].caption, "From 2001:") || !strings.Contains(sends[0].caption, "Alpha") {
		t.Fatalf("year digest caption wrong: %q", sends[0].caption)
	}
}

func TestRunYearDigestEmptyDayNotifies(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{}, sink, 10)

	if err := announcer.RunYearDigest(context.Background(), 1988, "From 1988:"); err != nil {
		t.Fatalf("RunYearDigest failed: %v", err)
	}
	texts := sink.byOp("sendText")
	if len(texts) != 1 || !strings.Contains(texts[0].caption, "Nothing from 1988") {
		t.Fatalf("expected an empty-year notice, got %+v", texts)
	}
}

func TestRunNextDigestDeliversUpcomingPage(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{nextRaws: digestRaws()[:3]}, sink, 10)

	if err := announcer.RunNextDigest(context.Background(), catalog.KindMovie, "Coming up:"); err != nil {
		t.Fatalf("RunNextDigest failed: %v", err)
	}
	sends := sink.byOp("sendMedia")
	if len(sends) != 1 {
		t.Fatalf("expected one send, got %d", len(sends))
	}
	if !strings.Contains(sends[0].caption, "Coming up:") || !strings.Contains(sends[0].caption, "Alpha") {
		t.Fatalf("upcoming digest caption wrong: %q", sends[0].caption)
	}
}

func TestNextDigestToEmptyWindowNotifies(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{}, sink)

	if err := announcer.NextDigestTo(context.Background(), catalog.KindSeries, "Coming up:", delivery.Destination{ChatID: 9}); err != nil {
		t.Fatalf("NextDigestTo failed: %v", err)
	}
	texts := sink.byOp("sendText")
	if len(texts) != 1 || !strings.Contains(texts[0].caption, "Nothing is scheduled") {
		t.Fatalf("expected an empty-window notice, got %+v", texts)
	}
}

func TestNextDigestToReportsOutageToChat(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{err: catalog.ErrUnavailable}, sink)

	err := announcer.NextDigestTo(context.Background(), catalog.KindMovie, "Coming up:", delivery.Destination{ChatID: 9})
	if !errors.Is(err, announce.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	texts := sink.byOp("sendText")
	if len(texts) != 1 || !strings.Contains(texts[0].caption, "Try again later") {
		t.Fatalf("expected a try-later notice, got %+v", texts)
	}
}

func TestRunDigestWithoutSubscribersIsNoop(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{raws: digestRaws()}, sink)

	if err := announcer.RunDigest(context.Background(), catalog.KindMovie, "Out today:"); err != nil {
		t.Fatalf("RunDigest failed: %v", err)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.calls) != 0 {
		t.Fatalf("no subscribers means no sends, got %d calls", len(sink.calls))
	}
}

// forwardData extracts the forward-arrow token from the last keyboard the
// sink saw.
func forwardData(t *testing.T, sink *fakeSink) string {
	t.Helper()
	sink.mu.Lock()
	defer sink.mu.Unlock()
	last := sink.calls[len(sink.calls)-1]
	for _, row := range last.nav.Rows {
		for _, b := range row {
			if b.Label == "➡️" {
				return b.Data
			}
		}
	}
	t.Fatal("no forward button on last keyboard")
	return ""
}

func TestNavigationRoundTripIsReadStable(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{raws: digestRaws()}, sink, 10)
	ctx := context.Background()

	if err := announcer.RunDigest(ctx, catalog.KindMovie, "Out today:"); err != nil {
		t.Fatalf("RunDigest failed: %v", err)
	}

	first := sink.byOp("sendMedia")[0]
	ref := delivery.MessageRef{ChatID: 10, MessageID: 1}

	// Walk forward to the last page.
	captions := make(map[int]string)
	captions[0] = first.caption
	for i := 1; i < 5; i++ {
		if err := announcer.HandleNavigation(ctx, forwardData(t, sink), ref); err != nil {
			t.Fatalf("forward navigation to %d failed: %v", i, err)
		}
		sink.mu.Lock()
		captions[i] = sink.calls[len(sink.calls)-1].caption
		sink.mu.Unlock()
	}

	// Walk back to the first page using the back arrow.
	backData := func() string {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		last := sink.calls[len(sink.calls)-1]
		for _, row := range last.nav.Rows {
			for _, b := range row {
				if b.Label == "⬅️" {
					return b.Data
				}
			}
		}
		t.Fatal("no back button on last keyboard")
		return ""
	}
	for i := 3; i >= 0; i-- {
		if err := announcer.HandleNavigation(ctx, backData(), ref); err != nil {
			t.Fatalf("back navigation to %d failed: %v", i, err)
		}
		sink.mu.Lock()
		caption := sink.calls[len(sink.calls)-1].caption
		sink.mu.Unlock()
		// Headings render only on the initial delivery, so compare bodies.
		want := strings.TrimPrefix(captions[i], "Out today:\n\n")
		if caption != want {
			t.Fatalf("caption at index %d changed between reads:\nfirst: %q\nagain: %q", i, want, caption)
		}
	}
}

func TestNavigationNoopData(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{raws: digestRaws()}, sink, 10)

	if err := announcer.HandleNavigation(context.Background(), delivery.NoopData, delivery.MessageRef{}); err != nil {
		t.Fatalf("noop navigation must be silent: %v", err)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.calls) != 0 {
		t.Fatal("noop navigation must not touch the message")
	}
}

func TestNavigationInvalidToken(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{raws: digestRaws()}, sink, 10)

	err := announcer.HandleNavigation(context.Background(), "garbage", delivery.MessageRef{})
	if !errors.Is(err, announce.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNavigationExpiredSession(t *testing.T) {
	sink := &fakeSink{}
	announcer, _ := newAnnouncer(&fakeSource{raws: digestRaws()}, sink, 10)

	data := token.Token{SessionKey: "gone", Index: 0}.Encode()
	err := announcer.HandleNavigation(context.Background(), data, delivery.MessageRef{ChatID: 10, MessageID: 1})
	if !errors.Is(err, announce.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	edits := sink.byOp("editCaption")
	if len(edits) != 1 || !strings.Contains(edits[0].caption, "Request the digest again") {
		t.Fatalf("expected a request-again caption edit, got %+v", edits)
	}
}

func TestNavigationOutOfRangeIsNoop(t *testing.T) {
	sink := &fakeSink{}
	announcer, sessions := newAnnouncer(&fakeSource{raws: digestRaws()}, sink, 10)

	key := sessions.Commit(passPipeline{}.Enrich(context.Background(), digestRaws()))
	data := token.Token{SessionKey: key, Index: 50}.Encode()
	if err := announcer.HandleNavigation(context.Background(), data, delivery.MessageRef{ChatID: 10, MessageID: 1}); err != nil {
		t.Fatalf("out-of-range navigation must be a no-op, got %v", err)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.calls) != 0 {
		t.Fatal("out-of-range navigation must not touch the message")
	}
}
