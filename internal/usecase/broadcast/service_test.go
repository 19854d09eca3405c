package broadcast

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/usecase/message"
	"nach-yomi-bot/internal/usecase/schedule"
)

type sent struct {
	chat string
	key  string
	kind domain.UnitKind
}

type fakeSender struct {
	sent     []sent
	failChat map[string]bool
	failKey  map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, chat domain.ChatRef, u domain.Unit) error {
	if f.failChat[chat.String()] || f.failKey[u.Key] {
		return errors.New("telegram: bad gateway")
	}
	f.sent = append(f.sent, sent{chat: chat.String(), key: u.Key, kind: u.Kind})
	return nil
}

func (f *fakeSender) keysFor(chat string) []string {
	var out []string
	for _, s := range f.sent {
		if s.chat == chat {
			out = append(out, s.key)
		}
	}
	return out
}

type fakeGuard struct {
	seen  map[string]bool
	types []string
	err   error
}

func (g *fakeGuard) CheckAndReserve(ctx context.Context, content, contentType string) (bool, error) {
	if g.err != nil {
		return true, g.err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	g.types = append(g.types, contentType)
	k := contentType + "|" + content
	if g.seen[k] {
		return true, nil
	}
	g.seen[k] = true
	return false, nil
}

type fakeMarker struct {
	last  string
	marks int
	err   error
}

func (m *fakeMarker) WasSentOn(ctx context.Context, d domain.Date) (bool, error) {
	return m.last == d.String(), m.err
}

func (m *fakeMarker) MarkSent(ctx context.Context, d domain.Date) error {
	m.last = d.String()
	m.marks++
	return nil
}

type fakeStore struct {
	ids []int64
	err error
}

func (s *fakeStore) List(ctx context.Context) ([]int64, error) { return s.ids, s.err }
func (s *fakeStore) Add(ctx context.Context, id int64) (bool, error) {
	s.ids = append(s.ids, id)
	return true, nil
}
func (s *fakeStore) Remove(ctx context.Context, id int64) (bool, error) { return false, nil }

type fakeCatalog struct {
	media map[string]int64
}

func (c fakeCatalog) MediaID(book string, chapter int) (int64, bool) {
	id, ok := c.media[book+" "+strconv.Itoa(chapter)]
	return id, ok
}

func (fakeCatalog) AudioURL(id int64) string {
	return "https://audio/" + strconv.FormatInt(id, 10)
}

func (fakeCatalog) VideoURL(id int64) string {
	return "https://video/" + strconv.FormatInt(id, 10) + ".m3u8"
}

func (fakeCatalog) ShiurURL(book string, id *int64) string { return "https://shiur/" + book }

func (fakeCatalog) TextURL(book string, chapter int) string { return "https://sefaria/" + book }

type fakeVideo struct {
	converted []string
	cleaned   []string
	tooLarge  bool
}

func (v *fakeVideo) Convert(ctx context.Context, url, name string) (domain.VideoConversion, error) {
	v.converted = append(v.converted, url)
	if v.tooLarge {
		return domain.VideoConversion{TooLarge: true, SizeBytes: 60 << 20}, nil
	}
	return domain.VideoConversion{Path: "/tmp/shiur_" + name + ".mp4", SizeBytes: 1024}, nil
}

func (v *fakeVideo) Cleanup(c domain.VideoConversion) { v.cleaned = append(v.cleaned, c.Path) }

type fixture struct {
	sender  *fakeSender
	agg     *fakeSender
	guard   *fakeGuard
	marker  *fakeMarker
	store   *fakeStore
	video   *fakeVideo
	sleeps  []time.Duration
	service *Service
	loc     *time.Location
}

func newFixture(t *testing.T, targets Targets, opts Options) *fixture {
	t.Helper()
	loc, err := schedule.LoadLocation(schedule.DefaultTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	catalog := fakeCatalog{media: map[string]int64{"Isaiah 1": 101}}
	f := &fixture{
		sender: &fakeSender{},
		agg:    &fakeSender{},
		guard:  &fakeGuard{},
		marker: &fakeMarker{},
		store:  &fakeStore{ids: []int64{10, 20}},
		video:  &fakeVideo{},
		loc:    loc,
	}
	opts.Location = loc
	if opts.Window == (schedule.Window{}) {
		opts.Window = schedule.Window{StartHour: 0, EndHour: 6}
	}
	f.service = NewService(Deps{
		Engine:      schedule.MustEngine(catalog),
		Builder:     message.Builder{Catalog: catalog, PageLimit: message.DefaultPageLimit},
		Sender:      f.sender,
		Aggregator:  f.agg,
		Guard:       f.guard,
		Subscribers: f.store,
		Marker:      f.marker,
		Video:       f.video,
		Logger:      zerolog.Nop(),
	}, targets, opts).WithSleep(func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return nil
	})
	return f
}

// epochMorning — 2026-02-15 04:00 по Иерусалиму, первый день цикла.
func (f *fixture) epochMorning() time.Time {
	return time.Date(2026, 2, 15, 4, 0, 0, 0, f.loc)
}

var dayUnits = []string{"header", "audio:Isaiah 1", "video:Isaiah 1", "video:Isaiah 2"}

func TestRunDeliversInOrder(t *testing.T) {
	f := newFixture(t, Targets{Channel: domain.ChatRef{Username: "@nachyomi"}, Admin: domain.ChatRef{ID: 1}}, Options{RecipientDelay: DefaultRecipientDelay})

	report, err := f.service.Run(context.Background(), f.epochMorning())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Skipped != "" || report.Assignment.DayNumber != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	var chats []string
	for _, s := range f.sender.sent {
		if len(chats) == 0 || chats[len(chats)-1] != s.chat {
			chats = append(chats, s.chat)
		}
	}
	if diff := cmp.Diff([]string{"@nachyomi", "1", "10", "20"}, chats); diff != "" {
		t.Fatalf("recipient order mismatch (-want +got):\n%s", diff)
	}
	for _, chat := range chats {
		if diff := cmp.Diff(dayUnits, f.sender.keysFor(chat)); diff != "" {
			t.Fatalf("units for %s mismatch (-want +got):\n%s", chat, diff)
		}
	}
	if len(f.sleeps) != 2 || f.sleeps[0] != DefaultRecipientDelay {
		t.Fatalf("expected a delay between three subscribers, got %v", f.sleeps)
	}
	if f.marker.marks != 1 || f.marker.last != "2026-02-15" {
		t.Fatalf("marker must be set once for the day, got %+v", f.marker)
	}
	if !strings.Contains(report.Details(), "channel ok") || !strings.Contains(report.Details(), "subscribers 3/3") {
		t.Fatalf("unexpected details %q", report.Details())
	}
}

func TestRunGates(t *testing.T) {
	t.Run("outside window", func(t *testing.T) {
		f := newFixture(t, Targets{Channel: domain.ChatRef{ID: -100}}, Options{})
		report, err := f.service.Run(context.Background(), f.epochMorning().Add(5*time.Hour))
		if err != nil || report.Skipped != SkipOutsideWindow || len(f.sender.sent) != 0 {
			t.Fatalf("expected window skip, got %+v, %v", report, err)
		}
	})
	t.Run("already sent", func(t *testing.T) {
		f := newFixture(t, Targets{Channel: domain.ChatRef{ID: -100}}, Options{})
		f.marker.last = "2026-02-15"
		report, err := f.service.Run(context.Background(), f.epochMorning())
		if err != nil || report.Skipped != SkipAlreadySent || len(f.sender.sent) != 0 {
			t.Fatalf("expected already-sent skip, got %+v, %v", report, err)
		}
	})
	t.Run("force bypasses both", func(t *testing.T) {
		f := newFixture(t, Targets{Channel: domain.ChatRef{ID: -100}}, Options{Force: true})
		f.marker.last = "2026-02-15"
		report, err := f.service.Run(context.Background(), f.epochMorning().Add(10*time.Hour))
		if err != nil || report.Skipped != "" || len(f.sender.keysFor("-100")) != len(dayUnits) {
			t.Fatalf("force must deliver, got %+v, %v", report, err)
		}
	})
	t.Run("before epoch", func(t *testing.T) {
		f := newFixture(t, Targets{Channel: domain.ChatRef{ID: -100}}, Options{})
		report, err := f.service.Run(context.Background(), f.epochMorning().AddDate(0, 0, -1))
		if err != nil || report.Skipped != SkipBeforeEpoch {
			t.Fatalf("expected before-epoch skip, got %+v, %v", report, err)
		}
	})
	t.Run("marker error", func(t *testing.T) {
		f := newFixture(t, Targets{Channel: domain.ChatRef{ID: -100}}, Options{})
		f.marker.err = errors.New("disk")
		if _, err := f.service.Run(context.Background(), f.epochMorning()); err == nil {
			t.Fatalf("expected marker error")
		}
	})
}

func TestRunIsolatesFailures(t *testing.T) {
	f := newFixture(t, Targets{Channel: domain.ChatRef{ID: -100}}, Options{})
	f.sender.failChat = map[string]bool{"10": true}
	f.sender.failKey = map[string]bool{"audio:Isaiah 1": true}

	report, err := f.service.Run(context.Background(), f.epochMorning())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := f.sender.keysFor("-100"); len(got) != 3 {
		t.Fatalf("units after a failed one must still be sent, got %v", got)
	}
	if report.Channel.Failed != 1 || !report.Channel.OK() {
		t.Fatalf("unexpected channel result %+v", report.Channel)
	}
	if len(report.Subscribers) != 2 || report.Subscribers[0].OK() || !report.Subscribers[1].OK() {
		t.Fatalf("one failing subscriber must not stop the loop: %+v", report.Subscribers)
	}
	if f.marker.marks != 1 {
		t.Fatalf("partial success still marks the day")
	}
}

func TestRunNeverResendsReservedUnits(t *testing.T) {
	f := newFixture(t, Targets{Channel: domain.ChatRef{ID: -100}}, Options{Force: true})
	f.sender.failKey = map[string]bool{"header": true}

	if _, err := f.service.Run(context.Background(), f.epochMorning()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := len(f.sender.sent)
	f.sender.failKey = nil

	report, err := f.service.Run(context.Background(), f.epochMorning())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(f.sender.sent) != first {
		t.Fatalf("second run must not send anything, sent %d more", len(f.sender.sent)-first)
	}
	if report.Delivered() {
		t.Fatalf("duplicates are not deliveries")
	}
	if f.marker.marks != 1 {
		t.Fatalf("marker must not be rewritten without deliveries, marks = %d", f.marker.marks)
	}
}

func TestRunGuardFailsClosed(t *testing.T) {
	f := newFixture(t, Targets{Channel: domain.ChatRef{ID: -100}}, Options{})
	f.guard.err = errors.New("lock timeout")

	report, err := f.service.Run(context.Background(), f.epochMorning())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.sender.sent) != 0 || report.Delivered() || f.marker.marks != 0 {
		t.Fatalf("guard errors must block sending: sent=%d report=%+v", len(f.sender.sent), report)
	}
}

func TestRunAggregator(t *testing.T) {
	targets := Targets{Aggregator: domain.ChatRef{Username: "@torahyomi"}}
	f := newFixture(t, targets, Options{AggregatorEnabled: true, VideoEnabled: true})
	f.store.ids = nil

	report, err := f.service.Run(context.Background(), f.epochMorning())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"video:Isaiah 1", "summary"}, f.agg.keysFor("@torahyomi")); diff != "" {
		t.Fatalf("aggregator units mismatch (-want +got):\n%s", diff)
	}
	if len(f.sender.sent) != 0 {
		t.Fatalf("primary bot must not post to the aggregator")
	}
	if diff := cmp.Diff([]string{"https://video/101.m3u8"}, f.video.converted); diff != "" {
		t.Fatalf("converted mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/tmp/shiur_101.mp4"}, f.video.cleaned); diff != "" {
		t.Fatalf("converted files must be cleaned up:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"video", "text"}, f.guard.types); diff != "" {
		t.Fatalf("guard content types mismatch:\n%s", diff)
	}
	if report.Aggregator == nil || report.Aggregator.Sent != 2 {
		t.Fatalf("unexpected aggregator result %+v", report.Aggregator)
	}

	// отключённый общий канал ничего не получает
	off := newFixture(t, targets, Options{AggregatorEnabled: false, VideoEnabled: true})
	if _, err := off.service.Run(context.Background(), off.epochMorning()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(off.agg.sent) != 0 || len(off.video.converted) != 0 {
		t.Fatalf("disabled aggregator must stay silent")
	}
}

func TestRunAggregatorVideoTooLarge(t *testing.T) {
	f := newFixture(t, Targets{Aggregator: domain.ChatRef{ID: -200}}, Options{AggregatorEnabled: true, VideoEnabled: true})
	f.video.tooLarge = true
	if _, err := f.service.Run(context.Background(), f.epochMorning()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"summary"}, f.agg.keysFor("-200")); diff != "" {
		t.Fatalf("oversized video must be skipped (-want +got):\n%s", diff)
	}
}

func TestSendToday(t *testing.T) {
	f := newFixture(t, Targets{}, Options{})
	chat := domain.ChatRef{ID: 77}

	if err := f.service.SendToday(context.Background(), chat, message.PartAudio, f.epochMorning()); err != nil {
		t.Fatalf("SendToday audio: %v", err)
	}
	if diff := cmp.Diff([]string{"audio:Isaiah 1"}, f.sender.keysFor("77")); diff != "" {
		t.Fatalf("audio part mismatch:\n%s", diff)
	}
	if len(f.guard.types) != 0 {
		t.Fatalf("on-demand sends bypass the guard")
	}

	f.sender.sent = nil
	// на 34-й день (Иеремия 1–2) шиурим в каталоге нет
	later := f.epochMorning().AddDate(0, 0, 33)
	if err := f.service.SendToday(context.Background(), chat, message.PartAudio, later); err != nil {
		t.Fatalf("SendToday audio: %v", err)
	}
	if diff := cmp.Diff([]string{"nothing"}, f.sender.keysFor("77")); diff != "" {
		t.Fatalf("empty part must produce a hint:\n%s", diff)
	}

	f.sender.failChat = map[string]bool{"77": true}
	if err := f.service.SendToday(context.Background(), chat, message.PartAll, f.epochMorning()); err == nil {
		t.Fatalf("expected error when nothing was delivered")
	}
}

func TestNotifyAdmin(t *testing.T) {
	f := newFixture(t, Targets{Admin: domain.ChatRef{ID: 1}}, Options{})
	f.store.ids = nil
	report, err := f.service.Run(context.Background(), f.epochMorning())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	f.sender.sent = nil
	f.service.NotifyAdmin(context.Background(), report, nil)
	if diff := cmp.Diff([]string{"admin"}, f.sender.keysFor("1")); diff != "" {
		t.Fatalf("admin summary mismatch:\n%s", diff)
	}

	f.sender.sent = nil
	f.service.NotifyAdmin(context.Background(), Report{Skipped: SkipAlreadySent}, nil)
	if len(f.sender.sent) != 0 {
		t.Fatalf("skipped runs are not reported")
	}
}

type flakyTexts struct{}

func (flakyTexts) Chapter(ctx context.Context, book string, chapter int) (domain.ChapterText, error) {
	if chapter == 2 {
		return domain.ChapterText{}, errors.New("sefaria down")
	}
	return domain.ChapterText{Ref: book, Hebrew: []string{"חזון"}}, nil
}

type brokenCalendar struct{}

func (brokenCalendar) HebrewDate(ctx context.Context, d domain.Date) (string, error) {
	return "", errors.New("hebcal down")
}

func TestResolverDegrades(t *testing.T) {
	engine := schedule.MustEngine(fakeCatalog{})
	a, err := engine.Resolve(schedule.Epoch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	r := NewResolver(flakyTexts{}, brokenCalendar{}, zerolog.Nop())
	reading := r.Reading(context.Background(), a, true, true)
	if reading.HebrewDate != "" {
		t.Fatalf("failed calendar must leave the date empty")
	}
	if _, ok := reading.Texts["Isaiah 1"]; !ok {
		t.Fatalf("successful chapter must be kept")
	}
	if _, ok := reading.Texts["Isaiah 2"]; ok {
		t.Fatalf("failed chapter must be dropped")
	}
}
