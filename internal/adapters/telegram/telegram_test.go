package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
)

type fakeAPI struct {
	sent    []tgbotapi.Chattable
	updCfg  tgbotapi.UpdateConfig
	updates []tgbotapi.Update
	err     error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, f.err
}

func (f *fakeAPI) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.updCfg = cfg
	return f.updates, f.err
}

func TestBuildText(t *testing.T) {
	unit := domain.Unit{
		Kind:           domain.UnitText,
		Text:           "*hi*",
		Markdown:       true,
		DisablePreview: true,
		Keyboard: domain.Keyboard{
			{{Text: "Shiur", URL: "https://example.com"}},
			{{Text: "Share", SwitchQuery: "nach"}},
			{{Text: "empty"}},
		},
	}
	c, err := Build(domain.ChatRef{Username: "@chan"}, unit)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", c)
	}
	if msg.ChannelUsername != "@chan" || msg.ParseMode != tgbotapi.ModeMarkdown || !msg.DisableWebPagePreview {
		t.Fatalf("unexpected message %+v", msg)
	}
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected two keyboard rows, got %+v", msg.ReplyMarkup)
	}
	if *markup.InlineKeyboard[0][0].URL != "https://example.com" {
		t.Fatalf("url button lost")
	}
	if *markup.InlineKeyboard[1][0].SwitchInlineQuery != "nach" {
		t.Fatalf("switch button lost")
	}
}

func TestBuildMedia(t *testing.T) {
	chat := domain.ChatRef{ID: 42}

	c, err := Build(chat, domain.Unit{Kind: domain.UnitAudio, MediaURL: "https://a/1.mp3", Title: "Isaiah 1", Performer: "Rav"})
	if err != nil {
		t.Fatalf("Build audio: %v", err)
	}
	audio := c.(tgbotapi.AudioConfig)
	if audio.ChatID != 42 || audio.Title != "Isaiah 1" || audio.Performer != "Rav" || audio.ParseMode != "" {
		t.Fatalf("unexpected audio %+v", audio)
	}
	if audio.File != tgbotapi.FileURL("https://a/1.mp3") {
		t.Fatalf("unexpected audio file %v", audio.File)
	}

	c, err = Build(chat, domain.Unit{Kind: domain.UnitVideo, FilePath: "/tmp/x.mp4", MediaURL: "https://ignored"})
	if err != nil {
		t.Fatalf("Build video: %v", err)
	}
	if video := c.(tgbotapi.VideoConfig); video.File != tgbotapi.FilePath("/tmp/x.mp4") || !video.SupportsStreaming {
		t.Fatalf("local file must win: %+v", video)
	}

	for _, bad := range []domain.Unit{
		{Kind: domain.UnitAudio},
		{Kind: domain.UnitVideo},
		{Kind: "sticker"},
	} {
		if _, err := Build(chat, bad); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}

func TestSenderSend(t *testing.T) {
	api := &fakeAPI{}
	s := NewSender(api, "")
	if err := s.Send(context.Background(), domain.ChatRef{ID: 1}, domain.Unit{Kind: domain.UnitText, Text: "x"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("expected one request, got %d", len(api.sent))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, domain.ChatRef{ID: 1}, domain.Unit{Kind: domain.UnitText}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("cancelled send must not reach the api")
	}
}

func TestSendMarksUnreadableResponse(t *testing.T) {
	var syntaxErr *json.SyntaxError
	decodeErr := json.Unmarshal([]byte("<html>502 Bad Gateway</html>"), &struct{}{})
	if !errors.As(decodeErr, &syntaxErr) {
		t.Fatalf("expected a json syntax error, got %T", decodeErr)
	}
	s := NewSender(&fakeAPI{err: decodeErr}, "test")

	err := s.Send(context.Background(), domain.ChatRef{ID: 1}, domain.Unit{Kind: domain.UnitText, Text: "x"})
	if !errors.Is(err, ErrUnreadableResponse) {
		t.Fatalf("expected ErrUnreadableResponse, got %v", err)
	}
	if _, retry := RetryDelay(err, 1, time.Second); retry {
		t.Fatalf("unreadable response must not be retried")
	}
}

func TestRetryDelay(t *testing.T) {
	base := time.Second
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	tests := []struct {
		name  string
		err   error
		retry bool
		wait  time.Duration
	}{
		{"flood with retry_after", &tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7}}, true, 7 * time.Second},
		{"flood without retry_after", tgbotapi.Error{Code: 429}, true, 2 * time.Second},
		{"server error", &tgbotapi.Error{Code: 502}, true, 2 * time.Second},
		{"bad request", &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}, false, 0},
		{"forbidden", &tgbotapi.Error{Code: 403}, false, 0},
		{"dns", &url.Error{Op: "Post", Err: &net.DNSError{Err: "no such host", Name: "api.telegram.org"}}, true, 2 * time.Second},
		{"connection refused", &url.Error{Op: "Post", Err: dial}, true, 2 * time.Second},
		{"timeout", context.DeadlineExceeded, false, 0},
		{"plain", errors.New("boom"), false, 0},
		{"html from proxy", fmt.Errorf("%w: invalid character '<'", ErrUnreadableResponse), false, 0},
	}
	for _, tt := range tests {
		wait, ok := RetryDelay(tt.err, 2, base)
		if ok != tt.retry || wait != tt.wait {
			t.Fatalf("%s: got (%s, %v), want (%s, %v)", tt.name, wait, ok, tt.wait, tt.retry)
		}
	}
}

type scriptedSender struct {
	errs  []error
	calls int
}

func (s *scriptedSender) Send(ctx context.Context, chat domain.ChatRef, unit domain.Unit) error {
	s.calls++
	if s.calls <= len(s.errs) {
		return s.errs[s.calls-1]
	}
	return nil
}

func TestRetryingSender(t *testing.T) {
	var waits []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	next := &scriptedSender{errs: []error{&tgbotapi.Error{Code: 500}, &tgbotapi.Error{Code: 500}}}
	r := NewRetryingSender(next, zerolog.Nop()).WithSleep(sleep)
	if err := r.Send(context.Background(), domain.ChatRef{ID: 1}, domain.Unit{Key: "text"}); err != nil {
		t.Fatalf("third attempt must succeed: %v", err)
	}
	if next.calls != 3 || len(waits) != 2 || waits[0] != time.Second || waits[1] != 2*time.Second {
		t.Fatalf("unexpected attempts %d waits %v", next.calls, waits)
	}

	waits = nil
	next = &scriptedSender{errs: []error{&tgbotapi.Error{Code: 500}, &tgbotapi.Error{Code: 500}, &tgbotapi.Error{Code: 500}}}
	r = NewRetryingSender(next, zerolog.Nop()).WithSleep(sleep)
	if err := r.Send(context.Background(), domain.ChatRef{ID: 1}, domain.Unit{}); err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if next.calls != DefaultAttempts {
		t.Fatalf("expected %d attempts, got %d", DefaultAttempts, next.calls)
	}

	next = &scriptedSender{errs: []error{fmt.Errorf("wrapped: %w", &tgbotapi.Error{Code: 400})}}
	r = NewRetryingSender(next, zerolog.Nop()).WithSleep(sleep)
	if err := r.Send(context.Background(), domain.ChatRef{ID: 1}, domain.Unit{}); err == nil || next.calls != 1 {
		t.Fatalf("400 must not be retried, calls = %d", next.calls)
	}
}

func TestUpdates(t *testing.T) {
	api := &fakeAPI{updates: []tgbotapi.Update{{UpdateID: 11}, {UpdateID: 13}, {UpdateID: 12}}}
	got, err := Updates(api, 10)
	if err != nil {
		t.Fatalf("Updates: %v", err)
	}
	if api.updCfg.Offset != 11 || api.updCfg.Limit != UpdatesLimit || api.updCfg.Timeout != 0 {
		t.Fatalf("unexpected config %+v", api.updCfg)
	}
	if last := LastUpdateID(got, 10); last != 13 {
		t.Fatalf("LastUpdateID = %d, want 13", last)
	}
	if last := LastUpdateID(nil, 10); last != 10 {
		t.Fatalf("LastUpdateID without updates = %d, want 10", last)
	}
	if err := SetCommands(api); err != nil {
		t.Fatalf("SetCommands: %v", err)
	}
}
