package broadcast

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/metrics"
	"nach-yomi-bot/internal/usecase/message"
	"nach-yomi-bot/internal/usecase/schedule"
)

// DefaultRecipientDelay — пауза между подписчиками.
const DefaultRecipientDelay = 100 * time.Millisecond

// Причины, по которым запуск завершился без рассылки.
const (
	SkipOutsideWindow = "outside_window"
	SkipAlreadySent   = "already_sent"
	SkipBeforeEpoch   = "before_epoch"
)

// Targets — адресаты рассылки. Пустые адресаты пропускаются.
type Targets struct {
	Channel    domain.ChatRef
	Aggregator domain.ChatRef
	Admin      domain.ChatRef
}

// Options управляют воротами и дополнительными каналами.
type Options struct {
	Location          *time.Location
	Window            schedule.Window
	Force             bool
	AggregatorEnabled bool
	VideoEnabled      bool
	RecipientDelay    time.Duration
}

// Deps — зависимости сервиса. Aggregator, Video, Resolver могут быть nil.
type Deps struct {
	Engine      *schedule.Engine
	Resolver    *Resolver
	Builder     message.Builder
	Sender      domain.Sender
	Aggregator  domain.Sender
	Guard       domain.PublishGuard
	Subscribers domain.SubscriberStore
	Marker      domain.BroadcastMarker
	Video       domain.VideoConverter
	Logger      zerolog.Logger
}

// Service выполняет ежедневную рассылку и отвечает на запросы «сегодня».
type Service struct {
	Deps
	targets Targets
	opts    Options
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewService создаёт оркестратор рассылки.
func NewService(deps Deps, targets Targets, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RecipientDelay < 0 {
		opts.RecipientDelay = 0
	}
	if deps.Resolver == nil {
		deps.Resolver = NewResolver(nil, nil, deps.Logger)
	}
	return &Service{Deps: deps, targets: targets, opts: opts, sleep: sleepContext}
}

// WithSleep подменяет паузу между подписчиками.
func (s *Service) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Service {
	s.sleep = sleep
	return s
}

// Run проходит ворота и доставляет контент дня всем адресатам.
// Ошибки отдельных отправок не возвращаются, они попадают в отчёт.
func (s *Service) Run(ctx context.Context, now time.Time) (Report, error) {
	date := domain.DateOf(now, s.opts.Location)
	report := Report{Date: date}
	log := s.Logger.With().Str("date", date.String()).Logger()

	if !s.opts.Force && !s.opts.Window.Contains(now, s.opts.Location) {
		log.Info().Int("hour", now.In(s.opts.Location).Hour()).Msg("вне окна рассылки, выходим")
		report.Skipped = SkipOutsideWindow
		return report, nil
	}
	if !s.opts.Force {
		sent, err := s.Marker.WasSentOn(ctx, date)
		if err != nil {
			return report, fmt.Errorf("проверка отметки рассылки: %w", err)
		}
		if sent {
			log.Info().Msg("рассылка за сегодня уже выполнена")
			report.Skipped = SkipAlreadySent
			return report, nil
		}
	}

	assignment, err := s.Engine.Resolve(date)
	if errors.Is(err, schedule.ErrInvalidRange) {
		log.Warn().Str("epoch", s.Engine.Epoch().String()).Msg("цикл ещё не начался")
		report.Skipped = SkipBeforeEpoch
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("расписание: %w", err)
	}
	report.Assignment = assignment
	metrics.SetScheduleDay(assignment.DayNumber)
	log.Info().Int("day", assignment.DayNumber).Int("cycle", assignment.CycleNumber).Msg("начинаем рассылку")

	aggregatorOn := s.opts.AggregatorEnabled && !s.targets.Aggregator.IsZero() && s.Aggregator != nil
	reading := s.Resolver.Reading(ctx, assignment, s.Builder.IncludeText || aggregatorOn, true)
	units := s.Builder.Daily(reading, message.PartAll)

	if !s.targets.Channel.IsZero() {
		res := s.deliver(ctx, s.Sender, "channel", s.targets.Channel, units, s.scopedKey)
		report.Channel = &res
	}

	if aggregatorOn {
		res := s.deliverAggregator(ctx, reading)
		report.Aggregator = &res
	}

	recipients := s.recipients(ctx)
	for i, chatID := range recipients {
		if i > 0 && s.opts.RecipientDelay > 0 {
			if err := s.sleep(ctx, s.opts.RecipientDelay); err != nil {
				log.Warn().Err(err).Int("left", len(recipients)-i).Msg("рассылка прервана")
				break
			}
		}
		res := s.deliver(ctx, s.Sender, "subscriber", domain.ChatRef{ID: chatID}, units, s.scopedKey)
		report.Subscribers = append(report.Subscribers, res)
	}

	if report.Delivered() {
		if err := s.Marker.MarkSent(ctx, date); err != nil {
			log.Error().Err(err).Msg("не удалось сохранить отметку рассылки")
			report.MarkErr = err
		}
	} else {
		log.Warn().Msg("ни один адресат не получил контент, отметку не ставим")
	}
	log.Info().Str("summary", report.Details()).Msg("рассылка завершена")
	return report, nil
}

// recipients возвращает подписчиков в порядке списка, админ идёт первым, если его там нет.
func (s *Service) recipients(ctx context.Context) []int64 {
	ids, err := s.Subscribers.List(ctx)
	if err != nil {
		s.Logger.Error().Err(err).Msg("не удалось загрузить подписчиков")
		ids = nil
	}
	admin := s.targets.Admin.ID
	if admin != 0 && !slices.Contains(ids, admin) {
		ids = append([]int64{admin}, ids...)
	}
	return ids
}

type keyFunc func(target string, chat domain.ChatRef, u domain.Unit) string

// scopedKey различает одну и ту же единицу у разных адресатов.
func (s *Service) scopedKey(target string, chat domain.ChatRef, u domain.Unit) string {
	return target + ":" + chat.String() + "|" + u.Key
}

// contentKey дедуплицирует по самому содержимому: общий канал получает контент
// из нескольких источников.
func contentKey(_ string, _ domain.ChatRef, u domain.Unit) string {
	if u.Kind == domain.UnitVideo {
		return "video:" + u.Text
	}
	return u.Text
}

// deliver отправляет единицы по одной. Каждая единица резервируется до отправки
// и не повторяется после ошибки.
func (s *Service) deliver(ctx context.Context, sender domain.Sender, target string, chat domain.ChatRef, units []domain.Unit, key keyFunc) TargetResult {
	res := TargetResult{Target: target, Chat: chat}
	log := s.Logger.With().Str("target", target).Str("chat", chat.String()).Logger()

	for _, u := range units {
		dup, err := s.Guard.CheckAndReserve(ctx, key(target, chat, u), string(u.Kind))
		switch {
		case err != nil:
			log.Warn().Err(err).Str("unit", u.Key).Msg("защита от дублей недоступна, пропускаем")
			metrics.ObserveDelivery(target, string(u.Kind), "duplicate")
			res.Duplicate++
			continue
		case dup:
			log.Debug().Str("unit", u.Key).Msg("уже опубликовано сегодня")
			metrics.ObserveDelivery(target, string(u.Kind), "duplicate")
			res.Duplicate++
			continue
		}

		if err := sender.Send(ctx, chat, u); err != nil {
			log.Error().Err(err).Str("unit", u.Key).Msg("не удалось отправить")
			metrics.ObserveDelivery(target, string(u.Kind), "error")
			res.Failed++
			continue
		}
		metrics.ObserveDelivery(target, string(u.Kind), "success")
		res.Sent++
	}
	return res
}

// deliverAggregator публикует в общий канал: видео (если включено), затем сводку дня.
func (s *Service) deliverAggregator(ctx context.Context, reading domain.Reading) TargetResult {
	var units []domain.Unit
	var conversions []domain.VideoConversion
	defer func() {
		for _, c := range conversions {
			s.Video.Cleanup(c)
		}
	}()

	if s.opts.VideoEnabled && s.Video != nil {
		for _, e := range reading.Assignment.Entries {
			if e.MediaID == nil {
				continue
			}
			id := *e.MediaID
			conv, err := s.Video.Convert(ctx, s.Builder.Catalog.VideoURL(id), strconv.FormatInt(id, 10))
			if err != nil {
				s.Logger.Warn().Err(err).Str("ref", e.Ref()).Msg("видео не сконвертировано, отправляем только сводку")
				continue
			}
			if conv.TooLarge || conv.Path == "" {
				continue
			}
			conversions = append(conversions, conv)
			units = append(units, domain.Unit{
				Kind:     domain.UnitVideo,
				Key:      "video:" + e.Ref(),
				FilePath: conv.Path,
				Text:     message.WrapForAggregator(message.AggregatorVideoCaption(e)),
				Markdown: true,
			})
		}
	}

	units = append(units, domain.Unit{
		Kind:           domain.UnitText,
		Key:            "summary",
		Text:           message.WrapForAggregator(message.AggregatorSummary(reading)),
		Markdown:       true,
		DisablePreview: true,
	})
	return s.deliver(ctx, s.Aggregator, "aggregator", s.targets.Aggregator, units, contentKey)
}

// SendToday отправляет часть контента дня в чат по запросу. Защита от дублей не применяется.
func (s *Service) SendToday(ctx context.Context, chat domain.ChatRef, part message.Part, now time.Time) error {
	date := domain.DateOf(now, s.opts.Location)
	assignment, err := s.Engine.Resolve(date)
	if err != nil {
		return fmt.Errorf("расписание: %w", err)
	}

	withTexts := part == message.PartText || (part == message.PartAll && s.Builder.IncludeText)
	reading := s.Resolver.Reading(ctx, assignment, withTexts, part == message.PartAll)
	units := s.Builder.Daily(reading, part)
	if len(units) == 0 {
		units = []domain.Unit{{Kind: domain.UnitText, Key: "nothing", Text: message.NothingText}}
	}

	var firstErr error
	sent := 0
	for _, u := range units {
		if err := s.Sender.Send(ctx, chat, u); err != nil {
			s.Logger.Error().Err(err).Str("chat", chat.String()).Str("unit", u.Key).Msg("не удалось отправить")
			metrics.ObserveDelivery("command", string(u.Kind), "error")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.ObserveDelivery("command", string(u.Kind), "success")
		sent++
	}
	if sent == 0 {
		return firstErr
	}
	return nil
}

// NotifyAdmin отправляет администратору итог рассылки.
func (s *Service) NotifyAdmin(ctx context.Context, report Report, runErr error) {
	if s.targets.Admin.IsZero() || report.Skipped != "" {
		return
	}
	ok := runErr == nil && report.Delivered()
	details := report.Details()
	if runErr != nil {
		details = runErr.Error()
	}
	unit := domain.Unit{Kind: domain.UnitText, Key: "admin", Text: message.BroadcastSummary(report.Assignment, ok, details)}
	if err := s.Sender.Send(ctx, s.targets.Admin, unit); err != nil {
		s.Logger.Error().Err(err).Msg("не удалось отправить отчёт администратору")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
