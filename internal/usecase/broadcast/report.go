package broadcast

import (
	"fmt"
	"strings"

	"nach-yomi-bot/internal/domain"
)

// TargetResult — итог доставки одному адресату.
type TargetResult struct {
	Target    string
	Chat      domain.ChatRef
	Sent      int
	Duplicate int
	Failed    int
}

// OK сообщает, что адресат получил хотя бы одну единицу.
func (r TargetResult) OK() bool { return r.Sent > 0 }

// Report — итог одного запуска рассылки.
type Report struct {
	Date       domain.Date
	Assignment domain.DailyAssignment
	// Skipped непуст, если запуск остановился на воротах.
	Skipped     string
	Channel     *TargetResult
	Aggregator  *TargetResult
	Subscribers []TargetResult
	MarkErr     error
}

// Delivered сообщает, что хотя бы один адресат получил контент.
func (r Report) Delivered() bool {
	if r.Channel != nil && r.Channel.OK() {
		return true
	}
	if r.Aggregator != nil && r.Aggregator.OK() {
		return true
	}
	for _, s := range r.Subscribers {
		if s.OK() {
			return true
		}
	}
	return false
}

// Details — короткая сводка для логов и отчёта администратору.
func (r Report) Details() string {
	if r.Skipped != "" {
		return "skipped: " + r.Skipped
	}
	var parts []string
	if r.Channel != nil {
		parts = append(parts, "channel "+status(*r.Channel))
	}
	if r.Aggregator != nil {
		parts = append(parts, "aggregator "+status(*r.Aggregator))
	}
	ok := 0
	for _, s := range r.Subscribers {
		if s.OK() {
			ok++
		}
	}
	parts = append(parts, fmt.Sprintf("subscribers %d/%d", ok, len(r.Subscribers)))
	return strings.Join(parts, ", ")
}

func status(r TargetResult) string {
	switch {
	case r.OK() && r.Failed == 0:
		return "ok"
	case r.OK():
		return fmt.Sprintf("partial (%d failed)", r.Failed)
	case r.Failed == 0 && r.Duplicate > 0:
		return "duplicate"
	default:
		return "failed"
	}
}
