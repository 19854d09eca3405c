package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimezone возвращается, если указан некорректный часовой пояс.
var ErrInvalidTimezone = errors.New("invalid timezone")

// DefaultTimezone — зона, по которой считаются сутки рассылки.
const DefaultTimezone = "Asia/Jerusalem"

// LoadLocation нормализует имя зоны ("asia/jerusalem", "Asia/Jerusalem ") и загружает её.
func LoadLocation(raw string) (*time.Location, error) {
	name, err := normalizeTimezone(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, raw)
	}
	return time.LoadLocation(name)
}

// Window — допустимый интервал часов рассылки, границы включительно.
type Window struct {
	StartHour int
	EndHour   int
}

// Contains сообщает, попадает ли момент now в окно по зоне loc.
func (w Window) Contains(now time.Time, loc *time.Location) bool {
	hour := now.In(loc).Hour()
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour <= w.EndHour
	}
	// окно через полночь, например 22..2
	return hour >= w.StartHour || hour <= w.EndHour
}

func normalizeTimezone(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", ErrInvalidTimezone
	}
	candidate = strings.ReplaceAll(candidate, " ", "_")
	if _, err := time.LoadLocation(candidate); err == nil {
		return candidate, nil
	}

	lower := strings.ToLower(candidate)
	parts := strings.Split(lower, "/")
	for i, part := range parts {
		segments := strings.Split(part, "_")
		for j, segment := range segments {
			pieces := strings.Split(segment, "-")
			for k, piece := range pieces {
				if piece == "" {
					continue
				}
				pieces[k] = strings.ToUpper(piece[:1]) + piece[1:]
			}
			segments[j] = strings.Join(pieces, "-")
		}
		parts[i] = strings.Join(segments, "_")
	}
	normalized := strings.Join(parts, "/")
	if _, err := time.LoadLocation(normalized); err == nil {
		return normalized, nil
	}
	return "", ErrInvalidTimezone
}
