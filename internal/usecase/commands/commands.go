package commands

import (
	"strings"

	"nach-yomi-bot/internal/usecase/message"
)

// Command — разобранная команда бота.
type Command struct {
	Name   string
	Params string
}

// Parse разбирает "/cmd@bot params". Текст без слэша командой не считается.
func Parse(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	head, params, _ := strings.Cut(text[1:], " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	name := strings.ToLower(head)
	if name == "" {
		return Command{}, false
	}
	return Command{Name: name, Params: strings.TrimSpace(params)}, true
}

// Kind — что должен сделать обработчик.
type Kind int

const (
	// Reply — только ответить текстом.
	Reply Kind = iota
	// Start — подписать, поприветствовать и прислать материал дня.
	Start
	// Today — прислать материал дня или его часть.
	Today
	// Stop — отписать.
	Stop
)

// Action — решение по команде.
type Action struct {
	Kind Kind
	Part message.Part
	Text string
}

// Context — состояние чата на момент команды.
type Context struct {
	Limited bool
}

// Dispatch выбирает действие для команды. Функция не имеет побочных эффектов.
func Dispatch(cmd Command, c Context) Action {
	if c.Limited {
		return Action{Kind: Reply, Text: message.PleaseWaitText}
	}
	switch cmd.Name {
	case "start":
		return Action{Kind: Start, Part: message.PartAll, Text: message.WelcomeMessage()}
	case "today":
		return Action{Kind: Today, Part: message.PartAll}
	case "audio":
		return Action{Kind: Today, Part: message.PartAudio}
	case "video":
		return Action{Kind: Today, Part: message.PartVideo}
	case "text":
		return Action{Kind: Today, Part: message.PartText}
	case "stop", "unsubscribe":
		return Action{Kind: Stop, Text: message.StopText}
	case "help":
		return Action{Kind: Reply, Text: message.HelpMessage()}
	default:
		return Action{Kind: Reply, Text: message.UnknownText}
	}
}
