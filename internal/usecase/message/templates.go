package message

import (
	"fmt"
	"strings"

	"nach-yomi-bot/internal/domain"
)

// Performer — автор шиурим.
const Performer = "Rav Yitzchok Breitowitz"

const (
	aggregatorBadge = "📖 Nach Yomi | נ\"ך יומי"
	botUsername     = "NachYomiBot"
)

// Тексты коротких ответов бота.
const (
	PleaseWaitText = "_Please wait._"
	ErrorText      = "❌ Error. Please try again."
	StopText       = "🔕 You've been unsubscribed. Send /start to subscribe again."
	NotSubscribed  = "You are not subscribed. Send /start to subscribe."
	UnknownText    = "Unknown command. Send /help to see what I can do."
	NothingText    = "Nothing available for today's chapters yet. Try /today."
)

func entryTitle(e domain.ScheduleEntry) string {
	return fmt.Sprintf("*%s %d* · %s %s", e.Book.Name, e.Chapter, hebrewName(e.Book), HebrewNumeral(e.Chapter))
}

func hebrewName(b domain.Book) string {
	if b.HebrewName != "" {
		return b.HebrewName
	}
	return b.Name
}

// DayHeader строит заголовок дня со списком глав.
func DayHeader(r domain.Reading) string {
	a := r.Assignment
	var b strings.Builder
	fmt.Fprintf(&b, "📖 *Nach Yomi — Day %d*\n", a.DayNumber)
	if r.HebrewDate != "" {
		fmt.Fprintf(&b, "_%s_\n", r.HebrewDate)
	}
	b.WriteString("\n")
	for _, e := range a.Entries {
		b.WriteString(entryTitle(e))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// MediaCaption — подпись к аудио или видео главы.
func MediaCaption(e domain.ScheduleEntry, kind domain.UnitKind) string {
	icon := "🎧"
	if kind == domain.UnitVideo {
		icon = "🎬"
	}
	return icon + " " + entryTitle(e) + "\n_" + Performer + "_"
}

// VideoLinkText — ссылка на страницу видео-шиура.
func VideoLinkText(e domain.ScheduleEntry, url string) string {
	return fmt.Sprintf("🎬 [Watch Video Shiur — %s](%s)", e.Ref(), url)
}

// WelcomeMessage отправляется после /start.
func WelcomeMessage() string {
	return `📖 *Nach Yomi*

Two chapters of Nevi'im and Ketuvim, every day.

🎧 Audio shiur by Rav Yitzchok Breitowitz
🎬 Video link to full shiur

_You're subscribed! New chapters daily at 6 AM Israel time._`
}

// HelpMessage перечисляет команды.
func HelpMessage() string {
	return `📖 *Nach Yomi commands*

/start — subscribe and get today's chapters
/today — today's chapters again
/audio — audio shiurim only
/video — video links only
/text — chapter text from Sefaria
/stop — unsubscribe from the daily broadcast
/help — this message`
}

// ChapterPages режет текст главы на страницы. Текст отправляется без разметки,
// потому что стихи могут содержать символы Markdown.
func ChapterPages(e domain.ScheduleEntry, text domain.ChapterText, limit int) []string {
	header := fmt.Sprintf("📜 %s · %s %s", e.Ref(), hebrewName(e.Book), HebrewNumeral(e.Chapter))
	items := make([]string, 0, len(text.Hebrew)+len(text.English)+2)
	if len(text.Hebrew) > 0 {
		items = append(items, "\nעברית:")
		for i, verse := range text.Hebrew {
			items = append(items, fmt.Sprintf("(%s) %s", HebrewNumeral(i+1), verse))
		}
	}
	if len(text.English) > 0 {
		items = append(items, "\nEnglish:")
		for i, verse := range text.English {
			items = append(items, fmt.Sprintf("(%d) %s", i+1, verse))
		}
	}
	return BuildPaginated(header, items, limit)
}

// AggregatorSummary — краткая сводка дня для общего канала.
func AggregatorSummary(r domain.Reading) string {
	var b strings.Builder
	for _, e := range r.Assignment.Entries {
		fmt.Fprintf(&b, "📖 *%s*\n", e.Ref())
		fmt.Fprintf(&b, "_%s %s_\n", hebrewName(e.Book), HebrewNumeral(e.Chapter))
		if t, ok := r.Texts[e.Ref()]; ok && len(t.Hebrew) > 0 {
			fmt.Fprintf(&b, "*פסוק א׳:*\n%s\n", t.Hebrew[0])
		}
		b.WriteString("\n")
	}
	b.WriteString("🎧 Audio & 🎬 Video shiurim by *" + Performer + "*\n")
	b.WriteString("📚 Full chapter with Hebrew/English text\n\n")
	b.WriteString("_Use @" + botUsername + " for the complete experience_")
	return b.String()
}

// AggregatorVideoCaption — подпись к видео в общем канале.
func AggregatorVideoCaption(e domain.ScheduleEntry) string {
	return fmt.Sprintf("🎬 *%s*\n_Video shiur by %s_", e.Ref(), Performer)
}

// WrapForAggregator добавляет значок источника и подпись бота.
func WrapForAggregator(content string) string {
	header := aggregatorBadge + "\n" + strings.Repeat("─", 30) + "\n\n"
	footer := "\n\n" + strings.Repeat("━", 30) + "\n🔗 @" + botUsername
	return header + content + footer
}

// BroadcastSummary — отчёт администратору после рассылки.
func BroadcastSummary(a domain.DailyAssignment, ok bool, details string) string {
	refs := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		refs = append(refs, e.Ref())
	}
	icon := "✅"
	if !ok {
		icon = "❌"
	}
	text := fmt.Sprintf("%s Broadcast day %d: %s", icon, a.DayNumber, strings.Join(refs, " + "))
	if details != "" {
		text += "\n" + details
	}
	return text
}
