package message

import (
	"strings"
	"unicode/utf8"
)

// MessageLimit — максимальная длина текста сообщения Telegram в символах.
const MessageLimit = 4096

// DefaultPageLimit оставляет запас под разметку и подписи.
const DefaultPageLimit = 4000

// BuildPaginated раскладывает блоки по страницам не длиннее limit.
// Заголовок попадает только на первую страницу, блоки соединяются переводом строки
// и сохраняют порядок. Блок длиннее limit режется по строкам. Всегда возвращает
// хотя бы одну страницу.
func BuildPaginated(header string, items []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	var pages []string
	buf := ""
	appendPiece := func(piece string) {
		if buf == "" {
			buf = piece
			return
		}
		candidate := buf + "\n" + piece
		if utf8.RuneCountInString(candidate) <= limit {
			buf = candidate
			return
		}
		pages = append(pages, buf)
		buf = piece
	}

	for _, piece := range SplitText(header, limit) {
		appendPiece(piece)
	}
	for _, item := range items {
		for _, piece := range SplitText(item, limit) {
			appendPiece(piece)
		}
	}

	if buf != "" || len(pages) == 0 {
		pages = append(pages, buf)
	}
	return pages
}

// SplitText режет текст на части не длиннее limit символов,
// по возможности по переводу строки, чтобы форматированные блоки не разрывались.
func SplitText(text string, limit int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= limit {
		return []string{trimmed}
	}

	var parts []string
	for start := 0; start < len(runes); {
		end := start + limit
		if end >= len(runes) {
			chunk := strings.Trim(string(runes[start:]), "\n")
			if chunk != "" {
				parts = append(parts, chunk)
			}
			break
		}

		split := -1
		for i := end; i > start; i-- {
			if runes[i-1] == '\n' {
				split = i
				break
			}
		}
		if split == -1 {
			split = end
		}

		chunk := strings.Trim(string(runes[start:split]), "\n")
		if chunk != "" {
			parts = append(parts, chunk)
		}

		start = split
		for start < len(runes) && runes[start] == '\n' {
			start++
		}
	}

	if len(parts) == 0 {
		return []string{trimmed}
	}

	return parts
}
