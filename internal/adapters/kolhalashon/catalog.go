package kolhalashon

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	siteBase  = "https://www2.kolhalashon.com"
	mediaBase = "https://media2.kolhalashon.com:9001"
	sefaria   = "https://www.sefaria.org"

	// ravID — страница рава Брейтовица на Kol Halashon.
	ravID = 9991
	// nachFilterID — общий фильтр Нах на странице рава.
	nachFilterID = 288648
)

// Catalog — статический каталог шиурим рава Брейтовица и ссылок на тексты.
type Catalog struct{}

// New создаёт каталог.
func New() Catalog { return Catalog{} }

// MediaID возвращает шиур для главы, если он известен.
func (Catalog) MediaID(book string, chapter int) (int64, bool) {
	id, ok := shiurIDs[book][chapter]
	return id, ok
}

// ShiurURL ведёт на конкретный шиур, иначе на страницу книги, иначе на общую страницу Нах.
func (Catalog) ShiurURL(book string, mediaID *int64) string {
	if mediaID != nil {
		return fmt.Sprintf("%s/en/regularSite/playShiur/%d", siteBase, *mediaID)
	}
	if filter, ok := bookFilterIDs[book]; ok {
		return fmt.Sprintf("%s/en/regularSite/ravs/%d?urlFilters=26:%d|", siteBase, ravID, filter)
	}
	return fmt.Sprintf("%s/en/regularSite/ravs/%d?urlFilters=25:%d|", siteBase, ravID, nachFilterID)
}

// AudioURL — MP3 шиура для встраивания в Telegram.
func (Catalog) AudioURL(mediaID int64) string {
	return fmt.Sprintf("%s/api/files/GetMp3FileToPlay/%d", siteBase, mediaID)
}

// VideoURL — HLS-плейлист шиура.
func (Catalog) VideoURL(mediaID int64) string {
	return fmt.Sprintf("%s/KHL_Video/_definst_/amlst:NewArchive/HD/%s/%d/playlist.m3u8", mediaBase, prefix(mediaID), mediaID)
}

// ThumbnailURL — превью видео шиура.
func (Catalog) ThumbnailURL(mediaID int64) string {
	return fmt.Sprintf("%s/imgs/VideoThumbNails/%s/%d.jpg", siteBase, prefix(mediaID), mediaID)
}

// TextURL — страница главы на Sefaria.
func (Catalog) TextURL(book string, chapter int) string {
	return fmt.Sprintf("%s/%s.%d", sefaria, SefariaRef(book), chapter)
}

// SefariaRef переводит имя книги в формат ссылок Sefaria.
func SefariaRef(book string) string {
	return strings.ReplaceAll(book, " ", "_")
}

func prefix(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
