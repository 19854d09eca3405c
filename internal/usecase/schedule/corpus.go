package schedule

import "nach-yomi-bot/internal/domain"

// Epoch — первый день цикла Нах Йоми.
var Epoch = domain.Date{Year: 2026, Month: 2, Day: 15}

// ChaptersPerDay — глав в дневном задании.
const ChaptersPerDay = 2

// NachOrder — порядок книг рассылки: поздние пророки, двенадцать малых пророков,
// Писания, ранние пророки. Цикл повторяется бесконечно.
var NachOrder = []domain.Book{
	{Name: "Isaiah", HebrewName: "ישעיהו", Chapters: 66},
	{Name: "Jeremiah", HebrewName: "ירמיהו", Chapters: 52},
	{Name: "Ezekiel", HebrewName: "יחזקאל", Chapters: 48},

	{Name: "Hosea", HebrewName: "הושע", Chapters: 14},
	{Name: "Joel", HebrewName: "יואל", Chapters: 4},
	{Name: "Amos", HebrewName: "עמוס", Chapters: 9},
	{Name: "Obadiah", HebrewName: "עובדיה", Chapters: 1},
	{Name: "Jonah", HebrewName: "יונה", Chapters: 4},
	{Name: "Micah", HebrewName: "מיכה", Chapters: 7},
	{Name: "Nahum", HebrewName: "נחום", Chapters: 3},
	{Name: "Habakkuk", HebrewName: "חבקוק", Chapters: 3},
	{Name: "Zephaniah", HebrewName: "צפניה", Chapters: 3},
	{Name: "Haggai", HebrewName: "חגי", Chapters: 2},
	{Name: "Zechariah", HebrewName: "זכריה", Chapters: 14},
	{Name: "Malachi", HebrewName: "מלאכי", Chapters: 3},

	{Name: "Psalms", HebrewName: "תהלים", Chapters: 150},
	{Name: "Proverbs", HebrewName: "משלי", Chapters: 31},
	{Name: "Job", HebrewName: "איוב", Chapters: 42},
	{Name: "Song of Songs", HebrewName: "שיר השירים", Chapters: 8},
	{Name: "Ruth", HebrewName: "רות", Chapters: 4},
	{Name: "Lamentations", HebrewName: "איכה", Chapters: 5},
	{Name: "Ecclesiastes", HebrewName: "קהלת", Chapters: 12},
	{Name: "Esther", HebrewName: "אסתר", Chapters: 10},
	{Name: "Daniel", HebrewName: "דניאל", Chapters: 12},
	{Name: "Ezra", HebrewName: "עזרא", Chapters: 10},
	{Name: "Nehemiah", HebrewName: "נחמיה", Chapters: 13},
	{Name: "I Chronicles", HebrewName: "דברי הימים א", Chapters: 29},
	{Name: "II Chronicles", HebrewName: "דברי הימים ב", Chapters: 36},

	{Name: "Joshua", HebrewName: "יהושע", Chapters: 24},
	{Name: "Judges", HebrewName: "שופטים", Chapters: 21},
	{Name: "I Samuel", HebrewName: "שמואל א", Chapters: 31},
	{Name: "II Samuel", HebrewName: "שמואל ב", Chapters: 24},
	{Name: "I Kings", HebrewName: "מלכים א", Chapters: 22},
	{Name: "II Kings", HebrewName: "מלכים ב", Chapters: 25},
}
