package message

import "strconv"

var (
	hebrewOnes     = []string{"", "א", "ב", "ג", "ד", "ה", "ו", "ז", "ח", "ט"}
	hebrewTens     = []string{"", "י", "כ", "ל", "מ", "נ", "ס", "ע", "פ", "צ"}
	hebrewHundreds = []string{"", "ק", "ר", "ש", "ת", "תק", "תר", "תש", "תת", "תתק"}
)

const gershayim = "״"

// HebrewNumeral записывает число 1..999 буквами иврита.
// 15 и 16 пишутся как ט״ו и ט״ז. Остальные значения возвращаются цифрами.
func HebrewNumeral(n int) string {
	if n <= 0 || n > 999 {
		return strconv.Itoa(n)
	}

	prefix := hebrewHundreds[n/100]
	rest := n % 100
	switch rest {
	case 15:
		return prefix + "ט" + gershayim + "ו"
	case 16:
		return prefix + "ט" + gershayim + "ז"
	}

	letters := []rune(prefix + hebrewTens[rest/10] + hebrewOnes[rest%10])
	if len(letters) == 1 {
		return string(letters)
	}
	last := len(letters) - 1
	return string(letters[:last]) + gershayim + string(letters[last])
}
