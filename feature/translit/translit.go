package translit

import (
	"regexp"
	"strings"
)

var table = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e",
	'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k",
	'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "sch", 'ь': "", 'ы': "y", 'ъ': "'",
	'э': "e", 'ю': "yu", 'я': "ya",

	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "Ye",
	'Ё': "Yo", 'Ж': "Zh", 'З': "Z", 'И': "I", 'Й': "Y", 'К': "K",
	'Л': "L", 'М': "M", 'Н': "N", 'О': "O", 'П': "P", 'Р': "R",
	'С': "S", 'Т': "T", 'У': "U", 'Ф': "F", 'Х': "Kh", 'Ц': "Ts",
	'Ч': "Ch", 'Ш': "Sh", 'Щ': "Sch", 'Ы': "Y", 'Э': "E", 'Ю': "Yu",
	'Я': "Ya",
}

// Abbreviations like "ЖК" come out as "ZhK"; they are upper-cased as a whole.
var mixedCase = regexp.MustCompile(`[A-Z][a-z][A-Z]`)

// Latin transliterates Cyrillic text. Characters outside the table pass through.
// A lower-case "е" becomes "ye" after a vowel, a space, "ь" or "ъ".
func Latin(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/2)

	var prev rune
	for _, r := range s {
		lat, ok := table[r]
		switch {
		case !ok:
			b.WriteRune(r)
		case r == 'е' && iotated(prev, b.String()):
			b.WriteString("ye")
		default:
			b.WriteString(lat)
		}
		prev = r
	}

	return mixedCase.ReplaceAllStringFunc(b.String(), strings.ToUpper)
}

// iotated reports whether an "е" following prev (with out written so far) is pronounced "ye".
func iotated(prev rune, out string) bool {
	if prev == 'ь' || prev == 'ъ' {
		return true
	}
	if out == "" {
		return false
	}
	return strings.IndexByte(" AaEeOoIiUuYy", out[len(out)-1]) >= 0
}
