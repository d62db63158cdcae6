package booking

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// duplicateKey имя для проверки дубликатов: без пробелов по краям, в нижнем регистре.
// Диакритика и внутренние пробелы значимы.
func duplicateKey(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// foldName приводит имя к виду для поиска: без диакритики, без лишних
// пробелов, в нижнем регистре. "  Niccolò  ROSSI" -> "niccolo rossi".
func foldName(name string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	folded = strings.Join(strings.Fields(folded), " ")
	return cases.Fold().String(folded)
}
