package extraction

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pension/backend/internal/domain/product"
	"golang.org/x/text/width"
)

var chineseDigits = map[rune]int{
	'零': 0, '〇': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var chineseUnits = map[rune]int{'十': 10, '百': 100}

// numeral runs are only rewritten in front of these suffixes
var numeralSuffixes = []string{"周岁", "岁", "年", "天", "至", "到", "个月"}

// Normalize prepares a cell for pattern matching: full-width forms are folded
// to ASCII and Chinese numerals written before an age or duration unit are
// rewritten as Arabic digits ("十六周岁" becomes "16周岁").
func Normalize(text string) string {
	folded := width.Fold.String(strings.TrimSpace(text))
	if !strings.ContainsFunc(folded, isChineseNumeral) {
		return folded
	}

	var b strings.Builder
	b.Grow(len(folded))
	rest := folded
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		if !isChineseNumeral(r) {
			b.WriteString(rest[:size])
			rest = rest[size:]
			continue
		}
		end := 0
		for end < len(rest) {
			nr, ns := utf8.DecodeRuneInString(rest[end:])
			if !isChineseNumeral(nr) {
				break
			}
			end += ns
		}
		run, tail := rest[:end], rest[end:]
		if value, ok := parseChineseNumeral(run); ok && hasNumeralSuffix(tail) {
			b.WriteString(strconv.Itoa(value))
		} else {
			b.WriteString(run)
		}
		rest = tail
	}
	return b.String()
}

func isChineseNumeral(r rune) bool {
	if _, ok := chineseDigits[r]; ok {
		return true
	}
	_, ok := chineseUnits[r]
	return ok
}

func hasNumeralSuffix(s string) bool {
	for _, suffix := range numeralSuffixes {
		if strings.HasPrefix(s, suffix) {
			return true
		}
	}
	return false
}

// parseChineseNumeral converts numerals below one thousand ("六十五", "一百零五", "三十")
func parseChineseNumeral(s string) (int, bool) {
	total, current := 0, -1
	for _, r := range s {
		if d, ok := chineseDigits[r]; ok {
			if current > 0 {
				// two digits in a row such as "二五" are not a number we understand
				return 0, false
			}
			current = d
			continue
		}
		unit := chineseUnits[r]
		if current == -1 {
			current = 1
		}
		total += current * unit
		current = -1
	}
	if current > 0 {
		total += current
	}
	return total, true
}

// isMissing reports whether the cell carries no usable text
func isMissing(text string) bool {
	return product.IsPlaceholder(text)
}
