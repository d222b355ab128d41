package product

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	unbounded      = "不限"
	anyPeriod      = "多种可选"
	periodSep      = "、"
	featuresLimit  = 200
	coverageLimit  = 50
	truncateSuffix = "..."
)

var grouping = message.NewPrinter(language.English)

// FormatAgeRange renders an eligible age range such as "18-65岁" or "0-不限岁"
func FormatAgeRange(minAge, maxAge *int) string {
	return boundString(minAge) + "-" + boundString(maxAge) + "岁"
}

func boundString(v *int) string {
	if v == nil {
		return unbounded
	}
	return strconv.Itoa(*v)
}

// FormatPremium renders an amount in yuan with thousands separators, e.g. "10,000元"
func FormatPremium(amount int64) string {
	return grouping.Sprintf("%d", amount) + "元"
}

// FormatPeriods renders payment periods joined by "、", or "多种可选" when none were found
func FormatPeriods(periods []int) string {
	if len(periods) == 0 {
		return anyPeriod
	}
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, periodSep)
}

// FormatCoverage renders the coverage term for display
func FormatCoverage(coverageType CoverageType, age, years *int, description string) string {
	switch {
	case coverageType == CoverageTypeWholeLife:
		return "终身保障"
	case coverageType == CoverageTypeToAge && age != nil && *age > 0:
		return "保障至" + strconv.Itoa(*age) + "周岁"
	case coverageType == CoverageTypeFixedTerm && years != nil && *years > 0:
		return "保障" + strconv.Itoa(*years) + "年"
	case description == "":
		return UnknownValue
	default:
		return TruncateRunes(description, coverageLimit, "")
	}
}

// FormatFeatures keeps the first 200 characters of the features text
func FormatFeatures(text string) string {
	return TruncateRunes(text, featuresLimit, truncateSuffix)
}

// TruncateRunes cuts s to limit characters, appending suffix only when something was cut
func TruncateRunes(s string, limit int, suffix string) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + suffix
}
