package extraction

import (
	"regexp"
	"strings"

	"github.com/pension/backend/internal/domain/product"
)

// CoverageInfo describes the coverage term of a product
type CoverageInfo struct {
	Type        product.CoverageType
	Age         *int
	Years       *int
	Description string
}

var coverageAgeRules = []rule[int]{
	{name: "until_age", pattern: regexp.MustCompile(`至.*?(\d+)\s*周岁`), build: boundedInt(0, 120)},
	{name: "reaching_age", pattern: regexp.MustCompile(`满.*?(\d+)\s*周岁`), build: boundedInt(0, 120)},
	{name: "full_years_of_age", pattern: regexp.MustCompile(`(\d+)\s*周岁`), build: boundedInt(0, 120)},
	{name: "years_of_age", pattern: regexp.MustCompile(`(\d+)\s*岁`), build: boundedInt(0, 120)},
	{name: "attains_age", pattern: regexp.MustCompile(`年满\s*(\d+)\s*周岁`), build: boundedInt(0, 120)},
	{name: "until_age_short", pattern: regexp.MustCompile(`至\s*(\d+)\s*岁`), build: boundedInt(0, 120)},
}

// the explicit "insurance period" wordings are tried before a bare year count
var coverageYearRules = []rule[int]{
	{name: "insurance_period", pattern: regexp.MustCompile(`保险期间为?\s*(\d+)\s*年`), build: boundedInt(1, 100)},
	{name: "term", pattern: regexp.MustCompile(`期限[:：]\s*(\d+)年`), build: boundedInt(1, 100)},
	{name: "years_insurance_period", pattern: regexp.MustCompile(`(\d+)年保险期间`), build: boundedInt(1, 100)},
	{name: "years", pattern: regexp.MustCompile(`(\d+)\s*年`), build: boundedInt(1, 100)},
}

// ExtractCoveragePeriod classifies a coverage description as whole-life,
// to a specific age or a fixed number of years.
func ExtractCoveragePeriod(text string) CoverageInfo {
	if isMissing(text) {
		return CoverageInfo{Type: product.CoverageTypeUnknown}
	}
	info := CoverageInfo{Type: product.CoverageTypeUnknown, Description: strings.TrimSpace(text)}
	s := strings.ToLower(Normalize(text))

	if age, _, ok := firstMatch(coverageAgeRules, s); ok {
		info.Age = ptr(age)
		info.Type = product.CoverageTypeToAge
	}
	if years, _, ok := firstMatch(coverageYearRules, s); ok {
		info.Years = ptr(years)
		if info.Type == product.CoverageTypeUnknown {
			info.Type = product.CoverageTypeFixedTerm
		}
	}

	switch {
	case strings.Contains(s, "终身"):
		info.Type = product.CoverageTypeWholeLife
		info.Age = ptr(product.WholeLifeCoverageAge)
	case strings.Contains(s, "至"):
		if info.Type == product.CoverageTypeUnknown {
			info.Type = product.CoverageTypeToAge
		}
	case strings.Contains(s, "年"):
		if info.Type == product.CoverageTypeUnknown {
			info.Type = product.CoverageTypeFixedTerm
		}
	}
	return info
}

func boundedInt(lo, hi int) func([]string) (int, bool) {
	return func(m []string) (int, bool) {
		n, ok := atoi(m[1])
		return n, ok && inRange(n, lo, hi)
	}
}
