package extraction

import (
	"regexp"
	"strings"
)

// AgeRange is an eligible age range; a nil bound is unbounded on that side
type AgeRange struct {
	Min *int
	Max *int
}

const maxEligibleAge = 100

const rangeSep = `(?:至|到|—|-|~)`

var ageRules = []rule[AgeRange]{
	{
		name:    "range_with_unit",
		pattern: regexp.MustCompile(`(\d+)\s*周?岁.*?` + rangeSep + `\D*?(\d+)\s*周?岁`),
		build:   pairBuilder(1, 2),
	},
	{
		name:    "birth_days_to_age",
		pattern: regexp.MustCompile(`(\d+)\s*天.*?` + rangeSep + `\D*?(\d+)\s*周?岁`),
		build: func(m []string) (AgeRange, bool) {
			maxAge, ok := atoi(m[2])
			if !ok {
				return AgeRange{}, false
			}
			return validAgeRange(ptr(0), ptr(maxAge))
		},
	},
	{
		name:    "min_max_idiom",
		pattern: regexp.MustCompile(`最小.*?(\d+)\s*周?岁.*?最[大高].*?(\d+)\s*周?岁`),
		build:   pairBuilder(1, 2),
	},
	{
		name:    "above_below",
		pattern: regexp.MustCompile(`(\d+)\s*周?岁(?:\(含\))?以上.*?(\d+)\s*周?岁(?:\(含\))?以下`),
		build:   pairBuilder(1, 2),
	},
	{
		name:    "and_above",
		pattern: regexp.MustCompile(`(\d+)\s*周?岁(?:\(含\))?以上`),
		build:   lowerBoundBuilder,
	},
	{
		name:    "reaching_age",
		pattern: regexp.MustCompile(`年满\s*(\d+)\s*周?岁`),
		build:   lowerBoundBuilder,
	},
	{
		name:    "bare_range",
		pattern: regexp.MustCompile(`(\d+)\s*` + rangeSep + `\s*(\d+)`),
		build:   pairBuilder(1, 2),
	},
	{
		name:    "single_age",
		pattern: regexp.MustCompile(`(\d+)\s*周?岁`),
		build: func(m []string) (AgeRange, bool) {
			age, ok := atoi(m[1])
			if !ok {
				return AgeRange{}, false
			}
			return validAgeRange(ptr(age), ptr(age))
		},
	},
}

var infancyMarkers = []string{"出生满", "天", "婴儿"}

// ExtractAgeRange parses an eligible age description such as
// "出生满30天至60周岁" or "18-55周岁". Unparseable text yields an empty range.
func ExtractAgeRange(text string) AgeRange {
	if isMissing(text) {
		return AgeRange{}
	}
	s := Normalize(text)

	if r, _, ok := firstMatch(ageRules, s); ok {
		return r
	}

	for _, marker := range infancyMarkers {
		if strings.Contains(s, marker) {
			return AgeRange{Min: ptr(0)}
		}
	}

	if parts := strings.Split(s, "至"); len(parts) == 2 {
		lo, hi := integerPattern.FindString(parts[0]), integerPattern.FindString(parts[1])
		if r, ok := pairFromStrings(lo, hi); ok {
			return r
		}
	}

	numbers := integerPattern.FindAllString(s, -1)
	switch {
	case len(numbers) >= 2:
		if r, ok := pairFromStrings(numbers[0], numbers[1]); ok {
			return r
		}
	case len(numbers) == 1:
		if age, ok := atoi(numbers[0]); ok {
			if r, ok := validAgeRange(ptr(age), ptr(age)); ok {
				return r
			}
		}
	}
	return AgeRange{}
}

func pairBuilder(minGroup, maxGroup int) func([]string) (AgeRange, bool) {
	return func(m []string) (AgeRange, bool) {
		return pairFromStrings(m[minGroup], m[maxGroup])
	}
}

func lowerBoundBuilder(m []string) (AgeRange, bool) {
	age, ok := atoi(m[1])
	if !ok {
		return AgeRange{}, false
	}
	return validAgeRange(ptr(age), nil)
}

func pairFromStrings(lo, hi string) (AgeRange, bool) {
	minAge, ok1 := atoi(lo)
	maxAge, ok2 := atoi(hi)
	if !ok1 || !ok2 {
		return AgeRange{}, false
	}
	return validAgeRange(ptr(minAge), ptr(maxAge))
}

func validAgeRange(minAge, maxAge *int) (AgeRange, bool) {
	for _, v := range []*int{minAge, maxAge} {
		if v != nil && !inRange(*v, 0, maxEligibleAge) {
			return AgeRange{}, false
		}
	}
	if minAge != nil && maxAge != nil && *minAge > *maxAge {
		return AgeRange{}, false
	}
	return AgeRange{Min: minAge, Max: maxAge}, true
}

func ptr(v int) *int {
	return &v
}
