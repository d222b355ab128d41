package extraction

import (
	"regexp"
	"slices"
	"strings"

	"github.com/pension/backend/internal/domain/product"
	"github.com/shopspring/decimal"
)

// PremiumInfo is what the premium description tells about payment
type PremiumInfo struct {
	PaymentType product.PaymentType
	MinAmount   int64
	Periods     []int
}

var paymentTypeTable = []keywordCategory[product.PaymentType]{
	{product.PaymentTypeLumpSum, []string{"趸交", "一次交清", "趸缴", "一次性"}},
	{product.PaymentTypeInstallment, []string{"期缴", "年交", "分期", "定期"}},
	{product.PaymentTypeMonthly, []string{"月交", "月缴", "每月"}},
	{product.PaymentTypeQuarterly, []string{"季交", "季缴", "每季"}},
	{product.PaymentTypeSemiAnnual, []string{"半年交", "半年缴"}},
}

var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*年交`),
	regexp.MustCompile(`交费期间[:：]\s*(\d+)年`),
	regexp.MustCompile(`缴费[:：]\s*(\d+)年`),
	regexp.MustCompile(`(\d+)年期`),
	regexp.MustCompile(`分\s*(\d+)\s*年`),
	regexp.MustCompile(`(\d+)\s*年`),
}

const (
	minPeriod = 1
	maxPeriod = 50
	amount    = `(\d+(?:,\d+)*(?:\.\d+)?)`
)

var (
	tenThousand = decimal.NewFromInt(10000)
	one         = decimal.NewFromInt(1)
)

var amountRules = []rule[int64]{
	{name: "yuan", pattern: regexp.MustCompile(amount + `\s*元`), build: amountBuilder(one)},
	{name: "not_less_than", pattern: regexp.MustCompile(`不低于\s*` + amount + `\s*元`), build: amountBuilder(one)},
	{name: "per_policy_floor", pattern: regexp.MustCompile(`每单保险费不得低于\s*` + amount + `\s*(万)?`), build: floorBuilder},
	{name: "starting_from", pattern: regexp.MustCompile(amount + `\s*元起`), build: amountBuilder(one)},
	{name: "premium_yuan", pattern: regexp.MustCompile(`保费\s*` + amount + `\s*元`), build: amountBuilder(one)},
	{name: "per_unit", pattern: regexp.MustCompile(amount + `\s*元/份`), build: amountBuilder(one)},
	{name: "ten_thousand_yuan", pattern: regexp.MustCompile(amount + `\s*万元`), build: amountBuilder(tenThousand)},
}

// DefaultMinPremium is the floor used when a premium description names no amount
func DefaultMinPremium(paymentType product.PaymentType) int64 {
	if paymentType == product.PaymentTypeLumpSum {
		return 10000
	}
	return 1000
}

// ExtractPremiumInfo reads payment type, allowed payment periods and the minimum
// premium from a premium description. Missing text yields an unknown payment
// type with a zero amount; present text without an amount falls back to
// DefaultMinPremium.
func ExtractPremiumInfo(text string) PremiumInfo {
	info := PremiumInfo{PaymentType: product.PaymentTypeUnknown, Periods: []int{}}
	if isMissing(text) {
		return info
	}
	s := strings.ToLower(Normalize(text))

	if t, ok := matchCategory(paymentTypeTable, s); ok {
		info.PaymentType = t
	}
	info.Periods = extractPeriods(s)

	if v, _, ok := firstMatch(amountRules, s); ok {
		info.MinAmount = v
	} else {
		info.MinAmount = DefaultMinPremium(info.PaymentType)
	}
	return info
}

func extractPeriods(s string) []int {
	periods := []int{}
	for _, raw := range allMatches(periodPatterns, s) {
		n, ok := atoi(raw)
		if !ok || !inRange(n, minPeriod, maxPeriod) {
			continue
		}
		if !slices.Contains(periods, n) {
			periods = append(periods, n)
		}
	}
	slices.Sort(periods)
	return periods
}

// floorBuilder scales the per-policy floor when it is stated in 万
func floorBuilder(m []string) (int64, bool) {
	if m[2] != "" {
		return amountBuilder(tenThousand)(m)
	}
	return amountBuilder(one)(m)
}

func amountBuilder(unit decimal.Decimal) func([]string) (int64, bool) {
	return func(m []string) (int64, bool) {
		d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return 0, false
		}
		v := d.Mul(unit).IntPart()
		return v, v > 0
	}
}
