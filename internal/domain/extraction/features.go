package extraction

import "strings"

// FeatureVocabulary is the ordered tag vocabulary scanned in product features
var FeatureVocabulary = []string{
	"养老", "退休", "年金", "生存金", "养老金", "祝寿金",
	"分红", "红利", "收益", "增值", "保本", "保证",
	"灵活", "多种选择", "领取灵活", "缴费灵活",
	"保障", "身故", "全残", "意外", "医疗保障",
	"长期", "短期", "终身", "定期",
	"团体", "企业", "员工福利",
	"累积生息", "复利", "利息",
	"补充", "附加", "医疗", "健康",
}

// MaxFeatureKeywords caps the number of tags kept per product
const MaxFeatureKeywords = 10

// ExtractFeatureKeywords returns the vocabulary entries present in text, in
// vocabulary order, at most MaxFeatureKeywords of them.
func ExtractFeatureKeywords(text string) []string {
	tags := []string{}
	if isMissing(text) {
		return tags
	}
	s := Normalize(text)
	for _, k := range FeatureVocabulary {
		if strings.Contains(s, k) {
			tags = append(tags, k)
			if len(tags) == MaxFeatureKeywords {
				break
			}
		}
	}
	return tags
}
