package sitegen

import (
	"regexp"
	"strings"
)

// Category 关键词分类条目：正则命中即返回其候选区块列表
type Category struct {
	Name     string
	Pattern  *regexp.Regexp
	Sections []string
}

// Classifier 基于有序关键词表的文本分类器。
// 关键词表是配置数据而非代码，便于替换与单测。
type Classifier struct {
	categories []Category
}

// NewClassifier 创建分类器
func NewClassifier(categories []Category) *Classifier {
	return &Classifier{categories: categories}
}

// Classify 小写化输入后按声明顺序匹配，第一个命中的类目生效
func (c *Classifier) Classify(text string) (Category, bool) {
	t := strings.ToLower(text)
	for _, cat := range c.categories {
		if cat.Pattern.MatchString(t) {
			return cat, true
		}
	}
	return Category{}, false
}

// DefaultSectionCategories 区块选择的默认类目表
func DefaultSectionCategories() []Category {
	return []Category{
		{
			Name:     "portfolio",
			Pattern:  regexp.MustCompile(`portfolio|showroom|ukázk|realizac|gallery|my work|práce|tvorb`),
			Sections: []string{"hd001", "h002", "sh001", "ab001", "ct001", "ft001"},
		},
		{
			Name:     "services",
			Pattern:  regexp.MustCompile(`služb|service|consult|poraden|nabíz|offer|agency|agentur`),
			Sections: []string{"hd001", "h002", "sg001", "rf001", "ct001", "ft001"},
		},
		{
			Name:     "results",
			Pattern:  regexp.MustCompile(`výsledk|result|metric|čísl|growth|růst|conversion|konverz`),
			Sections: []string{"hd001", "h002", "rs001", "rf001", "ct001", "ft001"},
		},
	}
}

// IntentClassifier 网站目标的意图判定：
// 联系意图命中且更强的电话/预约意图未命中时，才算“希望被联系”。
type IntentClassifier struct {
	contact *regexp.Regexp
	call    *regexp.Regexp
}

// NewIntentClassifier 创建意图分类器
func NewIntentClassifier(contact, call *regexp.Regexp) *IntentClassifier {
	return &IntentClassifier{contact: contact, call: call}
}

// DefaultIntentClassifier 默认意图关键词（捷克语在前，英语兜底）
func DefaultIntentClassifier() *IntentClassifier {
	return NewIntentClassifier(
		regexp.MustCompile(`kontakt|ozv|popt|formulář|zpráv|napsal|napiš|contact|enquir|inquir|message|reach out`),
		regexp.MustCompile(`zavol|telefon|hovor|rezervac|objedna|call me|book|appointment|schedul`),
	)
}

// WantsContact 判定用户是否希望访客通过联系区块联系
func (ic *IntentClassifier) WantsContact(goal string) bool {
	if ic == nil {
		return false
	}
	g := strings.ToLower(strings.TrimSpace(goal))
	if g == "" {
		return false
	}
	return ic.contact.MatchString(g) && !ic.call.MatchString(g)
}
