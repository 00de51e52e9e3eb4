package llm

import "strings"

// modelFamily 声明一个模型族的请求参数差异：
// token 上限字段名不同，部分族不接受 temperature。
type modelFamily struct {
	prefixes        []string
	tokenLimitField string
	sendTemperature bool
}

// 按声明顺序匹配，第一个命中的生效
var modelFamilies = []modelFamily{
	{
		prefixes:        []string{"o1", "o3", "o4", "gpt-5"},
		tokenLimitField: "max_completion_tokens",
		sendTemperature: false,
	},
}

var defaultModelFamily = modelFamily{
	tokenLimitField: "max_tokens",
	sendTemperature: true,
}

// familyFor 返回模型对应的参数族
func familyFor(model string) modelFamily {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, f := range modelFamilies {
		for _, p := range f.prefixes {
			if strings.HasPrefix(m, p) {
				return f
			}
		}
	}
	return defaultModelFamily
}
