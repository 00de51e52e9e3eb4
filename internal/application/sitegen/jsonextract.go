package sitegen

import "strings"

// extractJSONObject 从模型输出中截取一个 JSON 对象子串。
// 容错逻辑：模型可能在 JSON 前后夹杂多余文本。
// 整串恰好是一个对象时原样返回；否则取最外层 {...} 区间；
// 找不到对象时返回 ok=false。纯函数，永不 panic，
// 解析是否成功由调用方判定。
func extractJSONObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s, true
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
