package sitegen

import "sort"

// preferredSectionOrder 关键词分类失败时的固定兜底顺序
var preferredSectionOrder = []string{
	"hd001", "h002", "ab001", "sv001", "sh001", "rf001", "ct001", "ft001",
}

// SelectSections 决定生成哪些区块类型。
// 优先级（第一个非空结果生效）：
//  1. 模板预置列表（过滤到目录内存在的类型）
//  2. 调用方强制列表（同上）
//  3. brief 关键词分类的候选列表
//  4. 固定兜底顺序
//  5. 目录自身的前 maxCount 项（按类型名排序保证确定性）
//
// 结果截断到 maxCount；目录为空或全部候选被过滤掉时返回空列表，
// 由调用方作为校验错误处理，不做重试。
func SelectSections(brief string, catalog SectionCatalog, maxCount int, forced, preset []string, classifier *Classifier) []string {
	if len(catalog) == 0 || maxCount <= 0 {
		return nil
	}

	if picked := filterToCatalog(preset, catalog); len(picked) > 0 {
		return truncate(picked, maxCount)
	}
	if picked := filterToCatalog(forced, catalog); len(picked) > 0 {
		return truncate(picked, maxCount)
	}
	if classifier != nil {
		if cat, ok := classifier.Classify(brief); ok {
			if picked := filterToCatalog(cat.Sections, catalog); len(picked) > 0 {
				return truncate(picked, maxCount)
			}
		}
	}
	if picked := filterToCatalog(preferredSectionOrder, catalog); len(picked) > 0 {
		return truncate(picked, maxCount)
	}

	// 目录顺序：map 无序，按类型名排序固定下来
	all := make([]string, 0, len(catalog))
	for t := range catalog {
		all = append(all, t)
	}
	sort.Strings(all)
	return truncate(all, maxCount)
}

// filterToCatalog 只保留目录内存在的类型，保持原有顺序，去重
func filterToCatalog(types []string, catalog SectionCatalog) []string {
	if len(types) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		if _, ok := catalog[t]; !ok {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// truncate 截断而不重排
func truncate(types []string, maxCount int) []string {
	if len(types) <= maxCount {
		return types
	}
	return types[:maxCount]
}
