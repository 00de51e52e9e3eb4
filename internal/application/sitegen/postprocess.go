package sitegen

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// 头部区块候选类型
var headerTypes = []string{"hd001", "hd002"}

// navEntry 导航标签表条目；表的声明顺序即导航优先级
type navEntry struct {
	sectionType string
	label       string
}

// navLabelTable 类型 → 导航标签，第一个命中的生效。
// 共享标签的类型（如两种 hero）在导航里收敛为一项。
var navLabelTable = []navEntry{
	{"h002", "Úvod"},
	{"h003", "Úvod"},
	{"ab001", "O nás"},
	{"sv001", "Služby"},
	{"sg001", "Služby"},
	{"sh001", "Portfolio"},
	{"sh002", "Portfolio"},
	{"rs001", "Výsledky"},
	{"rf001", "Reference"},
	{"pc001", "Ceník"},
	{"fq001", "FAQ"},
	{"ct001", "Kontakt"},
	{"ct002", "Kontakt"},
}

// 联系/作品集区块候选类型，按优先级排列
var (
	contactCandidates   = []string{"ct001", "ct002"}
	portfolioCandidates = []string{"sh001", "sh002"}
	heroTypes           = []string{"h002", "h003"}
)

// servicesGridType 单 CTA 的服务网格区块
const servicesGridType = "sg001"

// PostProcessor 把独立生成的区块整合成一致的文档：
// 合成导航、把 CTA 指向实际生成的联系/作品集区块。
type PostProcessor struct {
	intents *IntentClassifier
}

// NewPostProcessor 创建后处理器
func NewPostProcessor(intents *IntentClassifier) *PostProcessor {
	return &PostProcessor{intents: intents}
}

// Apply 就地修改文档。除 nav 与 CTA href 子路径外不碰任何字段，幂等。
func (p *PostProcessor) Apply(doc *DraftDocument, websiteGoal string) {
	if doc == nil || len(doc.Sections) == 0 {
		return
	}

	p.synthesizeNav(doc)

	contactID := firstSectionID(doc, contactCandidates)
	portfolioID := firstSectionID(doc, portfolioCandidates)
	if contactID == "" && portfolioID == "" {
		// 没有可指向的目标区块，CTA 重连整体跳过
		return
	}
	p.rewireCTAs(doc, websiteGoal, contactID, portfolioID)
}

// synthesizeNav 按固定优先级合成导航并整体覆盖头部区块的 nav 字段。
// 按标签去重：共享标签的类型只产生一项。
func (p *PostProcessor) synthesizeNav(doc *DraftDocument) {
	headerIdx := firstSectionIndex(doc, headerTypes)
	if headerIdx < 0 {
		return
	}

	seen := make(map[string]bool, len(navLabelTable))
	nav := make([]map[string]any, 0, len(navLabelTable))
	for _, entry := range navLabelTable {
		id := sectionIDByType(doc, entry.sectionType)
		if id == "" || seen[entry.label] {
			continue
		}
		seen[entry.label] = true
		nav = append(nav, map[string]any{
			"label": entry.label,
			"href":  sectionTarget(id),
		})
	}

	if data, err := sjson.SetBytes(doc.Sections[headerIdx].Data, "nav", nav); err == nil {
		doc.Sections[headerIdx].Data = data
	}
}

// rewireCTAs 定点改写 CTA 目标：
//   - 头部：网站目标表达联系意图（且不是更强的电话/预约意图）时，
//     主 CTA（及存在的次 CTA）指向联系区块
//   - hero：主 CTA 指向联系区块，次 CTA 指向作品集区块（缺作品集则联系）
//   - 服务网格：唯一 CTA 指向联系区块
func (p *PostProcessor) rewireCTAs(doc *DraftDocument, websiteGoal, contactID, portfolioID string) {
	headerIdx := firstSectionIndex(doc, headerTypes)

	if headerIdx >= 0 && contactID != "" && p.intents.WantsContact(websiteGoal) {
		doc.Sections[headerIdx].Data = setCTATarget(doc.Sections[headerIdx].Data, "primaryCta", contactID)
		doc.Sections[headerIdx].Data = setCTATarget(doc.Sections[headerIdx].Data, "secondaryCta", contactID)
	}

	secondaryID := portfolioID
	if secondaryID == "" {
		secondaryID = contactID
	}

	for i := range doc.Sections {
		sec := &doc.Sections[i]
		if i == headerIdx || typeIn(sec.Type, contactCandidates) {
			continue
		}
		switch {
		case typeIn(sec.Type, heroTypes):
			if contactID != "" {
				sec.Data = setCTATarget(sec.Data, "primaryCta", contactID)
			}
			sec.Data = setCTATarget(sec.Data, "secondaryCta", secondaryID)
		case sec.Type == servicesGridType:
			if contactID != "" {
				sec.Data = setCTATarget(sec.Data, "cta", contactID)
			}
		}
	}
}

// setCTATarget 仅当 CTA 字段存在时改写其 href，其余字段原样保留
func setCTATarget(data []byte, ctaPath, sectionID string) []byte {
	if !gjson.GetBytes(data, ctaPath).Exists() {
		return data
	}
	out, err := sjson.SetBytes(data, ctaPath+".href", sectionTarget(sectionID))
	if err != nil {
		return data
	}
	return out
}

// sectionTarget CTA/导航指向区块的统一形状
func sectionTarget(id string) map[string]string {
	return map[string]string{"mode": "section", "value": id}
}

func sectionIDByType(doc *DraftDocument, sectionType string) string {
	for i := range doc.Sections {
		if doc.Sections[i].Type == sectionType {
			return doc.Sections[i].ID
		}
	}
	return ""
}

func firstSectionID(doc *DraftDocument, candidates []string) string {
	for _, t := range candidates {
		if id := sectionIDByType(doc, t); id != "" {
			return id
		}
	}
	return ""
}

func firstSectionIndex(doc *DraftDocument, candidates []string) int {
	for _, t := range candidates {
		for i := range doc.Sections {
			if doc.Sections[i].Type == t {
				return i
			}
		}
	}
	return -1
}

func typeIn(t string, list []string) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}
