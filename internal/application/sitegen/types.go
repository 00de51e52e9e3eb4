// Package sitegen 实现网站内容生成流水线：
// 选择区块 → 合成提示词 → 调用 LLM（分级重试）→ 解析/兜底 → 组装文档 → 后处理。
package sitegen

import (
	"encoding/json"
	"strings"
)

// SectionDefinition 区块定义，由调用方随请求提供，单次调用期间不可变
type SectionDefinition struct {
	Version     int             `json:"version"`
	DefaultData json.RawMessage `json:"defaultData"`
	Title       string          `json:"title,omitempty"`
}

// SectionCatalog 区块类型 → 定义
type SectionCatalog map[string]SectionDefinition

// OnboardingProfile 引导问卷，所有字段可选；
// 任一字段非空即视为有效画像，优先于遗留的自由文本描述。
type OnboardingProfile struct {
	Name           string `json:"name,omitempty"`
	Focus          string `json:"focus,omitempty"`
	IdealCustomer  string `json:"idealCustomer,omitempty"`
	MainProblem    string `json:"mainProblem,omitempty"`
	Differentiator string `json:"differentiator,omitempty"`
	Location       string `json:"location,omitempty"`
	ToneOfVoice    string `json:"toneOfVoice,omitempty"`
	WebsiteGoal    string `json:"websiteGoal,omitempty"`
}

// Active 任一字段非空即有效
func (p *OnboardingProfile) Active() bool {
	if p == nil {
		return false
	}
	for _, v := range []string{
		p.Name, p.Focus, p.IdealCustomer, p.MainProblem,
		p.Differentiator, p.Location, p.ToneOfVoice, p.WebsiteGoal,
	} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// GeneratedSection 流水线产出的单个区块。
// 创建后不再修改，只有后处理会对 nav 与 CTA 子路径做定点合并。
type GeneratedSection struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
	Title   string          `json:"title,omitempty"`
}

// DraftDocument 一次调用产出的有序区块集合，顺序等于选择顺序
type DraftDocument struct {
	Version  int                `json:"version"`
	Sections []GeneratedSection `json:"sections"`
}

// Warning 某区块降级为默认内容的结构化提示，非致命
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// FallbackReason 区块降级的结构化原因；Warning 在边界处由它生成
type FallbackReason struct {
	Code    string
	Message string
}

// 降级原因码
const (
	ReasonMissingCredential = "missing_credential"
	ReasonHTTPError         = "http_error"
	ReasonEmptyOutput       = "empty_output"
	ReasonInvalidJSON       = "invalid_json"
	ReasonEmptyObject       = "empty_object"
	ReasonCancelled         = "cancelled"
)

// GenerateInput 一次生成调用的完整输入
type GenerateInput struct {
	Language       string
	Catalog        SectionCatalog
	MaxSections    int
	Onboarding     *OnboardingProfile
	Description    string
	Template       string
	Theme          string
	ForcedSections []string
	SchemaVersion  int
}

// GenerateOutput 一次生成调用的结果
type GenerateOutput struct {
	Document *DraftDocument
	Theme    string
	Warnings []Warning
}
