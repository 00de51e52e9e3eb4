package sitegen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StyleConfig 系统提示词的风格规则。
// 以显式不可变值注入，不走全局状态，方便逐测试替换。
type StyleConfig struct {
	RoleIntro         []string
	OutputConstraints []string
	HardConstraints   []string
	Length            []string
	Style             []string
	ToneRules         []string
}

// DefaultStyle 默认风格规则
func DefaultStyle() StyleConfig {
	return StyleConfig{
		RoleIntro: []string{
			"You are a senior website copywriter for small businesses.",
			"You write the content of one page section at a time.",
		},
		OutputConstraints: []string{
			"Respond with a single JSON object and nothing else.",
			"Keep every key of the provided data shape; change only the values.",
			"Do not wrap the JSON in markdown fences.",
		},
		HardConstraints: []string{
			"Never invent phone numbers, addresses or prices.",
			"Never use placeholder text such as lorem ipsum.",
			"Never mention that the content was generated.",
		},
		Length: []string{
			"Headlines at most 60 characters.",
			"Paragraphs at most 2 sentences.",
		},
		Style: []string{
			"Concrete benefits over abstract claims.",
			"Address the visitor directly.",
		},
		ToneRules: []string{
			"Confident but not boastful.",
			"Match the tone of voice from the profile when given.",
		},
	}
}

// BuildSystemPrompt 按固定顺序拼接系统提示词：
// 角色 → 输出约束 → 硬性约束 → 篇幅 → 风格 → 语气。
// 块顺序是对外可观测的行为，调整顺序等同于改变行为。
func BuildSystemPrompt(style StyleConfig) string {
	blocks := []struct {
		heading string
		lines   []string
	}{
		{"", style.RoleIntro},
		{"Output constraints:", style.OutputConstraints},
		{"Hard constraints:", style.HardConstraints},
		{"Length:", style.Length},
		{"Style:", style.Style},
		{"Tone rules:", style.ToneRules},
	}

	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		if len(blk.lines) == 0 {
			continue
		}
		var b strings.Builder
		if blk.heading != "" {
			b.WriteString(blk.heading)
			b.WriteString("\n")
		}
		for _, line := range blk.lines {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		parts = append(parts, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// UserPromptInput 单个区块的用户提示词输入
type UserPromptInput struct {
	SectionType  string
	SectionTitle string
	Version      int
	Language     string
	Brief        string
	Persona      string
	Onboarding   *OnboardingProfile
	DefaultData  json.RawMessage
}

// BuildUserPrompt 按固定声明顺序拼接用户提示词：
// persona → brief → 引导画像 JSON → 区块类型 → 区块元信息 → 目标数据形状。
// 空块整体省略；数据形状块始终包含模型必须逐键保留的目标 JSON。
func BuildUserPrompt(in UserPromptInput) string {
	parts := make([]string, 0, 6)

	if p := strings.TrimSpace(in.Persona); p != "" {
		parts = append(parts, p)
	}
	if b := strings.TrimSpace(in.Brief); b != "" {
		parts = append(parts, "Business brief:\n"+b)
	}
	if in.Onboarding.Active() {
		if raw, err := json.Marshal(in.Onboarding); err == nil {
			parts = append(parts, "Onboarding profile (JSON):\n"+string(raw))
		}
	}
	if t := strings.TrimSpace(in.SectionType); t != "" {
		parts = append(parts, "Section type: "+t)
	}
	if meta := buildSectionMeta(in); meta != "" {
		parts = append(parts, meta)
	}
	if len(in.DefaultData) > 0 {
		parts = append(parts,
			"Target data shape, return a JSON object with exactly these keys and rewrite only the values:\n"+
				string(in.DefaultData))
	}

	return strings.Join(parts, "\n\n")
}

func buildSectionMeta(in UserPromptInput) string {
	lines := make([]string, 0, 3)
	if t := strings.TrimSpace(in.SectionTitle); t != "" {
		lines = append(lines, "- Section title: "+t)
	}
	if in.Version > 0 {
		lines = append(lines, fmt.Sprintf("- Schema version: %d", in.Version))
	}
	if l := strings.TrimSpace(in.Language); l != "" {
		lines = append(lines, "- Output language: "+l)
	}
	if len(lines) == 0 {
		return ""
	}
	return "Section meta:\n" + strings.Join(lines, "\n")
}
