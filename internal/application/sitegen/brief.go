package sitegen

import "strings"

// briefClosing 固定的收尾指令，保证 brief 对上游提示词缓存友好
const briefClosing = "Use this profile to write specific, trustworthy copy. Never invent facts that contradict it."

// briefLine 单行标签与取值函数，顺序固定
type briefLine struct {
	label string
	value func(*OnboardingProfile) string
}

var briefLines = []briefLine{
	{"Business name", func(p *OnboardingProfile) string { return p.Name }},
	{"Primary focus", func(p *OnboardingProfile) string { return p.Focus }},
	{"Ideal customer", func(p *OnboardingProfile) string { return p.IdealCustomer }},
	{"Main problem solved", func(p *OnboardingProfile) string { return p.MainProblem }},
	{"What sets them apart", func(p *OnboardingProfile) string { return p.Differentiator }},
	{"Location", func(p *OnboardingProfile) string { return p.Location }},
	{"Tone of voice", func(p *OnboardingProfile) string { return p.ToneOfVoice }},
	{"Website goal", func(p *OnboardingProfile) string { return p.WebsiteGoal }},
}

// ComposeBrief 从引导画像合成 brief；画像无效时原样返回遗留描述。
// 纯函数：相同输入永远得到逐字节一致的输出。
func ComposeBrief(profile *OnboardingProfile, legacy string) string {
	if !profile.Active() {
		return strings.TrimSpace(legacy)
	}

	var b strings.Builder
	for _, line := range briefLines {
		v := strings.TrimSpace(line.value(profile))
		if v == "" {
			continue
		}
		b.WriteString(line.label)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(briefClosing)
	return b.String()
}

// ComposePersona 从画像派生一行角色描述，供提示词单独成块
func ComposePersona(profile *OnboardingProfile) string {
	if !profile.Active() {
		return ""
	}
	parts := make([]string, 0, 3)
	if v := strings.TrimSpace(profile.Name); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(profile.Focus); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(profile.IdealCustomer); v != "" {
		parts = append(parts, "serving "+v)
	}
	if len(parts) == 0 {
		return ""
	}
	return "You are writing website copy for " + strings.Join(parts, ", ") + "."
}
