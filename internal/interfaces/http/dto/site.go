package dto

import (
	"encoding/json"

	"z-sitegen-ai-api/internal/application/sitegen"
)

// SectionDefinitionDTO 请求中的区块定义
type SectionDefinitionDTO struct {
	Version     int             `json:"version"`
	DefaultData json.RawMessage `json:"defaultData" binding:"required"`
	Title       string          `json:"title,omitempty"`
}

// OnboardingDTO 引导问卷
type OnboardingDTO struct {
	Name           string `json:"name"`
	Focus          string `json:"focus"`
	IdealCustomer  string `json:"idealCustomer"`
	MainProblem    string `json:"mainProblem"`
	Differentiator string `json:"differentiator"`
	Location       string `json:"location"`
	ToneOfVoice    string `json:"toneOfVoice"`
	WebsiteGoal    string `json:"websiteGoal"`
}

// GenerateSiteRequest 站点内容生成请求
type GenerateSiteRequest struct {
	Sections       map[string]SectionDefinitionDTO `json:"sections" binding:"required"`
	Onboarding     *OnboardingDTO                  `json:"onboarding"`
	Description    string                          `json:"description"`
	Template       string                          `json:"template"`
	Theme          string                          `json:"theme"`
	Language       string                          `json:"language"`
	ForcedSections []string                        `json:"forcedSections"`
	MaxSections    int                             `json:"maxSections"`
	SchemaVersion  int                             `json:"schemaVersion"`
}

// ToInput 转换为应用层输入
func (r *GenerateSiteRequest) ToInput() sitegen.GenerateInput {
	catalog := make(sitegen.SectionCatalog, len(r.Sections))
	for t, def := range r.Sections {
		catalog[t] = sitegen.SectionDefinition{
			Version:     def.Version,
			DefaultData: def.DefaultData,
			Title:       def.Title,
		}
	}
	in := sitegen.GenerateInput{
		Language:       r.Language,
		Catalog:        catalog,
		MaxSections:    r.MaxSections,
		Description:    r.Description,
		Template:       r.Template,
		Theme:          r.Theme,
		ForcedSections: r.ForcedSections,
		SchemaVersion:  r.SchemaVersion,
	}
	if r.Onboarding != nil {
		in.Onboarding = &sitegen.OnboardingProfile{
			Name:           r.Onboarding.Name,
			Focus:          r.Onboarding.Focus,
			IdealCustomer:  r.Onboarding.IdealCustomer,
			MainProblem:    r.Onboarding.MainProblem,
			Differentiator: r.Onboarding.Differentiator,
			Location:       r.Onboarding.Location,
			ToneOfVoice:    r.Onboarding.ToneOfVoice,
			WebsiteGoal:    r.Onboarding.WebsiteGoal,
		}
	}
	return in
}

// GeneratedSectionDTO 响应中的区块
type GeneratedSectionDTO struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
	Title   string          `json:"title,omitempty"`
}

// WarningDTO 降级警告
type WarningDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GenerateSiteResponse 站点内容生成响应
type GenerateSiteResponse struct {
	Version  int                   `json:"version"`
	Theme    string                `json:"theme"`
	Sections []GeneratedSectionDTO `json:"sections"`
	Warnings []WarningDTO          `json:"warnings,omitempty"`
}

// FromOutput 由应用层结果构造响应
func FromOutput(out *sitegen.GenerateOutput) GenerateSiteResponse {
	resp := GenerateSiteResponse{
		Version:  out.Document.Version,
		Theme:    out.Theme,
		Sections: make([]GeneratedSectionDTO, 0, len(out.Document.Sections)),
	}
	for _, s := range out.Document.Sections {
		resp.Sections = append(resp.Sections, GeneratedSectionDTO{
			ID:      s.ID,
			Type:    s.Type,
			Version: s.Version,
			Data:    s.Data,
			Title:   s.Title,
		})
	}
	for _, w := range out.Warnings {
		resp.Warnings = append(resp.Warnings, WarningDTO{Type: w.Type, Message: w.Message})
	}
	return resp
}
