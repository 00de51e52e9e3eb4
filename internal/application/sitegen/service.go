package sitegen

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"z-sitegen-ai-api/pkg/errors"
	"z-sitegen-ai-api/pkg/logger"
	"z-sitegen-ai-api/pkg/metrics"
)

// Options 服务级配置，由调用方在装配时注入
type Options struct {
	Retry        RetryPolicy
	Style        StyleConfig
	MaxSections  int
	DefaultTheme string
	// Templates 模板名 → 预置区块列表
	Templates map[string][]string
}

// Service 内容生成流水线的入口
type Service struct {
	client       ModelCaller
	retry        RetryPolicy
	style        StyleConfig
	classifier   *Classifier
	intents      *IntentClassifier
	post         *PostProcessor
	maxSections  int
	defaultTheme string
	templates    map[string][]string
}

// NewService 创建生成服务
func NewService(client ModelCaller, opts Options) *Service {
	maxSections := opts.MaxSections
	if maxSections <= 0 {
		maxSections = 8
	}
	defaultTheme := opts.DefaultTheme
	if defaultTheme == "" {
		defaultTheme = "craft"
	}
	intents := DefaultIntentClassifier()
	return &Service{
		client:       client,
		retry:        opts.Retry,
		style:        opts.Style,
		classifier:   NewClassifier(DefaultSectionCategories()),
		intents:      intents,
		post:         NewPostProcessor(intents),
		maxSections:  maxSections,
		defaultTheme: defaultTheme,
		templates:    opts.Templates,
	}
}

// Generate 执行一次完整的页面生成。
// 只有请求校验错误会让调用失败；生成期的失败一律降级为
// Warning + 默认内容，文档始终完整返回。
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	brief := ComposeBrief(in.Onboarding, in.Description)
	persona := ComposePersona(in.Onboarding)

	maxSections := in.MaxSections
	if maxSections <= 0 || maxSections > s.maxSections {
		maxSections = s.maxSections
	}

	preset := s.presetSections(in.Template)
	selected := SelectSections(brief, in.Catalog, maxSections, in.ForcedSections, preset, s.classifier)
	if len(selected) == 0 {
		return nil, errors.ErrNoSectionsSelected.WithDetail(catalogDetail(in.Catalog))
	}

	template := in.Template
	if template == "" {
		template = "none"
	}
	ctx = logger.WithContext(ctx, logger.TemplateKey, template)
	logger.Info(ctx, "generating site content",
		"sections", len(selected),
		"language", in.Language,
	)

	start := time.Now()
	doc, warnings := assembleDocument(ctx, s.client, s.retry, s.style, in, selected, brief, persona)

	goal := ""
	if in.Onboarding != nil {
		goal = in.Onboarding.WebsiteGoal
	}
	s.post.Apply(doc, goal)

	duration := time.Since(start)
	status := "ok"
	if len(warnings) > 0 {
		status = "degraded"
	}
	metrics.SiteGenerationTotal.WithLabelValues(template, status).Inc()
	metrics.SiteGenerationDuration.WithLabelValues(template).Observe(duration.Seconds())
	logger.Info(ctx, "site content generated",
		"sections", len(doc.Sections),
		"warnings", len(warnings),
		"duration_ms", duration.Milliseconds(),
	)

	theme := strings.TrimSpace(in.Theme)
	if theme == "" {
		theme = s.defaultTheme
	}

	return &GenerateOutput{
		Document: doc,
		Theme:    theme,
		Warnings: warnings,
	}, nil
}

// presetSections 模板名解析为预置区块列表，未知模板视为无预置
func (s *Service) presetSections(template string) []string {
	if template == "" {
		return nil
	}
	return s.templates[strings.ToLower(strings.TrimSpace(template))]
}

// validateInput 请求校验：目录与 brief 来源必须存在
func validateInput(in GenerateInput) error {
	if len(in.Catalog) == 0 {
		return errors.ErrMissingCatalog
	}
	if !in.Onboarding.Active() && strings.TrimSpace(in.Description) == "" {
		return errors.ErrMissingBrief
	}
	return nil
}

// catalogDetail 校验错误的诊断上下文：可用类型数量与样例
func catalogDetail(catalog SectionCatalog) string {
	types := make([]string, 0, len(catalog))
	for t := range catalog {
		types = append(types, t)
	}
	sort.Strings(types)
	sample := types
	if len(sample) > 5 {
		sample = sample[:5]
	}
	return fmt.Sprintf("%d types available, sample: %s", len(types), strings.Join(sample, ", "))
}
