package sitegen

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"z-sitegen-ai-api/pkg/logger"
	"z-sitegen-ai-api/pkg/metrics"
)

// assembleDocument 对每个选中类型并发展开一个生成任务，全部汇合后组装文档。
// 任一任务的失败都被完全封闭在该任务内（定型为兜底结果），
// 不会波及兄弟任务，也不会中断汇合，文档从不部分返回。
// 区块顺序等于选择顺序，与完成顺序无关。
func assembleDocument(ctx context.Context, client ModelCaller, policy RetryPolicy, style StyleConfig, in GenerateInput, selected []string, brief, persona string) (*DraftDocument, []Warning) {
	system := BuildSystemPrompt(style)

	results := make([]sectionResult, len(selected))
	g, gctx := errgroup.WithContext(ctx)

	for i, sectionType := range selected {
		def := in.Catalog[sectionType]
		user := BuildUserPrompt(UserPromptInput{
			SectionType:  sectionType,
			SectionTitle: def.Title,
			Version:      def.Version,
			Language:     in.Language,
			Brief:        brief,
			Persona:      persona,
			Onboarding:   in.Onboarding,
			DefaultData:  def.DefaultData,
		})

		g.Go(func() error {
			sctx := logger.WithContext(gctx, logger.SectionTypeKey, sectionType)
			results[i] = generateSection(sctx, client, policy, def, system, user)
			return nil
		})
	}
	// 任务从不返回错误，Wait 只用作汇合点
	_ = g.Wait()

	doc := &DraftDocument{
		Version:  in.SchemaVersion,
		Sections: make([]GeneratedSection, 0, len(selected)),
	}
	warnings := make([]Warning, 0)

	for i, sectionType := range selected {
		def := in.Catalog[sectionType]
		res := results[i]

		doc.Sections = append(doc.Sections, GeneratedSection{
			ID:      uuid.New().String(),
			Type:    sectionType,
			Version: def.Version,
			Data:    res.Data,
			Title:   def.Title,
		})

		if res.Fallback != nil {
			warnings = append(warnings, warningFromReason(sectionType, res.Fallback))
			metrics.SectionsGeneratedTotal.WithLabelValues(sectionType, "fallback").Inc()
		} else {
			metrics.SectionsGeneratedTotal.WithLabelValues(sectionType, "generated").Inc()
		}
	}

	return doc, warnings
}
