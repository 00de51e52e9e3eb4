// Package wire 提供依赖装配
package wire

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"z-sitegen-ai-api/internal/application/sitegen"
	"z-sitegen-ai-api/internal/config"
	"z-sitegen-ai-api/internal/infrastructure/llm"
	"z-sitegen-ai-api/internal/infrastructure/persistence/redis"
	"z-sitegen-ai-api/internal/interfaces/http/handler"
	"z-sitegen-ai-api/internal/interfaces/http/middleware"
	"z-sitegen-ai-api/internal/interfaces/http/router"
	"z-sitegen-ai-api/pkg/logger"
)

// modelCaller 将 llm.Client 适配到生成流水线的最小依赖
type modelCaller struct {
	client *llm.Client
}

// Complete 单次生成尝试，要求模型输出 JSON 对象
func (m *modelCaller) Complete(ctx context.Context, system, user string) (string, error) {
	out, err := m.client.Complete(ctx, llm.CompletionRequest{
		System:     system,
		User:       user,
		JSONOutput: true,
	})
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// HasCredential 是否配置了可用凭证
func (m *modelCaller) HasCredential() bool {
	return m.client.HasCredential()
}

// InitializeApp 装配整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	// LLM 客户端
	providerName := cfg.LLM.DefaultProvider
	providerCfg, ok := cfg.LLM.Providers[providerName]
	if !ok {
		return nil, nil, fmt.Errorf("llm provider not configured: %s", providerName)
	}
	llmClient := llm.NewClient(providerName, &providerCfg)
	if !llmClient.HasCredential() {
		logger.Warn(ctx, "llm credential missing, all sections will fall back to default content",
			"provider", providerName,
		)
	}

	// 生成服务
	svc := sitegen.NewService(&modelCaller{client: llmClient}, sitegen.Options{
		Retry: sitegen.RetryPolicy{
			HTTPRetries:        cfg.LLM.Retry.HTTPRetries,
			EmptyRetries:       cfg.LLM.Retry.EmptyRetries,
			InvalidJSONRetries: cfg.LLM.Retry.InvalidJSONRetries,
			BackoffBase:        cfg.LLM.Retry.BackoffBase,
		},
		Style:        sitegen.DefaultStyle(),
		MaxSections:  cfg.Generation.MaxSections,
		DefaultTheme: cfg.Generation.DefaultTheme,
		Templates:    cfg.Generation.Templates,
	})

	// Redis（可选，仅限流使用）
	var redisClient *redis.Client
	var rateLimit gin.HandlerFunc
	cleanup := func() {}
	if cfg.Cache.Redis.Enabled {
		var err error
		redisClient, err = redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		cleanup = func() {
			if err := redisClient.Close(); err != nil {
				logger.Error(context.Background(), "failed to close redis client", err)
			}
		}
		rateLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:           cfg.Security.RateLimit.Enabled,
			RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
		}, redis.NewRateLimiter(redisClient))
	}

	// 处理器与路由
	siteHandler := handler.NewSiteHandler(svc)
	healthHandler := handler.NewHealthHandler(redisClient)
	r := router.New(cfg, siteHandler, healthHandler, rateLimit)

	return r, cleanup, nil
}
