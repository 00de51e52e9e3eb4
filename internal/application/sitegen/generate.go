package sitegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"z-sitegen-ai-api/pkg/logger"
	"z-sitegen-ai-api/pkg/metrics"
)

// ModelCaller 流水线对 LLM 客户端的最小依赖（port）
type ModelCaller interface {
	// Complete 执行一次生成尝试，恰好对应一个 HTTP 请求
	Complete(ctx context.Context, system, user string) (string, error)
	// HasCredential 是否配置了可用凭证
	HasCredential() bool
}

// retryable 由传输层错误实现，标记该错误是否值得重试
type retryable interface {
	IsRetryable() bool
}

// RetryPolicy 分级重试策略，三个预算互相独立，零值表示不重试
type RetryPolicy struct {
	HTTPRetries        int
	EmptyRetries       int
	InvalidJSONRetries int
	BackoffBase        time.Duration
}

// sectionResult 单个区块生成的定型结果：成功数据或结构化降级原因，二选一
type sectionResult struct {
	Data     json.RawMessage
	Fallback *FallbackReason
}

// generateSection 驱动单个区块走完整个状态机：
// HTTP 尝试 → 空输出检查 → JSON 解析，每级独立预算，
// 任一路径耗尽即降级为默认内容。永不返回错误：
// 生成期的所有失败都收敛为带原因的兜底结果。
func generateSection(ctx context.Context, client ModelCaller, policy RetryPolicy, def SectionDefinition, system, user string) sectionResult {
	if !client.HasCredential() {
		return fallbackResult(def, ReasonMissingCredential, "no API credential configured")
	}

	var httpTries, emptyTries, jsonTries int
	attempt := 0

	for {
		attempt++
		text, err := client.Complete(ctx, system, user)

		if err != nil {
			var r retryable
			if errors.As(err, &r) && r.IsRetryable() && httpTries < policy.HTTPRetries {
				httpTries++
				metrics.LLMRetriesTotal.WithLabelValues("http").Inc()
				logger.Debug(ctx, "retrying after transport error", "attempt", attempt, "error", err.Error())
				if !sleepBackoff(ctx, policy.BackoffBase, attempt) {
					return fallbackResult(def, ReasonCancelled, "generation cancelled: "+ctx.Err().Error())
				}
				continue
			}
			return fallbackResult(def, ReasonHTTPError, err.Error())
		}

		if strings.TrimSpace(text) == "" {
			if emptyTries < policy.EmptyRetries {
				emptyTries++
				metrics.LLMRetriesTotal.WithLabelValues("empty").Inc()
				logger.Debug(ctx, "retrying after empty output", "attempt", attempt)
				if !sleepBackoff(ctx, policy.BackoffBase, attempt) {
					return fallbackResult(def, ReasonCancelled, "generation cancelled: "+ctx.Err().Error())
				}
				continue
			}
			return fallbackResult(def, ReasonEmptyOutput, "model returned empty output")
		}

		jsonText, ok := extractJSONObject(text)
		var obj map[string]json.RawMessage
		if ok {
			if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
				ok = false
			}
		}
		if !ok {
			if jsonTries < policy.InvalidJSONRetries {
				jsonTries++
				metrics.LLMRetriesTotal.WithLabelValues("json").Inc()
				logger.Debug(ctx, "retrying after unparsable output", "attempt", attempt)
				if !sleepBackoff(ctx, policy.BackoffBase, attempt) {
					return fallbackResult(def, ReasonCancelled, "generation cancelled: "+ctx.Err().Error())
				}
				continue
			}
			return fallbackResult(def, ReasonInvalidJSON, "model output is not a JSON object")
		}
		if len(obj) == 0 {
			return fallbackResult(def, ReasonEmptyObject, "model returned an empty JSON object")
		}

		// 解析成功的对象原样成为区块数据；除空对象检查外
		// 不做 schema 校验，模型的形状漂移按原样接受。
		return sectionResult{Data: json.RawMessage(jsonText)}
	}
}

// fallbackResult 深拷贝默认内容并记录结构化原因
func fallbackResult(def SectionDefinition, reason, message string) sectionResult {
	metrics.SectionFallbacksTotal.WithLabelValues(reason).Inc()
	data := make(json.RawMessage, len(def.DefaultData))
	copy(data, def.DefaultData)
	return sectionResult{
		Data: data,
		Fallback: &FallbackReason{
			Code:    reason,
			Message: message,
		},
	}
}

// sleepBackoff 线性退避：等待 base × attempt，只挂起当前任务；
// 请求被取消时返回 false。
func sleepBackoff(ctx context.Context, base time.Duration, attempt int) bool {
	if base <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(base * time.Duration(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// warningFromReason 在边界处把结构化原因转成人类可读的 Warning
func warningFromReason(sectionType string, reason *FallbackReason) Warning {
	return Warning{
		Type:    sectionType,
		Message: fmt.Sprintf("section %s fell back to default content (%s): %s", sectionType, reason.Code, reason.Message),
	}
}
