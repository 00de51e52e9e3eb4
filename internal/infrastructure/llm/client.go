// Package llm 提供 OpenAI 兼容接口的文本生成客户端
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"z-sitegen-ai-api/internal/config"
	"z-sitegen-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("llm")

// Client 单个 LLM 提供商的 HTTP 客户端
type Client struct {
	provider    string
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	httpClient  *http.Client
}

// CompletionRequest 一次生成尝试的输入
type CompletionRequest struct {
	System     string
	User       string
	JSONOutput bool
	// Model 覆盖客户端默认模型，通常为空
	Model string
}

// Completion 一次生成尝试的输出
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// CallError 带状态分类的调用错误
type CallError struct {
	StatusCode int
	Message    string
	Retryable  bool
	Err        error
}

// Error 实现 error 接口
func (e *CallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm call failed: status=%d message=%s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("llm call failed: %v", e.Err)
	}
	return "llm call failed: " + e.Message
}

// Unwrap 返回底层错误
func (e *CallError) Unwrap() error {
	return e.Err
}

// IsRetryable 标记该错误是否值得重试
func (e *CallError) IsRetryable() bool {
	return e.Retryable
}

// chat completions 响应中实际消费的字段
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// NewClient 创建指定提供商的客户端
func NewClient(provider string, cfg *config.ProviderConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Client{
		provider:    provider,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		// 连接复用交给默认 Transport，超时由 per-call context 控制
		httpClient: &http.Client{},
	}
}

// HasCredential 检查是否配置了凭证
func (c *Client) HasCredential() bool {
	return c != nil && c.apiKey != ""
}

// Provider 返回提供商名
func (c *Client) Provider() string { return c.provider }

// Model 返回默认模型名
func (c *Client) Model() string { return c.model }

// Complete 执行一次生成调用。每次调用对应恰好一个 HTTP 请求，
// 带硬超时；重试由上层编排，不在这里发生。
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}

	ctx, span := tracer.Start(ctx, "llm.Complete")
	span.SetAttributes(
		attribute.String("llm.provider", c.provider),
		attribute.String("llm.model", model),
	)
	defer span.End()

	start := time.Now()
	out, err := c.doComplete(ctx, model, req)
	duration := time.Since(start).Seconds()

	metrics.LLMCallDuration.WithLabelValues(c.provider, model).Observe(duration)
	if err != nil {
		span.RecordError(err)
		metrics.LLMCallTotal.WithLabelValues(c.provider, model, "error").Inc()
		return nil, err
	}
	metrics.LLMCallTotal.WithLabelValues(c.provider, model, "ok").Inc()
	if out.PromptTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(c.provider, model, "prompt").Add(float64(out.PromptTokens))
	}
	if out.CompletionTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(c.provider, model, "completion").Add(float64(out.CompletionTokens))
	}
	return out, nil
}

func (c *Client) doComplete(ctx context.Context, model string, req CompletionRequest) (*Completion, error) {
	if c.baseURL == "" {
		return nil, &CallError{Message: "llm base url is empty", Retryable: false}
	}

	family := familyFor(model)
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.User},
		},
		family.tokenLimitField: c.maxTokens,
	}
	if family.sendTemperature {
		body["temperature"] = c.temperature
	}
	if req.JSONOutput {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, &CallError{Message: "failed to marshal request", Retryable: false, Err: err}
	}

	// 每次调用独立的硬超时，超时只取消本次请求
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, &CallError{Message: "failed to create request", Retryable: false, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// 网络错误与超时一律视为可重试
		return nil, &CallError{Message: err.Error(), Retryable: true, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &CallError{Message: "failed to read response body", Retryable: true, Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg := gjson.GetBytes(respBody, "error.message").String()
		if msg == "" {
			msg = http.StatusText(httpResp.StatusCode)
		}
		return nil, &CallError{
			StatusCode: httpResp.StatusCode,
			Message:    msg,
			Retryable:  retryableStatus(httpResp.StatusCode),
		}
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &CallError{Message: "failed to decode response", Retryable: true, Err: err}
	}

	out := &Completion{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}
	return out, nil
}

// retryableStatus 429 与 5xx 可重试，其余 4xx 为致命错误
func retryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}
