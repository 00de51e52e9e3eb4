package sitegen

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transportErr 模拟传输层的可分类错误
type transportErr struct {
	msg       string
	retryable bool
}

func (e *transportErr) Error() string     { return e.msg }
func (e *transportErr) IsRetryable() bool { return e.retryable }

// stubCaller 按调用序号回放预设响应
type stubCaller struct {
	mu         sync.Mutex
	calls      int
	respond    func(call int) (string, error)
	noCred     bool
	lastUser   string
	lastSystem string
}

func (s *stubCaller) Complete(_ context.Context, system, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastSystem = system
	s.lastUser = user
	return s.respond(s.calls)
}

func (s *stubCaller) HasCredential() bool { return !s.noCred }

func (s *stubCaller) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var testDef = SectionDefinition{
	Version:     1,
	DefaultData: json.RawMessage(`{"headline":"default","subtitle":"default"}`),
}

func TestGenerateSectionSuccessVerbatim(t *testing.T) {
	caller := &stubCaller{respond: func(int) (string, error) {
		return `Here you go: {"headline":"Poctivá truhlařina","subtitle":"Od roku 1990"} hope it helps`, nil
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{}, testDef, "sys", "user")

	require.Nil(t, res.Fallback)
	assert.JSONEq(t, `{"headline":"Poctivá truhlařina","subtitle":"Od roku 1990"}`, string(res.Data))
	assert.Equal(t, 1, caller.callCount())
}

func TestGenerateSectionSchemaDriftAccepted(t *testing.T) {
	// 模型漂移出目标形状也原样接受，只要是非空 JSON 对象
	caller := &stubCaller{respond: func(int) (string, error) {
		return `{"unexpected":"keys","extra":42}`, nil
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{}, testDef, "sys", "user")

	require.Nil(t, res.Fallback)
	assert.JSONEq(t, `{"unexpected":"keys","extra":42}`, string(res.Data))
}

func TestGenerateSectionMissingCredential(t *testing.T) {
	caller := &stubCaller{noCred: true, respond: func(int) (string, error) {
		t.Fatal("must not call the model without a credential")
		return "", nil
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{HTTPRetries: 3}, testDef, "sys", "user")

	require.NotNil(t, res.Fallback)
	assert.Equal(t, ReasonMissingCredential, res.Fallback.Code)
	assert.Equal(t, 0, caller.callCount())
	assert.JSONEq(t, string(testDef.DefaultData), string(res.Data))
}

func TestGenerateSectionRetryableErrorExhaustsBudget(t *testing.T) {
	caller := &stubCaller{respond: func(int) (string, error) {
		return "", &transportErr{msg: "status 503", retryable: true}
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{HTTPRetries: 2}, testDef, "sys", "user")

	require.NotNil(t, res.Fallback)
	assert.Equal(t, ReasonHTTPError, res.Fallback.Code)
	// 首次尝试 + 2 次重试
	assert.Equal(t, 3, caller.callCount())
	assert.JSONEq(t, string(testDef.DefaultData), string(res.Data))
}

func TestGenerateSectionFatalErrorNoRetry(t *testing.T) {
	caller := &stubCaller{respond: func(int) (string, error) {
		return "", &transportErr{msg: "status 401", retryable: false}
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{HTTPRetries: 5}, testDef, "sys", "user")

	require.NotNil(t, res.Fallback)
	assert.Equal(t, ReasonHTTPError, res.Fallback.Code)
	assert.Equal(t, 1, caller.callCount())
}

func TestGenerateSectionRetryThenSuccess(t *testing.T) {
	caller := &stubCaller{respond: func(call int) (string, error) {
		if call == 1 {
			return "", &transportErr{msg: "status 429", retryable: true}
		}
		return `{"headline":"ok"}`, nil
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{HTTPRetries: 1}, testDef, "sys", "user")

	require.Nil(t, res.Fallback)
	assert.JSONEq(t, `{"headline":"ok"}`, string(res.Data))
	assert.Equal(t, 2, caller.callCount())
}

func TestGenerateSectionEmptyOutputBudget(t *testing.T) {
	caller := &stubCaller{respond: func(int) (string, error) {
		return "  \n ", nil
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{EmptyRetries: 1}, testDef, "sys", "user")

	require.NotNil(t, res.Fallback)
	assert.Equal(t, ReasonEmptyOutput, res.Fallback.Code)
	assert.Equal(t, 2, caller.callCount())
}

func TestGenerateSectionInvalidJSONBudget(t *testing.T) {
	caller := &stubCaller{respond: func(int) (string, error) {
		return "sorry, I cannot do that", nil
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{InvalidJSONRetries: 2}, testDef, "sys", "user")

	require.NotNil(t, res.Fallback)
	assert.Equal(t, ReasonInvalidJSON, res.Fallback.Code)
	assert.Equal(t, 3, caller.callCount())
}

func TestGenerateSectionMalformedJSONCountsAsInvalid(t *testing.T) {
	// 有花括号但内容解析失败，走同一条无效 JSON 路径
	caller := &stubCaller{respond: func(int) (string, error) {
		return `{"headline": truncated`, nil
	}}

	res := generateSection(context.Background(), caller, RetryPolicy{}, testDef, "sys", "user")

	require.NotNil(t, res.Fallback)
	assert.Equal(t, ReasonInvalidJSON, res.Fallback.Code)
	assert.Equal(t, 1, caller.callCount())
}

func TestGenerateSectionEmptyObjectNoRetry(t *testing.T) {
	caller := &stubCaller{respond: func(int) (string, error) {
		return `{}`, nil
	}}

	res := generateSection(context.Background(), caller,
		RetryPolicy{HTTPRetries: 3, EmptyRetries: 3, InvalidJSONRetries: 3},
		testDef, "sys", "user")

	require.NotNil(t, res.Fallback)
	assert.Equal(t, ReasonEmptyObject, res.Fallback.Code)
	// 空对象是终态，不消耗任何重试预算
	assert.Equal(t, 1, caller.callCount())
}

func TestGenerateSectionBudgetsAreIndependent(t *testing.T) {
	// 依次耗尽 HTTP、空输出、无效 JSON 预算后成功
	caller := &stubCaller{respond: func(call int) (string, error) {
		switch call {
		case 1:
			return "", &transportErr{msg: "timeout", retryable: true}
		case 2:
			return "", nil
		case 3:
			return "not json", nil
		default:
			return `{"headline":"finally"}`, nil
		}
	}}

	res := generateSection(context.Background(), caller,
		RetryPolicy{HTTPRetries: 1, EmptyRetries: 1, InvalidJSONRetries: 1},
		testDef, "sys", "user")

	require.Nil(t, res.Fallback)
	assert.JSONEq(t, `{"headline":"finally"}`, string(res.Data))
	assert.Equal(t, 4, caller.callCount())
}

func TestGenerateSectionCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	caller := &stubCaller{respond: func(int) (string, error) {
		return "", &transportErr{msg: "timeout", retryable: true}
	}}

	res := generateSection(ctx, caller,
		RetryPolicy{HTTPRetries: 5}, testDef, "sys", "user")

	require.NotNil(t, res.Fallback)
	assert.Equal(t, ReasonCancelled, res.Fallback.Code)
	assert.Equal(t, 1, caller.callCount())
}

func TestFallbackResultDeepCopiesDefault(t *testing.T) {
	def := SectionDefinition{DefaultData: json.RawMessage(`{"a":1}`)}

	res := fallbackResult(def, ReasonEmptyOutput, "empty")

	res.Data[1] = 'x'
	assert.Equal(t, `{"a":1}`, string(def.DefaultData))
}

func TestWarningFromReason(t *testing.T) {
	w := warningFromReason("h002", &FallbackReason{Code: ReasonInvalidJSON, Message: "bad json"})

	assert.Equal(t, "h002", w.Type)
	assert.Equal(t, "section h002 fell back to default content (invalid_json): bad json", w.Message)
}
