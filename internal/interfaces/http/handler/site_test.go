package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"z-sitegen-ai-api/internal/application/sitegen"
)

type fixedCaller struct {
	text string
	err  error
}

func (f fixedCaller) Complete(context.Context, string, string) (string, error) {
	return f.text, f.err
}

func (f fixedCaller) HasCredential() bool { return true }

func setupRouter(caller sitegen.ModelCaller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSiteHandler(sitegen.NewService(caller, sitegen.Options{DefaultTheme: "craft"}))
	r := gin.New()
	r.POST("/v1/sites/generate", h.Generate)
	return r
}

func doRequest(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/sites/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpointSuccess(t *testing.T) {
	r := setupRouter(fixedCaller{text: `{"headline":"Vyrobeno poctivě"}`})

	w := doRequest(r, `{
		"sections": {
			"hd001": {"version": 1, "defaultData": {"logo": "L"}},
			"ct001": {"version": 1, "defaultData": {"email": "E"}}
		},
		"description": "a carpenter",
		"theme": "bold"
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Equal(t, int64(200), gjson.Get(body, "code").Int())
	assert.Equal(t, "bold", gjson.Get(body, "data.theme").String())

	sections := gjson.Get(body, "data.sections").Array()
	require.Len(t, sections, 2)
	assert.Equal(t, "hd001", sections[0].Get("type").String())
	assert.Equal(t, "ct001", sections[1].Get("type").String())
	assert.NotEmpty(t, sections[0].Get("id").String())
	assert.False(t, gjson.Get(body, "data.warnings").Exists())
}

func TestGenerateEndpointDegraded(t *testing.T) {
	// 模型始终返回空输出，区块降级为默认内容并带警告
	r := setupRouter(fixedCaller{text: ""})

	w := doRequest(r, `{
		"sections": {
			"hd001": {"version": 1, "defaultData": {"logo": "L"}}
		},
		"description": "a carpenter"
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	sections := gjson.Get(body, "data.sections").Array()
	require.Len(t, sections, 1)
	assert.Equal(t, "L", sections[0].Get("data.logo").String())

	warnings := gjson.Get(body, "data.warnings").Array()
	require.Len(t, warnings, 1)
	assert.Equal(t, "hd001", warnings[0].Get("type").String())
}

func TestGenerateEndpointInvalidBody(t *testing.T) {
	r := setupRouter(fixedCaller{text: `{}`})

	w := doRequest(r, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 缺少必填的 sections
	w = doRequest(r, `{"description": "a carpenter"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateEndpointMissingBrief(t *testing.T) {
	r := setupRouter(fixedCaller{text: `{}`})

	w := doRequest(r, `{
		"sections": {
			"hd001": {"version": 1, "defaultData": {"logo": "L"}}
		}
	}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Equal(t, "2002", gjson.Get(body, "error.error_code").String())
}
