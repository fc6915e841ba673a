package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golimit/internal/logging"
	"github.com/njchilds90/golimit/internal/metrics"
	"github.com/njchilds90/golimit/internal/resolver"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	m := metrics.New()
	svc := resolver.NewService(logging.NewNop(), resolver.WithMetrics(m))
	h, err := NewHandler(svc, m, logging.NewNop())
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	rr := do(t, newTestHandler(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "0.1.0", resp["version"])
}

func TestPostLimit_Success(t *testing.T) {
	rr := do(t, newTestHandler(t), http.MethodPost, "/v1/limit", `{"function":"sen(x)/x","point":"0"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp LimitResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "1", resp.Result)
	assert.Equal(t, "lim[x→0] sin(x)/x = 1", resp.Display)
	assert.Equal(t, "sin(x)/x", resp.Function)
	assert.Equal(t, "both", resp.Side)
}

func TestPostLimit_Side(t *testing.T) {
	rr := do(t, newTestHandler(t), http.MethodPost, "/v1/limit", `{"function":"1/x","point":"0","side":"-"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp LimitResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "-oo", resp.Result)
	assert.Equal(t, "lim[x→0 -] 1/x = -oo", resp.Display)
}

func TestPostLimit_Failures(t *testing.T) {
	cases := []struct {
		name, body, kind, title string
	}{
		{"bad function", `{"function":")((bad","point":"0"}`, "invalid_function", "Erro"},
		{"bad point", `{"function":"x","point":"banana"}`, "invalid_point", "Erro"},
		{"no limit", `{"function":"1/x","point":"0"}`, "evaluation_error", "Erro ao calcular"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr := do(t, newTestHandler(t), http.MethodPost, "/v1/limit", c.body)
			require.Equal(t, http.StatusOK, rr.Code)

			var resp LimitResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.False(t, resp.OK)
			assert.Equal(t, c.kind, resp.Kind)
			assert.Equal(t, c.title, resp.Title)
			assert.NotEmpty(t, resp.Detail)
		})
	}
}

func TestPostLimit_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing point": `{"function":"x"}`,
		"bad side":      `{"function":"x","point":"0","side":"up"}`,
		"unknown field": `{"function":"x","point":"0","extra":1}`,
		"not json":      `function=x`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := do(t, newTestHandler(t), http.MethodPost, "/v1/limit", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestPostNormalize(t *testing.T) {
	rr := do(t, newTestHandler(t), http.MethodPost, "/v1/normalize", `{"text":" ln(x)^2 "}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"normalized":"log(x)**2"}`, rr.Body.String())
}

func TestPostTool(t *testing.T) {
	h := newTestHandler(t)
	rr := do(t, h, http.MethodPost, "/v1/tool", `{"tool":"limit","params":{"expr":"x*sin(1/x)","point":"0"}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "0", resp["string"])

	rr = do(t, h, http.MethodPost, "/v1/tool", `{"tool":"limit"}{"tool":"parse"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetSchema(t *testing.T) {
	rr := do(t, newTestHandler(t), http.MethodGet, "/v1/schema", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"limit"`)
}

func TestUnknownRoute(t *testing.T) {
	rr := do(t, newTestHandler(t), http.MethodGet, "/v1/limit", "")
	assert.NotEqual(t, http.StatusOK, rr.Code)
}

func TestMetricsAndSpec(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/v1/limit", `{"function":"x","point":"1"}`)

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "golimit_resolutions_total")

	rr = do(t, h, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/v1/limit")
}
