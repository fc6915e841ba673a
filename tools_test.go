package golimit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golimit"
)

// ============================================================
// HandleToolCall
// ============================================================

func TestHandleToolCall_Parse(t *testing.T) {
	resp := golimit.HandleToolCall(golimit.ToolRequest{
		Tool:   "parse",
		Params: map[string]interface{}{"text": "x^2 + x + x"},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x**2 + 2*x", resp.String)
	assert.Equal(t, "x^{2} + 2 x", resp.LaTeX)
}

func TestHandleToolCall_Limit(t *testing.T) {
	resp := golimit.HandleToolCall(golimit.ToolRequest{
		Tool:   "limit",
		Params: map[string]interface{}{"expr": "sin(x)/x", "point": "0"},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1", resp.String)
}

func TestHandleToolCall_LimitDirection(t *testing.T) {
	resp := golimit.HandleToolCall(golimit.ToolRequest{
		Tool:   "limit",
		Params: map[string]interface{}{"expr": "1/x", "point": "0", "dir": "-"},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "-oo", resp.String)

	resp = golimit.HandleToolCall(golimit.ToolRequest{
		Tool:   "limit",
		Params: map[string]interface{}{"expr": "1/x", "point": "0", "dir": "up"},
	})
	assert.Contains(t, resp.Error, "invalid direction")
}

func TestHandleToolCall_LimitNoLimit(t *testing.T) {
	resp := golimit.HandleToolCall(golimit.ToolRequest{
		Tool:   "limit",
		Params: map[string]interface{}{"expr": "1/x", "point": "0"},
	})
	assert.Contains(t, resp.Error, "does not exist")
}

func TestHandleToolCall_Substitute(t *testing.T) {
	resp := golimit.HandleToolCall(golimit.ToolRequest{
		Tool: "substitute",
		Params: map[string]interface{}{
			"expr":  "x**2",
			"var":   "x",
			"value": map[string]interface{}{"type": "num", "value": "3"},
		},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "9", resp.String)
}

func TestHandleToolCall_FreeSymbols(t *testing.T) {
	resp := golimit.HandleToolCall(golimit.ToolRequest{
		Tool:   "free_symbols",
		Params: map[string]interface{}{"expr": "x + y", "symbols": []interface{}{"y"}},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, []string{"x", "y"}, resp.Result)
}

func TestHandleToolCall_Errors(t *testing.T) {
	resp := golimit.HandleToolCall(golimit.ToolRequest{Tool: "integrate"})
	assert.Equal(t, "unknown tool: integrate", resp.Error)

	resp = golimit.HandleToolCall(golimit.ToolRequest{Tool: "simplify", Params: map[string]interface{}{}})
	assert.Equal(t, "missing param: expr", resp.Error)

	resp = golimit.HandleToolCall(golimit.ToolRequest{
		Tool:   "parse",
		Params: map[string]interface{}{"text": "2x"},
	})
	assert.Contains(t, resp.Error, "parse error")
}

func TestMCPToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(golimit.MCPToolSpec()), &spec))
	names := make([]string, 0, len(spec.Tools))
	for _, tool := range spec.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "limit")
	assert.Contains(t, names, "mcp_spec")
}

func TestParseDir(t *testing.T) {
	for in, want := range map[string]golimit.Dir{"": golimit.DirBoth, "+-": golimit.DirBoth, "+": golimit.DirRight, "-": golimit.DirLeft} {
		got, err := golimit.ParseDir(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := golimit.ParseDir("left")
	assert.Error(t, err)
}
