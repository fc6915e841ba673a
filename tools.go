package golimit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches a JSON tool request. Expression parameters are
// either expression objects or plain text in the parser's notation.
func HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	optString := func(key, def string) string {
		if s, ok := req.Params[key].(string); ok && s != "" {
			return s
		}
		return def
	}
	getExpr := func(key string, symbols ...string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case map[string]interface{}:
			return FromJSON(val)
		case string:
			e, err := Parse(val, WithSymbols(symbols...))
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", key, err)
			}
			return e, nil
		}
		return nil, fmt.Errorf("invalid type for param %s", key)
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: e.toJSON(), LaTeX: LaTeX(e), String: String(e)}
	}
	symbols := func() []string {
		raw, _ := req.Params["symbols"].([]interface{})
		out := []string{optString("var", "x")}
		for _, r := range raw {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}

	switch req.Tool {
	case "parse":
		text, err := getString("text")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		e, err := Parse(text, WithSymbols(symbols()...))
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e)

	case "simplify":
		e, err := getExpr("expr", symbols()...)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Simplify(e))

	case "to_latex":
		e, err := getExpr("expr", symbols()...)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: LaTeX(e), LaTeX: LaTeX(e), String: String(e)}

	case "free_symbols":
		e, err := getExpr("expr", symbols()...)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		syms := FreeSymbols(e)
		names := make([]string, 0, len(syms))
		for k := range syms {
			names = append(names, k)
		}
		sort.Strings(names)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "substitute":
		e, err := getExpr("expr", symbols()...)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		val, err := getExpr("value")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Sub(e, v, val))

	case "limit":
		v := optString("var", "x")
		e, err := getExpr("expr", symbols()...)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		pt, err := getExpr("point")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		dir, err := ParseDir(optString("dir", "+-"))
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res, err := Limit(e, v, pt, dir)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(res)

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ParseDir reads "+", "-" or "+-" (also "" for both sides).
func ParseDir(s string) (Dir, error) {
	switch s {
	case "+-", "":
		return DirBoth, nil
	case "+":
		return DirRight, nil
	case "-":
		return DirLeft, nil
	}
	return DirBoth, fmt.Errorf("invalid direction %q: want \"+\", \"-\" or \"+-\"", s)
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("parse", "Parse infix text such as sin(x)/x. Optional: symbols (string[]), var", []string{"text"}, map[string]string{"text": "string", "symbols": "array", "var": "string"}),
		ts("simplify", "Simplify a symbolic expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("free_symbols", "Return free symbol names", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("limit", "lim_{var->point} expr. dir is \"+\", \"-\" or \"+-\"", []string{"expr", "point"}, map[string]string{"expr": "object", "var": "string", "point": "object", "dir": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
