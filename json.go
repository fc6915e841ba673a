package golimit

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToJSONMap returns the JSON object form of e.
func ToJSONMap(e Expr) map[string]interface{} { return e.toJSON() }

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subExpr := func(field string) (Expr, error) {
		m, err := subObj(field)
		if err != nil {
			return nil, err
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subExprArray := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "const":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		switch name {
		case "pi":
			return Pi, nil
		case "E":
			return E, nil
		}
		return nil, fmt.Errorf("const: unknown constant %q", name)

	case "inf":
		if neg, _ := data["negative"].(bool); neg {
			return NegOo, nil
		}
		return Oo, nil

	case "nan":
		return Nan, nil

	case "bounds":
		lo, err := subExpr("lo")
		if err != nil {
			return nil, err
		}
		hi, err := subExpr("hi")
		if err != nil {
			return nil, err
		}
		return Bounds(lo, hi), nil

	case "add":
		terms, err := subExprArray("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subExprArray("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := subExpr("base")
		if err != nil {
			return nil, err
		}
		exp, err := subExpr("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if _, known := floatFuncs[name]; !known {
			return nil, fmt.Errorf("func: unknown function %q", name)
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return funcOf(name, arg).Simplify(), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
