// Package resolver turns the three user inputs (function text, point text
// and side) into a displayable limit or a classified failure.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/golimit"
	"github.com/njchilds90/golimit/internal/normalize"
)

// Variable is the only free symbol a function may use.
const Variable = "x"

// SideMode selects the direction of approach.
type SideMode int

const (
	Both SideMode = iota
	FromRight
	FromLeft
)

// ParseSide accepts "", "+" and "-".
func ParseSide(s string) (SideMode, error) {
	switch strings.TrimSpace(s) {
	case "":
		return Both, nil
	case "+":
		return FromRight, nil
	case "-":
		return FromLeft, nil
	}
	return Both, fmt.Errorf("invalid side %q: want \"\", \"+\" or \"-\"", s)
}

// String returns the selector form: "", "+" or "-".
func (m SideMode) String() string {
	switch m {
	case FromRight:
		return "+"
	case FromLeft:
		return "-"
	}
	return ""
}

// Label is the text shown next to the side selector.
func (m SideMode) Label() string {
	switch m {
	case FromRight:
		return "Pela direita (+)"
	case FromLeft:
		return "Pela esquerda (-)"
	}
	return "Ambos os lados"
}

// Name is a stable identifier for logs and metric labels.
func (m SideMode) Name() string {
	switch m {
	case FromRight:
		return "right"
	case FromLeft:
		return "left"
	}
	return "both"
}

func (m SideMode) suffix() string {
	if m == Both {
		return ""
	}
	return " " + m.String()
}

func (m SideMode) dir() golimit.Dir {
	switch m {
	case FromRight:
		return golimit.DirRight
	case FromLeft:
		return golimit.DirLeft
	}
	return golimit.DirBoth
}

// ErrorKind classifies a failed resolution.
type ErrorKind int

const (
	InvalidFunction ErrorKind = iota + 1
	InvalidPoint
	EvaluationError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidFunction:
		return "invalid_function"
	case InvalidPoint:
		return "invalid_point"
	case EvaluationError:
		return "evaluation_error"
	}
	return "none"
}

// TitleHint is the heading of the error notification for this kind.
func (k ErrorKind) TitleHint() string {
	if k == EvaluationError {
		return "Erro ao calcular"
	}
	return "Erro"
}

// Fixed user-facing messages.
const (
	MsgInvalidFunction = "Função inválida."
	MsgInvalidPoint    = "Ponto inválido."
	// ErrorPrefix introduces an engine message in the error notification.
	ErrorPrefix = "Ocorreu um erro:\n"
)

// Result is either a success (Success true, Value and Display set) or a
// failure (Kind and Detail set).
type Result struct {
	Success bool
	Value   golimit.Expr
	Display string
	Kind    ErrorKind
	Detail  string
}

func failure(kind ErrorKind, detail string) Result {
	return Result{Kind: kind, Detail: detail}
}

// TitleHint is "" for a success.
func (r Result) TitleHint() string {
	if r.Success {
		return ""
	}
	return r.Kind.TitleHint()
}

// Message is the body of the error notification: the fixed message for
// parse failures, the engine message behind ErrorPrefix otherwise.
func (r Result) Message() string {
	if r.Kind == EvaluationError {
		return ErrorPrefix + r.Detail
	}
	return r.Detail
}

// RawInput is what a front-end collects from the user.
type RawInput struct {
	FunctionText string   `json:"function"`
	PointText    string   `json:"point"`
	Side         SideMode `json:"-"`
}

// ResolveInput normalizes both texts and resolves them.
func ResolveInput(in RawInput, opts ...golimit.LimitOption) Result {
	return Resolve(normalize.Expression(in.FunctionText), normalize.Expression(in.PointText), in.Side, opts...)
}

// Resolve computes the limit of function as x approaches point. Both texts
// are expected to be normalized already and appear verbatim in Display.
// No error or panic escapes: every failure becomes a Result.
func Resolve(function, point string, side SideMode, opts ...golimit.LimitOption) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = failure(EvaluationError, fmt.Sprint(rec))
		}
	}()

	f, err := golimit.Parse(function, golimit.WithSymbols(Variable))
	if err != nil {
		return failure(InvalidFunction, MsgInvalidFunction)
	}
	p, err := parsePoint(point)
	if err != nil {
		return failure(InvalidPoint, MsgInvalidPoint)
	}

	value, err := computeLimit(f, Variable, p, side.dir(), opts...)
	if err != nil {
		if errors.Is(err, golimit.ErrInvalidPoint) {
			return failure(InvalidPoint, MsgInvalidPoint)
		}
		return failure(EvaluationError, err.Error())
	}
	return Result{
		Success: true,
		Value:   value,
		Display: fmt.Sprintf("lim[%s→%s%s] %s = %s", Variable, point, side.suffix(), function, golimit.String(value)),
	}
}

// computeLimit is replaced in tests to exercise panic recovery.
var computeLimit = golimit.Limit

var pointAliases = map[string]golimit.Expr{
	"oo":   golimit.Oo,
	"+oo":  golimit.Oo,
	"inf":  golimit.Oo,
	"+inf": golimit.Oo,
	"-oo":  golimit.NegOo,
	"-inf": golimit.NegOo,
}

func parsePoint(text string) (golimit.Expr, error) {
	if p, ok := pointAliases[strings.ToLower(text)]; ok {
		return p, nil
	}
	return golimit.Parse(text)
}
