package asl

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/grussorusso/stepflow/utils"
)

// Intrinsic functions of the States Language. An intrinsic appears as the
// value of a placeholder field, e.g.:
//
//	"foo.$": "States.Format('Your name is {}', $.name)"
//
// Arguments are evaluated left to right; reference paths resolve against
// the current scope, string literals use single quotes, and any other
// literal uses plain JSON syntax. A nested States.*() call is a valid
// argument. The supported set is States.Format, States.StringToJson,
// States.JsonToString, States.Array, States.UUID, States.MathRandom and
// States.MathAdd.

// IntrinsicEnv carries the process-wide dependencies of intrinsics. Rand
// may be set to a seeded source for deterministic runs; when nil the
// global PRNG is used.
type IntrinsicEnv struct {
	Rand *rand.Rand
}

// IsIntrinsicExpr reports whether s is shaped like an intrinsic invocation.
func IsIntrinsicExpr(s string) bool {
	return strings.HasPrefix(s, "States.") && strings.HasSuffix(s, ")") && strings.Contains(s, "(")
}

// EvalIntrinsic evaluates a States.*() expression against the scope
// document. Failures carry the States.IntrinsicFailure error name.
func EvalIntrinsic(expr string, scope interface{}, env *IntrinsicEnv) (interface{}, error) {
	open := strings.Index(expr, "(")
	if open < 0 || !strings.HasSuffix(expr, ")") {
		return nil, NewStateError(StatesIntrinsicFailure, "malformed intrinsic '%s'", expr)
	}
	name := expr[:open]
	rawArgs, err := splitIntrinsicArgs(expr[open+1 : len(expr)-1])
	if err != nil {
		return nil, NewStateError(StatesIntrinsicFailure, "malformed arguments in '%s': %v", expr, err)
	}
	args := make([]interface{}, len(rawArgs))
	for i, raw := range rawArgs {
		args[i], err = evalIntrinsicArg(raw, scope, env)
		if err != nil {
			return nil, err
		}
	}

	switch name {
	case "States.Format":
		return intrinsicFormat(args)
	case "States.StringToJson":
		return intrinsicStringToJson(args)
	case "States.JsonToString":
		return intrinsicJsonToString(args)
	case "States.Array":
		return args, nil
	case "States.UUID":
		return intrinsicUUID(args, env)
	case "States.MathRandom":
		return intrinsicMathRandom(args, env)
	case "States.MathAdd":
		return intrinsicMathAdd(args)
	default:
		return nil, NewStateError(StatesIntrinsicFailure, "unknown intrinsic function '%s'", name)
	}
}

// splitIntrinsicArgs splits the argument list at top-level commas,
// honouring quotes and nested brackets.
func splitIntrinsicArgs(inner string) ([]string, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}
	var args []string
	depth := 0
	inSingle, inDouble := false, false
	start := 0
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if (inSingle || inDouble) && c == '\\' {
			i++ // skip escaped character
			continue
		}
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle || inDouble:
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(inner[start:i]))
			start = i + 1
		}
	}
	if inSingle || inDouble || depth != 0 {
		return nil, fmt.Errorf("unbalanced quotes or brackets")
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return args, nil
}

func evalIntrinsicArg(raw string, scope interface{}, env *IntrinsicEnv) (interface{}, error) {
	switch {
	case IsIntrinsicExpr(raw):
		return EvalIntrinsic(raw, scope, env)
	case IsReferencePath(raw):
		p, err := NewReferencePath(raw)
		if err != nil {
			return nil, NewStateError(StatesIntrinsicFailure, "%v", err)
		}
		v, err := p.Resolve(scope)
		if err != nil {
			return nil, NewStateError(StatesIntrinsicFailure, "%v", err)
		}
		return v, nil
	case strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") && len(raw) >= 2:
		return unquoteSingle(raw[1 : len(raw)-1]), nil
	default:
		v, err := utils.DecodeJSON([]byte(raw))
		if err != nil {
			return nil, NewStateError(StatesIntrinsicFailure, "invalid literal argument '%s'", raw)
		}
		return v, nil
	}
}

// unquoteSingle resolves \' and \\ escapes. Any other backslash sequence
// (notably \{ and \}) is kept for States.Format to interpret.
func unquoteSingle(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\'' || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// intrinsicFormat replaces each {} in the first argument with the natural
// string form of the corresponding remaining argument. { and } can be
// escaped as \{ and \}.
func intrinsicFormat(args []interface{}) (interface{}, error) {
	if len(args) < 1 {
		return nil, NewStateError(StatesIntrinsicFailure, "States.Format requires a format string")
	}
	format, ok := args[0].(string)
	if !ok {
		return nil, NewStateError(StatesIntrinsicFailure, "States.Format first argument must be a string")
	}
	var b strings.Builder
	next := 1
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == '\\' && i+1 < len(format) && (format[i+1] == '{' || format[i+1] == '}') {
			i++
			b.WriteByte(format[i])
			continue
		}
		if c == '{' && i+1 < len(format) && format[i+1] == '}' {
			if next >= len(args) {
				return nil, NewStateError(StatesIntrinsicFailure, "States.Format has more {} than arguments")
			}
			s, err := formatValue(args[next])
			if err != nil {
				return nil, err
			}
			b.WriteString(s)
			next++
			i++
			continue
		}
		b.WriteByte(c)
	}
	if next != len(args) {
		return nil, NewStateError(StatesIntrinsicFailure, "States.Format has fewer {} than arguments")
	}
	return b.String(), nil
}

func formatValue(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "null", nil
	default:
		return "", NewStateError(StatesIntrinsicFailure, "States.Format argument must not be an array or object")
	}
}

func intrinsicStringToJson(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, NewStateError(StatesIntrinsicFailure, "States.StringToJson requires exactly one argument")
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, NewStateError(StatesIntrinsicFailure, "States.StringToJson argument must be a string")
	}
	v, err := utils.DecodeJSON([]byte(s))
	if err != nil {
		return nil, NewStateError(StatesIntrinsicFailure, "States.StringToJson: %v", err)
	}
	return v, nil
}

func intrinsicJsonToString(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, NewStateError(StatesIntrinsicFailure, "States.JsonToString requires exactly one argument")
	}
	data, err := utils.EncodeJSON(args[0])
	if err != nil {
		return nil, NewStateError(StatesIntrinsicFailure, "States.JsonToString: %v", err)
	}
	return string(data), nil
}

func intrinsicUUID(args []interface{}, env *IntrinsicEnv) (interface{}, error) {
	if len(args) != 0 {
		return nil, NewStateError(StatesIntrinsicFailure, "States.UUID takes no arguments")
	}
	if env != nil && env.Rand != nil {
		id, err := uuid.NewRandomFromReader(env.Rand)
		if err != nil {
			return nil, NewStateError(StatesIntrinsicFailure, "States.UUID: %v", err)
		}
		return id.String(), nil
	}
	return uuid.New().String(), nil
}

func intrinsicMathRandom(args []interface{}, env *IntrinsicEnv) (interface{}, error) {
	if len(args) != 2 {
		return nil, NewStateError(StatesIntrinsicFailure, "States.MathRandom requires start and end arguments")
	}
	lo, okLo := ToInt(args[0])
	hi, okHi := ToInt(args[1])
	if !okLo || !okHi || hi < lo {
		return nil, NewStateError(StatesIntrinsicFailure, "States.MathRandom requires integer start <= end")
	}
	var n int64
	if env != nil && env.Rand != nil {
		n = lo + env.Rand.Int63n(hi-lo+1)
	} else {
		n = lo + rand.Int63n(hi-lo+1)
	}
	return json.Number(strconv.FormatInt(n, 10)), nil
}

func intrinsicMathAdd(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, NewStateError(StatesIntrinsicFailure, "States.MathAdd requires exactly two arguments")
	}
	a, okA := ToInt(args[0])
	b, okB := ToInt(args[1])
	if !okA || !okB {
		return nil, NewStateError(StatesIntrinsicFailure, "States.MathAdd requires integer arguments")
	}
	return json.Number(strconv.FormatInt(a+b, 10)), nil
}
