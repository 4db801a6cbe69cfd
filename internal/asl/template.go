package asl

import (
	"strings"

	"github.com/grussorusso/stepflow/utils"
)

// PayloadTemplate is the parsed form of a Parameters or ResultSelector
// field. Keys ending in ".$" are placeholder fields whose value is a
// reference path or an intrinsic expression; everything else is copied
// literally. The template is walked recursively, so placeholders nest at
// any depth.
type PayloadTemplate struct {
	value interface{}
}

func ParsePayloadTemplate(raw []byte) (*PayloadTemplate, error) {
	v, err := utils.DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return &PayloadTemplate{value: v}, nil
}

// Evaluate instantiates the template against the scope document and
// returns a fresh value. Placeholder failures carry
// States.ParameterPathFailure (reference paths) or
// States.IntrinsicFailure (intrinsics).
func (pt *PayloadTemplate) Evaluate(scope interface{}, env *IntrinsicEnv) (interface{}, error) {
	return evalTemplate(pt.value, scope, env)
}

func evalTemplate(node interface{}, scope interface{}, env *IntrinsicEnv) (interface{}, error) {
	switch t := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, v := range t {
			if strings.HasSuffix(k, ".$") {
				resolved, err := evalPlaceholder(k, v, scope, env)
				if err != nil {
					return nil, err
				}
				out[strings.TrimSuffix(k, ".$")] = resolved
				continue
			}
			child, err := evalTemplate(v, scope, env)
			if err != nil {
				return nil, err
			}
			out[k] = child
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, v := range t {
			child, err := evalTemplate(v, scope, env)
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil
	default:
		return utils.DeepCopyJSON(node), nil
	}
}

func evalPlaceholder(key string, v interface{}, scope interface{}, env *IntrinsicEnv) (interface{}, error) {
	expr, ok := v.(string)
	if !ok {
		return nil, NewStateError(StatesParameterPathFailure,
			"placeholder field '%s' must hold a reference path or intrinsic, got %T", key, v)
	}
	if IsIntrinsicExpr(expr) {
		return EvalIntrinsic(expr, scope, env)
	}
	if IsReferencePath(expr) {
		p, err := NewReferencePath(expr)
		if err != nil {
			return nil, NewStateError(StatesParameterPathFailure, "%v", err)
		}
		resolved, err := p.Resolve(scope)
		if err != nil {
			return nil, NewStateError(StatesParameterPathFailure, "%v", err)
		}
		return resolved, nil
	}
	return nil, NewStateError(StatesParameterPathFailure,
		"placeholder field '%s' holds neither a reference path nor an intrinsic: '%s'", key, expr)
}
