package asl

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/gobwas/glob"
	"github.com/grussorusso/stepflow/utils"
)

// ChoiceRule is either a data-test expression (Variable + comparator) or a
// boolean combination (And/Or/Not) of nested rules. Only top-level rules
// carry a Next.
type ChoiceRule interface {
	// Match evaluates the rule against the document. A missing left-hand
	// reference yields false, not an error, except for IsPresent.
	Match(doc interface{}) (bool, error)
	GetNextState() string
}

type ComparisonOperatorKind string

const (
	StringEquals                   ComparisonOperatorKind = "StringEquals"
	StringEqualsPath               ComparisonOperatorKind = "StringEqualsPath"
	StringLessThan                 ComparisonOperatorKind = "StringLessThan"
	StringLessThanPath             ComparisonOperatorKind = "StringLessThanPath"
	StringGreaterThan              ComparisonOperatorKind = "StringGreaterThan"
	StringGreaterThanPath          ComparisonOperatorKind = "StringGreaterThanPath"
	StringLessThanEquals           ComparisonOperatorKind = "StringLessThanEquals"
	StringLessThanEqualsPath       ComparisonOperatorKind = "StringLessThanEqualsPath"
	StringGreaterThanEquals        ComparisonOperatorKind = "StringGreaterThanEquals"
	StringGreaterThanEqualsPath    ComparisonOperatorKind = "StringGreaterThanEqualsPath"
	StringMatches                  ComparisonOperatorKind = "StringMatches"
	NumericEquals                  ComparisonOperatorKind = "NumericEquals"
	NumericEqualsPath              ComparisonOperatorKind = "NumericEqualsPath"
	NumericLessThan                ComparisonOperatorKind = "NumericLessThan"
	NumericLessThanPath            ComparisonOperatorKind = "NumericLessThanPath"
	NumericGreaterThan             ComparisonOperatorKind = "NumericGreaterThan"
	NumericGreaterThanPath         ComparisonOperatorKind = "NumericGreaterThanPath"
	NumericLessThanEquals          ComparisonOperatorKind = "NumericLessThanEquals"
	NumericLessThanEqualsPath      ComparisonOperatorKind = "NumericLessThanEqualsPath"
	NumericGreaterThanEquals       ComparisonOperatorKind = "NumericGreaterThanEquals"
	NumericGreaterThanEqualsPath   ComparisonOperatorKind = "NumericGreaterThanEqualsPath"
	BooleanEquals                  ComparisonOperatorKind = "BooleanEquals"
	BooleanEqualsPath              ComparisonOperatorKind = "BooleanEqualsPath"
	TimestampEquals                ComparisonOperatorKind = "TimestampEquals"
	TimestampEqualsPath            ComparisonOperatorKind = "TimestampEqualsPath"
	TimestampLessThan              ComparisonOperatorKind = "TimestampLessThan"
	TimestampLessThanPath          ComparisonOperatorKind = "TimestampLessThanPath"
	TimestampGreaterThan           ComparisonOperatorKind = "TimestampGreaterThan"
	TimestampGreaterThanPath       ComparisonOperatorKind = "TimestampGreaterThanPath"
	TimestampLessThanEquals        ComparisonOperatorKind = "TimestampLessThanEquals"
	TimestampLessThanEqualsPath    ComparisonOperatorKind = "TimestampLessThanEqualsPath"
	TimestampGreaterThanEquals     ComparisonOperatorKind = "TimestampGreaterThanEquals"
	TimestampGreaterThanEqualsPath ComparisonOperatorKind = "TimestampGreaterThanEqualsPath"
	IsNull                         ComparisonOperatorKind = "IsNull"
	IsPresent                      ComparisonOperatorKind = "IsPresent"
	IsNumeric                      ComparisonOperatorKind = "IsNumeric"
	IsString                       ComparisonOperatorKind = "IsString"
	IsBoolean                      ComparisonOperatorKind = "IsBoolean"
	IsTimestamp                    ComparisonOperatorKind = "IsTimestamp"
)

var possibleComparators = []ComparisonOperatorKind{
	StringEquals, StringEqualsPath, StringLessThan, StringLessThanPath,
	StringGreaterThan, StringGreaterThanPath, StringLessThanEquals,
	StringLessThanEqualsPath, StringGreaterThanEquals, StringGreaterThanEqualsPath,
	StringMatches,
	NumericEquals, NumericEqualsPath, NumericLessThan, NumericLessThanPath,
	NumericGreaterThan, NumericGreaterThanPath, NumericLessThanEquals,
	NumericLessThanEqualsPath, NumericGreaterThanEquals, NumericGreaterThanEqualsPath,
	BooleanEquals, BooleanEqualsPath,
	TimestampEquals, TimestampEqualsPath, TimestampLessThan, TimestampLessThanPath,
	TimestampGreaterThan, TimestampGreaterThanPath, TimestampLessThanEquals,
	TimestampLessThanEqualsPath, TimestampGreaterThanEquals, TimestampGreaterThanEqualsPath,
	IsNull, IsPresent, IsNumeric, IsString, IsBoolean, IsTimestamp,
}

// DataTestExpression compares the value at Variable with an operand. For
// *Path comparators the operand is itself a reference path resolved
// against the document at match time.
type DataTestExpression struct {
	Variable    Path
	Kind        ComparisonOperatorKind
	Operand     interface{}
	OperandPath Path
	Next        string

	matcher glob.Glob // precompiled for StringMatches
}

func (d *DataTestExpression) GetNextState() string {
	return d.Next
}

func (d *DataTestExpression) Match(doc interface{}) (bool, error) {
	left, err := d.Variable.Resolve(doc)
	if err != nil {
		var notFound *ErrPathNotFound
		if asPathNotFound(err, &notFound) {
			if d.Kind == IsPresent {
				want, _ := d.Operand.(bool)
				return !want, nil
			}
			return false, nil
		}
		return false, err
	}
	if d.Kind == IsPresent {
		want, _ := d.Operand.(bool)
		return want, nil
	}

	right := d.Operand
	if d.OperandPath != "" {
		right, err = d.OperandPath.Resolve(doc)
		if err != nil {
			var notFound *ErrPathNotFound
			if asPathNotFound(err, &notFound) {
				return false, nil
			}
			return false, err
		}
	}
	return compare(d.Kind, left, right, d.matcher)
}

func asPathNotFound(err error, target **ErrPathNotFound) bool {
	nf, ok := err.(*ErrPathNotFound)
	if ok {
		*target = nf
	}
	return ok
}

func compare(kind ComparisonOperatorKind, left, right interface{}, matcher glob.Glob) (bool, error) {
	name := string(kind)
	switch {
	case kind == StringMatches:
		s, ok := left.(string)
		if !ok {
			return false, nil
		}
		if matcher == nil {
			pattern, ok := right.(string)
			if !ok {
				return false, nil
			}
			g, err := glob.Compile(pattern)
			if err != nil {
				return false, fmt.Errorf("invalid StringMatches pattern '%s': %v", pattern, err)
			}
			matcher = g
		}
		return matcher.Match(s), nil
	case kind == IsNull:
		want, _ := right.(bool)
		return (left == nil) == want, nil
	case kind == IsNumeric:
		want, _ := right.(bool)
		return IsNumericValue(left) == want, nil
	case kind == IsString:
		_, isStr := left.(string)
		want, _ := right.(bool)
		return isStr == want, nil
	case kind == IsBoolean:
		_, isBool := left.(bool)
		want, _ := right.(bool)
		return isBool == want, nil
	case kind == IsTimestamp:
		_, isTs := ToTimestamp(left)
		want, _ := right.(bool)
		return isTs == want, nil
	case strings.HasPrefix(name, "String"):
		l, okL := left.(string)
		r, okR := right.(string)
		if !okL || !okR {
			return false, nil
		}
		return ordered(name, strings.Compare(l, r)), nil
	case strings.HasPrefix(name, "Numeric"):
		l, okL := ToFloat(left)
		r, okR := ToFloat(right)
		if !okL || !okR {
			return false, nil
		}
		switch {
		case l < r:
			return ordered(name, -1), nil
		case l > r:
			return ordered(name, 1), nil
		default:
			return ordered(name, 0), nil
		}
	case strings.HasPrefix(name, "Boolean"):
		l, okL := left.(bool)
		r, okR := right.(bool)
		if !okL || !okR {
			return false, nil
		}
		return l == r, nil
	case strings.HasPrefix(name, "Timestamp"):
		l, okL := ToTimestamp(left)
		r, okR := ToTimestamp(right)
		if !okL || !okR {
			return false, nil
		}
		switch {
		case l.Before(r):
			return ordered(name, -1), nil
		case l.After(r):
			return ordered(name, 1), nil
		default:
			return ordered(name, 0), nil
		}
	default:
		return false, fmt.Errorf("unsupported comparator %s", kind)
	}
}

// ordered maps a three-way comparison onto the comparator's suffix.
func ordered(name string, cmp int) bool {
	switch {
	case strings.HasSuffix(name, "LessThanEquals") || strings.HasSuffix(name, "LessThanEqualsPath"):
		return cmp <= 0
	case strings.HasSuffix(name, "GreaterThanEquals") || strings.HasSuffix(name, "GreaterThanEqualsPath"):
		return cmp >= 0
	case strings.HasSuffix(name, "LessThan") || strings.HasSuffix(name, "LessThanPath"):
		return cmp < 0
	case strings.HasSuffix(name, "GreaterThan") || strings.HasSuffix(name, "GreaterThanPath"):
		return cmp > 0
	default: // Equals, EqualsPath
		return cmp == 0
	}
}

type BooleanExprKind int

const (
	AndExpr BooleanExprKind = iota
	OrExpr
	NotExpr
)

// BooleanExpression combines nested rules with And, Or or Not. And and Or
// short-circuit in declaration order.
type BooleanExpression struct {
	Kind BooleanExprKind
	Sub  []ChoiceRule
	Next string
}

func (b *BooleanExpression) GetNextState() string {
	return b.Next
}

func (b *BooleanExpression) Match(doc interface{}) (bool, error) {
	switch b.Kind {
	case AndExpr:
		for _, rule := range b.Sub {
			ok, err := rule.Match(doc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case OrExpr:
		for _, rule := range b.Sub {
			ok, err := rule.Match(doc)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case NotExpr:
		ok, err := b.Sub[0].Match(doc)
		return !ok, err
	default:
		return false, fmt.Errorf("invalid boolean expression kind %d", b.Kind)
	}
}

// parseRule parses a choice rule. topLevel rules require a Next.
func parseRule(data []byte, topLevel bool) (ChoiceRule, error) {
	next := ""
	if topLevel {
		n, err := utils.JsonExtractString(data, "Next")
		if err != nil {
			return nil, fmt.Errorf("a top-level choice rule requires a Next field")
		}
		next = n
	}
	if utils.JsonHasOneKey(data, "And", "Or", "Not") {
		return parseBooleanExpr(data, next)
	}
	if utils.JsonHasKey(data, "Variable") {
		return parseDataTestExpr(data, next)
	}
	return nil, fmt.Errorf("invalid choice rule: %s", string(data))
}

func parseBooleanExpr(data []byte, next string) (*BooleanExpression, error) {
	for key, kind := range map[string]BooleanExprKind{"And": AndExpr, "Or": OrExpr} {
		raw, dataType, _, err := jsonparser.Get(data, key)
		if err != nil || dataType == jsonparser.NotExist {
			continue
		}
		if dataType != jsonparser.Array {
			return nil, fmt.Errorf("%s must hold an array of rules", key)
		}
		var sub []ChoiceRule
		var parseErr error
		_, err = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, e error) {
			if parseErr != nil {
				return
			}
			rule, errRule := parseRule(value, false)
			if errRule != nil {
				parseErr = errRule
				return
			}
			sub = append(sub, rule)
		})
		if err != nil {
			return nil, err
		}
		if parseErr != nil {
			return nil, parseErr
		}
		if len(sub) == 0 {
			return nil, fmt.Errorf("%s must hold at least one rule", key)
		}
		return &BooleanExpression{Kind: kind, Sub: sub, Next: next}, nil
	}
	if raw, dataType, _, err := jsonparser.Get(data, "Not"); err == nil && dataType == jsonparser.Object {
		rule, errRule := parseRule(raw, false)
		if errRule != nil {
			return nil, errRule
		}
		return &BooleanExpression{Kind: NotExpr, Sub: []ChoiceRule{rule}, Next: next}, nil
	}
	return nil, fmt.Errorf("invalid boolean expression: %s", string(data))
}

func parseDataTestExpr(data []byte, next string) (*DataTestExpression, error) {
	variable, err := jsonExtractRefPath(data, "Variable")
	if err != nil {
		return nil, err
	}
	for _, comparator := range possibleComparators {
		if !utils.JsonHasKey(data, string(comparator)) {
			continue
		}
		operand, err := jsonDecodeValue(data, string(comparator))
		if err != nil {
			return nil, fmt.Errorf("invalid operand for %s: %v", comparator, err)
		}
		expr := &DataTestExpression{
			Variable: variable,
			Kind:     comparator,
			Operand:  operand,
			Next:     next,
		}
		if strings.HasSuffix(string(comparator), "Path") {
			s, ok := operand.(string)
			if !ok {
				return nil, fmt.Errorf("%s requires a reference path operand", comparator)
			}
			p, errPath := NewReferencePath(s)
			if errPath != nil {
				return nil, errPath
			}
			expr.OperandPath = p
			expr.Operand = nil
		}
		if comparator == StringMatches {
			pattern, ok := operand.(string)
			if !ok {
				return nil, fmt.Errorf("StringMatches requires a string pattern")
			}
			g, errGlob := glob.Compile(pattern)
			if errGlob != nil {
				return nil, fmt.Errorf("invalid StringMatches pattern '%s': %v", pattern, errGlob)
			}
			expr.matcher = g
		}
		return expr, nil
	}
	return nil, fmt.Errorf("choice rule on '%s' has no recognized comparator", variable)
}
