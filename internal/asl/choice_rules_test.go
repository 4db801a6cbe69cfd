package asl

import (
	"testing"

	"github.com/grussorusso/stepflow/utils"
)

func mustRule(t *testing.T, raw string) ChoiceRule {
	rule, err := parseRule([]byte(raw), true)
	utils.AssertNilMsg(t, err, "rule should parse: "+raw)
	return rule
}

func assertMatch(t *testing.T, rule ChoiceRule, doc string, expected bool) {
	matched, err := rule.Match(docFromJson(t, doc))
	utils.AssertNil(t, err)
	utils.AssertEqualsMsg(t, expected, matched, doc)
}

func TestNumericComparators(t *testing.T) {
	rule := mustRule(t, `{"Variable": "$.n", "NumericGreaterThan": 5, "Next": "Big"}`)
	assertMatch(t, rule, `{"n": 7}`, true)
	assertMatch(t, rule, `{"n": 5}`, false)
	assertMatch(t, rule, `{"n": 4.5}`, false)
	assertMatch(t, rule, `{"n": "7"}`, false) // wrong type

	lte := mustRule(t, `{"Variable": "$.n", "NumericLessThanEquals": 5, "Next": "S"}`)
	assertMatch(t, lte, `{"n": 5}`, true)
	assertMatch(t, lte, `{"n": 5.5}`, false)
}

func TestStringComparators(t *testing.T) {
	eq := mustRule(t, `{"Variable": "$.s", "StringEquals": "abc", "Next": "N"}`)
	assertMatch(t, eq, `{"s": "abc"}`, true)
	assertMatch(t, eq, `{"s": "abd"}`, false)

	lt := mustRule(t, `{"Variable": "$.s", "StringLessThan": "b", "Next": "N"}`)
	assertMatch(t, lt, `{"s": "a"}`, true)
	assertMatch(t, lt, `{"s": "c"}`, false)
}

func TestStringMatches(t *testing.T) {
	rule := mustRule(t, `{"Variable": "$.f", "StringMatches": "report-*.pdf", "Next": "N"}`)
	assertMatch(t, rule, `{"f": "report-2024.pdf"}`, true)
	assertMatch(t, rule, `{"f": "report-.pdf"}`, true)
	assertMatch(t, rule, `{"f": "summary-2024.pdf"}`, false)
	// anchored: trailing garbage does not match
	assertMatch(t, rule, `{"f": "report-2024.pdf.bak"}`, false)

	escaped := mustRule(t, `{"Variable": "$.f", "StringMatches": "literal\\*star", "Next": "N"}`)
	assertMatch(t, escaped, `{"f": "literal*star"}`, true)
	assertMatch(t, escaped, `{"f": "literalXstar"}`, false)
}

func TestBooleanAndTimestampComparators(t *testing.T) {
	b := mustRule(t, `{"Variable": "$.flag", "BooleanEquals": true, "Next": "N"}`)
	assertMatch(t, b, `{"flag": true}`, true)
	assertMatch(t, b, `{"flag": false}`, false)

	ts := mustRule(t, `{"Variable": "$.at", "TimestampGreaterThan": "2020-01-01T00:00:00Z", "Next": "N"}`)
	assertMatch(t, ts, `{"at": "2021-06-01T12:00:00Z"}`, true)
	assertMatch(t, ts, `{"at": "2019-06-01T12:00:00Z"}`, false)
	assertMatch(t, ts, `{"at": "not a timestamp"}`, false)
}

func TestPathComparators(t *testing.T) {
	rule := mustRule(t, `{"Variable": "$.a", "NumericEqualsPath": "$.b", "Next": "N"}`)
	assertMatch(t, rule, `{"a": 3, "b": 3}`, true)
	assertMatch(t, rule, `{"a": 3, "b": 4}`, false)
	// missing right-hand reference yields false
	assertMatch(t, rule, `{"a": 3}`, false)

	s := mustRule(t, `{"Variable": "$.x", "StringEqualsPath": "$.y", "Next": "N"}`)
	assertMatch(t, s, `{"x": "v", "y": "v"}`, true)
}

func TestPresencePredicates(t *testing.T) {
	present := mustRule(t, `{"Variable": "$.v", "IsPresent": true, "Next": "N"}`)
	assertMatch(t, present, `{"v": 1}`, true)
	assertMatch(t, present, `{}`, false)

	absent := mustRule(t, `{"Variable": "$.v", "IsPresent": false, "Next": "N"}`)
	assertMatch(t, absent, `{}`, true)
	assertMatch(t, absent, `{"v": null}`, false)

	isNull := mustRule(t, `{"Variable": "$.v", "IsNull": true, "Next": "N"}`)
	assertMatch(t, isNull, `{"v": null}`, true)
	assertMatch(t, isNull, `{"v": 0}`, false)

	isNum := mustRule(t, `{"Variable": "$.v", "IsNumeric": true, "Next": "N"}`)
	assertMatch(t, isNum, `{"v": 3.5}`, true)
	assertMatch(t, isNum, `{"v": "3.5"}`, false)

	isStr := mustRule(t, `{"Variable": "$.v", "IsString": false, "Next": "N"}`)
	assertMatch(t, isStr, `{"v": 1}`, true)
	assertMatch(t, isStr, `{"v": "s"}`, false)

	isTs := mustRule(t, `{"Variable": "$.v", "IsTimestamp": true, "Next": "N"}`)
	assertMatch(t, isTs, `{"v": "2020-01-01T00:00:00Z"}`, true)
	assertMatch(t, isTs, `{"v": "hello"}`, false)
}

func TestMissingVariableYieldsFalse(t *testing.T) {
	rule := mustRule(t, `{"Variable": "$.missing", "NumericEquals": 1, "Next": "N"}`)
	assertMatch(t, rule, `{}`, false)
}

func TestBooleanExpressions(t *testing.T) {
	and := mustRule(t, `{
		"And": [
			{"Variable": "$.a", "NumericGreaterThan": 0},
			{"Variable": "$.a", "NumericLessThan": 10}
		],
		"Next": "InRange"
	}`)
	utils.AssertEquals(t, "InRange", and.GetNextState())
	assertMatch(t, and, `{"a": 5}`, true)
	assertMatch(t, and, `{"a": 15}`, false)

	or := mustRule(t, `{
		"Or": [
			{"Variable": "$.t", "StringEquals": "a"},
			{"Variable": "$.t", "StringEquals": "b"}
		],
		"Next": "N"
	}`)
	assertMatch(t, or, `{"t": "b"}`, true)
	assertMatch(t, or, `{"t": "c"}`, false)

	not := mustRule(t, `{
		"Not": {"Variable": "$.t", "StringEquals": "a"},
		"Next": "N"
	}`)
	assertMatch(t, not, `{"t": "b"}`, true)
	assertMatch(t, not, `{"t": "a"}`, false)

	nested := mustRule(t, `{
		"And": [
			{"Variable": "$.a", "IsPresent": true},
			{"Or": [
				{"Variable": "$.a", "NumericLessThan": 0},
				{"Variable": "$.a", "NumericGreaterThan": 100}
			]}
		],
		"Next": "OutOfRange"
	}`)
	assertMatch(t, nested, `{"a": 150}`, true)
	assertMatch(t, nested, `{"a": 50}`, false)
	assertMatch(t, nested, `{}`, false)
}

func TestRuleParseErrors(t *testing.T) {
	cases := []string{
		`{"Variable": "$.a", "NumericEquals": 1}`,                 // missing Next at top level
		`{"Variable": "$.a", "Next": "N"}`,                        // no comparator
		`{"Next": "N"}`,                                           // nothing to test
		`{"Variable": "$.a", "StringEqualsPath": 5, "Next": "N"}`, // path operand not a string
		`{"And": [], "Next": "N"}`,                                // empty combination
	}
	for _, raw := range cases {
		_, err := parseRule([]byte(raw), true)
		utils.AssertNonNilMsg(t, err, raw)
	}
}
