package asl

import (
	"encoding/json"
	"testing"

	"github.com/grussorusso/stepflow/utils"
)

func mustTemplate(t *testing.T, raw string) *PayloadTemplate {
	pt, err := ParsePayloadTemplate([]byte(raw))
	utils.AssertNilMsg(t, err, "template should parse")
	return pt
}

func TestTemplateLiteralCopy(t *testing.T) {
	pt := mustTemplate(t, `{"static": "value", "nested": {"n": 1}, "arr": [true, null]}`)

	out, err := pt.Evaluate(docFromJson(t, `{}`), nil)
	utils.AssertNil(t, err)
	utils.AssertDeepEquals(t, docFromJson(t, `{"static": "value", "nested": {"n": 1}, "arr": [true, null]}`), out)
}

func TestTemplatePlaceholders(t *testing.T) {
	pt := mustTemplate(t, `{
		"flat.$": "$.name",
		"deep": {"inner.$": "$.values[1]"},
		"list": [{"x.$": "$.name"}]
	}`)
	scope := docFromJson(t, `{"name": "Foo", "values": [10, 20]}`)

	out, err := pt.Evaluate(scope, nil)
	utils.AssertNil(t, err)
	utils.AssertDeepEquals(t, docFromJson(t, `{
		"flat": "Foo",
		"deep": {"inner": 20},
		"list": [{"x": "Foo"}]
	}`), out)
}

func TestTemplateIntrinsicPlaceholder(t *testing.T) {
	pt := mustTemplate(t, `{"greeting.$": "States.Format('hello {}', $.name)", "sum.$": "States.MathAdd(1, 2)"}`)

	out, err := pt.Evaluate(docFromJson(t, `{"name": "Foo"}`), nil)
	utils.AssertNil(t, err)
	result := out.(map[string]interface{})
	utils.AssertEquals(t, "hello Foo", result["greeting"].(string))
	utils.AssertEquals(t, json.Number("3"), result["sum"].(json.Number))
}

func TestTemplateMissingReference(t *testing.T) {
	pt := mustTemplate(t, `{"v.$": "$.missing"}`)

	_, err := pt.Evaluate(docFromJson(t, `{}`), nil)
	utils.AssertNonNil(t, err)
	serr := err.(*StateError)
	utils.AssertEquals(t, StatesParameterPathFailure, serr.Name)
}

func TestTemplateBadPlaceholderValue(t *testing.T) {
	pt := mustTemplate(t, `{"v.$": "not a path"}`)

	_, err := pt.Evaluate(docFromJson(t, `{}`), nil)
	utils.AssertNonNil(t, err)
	serr := err.(*StateError)
	utils.AssertEquals(t, StatesParameterPathFailure, serr.Name)
}

func TestTemplateIntrinsicFailure(t *testing.T) {
	pt := mustTemplate(t, `{"v.$": "States.StringToJson($.notJson)"}`)

	_, err := pt.Evaluate(docFromJson(t, `{"notJson": "{{"}`), nil)
	utils.AssertNonNil(t, err)
	serr := err.(*StateError)
	utils.AssertEquals(t, StatesIntrinsicFailure, serr.Name)
}
