package asl

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/grussorusso/stepflow/utils"
)

// ChoiceState routes to the first matching rule's Next, or to Default.
// Choice applies only InputPath and OutputPath; it produces no result and
// never modifies the document.
type ChoiceState struct {
	Choices []ChoiceRule
	Default string
	IO      IOFilter
}

func (c *ChoiceState) GetType() StateType {
	return Choice
}

func parseChoiceState(data []byte) (*ChoiceState, error) {
	io, err := parseIOFilter(data, false, false)
	if err != nil {
		return nil, err
	}
	raw, dataType, _, err := jsonparser.Get(data, "Choices")
	if err != nil || dataType != jsonparser.Array {
		return nil, fmt.Errorf("choices field is mandatory for a choice state")
	}
	var rules []ChoiceRule
	var parseErr error
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, e error) {
		if parseErr != nil {
			return
		}
		rule, errRule := parseRule(value, true)
		if errRule != nil {
			parseErr = errRule
			return
		}
		rules = append(rules, rule)
	})
	if err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("a choice state requires at least one rule")
	}
	return &ChoiceState{
		Choices: rules,
		Default: utils.JsonExtractStringOrDefault(data, "Default", ""),
		IO:      io,
	}, nil
}
