package asl

import "github.com/grussorusso/stepflow/utils"

// PassState passes its effective input along, optionally replaced by the
// Result literal. No external work is performed.
type PassState struct {
	Result     interface{}
	HasResult  bool
	Transition Transition
	IO         IOFilter
}

func (p *PassState) GetType() StateType {
	return Pass
}

func parsePassState(data []byte) (*PassState, error) {
	transition, err := parseTransition(data, Pass)
	if err != nil {
		return nil, err
	}
	io, err := parseIOFilter(data, true, false)
	if err != nil {
		return nil, err
	}
	p := &PassState{Transition: transition, IO: io}
	if utils.JsonHasKey(data, "Result") {
		result, err := jsonDecodeValue(data, "Result")
		if err != nil {
			return nil, err
		}
		p.Result = result
		p.HasResult = true
	}
	return p, nil
}
