package asl

// SucceedState ends the execution with status succeeded. Only InputPath
// and OutputPath apply.
type SucceedState struct {
	IO IOFilter
}

func (s *SucceedState) GetType() StateType {
	return Succeed
}

func parseSucceedState(data []byte) (*SucceedState, error) {
	io, err := parseIOFilter(data, false, false)
	if err != nil {
		return nil, err
	}
	return &SucceedState{IO: io}, nil
}
