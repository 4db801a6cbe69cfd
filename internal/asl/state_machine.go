package asl

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/grussorusso/stepflow/utils"
)

// StateMachine is the parsed, validated definition tree. It is immutable
// after Parse and safe to share between executions.
type StateMachine struct {
	Comment        string
	Version        string
	StartAt        string
	TimeoutSeconds int
	States         map[string]State
}

// Parse reads a States Language definition and validates it. Every error
// returned here is a definition error; none of them can appear at run
// time.
func Parse(def []byte) (*StateMachine, error) {
	sm, err := parseStateMachine(def)
	if err != nil {
		return nil, err
	}
	if err := sm.Validate(); err != nil {
		return nil, err
	}
	return sm, nil
}

func parseStateMachine(def []byte) (*StateMachine, error) {
	startAt, err := utils.JsonExtractString(def, "StartAt")
	if err != nil {
		return nil, fmt.Errorf("a state machine requires a StartAt field")
	}
	sm := &StateMachine{
		Comment:        utils.JsonExtractStringOrDefault(def, "Comment", ""),
		Version:        utils.JsonExtractStringOrDefault(def, "Version", ""),
		StartAt:        startAt,
		TimeoutSeconds: utils.JsonExtractIntOrDefault(def, "TimeoutSeconds", 0),
		States:         make(map[string]State),
	}

	statesRaw, dataType, _, err := jsonparser.Get(def, "States")
	if err != nil || dataType != jsonparser.Object {
		return nil, fmt.Errorf("a state machine requires a States object")
	}
	var parseErr error
	err = jsonparser.ObjectEach(statesRaw, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		name := string(key)
		state, errState := parseState(value)
		if errState != nil {
			parseErr = fmt.Errorf("state '%s': %v", name, errState)
			return parseErr
		}
		sm.States[name] = state
		return nil
	})
	if err != nil {
		if parseErr != nil {
			return nil, parseErr
		}
		return nil, err
	}
	if len(sm.States) == 0 {
		return nil, fmt.Errorf("a state machine requires at least one state")
	}
	return sm, nil
}

// Validate checks the structural invariants: StartAt exists, every Next
// target (including catchers, choice rules and Default) names a known
// state, and at least one terminal state is present. Termination of Next
// cycles is the author's responsibility and is not checked.
func (sm *StateMachine) Validate() error {
	if _, ok := sm.States[sm.StartAt]; !ok {
		return fmt.Errorf("StartAt state '%s' is not defined in States", sm.StartAt)
	}

	hasTerminal := false
	for name, state := range sm.States {
		switch s := state.(type) {
		case *TaskState:
			if err := sm.checkTransition(name, s.Transition); err != nil {
				return err
			}
			if err := sm.checkCatchers(name, s.Catch); err != nil {
				return err
			}
			hasTerminal = hasTerminal || s.Transition.End
		case *ParallelState:
			if err := sm.checkTransition(name, s.Transition); err != nil {
				return err
			}
			if err := sm.checkCatchers(name, s.Catch); err != nil {
				return err
			}
			for i, branch := range s.Branches {
				if err := branch.Validate(); err != nil {
					return fmt.Errorf("state '%s' branch %d: %v", name, i, err)
				}
			}
			hasTerminal = hasTerminal || s.Transition.End
		case *PassState:
			if err := sm.checkTransition(name, s.Transition); err != nil {
				return err
			}
			hasTerminal = hasTerminal || s.Transition.End
		case *WaitState:
			if err := sm.checkTransition(name, s.Transition); err != nil {
				return err
			}
			hasTerminal = hasTerminal || s.Transition.End
		case *ChoiceState:
			for _, rule := range s.Choices {
				if err := sm.checkTarget(name, rule.GetNextState()); err != nil {
					return err
				}
			}
			if s.Default != "" {
				if err := sm.checkTarget(name, s.Default); err != nil {
					return err
				}
			}
		case *SucceedState, *FailState:
			hasTerminal = true
		}
	}
	if !hasTerminal {
		return fmt.Errorf("a state machine requires at least one terminal state")
	}
	return nil
}

func (sm *StateMachine) checkTransition(name string, t Transition) error {
	if t.End {
		return nil
	}
	return sm.checkTarget(name, t.Next)
}

func (sm *StateMachine) checkTarget(name string, target string) error {
	if _, ok := sm.States[target]; !ok {
		return fmt.Errorf("state '%s' transitions to unknown state '%s'", name, target)
	}
	return nil
}

func (sm *StateMachine) checkCatchers(name string, catchers []Catcher) error {
	for _, c := range catchers {
		if err := sm.checkTarget(name, c.Next); err != nil {
			return err
		}
	}
	return nil
}
