package engine

import (
	"fmt"
	"time"

	"github.com/grussorusso/stepflow/internal/asl"
	"github.com/grussorusso/stepflow/internal/config"
	"github.com/grussorusso/stepflow/utils"
	"github.com/lithammer/shortuuid"
)

// Options tunes engine behavior that is not part of the language.
type Options struct {
	// MergeParallelOutputs switches the Parallel raw result from the
	// positional array to the legacy deep-merge of branch outputs.
	MergeParallelOutputs bool
}

// OptionsFromConfig builds Options from the configuration file.
func OptionsFromConfig() Options {
	return Options{
		MergeParallelOutputs: config.GetBool(config.ENGINE_PARALLEL_MERGE, false),
	}
}

// Machine is an executable, validated state machine. It is immutable and
// shared read-only by all of its executions.
type Machine struct {
	sm   *asl.StateMachine
	opts Options
}

// NewMachine wraps an already-parsed definition. The definition is
// re-validated, so a hand-built StateMachine gets the same guarantees as
// a parsed one.
func NewMachine(sm *asl.StateMachine, opts Options) (*Machine, error) {
	if sm == nil {
		return nil, fmt.Errorf("nil state machine definition")
	}
	if err := sm.Validate(); err != nil {
		return nil, err
	}
	return &Machine{sm: sm, opts: opts}, nil
}

// BuildMachine parses and validates a raw States Language definition.
func BuildMachine(def []byte, opts Options) (*Machine, error) {
	sm, err := asl.Parse(def)
	if err != nil {
		return nil, err
	}
	return &Machine{sm: sm, opts: opts}, nil
}

func (m *Machine) StartAt() string {
	return m.sm.StartAt
}

func (m *Machine) Definition() *asl.StateMachine {
	return m.sm
}

// StartExecution creates a new execution positioned at StartAt. The input
// document is deep-copied, so the caller may keep mutating its value. An
// empty name gets a generated one.
func (m *Machine) StartExecution(input interface{}, name string, execCtx *ExecContext) *Execution {
	if name == "" {
		name = shortuuid.New()
	}
	if execCtx == nil {
		execCtx = &ExecContext{}
	}
	doc := utils.DeepCopyJSON(input)
	return &Execution{
		machine:      m,
		name:         name,
		status:       StatusRunning,
		currentState: m.sm.StartAt,
		input:        doc,
		output:       utils.DeepCopyJSON(input),
		execCtx:      execCtx,
		startTime:    time.Now(),
	}
}
