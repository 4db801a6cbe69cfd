package engine

import (
	"context"
	"fmt"

	"github.com/grussorusso/stepflow/internal/asl"
	"github.com/grussorusso/stepflow/utils"
	"golang.org/x/sync/errgroup"
)

// executeParallel runs each branch as a recursive sub-execution sharing
// the parent's context record. The raw result is the array of branch
// outputs in branch-declaration order; a failing branch fails the state
// with States.BranchFailed and cancels its running siblings.
func (e *Execution) executeParallel(ctx context.Context, s *asl.ParallelState) (stateOutcome, error) {
	env := e.execCtx.intrinsicEnv()
	raw := e.output

	body := func(ctx context.Context) (interface{}, error) {
		eff, err := effectiveInput(s.IO, raw, env)
		if err != nil {
			return nil, err
		}
		outputs, err := e.runBranches(ctx, s, eff)
		if err != nil {
			return nil, err
		}
		var result interface{}
		if e.machine.opts.MergeParallelOutputs {
			result = mergeBranchOutputs(outputs)
		} else {
			result = outputs
		}
		return finishPipeline(s.IO, raw, result, env)
	}

	return e.runProtected(ctx, s.Retry, s.Catch, s.Transition, raw, body)
}

// runBranches spawns the branch sub-executions, at most MaxConcurrency at
// once, in declaration order. Outputs are collected positionally; the
// first branch failure cancels the rest.
func (e *Execution) runBranches(ctx context.Context, s *asl.ParallelState, effInput interface{}) ([]interface{}, error) {
	limit := s.MaxConcurrency
	if limit == 0 || limit > len(s.Branches) {
		limit = len(s.Branches)
	}

	g, branchCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	outputs := make([]interface{}, len(s.Branches))
	for i, branch := range s.Branches {
		i, branch := i, branch
		g.Go(func() error {
			sub := &Machine{sm: branch, opts: e.machine.opts}
			// each branch owns a deep copy of the effective input
			subExec := sub.StartExecution(utils.DeepCopyJSON(effInput), fmt.Sprintf("%s/branch-%d", e.name, i), e.execCtx)
			if err := subExec.RunAll(branchCtx); err != nil {
				return err
			}
			if subExec.Status() == StatusFailed {
				return subExec.Err()
			}
			outputs[i] = subExec.Output()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, cancellationError(ctx)
		}
		return nil, asl.NewStateError(asl.StatesBranchFailed, "branch failed: %v", err)
	}
	return outputs, nil
}

// mergeBranchOutputs is the legacy result mode: branch outputs that are
// objects are deep-merged in declaration order, later branches winning on
// conflicting scalar fields. When any output is not an object, the
// positional array is returned instead, since there is nothing to merge.
func mergeBranchOutputs(outputs []interface{}) interface{} {
	merged := make(map[string]interface{})
	for _, out := range outputs {
		obj, ok := out.(map[string]interface{})
		if !ok {
			return outputs
		}
		deepMergeInto(merged, obj)
	}
	return merged
}

func deepMergeInto(dst map[string]interface{}, src map[string]interface{}) {
	for k, v := range src {
		srcObj, srcIsObj := v.(map[string]interface{})
		dstObj, dstIsObj := dst[k].(map[string]interface{})
		if srcIsObj && dstIsObj {
			deepMergeInto(dstObj, srcObj)
			continue
		}
		dst[k] = utils.DeepCopyJSON(v)
	}
}
