package executor

import (
	"context"
	"testing"

	"github.com/grussorusso/stepflow/internal/asl"
	"github.com/grussorusso/stepflow/utils"
)

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("double", func(ctx context.Context, input interface{}, credentials interface{}) (interface{}, error) {
		n, _ := asl.ToInt(input.(map[string]interface{})["n"])
		return map[string]interface{}{"n": n * 2}, nil
	})

	input, _ := utils.DecodeJSON([]byte(`{"n": 21}`))
	out, err := reg.Execute(context.Background(), "fn:double", input, nil)
	utils.AssertNil(t, err)
	n, ok := asl.ToInt(out.(map[string]interface{})["n"])
	utils.AssertTrue(t, ok)
	utils.AssertEquals(t, int64(42), n)
}

func TestRegistryUnknownHandler(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Execute(context.Background(), "fn:nope", nil, nil)
	utils.AssertNonNil(t, err)
	serr, ok := err.(*asl.StateError)
	utils.AssertTrue(t, ok)
	utils.AssertEquals(t, asl.StatesTaskFailed, serr.Name)
}

func TestDispatcherRouting(t *testing.T) {
	d := NewDispatcher()
	d.Registry.Register("echo", func(ctx context.Context, input interface{}, credentials interface{}) (interface{}, error) {
		return input, nil
	})

	out, err := d.Execute(context.Background(), "fn:echo", "hello", nil)
	utils.AssertNil(t, err)
	utils.AssertEquals(t, "hello", out.(string))

	_, err = d.Execute(context.Background(), "arn:aws:lambda:us-east-1:123:function:foo", nil, nil)
	utils.AssertNonNil(t, err)
	serr := err.(*asl.StateError)
	utils.AssertEquals(t, asl.StatesTaskFailed, serr.Name)
}

func TestHandlerStateErrorPassesThrough(t *testing.T) {
	reg := NewRegistry()
	reg.Register("angry", func(ctx context.Context, input interface{}, credentials interface{}) (interface{}, error) {
		return nil, asl.NewStateError("Custom.Refusal", "not today")
	})

	_, err := reg.Execute(context.Background(), "fn:angry", nil, nil)
	serr := err.(*asl.StateError)
	utils.AssertEquals(t, "Custom.Refusal", serr.Name)
	utils.AssertEquals(t, "not today", serr.Cause)
}
