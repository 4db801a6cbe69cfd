package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/grussorusso/stepflow/utils"
	clientv3 "go.etcd.io/etcd/client/v3"
	"golang.org/x/net/context"
)

// ExecutionResult is the record published to etcd when an asynchronous
// invocation completes, polled by clients.
type ExecutionResult struct {
	ExecutionId   string
	Machine       string
	Status        string
	Output        interface{}
	Error         string  `json:",omitempty"`
	Cause         string  `json:",omitempty"`
	ExecutionTime float64 // seconds
}

func resultEtcdKey(executionId string) string {
	return fmt.Sprintf("/execution/%s", executionId)
}

// PublishResult stores the outcome of an async execution with a TTL, so
// unpolled results do not accumulate forever.
func PublishResult(result *ExecutionResult, ttl time.Duration) error {
	cli, err := utils.GetEtcdClient()
	if err != nil {
		return err
	}
	ctx := context.TODO()

	lease, err := cli.Grant(ctx, int64(ttl.Seconds()))
	if err != nil {
		return fmt.Errorf("failed lease Grant: %v", err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal execution result: %v", err)
	}
	_, err = cli.Put(ctx, resultEtcdKey(result.ExecutionId), string(payload), clientv3.WithLease(lease.ID))
	if err != nil {
		return fmt.Errorf("failed Put: %v", err)
	}
	return nil
}

// PollResult fetches the outcome of an async execution, if published.
func PollResult(executionId string) (*ExecutionResult, bool, error) {
	cli, err := utils.GetEtcdClient()
	if err != nil {
		return nil, false, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := cli.Get(ctx, resultEtcdKey(executionId))
	if err != nil {
		return nil, false, err
	}
	if len(resp.Kvs) < 1 {
		return nil, false, nil
	}
	var result ExecutionResult
	if err := json.Unmarshal(resp.Kvs[0].Value, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}
