package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/grussorusso/stepflow/internal/asl"
	"github.com/grussorusso/stepflow/internal/cache"
	"github.com/grussorusso/stepflow/utils"
	clientv3 "go.etcd.io/etcd/client/v3"
	"golang.org/x/net/context"
)

// MachineRecord is the persisted form of a registered state machine: the
// raw definition is kept verbatim so it round-trips, and is re-parsed on
// load.
type MachineRecord struct {
	Name       string
	Definition json.RawMessage
	CreatedAt  time.Time
}

func (m *MachineRecord) getEtcdKey() string {
	return getEtcdKey(m.Name)
}

func getEtcdKey(machineName string) string {
	return fmt.Sprintf("/machine/%s", machineName)
}

// GetMachine retrieves a registered machine given its name. If it doesn't
// exist, returns false.
func GetMachine(name string) (*MachineRecord, bool) {
	val, found := getFromCache(name)
	if !found {
		// cache miss
		m, response := getFromEtcd(name)
		if !response {
			return nil, false
		}
		cache.GetCacheInstance().Set(name, m, cache.DefaultExpiration)
		return m, true
	}
	return val, true
}

func getFromCache(name string) (*MachineRecord, bool) {
	localCache := cache.GetCacheInstance()
	m, found := localCache.Get(name)
	if !found {
		return nil, false
	}
	// return a safe copy of the record previously obtained
	record := *m.(*MachineRecord)
	return &record, true
}

func getFromEtcd(name string) (*MachineRecord, bool) {
	cli, err := utils.GetEtcdClient()
	if err != nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	getResponse, err := cli.Get(ctx, getEtcdKey(name))
	if err != nil || len(getResponse.Kvs) < 1 {
		return nil, false
	}

	var m MachineRecord
	err = json.Unmarshal(getResponse.Kvs[0].Value, &m)
	if err != nil {
		return nil, false
	}
	return &m, true
}

// SaveMachine validates the definition and registers it to etcd. An
// invalid definition is rejected before anything is written.
func SaveMachine(name string, definition []byte) (*MachineRecord, error) {
	if _, err := asl.Parse(definition); err != nil {
		return nil, err
	}
	record := &MachineRecord{
		Name:       name,
		Definition: json.RawMessage(definition),
		CreatedAt:  time.Now(),
	}

	cli, err := utils.GetEtcdClient()
	if err != nil {
		return nil, err
	}
	ctx := context.TODO()

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("could not marshal machine: %v", err)
	}
	_, err = cli.Put(ctx, record.getEtcdKey(), string(payload))
	if err != nil {
		return nil, fmt.Errorf("failed Put: %v", err)
	}

	cache.GetCacheInstance().Set(name, record, cache.DefaultExpiration)
	return record, nil
}

// DeleteMachine removes a machine from etcd and the local cache.
func DeleteMachine(name string) error {
	cli, err := utils.GetEtcdClient()
	if err != nil {
		return err
	}
	ctx := context.TODO()

	dresp, err := cli.Delete(ctx, getEtcdKey(name))
	if err != nil {
		return fmt.Errorf("failed Delete: %v", err)
	} else if dresp.Deleted != 1 {
		return fmt.Errorf("no machine named '%s' exists", name)
	}

	cache.GetCacheInstance().Delete(name)
	return nil
}

// GetAllMachines lists the names of every registered machine.
func GetAllMachines() ([]string, error) {
	cli, err := utils.GetEtcdClient()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := cli.Get(ctx, "/machine/", clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		names = append(names, string(kv.Key[len("/machine/"):]))
	}
	return names, nil
}
