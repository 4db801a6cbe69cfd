package utils

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// DecodeJSON parses raw JSON preserving number fidelity: numbers are kept
// as json.Number instead of being converted to float64.
func DecodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}
	return v, nil
}

// EncodeJSON serializes a document in compact form.
func EncodeJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DeepCopyJSON returns a copy of the document that shares no references
// with the original. Only JSON value kinds are expected.
func DeepCopyJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = DeepCopyJSON(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = DeepCopyJSON(val)
		}
		return out
	default:
		// scalars (string, bool, json.Number, nil) are immutable
		return v
	}
}

func JsonHasKey(data []byte, key string) bool {
	_, dataType, _, err := jsonparser.Get(data, key)
	return err == nil && dataType != jsonparser.NotExist
}

func JsonHasOneKey(data []byte, keys ...string) bool {
	for _, key := range keys {
		if JsonHasKey(data, key) {
			return true
		}
	}
	return false
}

// JsonExtract returns the raw bytes of the value for key. Strings are
// returned without the enclosing quotes, as jsonparser does.
func JsonExtract(data []byte, key string) ([]byte, error) {
	value, _, _, err := jsonparser.Get(data, key)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func JsonExtractString(data []byte, key string) (string, error) {
	return jsonparser.GetString(data, key)
}

func JsonExtractStringOrDefault(data []byte, key string, def string) string {
	value, err := jsonparser.GetString(data, key)
	if err != nil {
		return def
	}
	return value
}

func JsonExtractIntOrDefault(data []byte, key string, def int) int {
	value, err := jsonparser.GetInt(data, key)
	if err != nil {
		return def
	}
	return int(value)
}

func JsonExtractFloatOrDefault(data []byte, key string, def float64) float64 {
	value, err := jsonparser.GetFloat(data, key)
	if err != nil {
		if i, errInt := jsonparser.GetInt(data, key); errInt == nil {
			return float64(i)
		}
		return def
	}
	return value
}

// JsonExtractBool extracts a boolean value for the key. If the key does not
// exist, returns false.
func JsonExtractBool(data []byte, key string) bool {
	value, err := jsonparser.GetBoolean(data, key)
	if err != nil {
		return false
	}
	return value
}

// JsonIsNull reports whether the key exists and holds an explicit null.
func JsonIsNull(data []byte, key string) bool {
	_, dataType, _, err := jsonparser.Get(data, key)
	return err == nil && dataType == jsonparser.Null
}

func JsonNumberOfKeys(data []byte) int {
	num := 0
	_ = jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		num++
		return nil
	})
	return num
}
