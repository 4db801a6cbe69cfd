package asl

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/grussorusso/stepflow/utils"
)

// jsonparser-backed helpers specific to definition parsing: decoded values,
// reference paths and optional (nullable) path fields.

// jsonDecodeValue extracts the value for key and decodes it into a document
// value, preserving jsonparser's type information (strings unescaped,
// numbers as json.Number).
func jsonDecodeValue(data []byte, key string) (interface{}, error) {
	value, dataType, _, err := jsonparser.Get(data, key)
	if err != nil {
		return nil, err
	}
	return decodeParsedValue(value, dataType)
}

func decodeParsedValue(value []byte, dataType jsonparser.ValueType) (interface{}, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, err
		}
		return s, nil
	case jsonparser.Null:
		return nil, nil
	default:
		// numbers, booleans, objects, arrays: value is valid standalone JSON
		return utils.DecodeJSON(value)
	}
}

// jsonExtractRefPath extracts a mandatory reference path field.
func jsonExtractRefPath(data []byte, key string) (Path, error) {
	s, err := utils.JsonExtractString(data, key)
	if err != nil {
		return "", fmt.Errorf("field %s is missing or not a string", key)
	}
	return NewReferencePath(s)
}

// jsonExtractOptionalPath extracts a path field that may be absent or an
// explicit JSON null.
func jsonExtractOptionalPath(data []byte, key string) (OptionalPath, error) {
	value, dataType, _, err := jsonparser.Get(data, key)
	if err != nil || dataType == jsonparser.NotExist {
		return OptionalPath{}, nil
	}
	if dataType == jsonparser.Null {
		return OptionalPath{IsSet: true, IsNull: true}, nil
	}
	if dataType != jsonparser.String {
		return OptionalPath{}, fmt.Errorf("field %s must be a reference path or null", key)
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return OptionalPath{}, err
	}
	p, err := NewReferencePath(s)
	if err != nil {
		return OptionalPath{}, err
	}
	return OptionalPath{IsSet: true, Path: p}, nil
}

// jsonExtractRaw returns the raw JSON bytes for key, quotes included, or
// nil when the key is absent.
func jsonExtractRaw(data []byte, key string) []byte {
	value, dataType, _, err := jsonparser.Get(data, key)
	if err != nil || dataType == jsonparser.NotExist {
		return nil
	}
	if dataType == jsonparser.String {
		// re-quote: jsonparser strips the enclosing quotes
		quoted := make([]byte, 0, len(value)+2)
		quoted = append(quoted, '"')
		quoted = append(quoted, value...)
		return append(quoted, '"')
	}
	return value
}
