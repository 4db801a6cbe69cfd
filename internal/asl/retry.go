package asl

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/grussorusso/stepflow/utils"
)

// Retrier is an entry of a state's Retry list. MaxAttempts counts retries,
// so the work step runs at most 1+MaxAttempts times. The kth retry sleeps
// IntervalSeconds * BackoffRate^(k-1).
type Retrier struct {
	ErrorEquals     []string
	IntervalSeconds int
	MaxAttempts     int
	BackoffRate     float64
}

// Catcher is an entry of a state's Catch list. When it matches an
// unrecovered error, the error record is injected at ResultPath and the
// execution transitions to Next.
type Catcher struct {
	ErrorEquals []string
	ResultPath  OptionalPath
	Next        string
}

func parseErrorEquals(data []byte) ([]string, error) {
	raw, dataType, _, err := jsonparser.Get(data, "ErrorEquals")
	if err != nil || dataType != jsonparser.Array {
		return nil, fmt.Errorf("ErrorEquals must be an array of error names")
	}
	names := make([]string, 0)
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, e error) {
		if dataType == jsonparser.String {
			if s, parseErr := jsonparser.ParseString(value); parseErr == nil {
				names = append(names, s)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("ErrorEquals must not be empty")
	}
	return names, nil
}

func parseRetriers(data []byte) ([]Retrier, error) {
	raw, dataType, _, err := jsonparser.Get(data, "Retry")
	if err != nil || dataType == jsonparser.NotExist {
		return nil, nil
	}
	if dataType != jsonparser.Array {
		return nil, fmt.Errorf("Retry must be an array of retriers")
	}
	var retriers []Retrier
	var parseErr error
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, e error) {
		if parseErr != nil {
			return
		}
		names, errNames := parseErrorEquals(value)
		if errNames != nil {
			parseErr = errNames
			return
		}
		retriers = append(retriers, Retrier{
			ErrorEquals:     names,
			IntervalSeconds: utils.JsonExtractIntOrDefault(value, "IntervalSeconds", 1),
			MaxAttempts:     utils.JsonExtractIntOrDefault(value, "MaxAttempts", 3),
			BackoffRate:     utils.JsonExtractFloatOrDefault(value, "BackoffRate", 2.0),
		})
	})
	if err != nil {
		return nil, err
	}
	return retriers, parseErr
}

func parseCatchers(data []byte) ([]Catcher, error) {
	raw, dataType, _, err := jsonparser.Get(data, "Catch")
	if err != nil || dataType == jsonparser.NotExist {
		return nil, nil
	}
	if dataType != jsonparser.Array {
		return nil, fmt.Errorf("Catch must be an array of catchers")
	}
	var catchers []Catcher
	var parseErr error
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, e error) {
		if parseErr != nil {
			return
		}
		names, errNames := parseErrorEquals(value)
		if errNames != nil {
			parseErr = errNames
			return
		}
		next, errNext := utils.JsonExtractString(value, "Next")
		if errNext != nil {
			parseErr = fmt.Errorf("a catcher requires a Next field")
			return
		}
		resultPath, errPath := jsonExtractOptionalPath(value, "ResultPath")
		if errPath != nil {
			parseErr = errPath
			return
		}
		catchers = append(catchers, Catcher{
			ErrorEquals: names,
			ResultPath:  resultPath,
			Next:        next,
		})
	})
	if err != nil {
		return nil, err
	}
	return catchers, parseErr
}
