package asl

import (
	"fmt"
	"time"

	"github.com/grussorusso/stepflow/utils"
)

// WaitState sleeps until its condition elapses. Exactly one of Seconds,
// SecondsPath, Timestamp and TimestampPath must be set. Only InputPath and
// OutputPath of the filter pipeline apply.
type WaitState struct {
	Seconds       int
	HasSeconds    bool
	SecondsPath   Path
	Timestamp     *time.Time
	TimestampPath Path
	Transition    Transition
	IO            IOFilter
}

func (w *WaitState) GetType() StateType {
	return Wait
}

func parseWaitState(data []byte) (*WaitState, error) {
	transition, err := parseTransition(data, Wait)
	if err != nil {
		return nil, err
	}
	io, err := parseIOFilter(data, false, false)
	if err != nil {
		return nil, err
	}
	w := &WaitState{Transition: transition, IO: io}

	set := 0
	if utils.JsonHasKey(data, "Seconds") {
		w.Seconds = utils.JsonExtractIntOrDefault(data, "Seconds", 0)
		if w.Seconds < 0 {
			return nil, fmt.Errorf("Seconds must be non-negative")
		}
		w.HasSeconds = true
		set++
	}
	if utils.JsonHasKey(data, "SecondsPath") {
		if w.SecondsPath, err = jsonExtractRefPath(data, "SecondsPath"); err != nil {
			return nil, err
		}
		set++
	}
	if utils.JsonHasKey(data, "Timestamp") {
		raw, errTs := utils.JsonExtractString(data, "Timestamp")
		if errTs != nil {
			return nil, fmt.Errorf("Timestamp must be a string")
		}
		ts, errParse := time.Parse(time.RFC3339, raw)
		if errParse != nil {
			return nil, fmt.Errorf("Timestamp must be an ISO-8601 timestamp: %v", errParse)
		}
		w.Timestamp = &ts
		set++
	}
	if utils.JsonHasKey(data, "TimestampPath") {
		if w.TimestampPath, err = jsonExtractRefPath(data, "TimestampPath"); err != nil {
			return nil, err
		}
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("a wait state requires exactly one of Seconds, SecondsPath, Timestamp, TimestampPath")
	}
	return w, nil
}
