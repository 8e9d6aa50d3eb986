package job

import (
	"encoding/json"
	"fmt"
)

// ProgressEvent is the routing-relevant slice of a bus message. The workflow
// engine may attach more fields (videoId and friends); the relay decodes only
// what it needs and forwards the original payload untouched.
type ProgressEvent struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// DecodeProgress extracts the routing key from a raw bus payload. The status
// value is workflow-defined ("queue", "started", "completed", ...) and is not
// validated here.
func DecodeProgress(payload []byte) (ID, error) {
	var event ProgressEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", fmt.Errorf("decode progress event: %w", err)
	}
	id, err := ParseID(event.JobID)
	if err != nil {
		return "", fmt.Errorf("progress event job id: %w", err)
	}
	return id, nil
}
