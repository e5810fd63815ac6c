package queue

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type TaskType string

const (
	// TaskApplicationSubmitted verifies a stored resume after an application lands.
	TaskApplicationSubmitted TaskType = "application.submitted"
	// TaskResumeOrphan removes an artifact whose application row was never written.
	TaskResumeOrphan TaskType = "resume.orphan"
	// TaskResumeSweep scans the resume prefix for unreferenced artifacts.
	TaskResumeSweep TaskType = "resume.sweep"
)

type Task struct {
	Type          TaskType `json:"type"`
	ApplicationID string   `json:"applicationId,omitempty"`
	JobID         string   `json:"jobId,omitempty"`
	ResumeKey     string   `json:"resumeKey,omitempty"`
	SizeBytes     int64    `json:"sizeBytes,omitempty,string"`
}

// Values renders t as flat stream fields. Empty fields are omitted.
func (t Task) Values() map[string]any {
	values := map[string]any{"type": string(t.Type)}
	if t.ApplicationID != "" {
		values["applicationId"] = t.ApplicationID
	}
	if t.JobID != "" {
		values["jobId"] = t.JobID
	}
	if t.ResumeKey != "" {
		values["resumeKey"] = t.ResumeKey
	}
	if t.SizeBytes != 0 {
		values["sizeBytes"] = strconv.FormatInt(t.SizeBytes, 10)
	}
	return values
}

func DecodeTask(msg redis.XMessage) (Task, error) {
	raw, err := json.Marshal(msg.Values)
	if err != nil {
		return Task{}, fmt.Errorf("marshal values: %w", err)
	}
	var task Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	if task.Type == "" {
		return Task{}, fmt.Errorf("message %s has no task type", msg.ID)
	}
	return task, nil
}
