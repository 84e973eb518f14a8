package common

// Estados de una Tarea (TaskReport.Status)
const (
	TaskStatusSuccess = "SUCCESS"
	TaskStatusFailure = "FAILURE"
)

type TaskReport struct {
	TaskID        string        `json:"task_id"`
	WorkerID      string        `json:"worker_id"`
	Status        string        `json:"status"`
	ErrorMsg      string        `json:"error_msg,omitempty"`
	Timestamp     int64         `json:"timestamp"`
	DurationMS    int64         `json:"duration_ms"`
	ShuffleOutput []ShuffleMeta `json:"shuffle_outputs"`
}
