package mqtt

import "time"

// SolutionMessage is the payload published for every improving solution.
type SolutionMessage struct {
	MessageID string `json:"message_id"`
	RunID     string `json:"run_id"`
	Instance  string `json:"instance"`
	Phase     int    `json:"phase"`
	Objective string `json:"objective"`
	Makespan  int    `json:"makespan"`
	Cost      int    `json:"cost"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Optimal   bool   `json:"optimal"`
	Timestamp int64  `json:"timestamp"`
}

// RunMessage is the payload published when a run ends.
type RunMessage struct {
	MessageID string `json:"message_id"`
	RunID     string `json:"run_id"`
	Instance  string `json:"instance"`
	Strategy  string `json:"strategy"`
	Status    string `json:"status"`
	Makespan  *int   `json:"makespan,omitempty"`
	Cost      *int   `json:"cost,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher streams search progress to a broker.
type Publisher interface {
	PublishSolution(msg SolutionMessage) error
	PublishRun(msg RunMessage) error
}

// SolutionTopic returns the topic solutions of instance are published on.
func SolutionTopic(prefix, instance string) string {
	return prefix + "/" + instance + "/solution"
}

// RunTopic returns the topic run outcomes of instance are published on.
func RunTopic(prefix, instance string) string {
	return prefix + "/" + instance + "/run"
}

// Now is the timestamp used in messages, in Unix milliseconds.
func Now() int64 { return time.Now().UnixMilli() }
