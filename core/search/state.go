package search

// State is the lifecycle position of an Orchestrator.
type State int

const (
	Idle State = iota
	Phase1Running
	Phase1Done
	Phase2Running
	Phase2Done
	Finished
	Failed
)

var stateNames = [...]string{"idle", "phase1_running", "phase1_done", "phase2_running", "phase2_done", "finished", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Running reports whether a search phase is active.
func (s State) Running() bool { return s == Phase1Running || s == Phase2Running }
