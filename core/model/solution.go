package model

// Activity is the realised time span of one operation.
type Activity struct {
	Operation int `json:"operation" yaml:"operation"`
	Start     int `json:"start" yaml:"start"`
	End       int `json:"end" yaml:"end"`
}

// Assignment allocates a resource to one requirement of an operation.
// Requirement is the position of the requirement in Operation.Resources.
type Assignment struct {
	Resource    int `json:"resource" yaml:"resource"`
	Operation   int `json:"operation" yaml:"operation"`
	Requirement int `json:"requirement" yaml:"requirement"`
	Start       int `json:"start" yaml:"start"`
	End         int `json:"end" yaml:"end"`
}

// Solution is a complete schedule for an instance together with its
// objective values.
type Solution struct {
	Instance    *Instance    `json:"instance" yaml:"instance"`
	Activities  []Activity   `json:"activities" yaml:"activities"`
	Assignments []Assignment `json:"assignments" yaml:"assignments"`
	Makespan    int          `json:"makespan" yaml:"makespan"`
	Cost        int          `json:"cost" yaml:"cost"`
}

// Activity returns the activity of the operation with the given id.
func (s *Solution) Activity(operation int) (Activity, bool) {
	for _, a := range s.Activities {
		if a.Operation == operation {
			return a, true
		}
	}
	return Activity{}, false
}

// AssignmentsOf returns the assignments of a resource ordered as stored.
func (s *Solution) AssignmentsOf(resource int) []Assignment {
	var out []Assignment
	for _, a := range s.Assignments {
		if a.Resource == resource {
			out = append(out, a)
		}
	}
	return out
}
