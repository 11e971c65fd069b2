package assessment

import "fmt"

// Status is the lifecycle state of an Assessment.
//
//	draft ──activate──▶ active ──end──▶ completed
//	  ▲                   │
//	  └────deactivate─────┘
//
// A draft may also be ended directly once its start has passed. completed is terminal;
// marking is tracked separately by Assessment.IsMarked.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusActive, StatusCompleted},
	StatusActive:    {StatusDraft, StatusCompleted},
	StatusCompleted: {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, st := range transitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// sources returns every status that may transition to s.
func (s Status) sources() []Status {
	var from []Status
	for _, st := range []Status{StatusDraft, StatusActive, StatusCompleted} {
		if st.CanTransitionTo(s) {
			from = append(from, st)
		}
	}
	return from
}

func (s Status) String() string { return string(s) }

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}
