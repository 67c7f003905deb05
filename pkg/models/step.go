package models

// RetryKind names a retry strategy for a failing step.
type RetryKind string

const (
	RetryNone        RetryKind = "none"
	RetryFixed       RetryKind = "fixed"
	RetryExponential RetryKind = "exponential"
	RetryLinear      RetryKind = "linear"
)

// IsValid reports whether k is one of the known retry kinds.
func (k RetryKind) IsValid() bool {
	switch k {
	case RetryNone, RetryFixed, RetryExponential, RetryLinear:
		return true
	default:
		return false
	}
}

// RetryPolicy controls how often a step is attempted before its on-error link is taken.
// MaxAttempts is only meaningful when Policy is not RetryNone.
type RetryPolicy struct {
	Policy      RetryKind `json:"policy"       validate:"required,oneof=none fixed exponential linear"`
	MaxAttempts int       `json:"max_attempts" validate:"min=1"`
}

// Position is the canvas location of a step. The model carries it but never reads it.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step is one node of the workflow graph.
type Step struct {
	ID          string         `json:"id"                     validate:"required"`
	Type        string         `json:"type"                   validate:"required"`
	Label       string         `json:"label"`
	Config      map[string]any `json:"config"`
	Next        []string       `json:"next"`
	OnError     *string        `json:"on_error"`
	RetryPolicy *RetryPolicy   `json:"retry_policy,omitempty"`
	Position    Position       `json:"position"`
}

// HasSuccessor reports whether id is already in the step's next list.
func (s *Step) HasSuccessor(id string) bool {
	for _, n := range s.Next {
		if n == id {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	out.Config = CloneMap(s.Config)

	if out.Config == nil {
		out.Config = map[string]any{}
	}

	out.Next = append(make([]string, 0, len(s.Next)), s.Next...)

	if s.OnError != nil {
		target := *s.OnError
		out.OnError = &target
	}

	if s.RetryPolicy != nil {
		rp := *s.RetryPolicy
		out.RetryPolicy = &rp
	}

	return out
}
