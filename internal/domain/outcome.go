package domain

// Outcome is the classified result of one like request.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeLimitReached   Outcome = "limit_reached"
	OutcomeFailure        Outcome = "failure"
)

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomePartialSuccess, OutcomeLimitReached, OutcomeFailure:
		return true
	}
	return false
}

// Succeeded reports whether the outcome counts as successful in aggregates.
func (o Outcome) Succeeded() bool {
	return o == OutcomeSuccess || o == OutcomePartialSuccess
}
