package pipeline

import "errors"

// ErrProviderUnavailable is returned by the tutor and assessment
// orchestrators when embedding, index or generation calls fail. The
// underlying cause stays reachable with errors.Is.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ErrUnsupportedMode is returned when an orchestrator receives a mode it does
// not serve.
var ErrUnsupportedMode = errors.New("mode not supported by this orchestrator")

// FailurePolicy says what a component does when a dependency fails.
type FailurePolicy string

const (
	// PolicyPropagate returns the error to the caller.
	PolicyPropagate FailurePolicy = "propagate"

	// PolicyFailOpen logs the error and lets content through.
	PolicyFailOpen FailurePolicy = "fail-open"

	// PolicyDegrade logs the error and returns an empty or templated value.
	PolicyDegrade FailurePolicy = "degrade"
)

// PolicyEntry is one row of the failure policy table.
type PolicyEntry struct {
	Component string        `json:"component"`
	Failure   string        `json:"failure"`
	Policy    FailurePolicy `json:"policy"`
	Outcome   string        `json:"outcome"`
}

var failurePolicies = []PolicyEntry{
	{
		Component: "retriever",
		Failure:   "embedding or vector index call fails",
		Policy:    PolicyPropagate,
		Outcome:   "tutor and assessment return ErrProviderUnavailable",
	},
	{
		Component: "generation",
		Failure:   "generation provider call fails",
		Policy:    PolicyPropagate,
		Outcome:   "tutor and assessment return ErrProviderUnavailable",
	},
	{
		Component: "moderation",
		Failure:   "moderation provider call fails",
		Policy:    PolicyFailOpen,
		Outcome:   "content passes unflagged, warning logged",
	},
	{
		Component: "moderation",
		Failure:   "content flagged",
		Policy:    PolicyFailOpen,
		Outcome:   "answer text replaced by the safe fallback message, response type unchanged",
	},
	{
		Component: "content",
		Failure:   "malformed or missing structured output",
		Policy:    PolicyDegrade,
		Outcome:   "empty list, or templated boss narrative",
	},
	{
		Component: "content",
		Failure:   "retrieval or generation provider call fails",
		Policy:    PolicyDegrade,
		Outcome:   "empty list, or templated boss narrative",
	},
	{
		Component: "events",
		Failure:   "publish fails",
		Policy:    PolicyDegrade,
		Outcome:   "error logged, answer still returned",
	},
}

// FailurePolicies returns the failure policy table.
func FailurePolicies() []PolicyEntry {
	out := make([]PolicyEntry, len(failurePolicies))
	copy(out, failurePolicies)
	return out
}
