package verimail

// Result is the verdict for one candidate address: the trimmed input,
// a boolean validity and a human-readable reason, plus the per-gate
// trail for callers that want details. Immutable once produced.
type Result struct {
	Email  string       `json:"email"`
	Valid  bool         `json:"is_valid"`
	Reason string       `json:"reason"`
	Checks []GateResult `json:"checks,omitempty"`
}

// FailedChecks returns the gates that did not pass.
func (r Result) FailedChecks() []GateResult {
	var out []GateResult
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// GateFor returns the result for the given gate, if it was executed.
func (r Result) GateFor(gate GateLevel) (GateResult, bool) {
	for _, c := range r.Checks {
		if c.Gate == gate {
			return c, true
		}
	}
	return GateResult{}, false
}
