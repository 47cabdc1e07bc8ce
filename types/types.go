// Package types contains the shared types for verimail.
// This package does not import anything from other verimail packages
// to avoid circular imports.
package types

// GateLevel identifies one gate of the verification pipeline.
type GateLevel = string

const (
	GateFormat  GateLevel = "format"
	GateDomain  GateLevel = "domain"
	GateMailbox GateLevel = "mailbox"
	GateAPI     GateLevel = "api"
	// GateHeuristics covers the optional disposable/typo checks.
	GateHeuristics GateLevel = "heuristics"
)

// GateResult is the outcome of a single pipeline gate.
type GateResult struct {
	Gate       GateLevel `json:"gate"`
	Passed     bool      `json:"passed"`
	Details    string    `json:"details,omitempty"`
	MXHost     string    `json:"mxHost,omitempty"`
	SMTPCode   int       `json:"smtpCode,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}
