// Package verimail verifies whether email addresses are syntactically
// valid and likely deliverable. Each address passes through a gated
// pipeline: format check, DNS MX lookup, then an SMTP RCPT probe, or
// a remote verification API when a token is configured.
//
// Basic usage:
//
//	v := verimail.New(verimail.Config{})
//	res := v.Verify(ctx, "user@example.com")
//	fmt.Println(res.Valid, res.Reason)
//
// Batch processing:
//
//	results, summary := v.VerifyBatch(ctx, candidates)
//
// The SMTP probe is deliberately fail-open: a connectivity or protocol
// failure never marks an address invalid, because many mail servers
// refuse probing without rejecting real mail. Only a well-formed
// non-250 reply to RCPT TO does. See check.SMTPChecker.
package verimail

import "github.com/optimode/verimail/types"

// GateResult is a re-export from the types package so that consumers
// don't need to import the types package directly.
type GateResult = types.GateResult

// GateLevel is a re-export.
type GateLevel = types.GateLevel

// Gate constants re-exported.
const (
	GateFormat     = types.GateFormat
	GateDomain     = types.GateDomain
	GateMailbox    = types.GateMailbox
	GateAPI        = types.GateAPI
	GateHeuristics = types.GateHeuristics
)
