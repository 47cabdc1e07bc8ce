package check

import (
	"context"
	"regexp"

	"github.com/optimode/verimail/internal/parse"
	"github.com/optimode/verimail/types"
)

// addressPattern is the RFC-5322-inspired shape an address must have:
// a local part of the RFC 5321 character set, then a domain of
// dot-separated labels of 1-63 letters/digits/hyphens that neither
// start nor end with a hyphen. A single-label domain is accepted.
var addressPattern = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+" +
		"@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?" +
		"(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// FormatChecker is the syntactic gate. Pure, no I/O, never errors.
type FormatChecker struct{}

func NewFormatChecker() *FormatChecker {
	return &FormatChecker{}
}

func (c *FormatChecker) Check(_ context.Context, email parse.Email) types.GateResult {
	gate := types.GateFormat

	if email.Raw == "" {
		return types.GateResult{Gate: gate, Passed: false, Details: "empty address"}
	}
	if !email.Valid {
		return types.GateResult{Gate: gate, Passed: false, Details: "no local@domain shape"}
	}

	// Match against the Punycode form so internationalized domains
	// pass the same ASCII pattern DNS and SMTP will see.
	if !addressPattern.MatchString(email.Local + "@" + email.Domain) {
		return types.GateResult{Gate: gate, Passed: false, Details: "address does not match allowed pattern"}
	}

	return types.GateResult{Gate: gate, Passed: true, Details: "format ok"}
}
