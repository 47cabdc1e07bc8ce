package check

import (
	"context"
	"strings"

	"github.com/optimode/verimail/internal/disposable"
	"github.com/optimode/verimail/internal/levenshtein"
	"github.com/optimode/verimail/internal/parse"
	"github.com/optimode/verimail/types"
)

// HeuristicsConfig configures the optional disposable/typo gate.
type HeuristicsConfig struct {
	RejectDisposable bool
	SuggestTypos     bool
	TypoThreshold    int
}

// HeuristicsChecker flags disposable domains and likely provider typos.
// A typo suspicion never fails an address, it only fills Suggestion.
type HeuristicsChecker struct {
	cfg       HeuristicsConfig
	providers []string
}

// wellKnownProviders are the major providers used for typo detection.
var wellKnownProviders = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk", "yahoo.fr",
	"outlook.com", "hotmail.com", "live.com",
	"icloud.com", "me.com",
	"protonmail.com", "proton.me",
	"aol.com",
	"zoho.com",
	"yandex.com",
	"mail.com",
	"gmx.com", "gmx.net", "gmx.de",
	"fastmail.com",
}

func NewHeuristicsChecker(cfg HeuristicsConfig) *HeuristicsChecker {
	return &HeuristicsChecker{cfg: cfg, providers: wellKnownProviders}
}

func (c *HeuristicsChecker) Check(_ context.Context, email parse.Email) types.GateResult {
	gate := types.GateHeuristics

	if !email.Valid {
		return types.GateResult{Gate: gate, Passed: false, Details: "skipped: unparseable address"}
	}

	// The disposable list is ASCII; typo matching reads better on the
	// Unicode form.
	asciiDomain := strings.ToLower(email.Domain)
	displayDomain := strings.ToLower(email.DomainUnicode)

	if c.cfg.RejectDisposable && disposable.IsDisposable(asciiDomain) {
		return types.GateResult{
			Gate:    gate,
			Passed:  false,
			Details: "disposable email domain",
		}
	}

	if c.cfg.SuggestTypos {
		if s := c.closestProvider(displayDomain); s != "" {
			return types.GateResult{
				Gate:       gate,
				Passed:     true,
				Details:    "possible typo in domain",
				Suggestion: s,
			}
		}
	}

	return types.GateResult{Gate: gate, Passed: true, Details: "heuristics ok"}
}

// closestProvider returns the nearest well-known provider within the
// typo threshold, or "" for an exact match or no close match.
func (c *HeuristicsChecker) closestProvider(domain string) string {
	best := ""
	bestDist := c.cfg.TypoThreshold + 1

	for _, p := range c.providers {
		if domain == p {
			return ""
		}
		if d := levenshtein.Distance(domain, p); d <= c.cfg.TypoThreshold && d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}
