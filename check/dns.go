package check

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/optimode/verimail/internal/parse"
	"github.com/optimode/verimail/types"
)

// MXLookupFunc resolves the MX set of a domain.
type MXLookupFunc func(domain string) ([]*net.MX, error)

// DNSConfig is the domain gate configuration.
type DNSConfig struct {
	Timeout time.Duration
}

// DNSChecker verifies that a domain has at least one mail exchanger.
// Every resolver failure, NXDOMAIN and empty answer included, fails the
// gate; resolution problems are verdicts here, never Go errors.
type DNSChecker struct {
	cfg    DNSConfig
	lookup MXLookupFunc
}

func NewDNSChecker(cfg DNSConfig) *DNSChecker {
	return &DNSChecker{
		cfg: cfg,
		lookup: func(domain string) ([]*net.MX, error) {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
			defer cancel()
			r := &net.Resolver{}
			return r.LookupMX(ctx, domain)
		},
	}
}

// NewDNSCheckerWithLookup overrides the MX lookup function, for tests
// and for sharing a cached resolver with the mailbox gate.
func NewDNSCheckerWithLookup(cfg DNSConfig, fn MXLookupFunc) *DNSChecker {
	c := NewDNSChecker(cfg)
	c.lookup = fn
	return c
}

func (c *DNSChecker) Check(ctx context.Context, email parse.Email) types.GateResult {
	gate := types.GateDomain

	if !email.Valid {
		return types.GateResult{Gate: gate, Passed: false, Details: "skipped: unparseable address"}
	}

	records, err := c.lookup(email.Domain)
	if err != nil {
		return types.GateResult{
			Gate:    gate,
			Passed:  false,
			Details: fmt.Sprintf("MX lookup failed: %v", err),
		}
	}
	if len(records) == 0 {
		return types.GateResult{Gate: gate, Passed: false, Details: "no MX records"}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})

	return types.GateResult{
		Gate:    gate,
		Passed:  true,
		Details: fmt.Sprintf("%d MX record(s)", len(records)),
		MXHost:  strings.TrimSuffix(records[0].Host, "."),
	}
}
