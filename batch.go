package verimail

import (
	"context"
	"math"
	"strings"
)

// Summary aggregates one batch run. It is derived from the final
// result slice, never from incrementally drifting counters.
type Summary struct {
	Total       int     `json:"total_emails"`
	Valid       int     `json:"valid_emails"`
	Invalid     int     `json:"invalid_emails"`
	SuccessRate float64 `json:"success_percentage"`
}

// BatchOptions tweaks VerifyBatch without touching the pipeline.
type BatchOptions struct {
	// OnResult is called after each verdict, for progress reporting.
	// Index counts evaluated (non-skipped) candidates from zero.
	OnResult func(index int, r Result)
}

// VerifyBatch runs the pipeline over a candidate list, strictly
// sequentially: each address is fully resolved before the next begins.
// Blank and #-comment entries are skipped and never counted. Every
// evaluated candidate yields exactly one Result regardless of which
// failure class fired.
func (v *Verifier) VerifyBatch(ctx context.Context, candidates []string, opts ...BatchOptions) ([]Result, Summary) {
	var o BatchOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	results := make([]Result, 0, len(candidates))
	for _, candidate := range candidates {
		if skippable(candidate) {
			continue
		}
		res := v.Verify(ctx, candidate)
		results = append(results, res)
		if o.OnResult != nil {
			o.OnResult(len(results)-1, res)
		}
	}

	return results, Summarize(results)
}

// Summarize computes the Summary for a result list. The success rate
// is valid/total*100 rounded to two decimals, 0 for an empty list.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Valid {
			s.Valid++
		}
	}
	s.Invalid = s.Total - s.Valid

	if s.Total > 0 {
		rate := float64(s.Valid) / float64(s.Total) * 100
		s.SuccessRate = math.Round(rate*100) / 100
	}
	return s
}

// ValidAddresses filters a result list down to the addresses that
// passed, preserving order.
func ValidAddresses(results []Result) []string {
	var out []string
	for _, r := range results {
		if r.Valid {
			out = append(out, r.Email)
		}
	}
	return out
}

// skippable marks candidates the batch must ignore without counting:
// blank (including whitespace-only) lines and # comments.
func skippable(candidate string) bool {
	t := strings.TrimSpace(candidate)
	return t == "" || strings.HasPrefix(t, "#")
}
