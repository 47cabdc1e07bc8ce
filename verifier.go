package verimail

import (
	"context"
	"time"

	"github.com/optimode/verimail/check"
	"github.com/optimode/verimail/internal/dnscache"
	"github.com/optimode/verimail/internal/parse"
	"github.com/optimode/verimail/internal/remoteapi"
	"github.com/optimode/verimail/types"
)

// Reason strings carried by Result. The remote API path additionally
// produces "Invalid according to API" and "API error: ..." reasons.
const (
	ReasonValid          = "Valid"
	ReasonInvalidFormat  = "Invalid format"
	ReasonInvalidDomain  = "Invalid domain (no MX records)"
	ReasonInvalidMailbox = "Invalid mailbox"
	ReasonDisposable     = "Disposable domain"
)

// mxCacheTTL is how long one domain's MX verdict is reused within a
// verifier's lifetime.
const mxCacheTTL = 5 * time.Minute

// Verifier runs the per-address verification pipeline. Its Config is
// immutable for its lifetime; With* methods return the same Verifier
// reconfigured and are meant for setup, not mid-batch mutation.
type Verifier struct {
	cfg Config

	dnsOpts  DNSOptions
	smtpOpts SMTPOptions
	apiOpts  APIOptions
	heurOpts *HeuristicOptions

	format *check.FormatChecker
	dns    *check.DNSChecker
	smtp   *check.SMTPChecker
	heur   *check.HeuristicsChecker
	api    *remoteapi.Client
	cache  *dnscache.Cache
}

// New creates a Verifier. With a zero Config it runs in standalone
// mode: format gate, MX gate, SMTP RCPT probe. With UseAPI and a token
// the DNS/SMTP gates are bypassed entirely.
func New(cfg Config) *Verifier {
	v := &Verifier{
		cfg:      cfg,
		dnsOpts:  defaultDNSOptions(),
		smtpOpts: defaultSMTPOptions(),
		apiOpts:  defaultAPIOptions(),
	}
	v.build()
	return v
}

// WithDNS overrides the domain gate options.
func (v *Verifier) WithDNS(opts DNSOptions) *Verifier {
	def := defaultDNSOptions()
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	v.dnsOpts = opts
	v.build()
	return v
}

// WithSMTP overrides the mailbox gate options.
func (v *Verifier) WithSMTP(opts SMTPOptions) *Verifier {
	def := defaultSMTPOptions()
	if opts.HeloDomain == "" {
		opts.HeloDomain = def.HeloDomain
	}
	if opts.Port == "" {
		opts.Port = def.Port
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = def.ConnectTimeout
	}
	if opts.CommandTimeout == 0 {
		opts.CommandTimeout = def.CommandTimeout
	}
	v.smtpOpts = opts
	v.build()
	return v
}

// WithAPI overrides the remote client options. It does not switch the
// mode; that is Config's job.
func (v *Verifier) WithAPI(opts APIOptions) *Verifier {
	def := defaultAPIOptions()
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	v.apiOpts = opts
	v.build()
	return v
}

// WithHeuristics enables the disposable/typo gate, which runs between
// the format and domain gates in standalone mode.
func (v *Verifier) WithHeuristics(opts ...HeuristicOptions) *Verifier {
	o := defaultHeuristicOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	v.heurOpts = &o
	v.build()
	return v
}

// build assembles the gates from the current options.
func (v *Verifier) build() {
	v.format = check.NewFormatChecker()

	if v.dnsOpts.Resolver != nil {
		v.cache = dnscache.NewWithResolver(v.dnsOpts.Timeout, mxCacheTTL, v.dnsOpts.Resolver)
	} else {
		v.cache = dnscache.New(v.dnsOpts.Timeout, mxCacheTTL)
	}

	v.dns = check.NewDNSCheckerWithLookup(
		check.DNSConfig{Timeout: v.dnsOpts.Timeout},
		v.cache.LookupMX,
	)
	v.smtp = check.NewSMTPChecker(check.SMTPConfig{
		HeloDomain:     v.smtpOpts.HeloDomain,
		MailFrom:       v.smtpOpts.MailFrom,
		Port:           v.smtpOpts.Port,
		ConnectTimeout: v.smtpOpts.ConnectTimeout,
		CommandTimeout: v.smtpOpts.CommandTimeout,
		Dial:           v.smtpOpts.Dial,
	}, v.cache.LookupMX)

	if v.heurOpts != nil {
		v.heur = check.NewHeuristicsChecker(check.HeuristicsConfig{
			RejectDisposable: v.heurOpts.RejectDisposable,
			SuggestTypos:     v.heurOpts.SuggestTypos,
			TypoThreshold:    v.heurOpts.TypoThreshold,
		})
	} else {
		v.heur = nil
	}

	if v.cfg.UseAPI && v.cfg.APIToken != "" {
		v.api = remoteapi.New(remoteapi.Config{
			BaseURL:    v.apiOpts.BaseURL,
			Token:      v.cfg.APIToken,
			Timeout:    v.apiOpts.Timeout,
			HTTPClient: v.apiOpts.HTTPClient,
		})
	} else {
		v.api = nil
	}
}

// APIMode reports whether the verifier delegates to the remote service.
func (v *Verifier) APIMode() bool {
	return v.api != nil
}

// Verify runs the pipeline on one candidate address. Gates
// short-circuit in order of cost and certainty: format first, the SMTP
// probe last. Verify never returns an error; every failure class ends
// as a Result with a reason.
func (v *Verifier) Verify(ctx context.Context, candidate string) Result {
	email := parse.NewEmail(candidate)
	res := Result{Email: email.Raw}

	format := v.format.Check(ctx, email)
	res.Checks = append(res.Checks, format)
	if !format.Passed {
		res.Reason = ReasonInvalidFormat
		return res
	}

	// API mode: the remote verdict is terminal, no local gate runs.
	if v.api != nil {
		ok, reason := v.api.Verify(ctx, email.Raw)
		res.Checks = append(res.Checks, types.GateResult{
			Gate:    types.GateAPI,
			Passed:  ok,
			Details: reason,
		})
		res.Valid = ok
		res.Reason = reason
		return res
	}

	if v.heur != nil {
		h := v.heur.Check(ctx, email)
		res.Checks = append(res.Checks, h)
		if !h.Passed {
			res.Reason = ReasonDisposable
			return res
		}
	}

	dns := v.dns.Check(ctx, email)
	res.Checks = append(res.Checks, dns)
	if !dns.Passed {
		res.Reason = ReasonInvalidDomain
		return res
	}

	smtp := v.smtp.Check(ctx, email)
	res.Checks = append(res.Checks, smtp)
	if !smtp.Passed {
		res.Reason = ReasonInvalidMailbox
		return res
	}

	res.Valid = true
	res.Reason = ReasonValid
	return res
}
