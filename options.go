package verimail

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Config selects the verification mode for the lifetime of a Verifier.
// API mode is effective only when a token is present; without one the
// verifier stays in standalone (DNS + SMTP) mode.
type Config struct {
	// APIToken authenticates against the remote verification service.
	APIToken string
	// UseAPI delegates the whole decision to the remote service,
	// bypassing the local DNS and SMTP gates.
	UseAPI bool
}

// MXResolver is the MX lookup surface of *net.Resolver.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// DNSOptions configures the domain gate.
type DNSOptions struct {
	// Timeout is the maximum time for one MX lookup. Default: 10s
	Timeout time.Duration
	// Resolver overrides the system resolver (for testing).
	Resolver MXResolver
}

func defaultDNSOptions() DNSOptions {
	return DNSOptions{Timeout: 10 * time.Second}
}

// SMTPOptions configures the mailbox gate.
type SMTPOptions struct {
	// HeloDomain is the domain sent in the EHLO command. Default: "localhost"
	HeloDomain string
	// MailFrom is the reverse-path for MAIL FROM. Default: "" (null sender)
	MailFrom string
	// Port is the SMTP port. Default: 25
	Port string
	// ConnectTimeout is the maximum time for the TCP connect. Default: 10s
	ConnectTimeout time.Duration
	// CommandTimeout bounds the whole SMTP session. Default: 10s
	CommandTimeout time.Duration
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

func defaultSMTPOptions() SMTPOptions {
	return SMTPOptions{
		HeloDomain:     "localhost",
		Port:           "25",
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 10 * time.Second,
	}
}

// APIOptions configures the remote verification client.
type APIOptions struct {
	// BaseURL of the verification service. Default: the VerifyRight endpoint.
	BaseURL string
	// Timeout bounds the single request; there is no retry. Default: 10s
	Timeout time.Duration
	// HTTPClient is injectable for testing.
	HTTPClient *http.Client
}

func defaultAPIOptions() APIOptions {
	return APIOptions{Timeout: 10 * time.Second}
}

// HeuristicOptions configures the optional disposable/typo gate.
type HeuristicOptions struct {
	// RejectDisposable fails addresses on known throwaway domains. Default: true
	RejectDisposable bool
	// SuggestTypos fills Suggestion for near-misses of major providers;
	// it never fails an address. Default: true
	SuggestTypos bool
	// TypoThreshold is the Levenshtein distance considered a near-miss. Default: 2
	TypoThreshold int
}

func defaultHeuristicOptions() HeuristicOptions {
	return HeuristicOptions{
		RejectDisposable: true,
		SuggestTypos:     true,
		TypoThreshold:    2,
	}
}
