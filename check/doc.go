// Package check implements the individual gates of the verification
// pipeline: format, domain (MX), mailbox (SMTP RCPT) and the optional
// disposable/typo heuristics.
package check
