// Package parse splits raw candidate strings into the pieces the
// pipeline gates work with.
package parse

import (
	"strings"

	"golang.org/x/net/idna"
)

// Email is the parsed form of a candidate address.
// Gates receive this instead of the raw string.
type Email struct {
	Raw           string // original input, whitespace-trimmed
	Local         string // part before the last @
	Domain        string // part after the last @, ASCII/Punycode, lowercased
	DomainUnicode string // Unicode display form of Domain
	Valid         bool   // false when Raw has no usable local@domain shape
}

// NewEmail trims the input and splits it at the last @.
// Valid=false means the string has no local@domain shape at all;
// character-level rules are the format gate's job, not ours.
// Internationalized domains are converted to Punycode (IDNA2008) so
// DNS and SMTP always see an ASCII domain.
func NewEmail(raw string) Email {
	raw = strings.TrimSpace(raw)

	at := strings.LastIndex(raw, "@")
	if at < 1 || at == len(raw)-1 {
		return Email{Raw: raw}
	}

	local := raw[:at]
	domain := strings.ToLower(raw[at+1:])

	ascii, display, ok := domainForms(domain)
	if !ok {
		return Email{Raw: raw}
	}

	return Email{
		Raw:           raw,
		Local:         local,
		Domain:        ascii,
		DomainUnicode: display,
		Valid:         true,
	}
}

// domainForms returns the ASCII/Punycode and Unicode forms of a domain.
// ok is false when a non-ASCII domain fails IDNA2008 conversion.
func domainForms(domain string) (ascii, display string, ok bool) {
	if isASCII(domain) {
		// Existing Punycode like xn--mnchen-3ya.de still gets a
		// readable display form.
		u, err := idna.Display.ToUnicode(domain)
		if err != nil {
			u = domain
		}
		return domain, u, true
	}

	a, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", "", false
	}
	return a, domain, true
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
