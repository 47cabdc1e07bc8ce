package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/verimail/internal/parse"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantValid  bool
		wantLocal  string
		wantDomain string
	}{
		{"plain", "user@example.com", true, "user", "example.com"},
		{"trims whitespace", "  user@example.com\t", true, "user", "example.com"},
		{"lowercases domain", "user@EXAMPLE.COM", true, "user", "example.com"},
		{"keeps local case", "User.Name@example.com", true, "User.Name", "example.com"},
		{"no at sign", "not-an-email", false, "", ""},
		{"empty", "", false, "", ""},
		{"missing local", "@example.com", false, "", ""},
		{"missing domain", "user@", false, "", ""},
		{"splits at last at", "a@b@example.com", true, "a@b", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parse.NewEmail(tt.in)
			assert.Equal(t, tt.wantValid, e.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.wantLocal, e.Local)
				assert.Equal(t, tt.wantDomain, e.Domain)
			}
		})
	}
}

func TestNewEmail_IDN(t *testing.T) {
	e := parse.NewEmail("user@münchen.de")
	assert.True(t, e.Valid)
	assert.Equal(t, "xn--mnchen-3ya.de", e.Domain)
	assert.Equal(t, "münchen.de", e.DomainUnicode)

	// Existing Punycode input gets a Unicode display form.
	e = parse.NewEmail("user@xn--mnchen-3ya.de")
	assert.True(t, e.Valid)
	assert.Equal(t, "xn--mnchen-3ya.de", e.Domain)
	assert.Equal(t, "münchen.de", e.DomainUnicode)
}

func TestNewEmail_RawAlwaysPopulated(t *testing.T) {
	e := parse.NewEmail("   garbage   ")
	assert.False(t, e.Valid)
	assert.Equal(t, "garbage", e.Raw)
}
