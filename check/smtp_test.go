package check_test

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/verimail/check"
	"github.com/optimode/verimail/internal/parse"
	"github.com/optimode/verimail/types"
)

// fakeSMTPServer drives one end of a net.Pipe, answering commands by
// prefix match.
func fakeSMTPServer(server net.Conn, banner string, responses map[string]string) {
	defer func() { _ = server.Close() }()

	_, _ = fmt.Fprintf(server, "%s\r\n", banner)

	buf := make([]byte, 4096)
	for {
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		cmd := string(buf[:n])

		if strings.HasPrefix(cmd, "QUIT") {
			_, _ = fmt.Fprintf(server, "221 Bye\r\n")
			return
		}
		for prefix, resp := range responses {
			if strings.HasPrefix(cmd, prefix) {
				_, _ = fmt.Fprintf(server, "%s\r\n", resp)
				break
			}
		}
	}
}

func mxLookup(records []*net.MX, err error) check.MXLookupFunc {
	return func(domain string) ([]*net.MX, error) {
		return records, err
	}
}

func newProber(lookup check.MXLookupFunc, dial func(string, string, time.Duration) (net.Conn, error)) *check.SMTPChecker {
	return check.NewSMTPChecker(check.SMTPConfig{
		HeloDomain:     "probe.test",
		Port:           "25",
		ConnectTimeout: 5 * time.Second,
		CommandTimeout: 5 * time.Second,
		Dial:           dial,
	}, lookup)
}

func pipeDial(banner string, responses map[string]string) func(string, string, time.Duration) (net.Conn, error) {
	return func(network, address string, timeout time.Duration) (net.Conn, error) {
		client, server := net.Pipe()
		go fakeSMTPServer(server, banner, responses)
		return client, nil
	}
}

var oneMX = []*net.MX{{Host: "mx.example.com.", Pref: 10}}

func TestSMTPChecker_AcceptedRCPT(t *testing.T) {
	c := newProber(mxLookup(oneMX, nil), pipeDial("220 mx.example.com ESMTP", map[string]string{
		"EHLO": "250 OK", "MAIL FROM": "250 OK", "RCPT TO": "250 OK",
	}))

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.Equal(t, types.GateMailbox, res.Gate)
	assert.True(t, res.Passed)
	assert.Equal(t, 250, res.SMTPCode)
	assert.Equal(t, "mx.example.com", res.MXHost)
	assert.Equal(t, "RCPT accepted", res.Details)
}

func TestSMTPChecker_RejectedRCPT(t *testing.T) {
	c := newProber(mxLookup(oneMX, nil), pipeDial("220 mx.example.com ESMTP", map[string]string{
		"EHLO": "250 OK", "MAIL FROM": "250 OK", "RCPT TO": "550 5.1.1 User unknown",
	}))

	res := c.Check(context.Background(), parse.NewEmail("nobody@example.com"))
	assert.False(t, res.Passed)
	assert.Equal(t, 550, res.SMTPCode)
	assert.Contains(t, res.Details, "RCPT rejected")
}

func TestSMTPChecker_TemporaryRejectionIsNegative(t *testing.T) {
	// 4xx to RCPT is still a well-formed rejection, not a transport
	// failure, so it produces a negative verdict.
	c := newProber(mxLookup(oneMX, nil), pipeDial("220 mx.example.com ESMTP", map[string]string{
		"EHLO": "250 OK", "MAIL FROM": "250 OK", "RCPT TO": "450 4.2.1 Greylisted",
	}))

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.False(t, res.Passed)
	assert.Equal(t, 450, res.SMTPCode)
}

func TestSMTPChecker_FailOpenOnDialError(t *testing.T) {
	c := newProber(mxLookup(oneMX, nil), func(network, address string, timeout time.Duration) (net.Conn, error) {
		return nil, fmt.Errorf("connection refused")
	})

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.True(t, res.Passed, "connectivity failure must not disprove the mailbox")
	assert.Contains(t, res.Details, "probe inconclusive")
}

func TestSMTPChecker_FailOpenOnRefusedSession(t *testing.T) {
	c := newProber(mxLookup(oneMX, nil), pipeDial("554 go away", nil))

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.True(t, res.Passed)
	assert.Contains(t, res.Details, "probe inconclusive")
}

func TestSMTPChecker_FailOpenOnRejectedEHLO(t *testing.T) {
	c := newProber(mxLookup(oneMX, nil), pipeDial("220 mx.example.com ESMTP", map[string]string{
		"EHLO": "502 command not implemented",
	}))

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.True(t, res.Passed)
	assert.Contains(t, res.Details, "probe inconclusive")
}

func TestSMTPChecker_FailOpenOnLookupError(t *testing.T) {
	c := newProber(mxLookup(nil, &net.DNSError{Err: "servfail"}), func(network, address string, timeout time.Duration) (net.Conn, error) {
		t.Fatal("dial must not be reached without MX records")
		return nil, nil
	})

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.True(t, res.Passed)
	assert.Contains(t, res.Details, "probe inconclusive")
}

func TestSMTPChecker_FailOpenOnEmptyMXSet(t *testing.T) {
	c := newProber(mxLookup([]*net.MX{}, nil), nil)

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.True(t, res.Passed)
}

func TestSMTPChecker_ProbesPrimaryExchangerOnly(t *testing.T) {
	var dialed []string
	records := []*net.MX{
		{Host: "backup.example.com.", Pref: 20},
		{Host: "primary.example.com.", Pref: 10},
	}
	c := newProber(mxLookup(records, nil), func(network, address string, timeout time.Duration) (net.Conn, error) {
		dialed = append(dialed, address)
		client, server := net.Pipe()
		go fakeSMTPServer(server, "220 ESMTP", map[string]string{
			"EHLO": "250 OK", "MAIL FROM": "250 OK", "RCPT TO": "250 OK",
		})
		return client, nil
	})

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.True(t, res.Passed)
	assert.Equal(t, []string{"primary.example.com:25"}, dialed)
}

func TestSMTPChecker_FreshSessionPerAddress(t *testing.T) {
	dials := 0
	c := newProber(mxLookup(oneMX, nil), func(network, address string, timeout time.Duration) (net.Conn, error) {
		dials++
		client, server := net.Pipe()
		go fakeSMTPServer(server, "220 ESMTP", map[string]string{
			"EHLO": "250 OK", "MAIL FROM": "250 OK", "RCPT TO": "250 OK",
		})
		return client, nil
	})

	ctx := context.Background()
	assert.True(t, c.Check(ctx, parse.NewEmail("a@example.com")).Passed)
	assert.True(t, c.Check(ctx, parse.NewEmail("b@example.com")).Passed)
	assert.Equal(t, 2, dials, "every address gets its own session")
}

func TestSMTPChecker_UnparseableAddress(t *testing.T) {
	c := newProber(mxLookup(oneMX, nil), nil)
	res := c.Check(context.Background(), parse.NewEmail("invalid"))
	assert.False(t, res.Passed)
	assert.Contains(t, res.Details, "skipped")
}

func TestSMTPChecker_MultilineReply(t *testing.T) {
	c := newProber(mxLookup(oneMX, nil), func(network, address string, timeout time.Duration) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			defer func() { _ = server.Close() }()
			_, _ = fmt.Fprintf(server, "220 ESMTP\r\n")
			buf := make([]byte, 4096)
			for {
				n, err := server.Read(buf)
				if err != nil {
					return
				}
				cmd := string(buf[:n])
				switch {
				case strings.HasPrefix(cmd, "EHLO"):
					_, _ = fmt.Fprintf(server, "250-mx.example.com\r\n250-SIZE 35882577\r\n250 STARTTLS\r\n")
				case strings.HasPrefix(cmd, "MAIL FROM"):
					_, _ = fmt.Fprintf(server, "250 OK\r\n")
				case strings.HasPrefix(cmd, "RCPT TO"):
					_, _ = fmt.Fprintf(server, "250 OK\r\n")
				case strings.HasPrefix(cmd, "QUIT"):
					_, _ = fmt.Fprintf(server, "221 Bye\r\n")
					return
				}
			}
		}()
		return client, nil
	})

	res := c.Check(context.Background(), parse.NewEmail("user@example.com"))
	assert.True(t, res.Passed)
	assert.Equal(t, 250, res.SMTPCode)
}
