package check

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/optimode/verimail/internal/parse"
	"github.com/optimode/verimail/types"
)

// SMTPConfig is the mailbox gate configuration.
type SMTPConfig struct {
	HeloDomain     string
	MailFrom       string // empty means a null reverse-path, MAIL FROM:<>
	Port           string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

// SMTPChecker probes mailbox acceptance with a single RCPT TO per
// address: banner, EHLO, MAIL FROM, RCPT TO, QUIT. Each address gets a
// fresh session that is always closed before the next one.
//
// The gate is deliberately fail-open: many mail servers refuse probing
// without rejecting real mail, so absence of proof of invalidity is not
// invalidity. Connection, timeout and protocol failures all pass the
// gate as inconclusive. Only a well-formed non-250 reply to the RCPT
// command itself fails it.
type SMTPChecker struct {
	cfg    SMTPConfig
	lookup MXLookupFunc
}

// NewSMTPChecker creates the mailbox gate. The lookup function is
// shared with the domain gate so a batch resolves each domain once.
func NewSMTPChecker(cfg SMTPConfig, lookup MXLookupFunc) *SMTPChecker {
	if cfg.Dial == nil {
		cfg.Dial = net.DialTimeout
	}
	return &SMTPChecker{cfg: cfg, lookup: lookup}
}

func (c *SMTPChecker) Check(ctx context.Context, email parse.Email) types.GateResult {
	gate := types.GateMailbox

	if !email.Valid {
		return types.GateResult{Gate: gate, Passed: false, Details: "skipped: unparseable address"}
	}
	if err := ctx.Err(); err != nil {
		return inconclusive(gate, "", err)
	}

	records, err := c.lookup(email.Domain)
	if err != nil {
		return inconclusive(gate, "", fmt.Errorf("MX lookup: %w", err))
	}
	if len(records) == 0 {
		return inconclusive(gate, "", errors.New("MX set empty"))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})
	mxHost := strings.TrimSuffix(records[0].Host, ".")

	code, msg, err := c.probe(mxHost, email.Raw)
	if err != nil {
		return inconclusive(gate, mxHost, err)
	}

	if code != 250 {
		return types.GateResult{
			Gate:     gate,
			Passed:   false,
			Details:  fmt.Sprintf("RCPT rejected: %s", msg),
			MXHost:   mxHost,
			SMTPCode: code,
		}
	}

	return types.GateResult{
		Gate:     gate,
		Passed:   true,
		Details:  "RCPT accepted",
		MXHost:   mxHost,
		SMTPCode: code,
	}
}

// inconclusive is the fail-open outcome: the probe could not prove the
// mailbox invalid, so the gate passes.
func inconclusive(gate types.GateLevel, mxHost string, err error) types.GateResult {
	return types.GateResult{
		Gate:    gate,
		Passed:  true,
		Details: fmt.Sprintf("probe inconclusive: %v", err),
		MXHost:  mxHost,
	}
}

// probe runs one scoped SMTP session against the primary exchanger and
// returns the RCPT TO reply. Any transport or protocol problem, a
// rejected EHLO or MAIL FROM included, comes back as an error; only the
// RCPT reply carries a verdict.
func (c *SMTPChecker) probe(mxHost, address string) (code int, msg string, err error) {
	netConn, err := c.cfg.Dial("tcp", net.JoinHostPort(mxHost, c.cfg.Port), c.cfg.ConnectTimeout)
	if err != nil {
		return 0, "", fmt.Errorf("connect to %s: %w", mxHost, err)
	}
	defer func() { _ = netConn.Close() }()

	if err := netConn.SetDeadline(time.Now().Add(c.cfg.CommandTimeout)); err != nil {
		return 0, "", fmt.Errorf("set deadline: %w", err)
	}

	r := bufio.NewReader(netConn)
	w := bufio.NewWriter(netConn)

	code, msg, err = readReply(r)
	if err != nil {
		return 0, "", fmt.Errorf("read banner: %w", err)
	}
	if code >= 400 {
		return 0, "", fmt.Errorf("server refused session: %d %s", code, msg)
	}

	code, msg, err = command(r, w, fmt.Sprintf("EHLO %s\r\n", c.cfg.HeloDomain))
	if err != nil {
		return 0, "", fmt.Errorf("EHLO: %w", err)
	}
	if code >= 400 {
		return 0, "", fmt.Errorf("EHLO rejected: %d %s", code, msg)
	}

	code, msg, err = command(r, w, fmt.Sprintf("MAIL FROM:<%s>\r\n", c.cfg.MailFrom))
	if err != nil {
		return 0, "", fmt.Errorf("MAIL FROM: %w", err)
	}
	if code >= 400 {
		return 0, "", fmt.Errorf("MAIL FROM rejected: %d %s", code, msg)
	}

	code, msg, err = command(r, w, fmt.Sprintf("RCPT TO:<%s>\r\n", address))
	if err != nil {
		return 0, "", fmt.Errorf("RCPT TO: %w", err)
	}

	// Best-effort goodbye; the verdict is already in hand.
	_, _ = w.WriteString("QUIT\r\n")
	_ = w.Flush()

	return code, msg, nil
}

// command sends one SMTP command and reads the reply.
func command(r *bufio.Reader, w *bufio.Writer, cmd string) (int, string, error) {
	if _, err := w.WriteString(cmd); err != nil {
		return 0, "", err
	}
	if err := w.Flush(); err != nil {
		return 0, "", err
	}
	return readReply(r)
}

// readReply reads a (possibly multi-line) SMTP reply.
func readReply(r *bufio.Reader) (code int, full string, err error) {
	var lines []string
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil {
			return 0, "", fmt.Errorf("read SMTP reply: %w", readErr)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", errors.New("SMTP reply line too short")
		}
		lines = append(lines, line)
		// A '-' after the code marks a continuation line.
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	last := lines[len(lines)-1]
	if _, err := fmt.Sscanf(last[:3], "%d", &code); err != nil {
		return 0, "", fmt.Errorf("invalid SMTP reply code %q: %w", last[:3], err)
	}
	return code, strings.Join(lines, " | "), nil
}
