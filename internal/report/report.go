// Package report renders batch outcomes for humans and machines. It
// only consumes the Summary and result list; it never re-verifies.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/optimode/verimail"
)

// Mode labels which verification path produced a summary.
const (
	ModeStandalone = "Standalone"
	ModeAPI        = "API"
)

const generator = "verimail"

// WriteText writes the human-readable run report.
func WriteText(w io.Writer, s verimail.Summary, mode string) error {
	_, err := fmt.Fprintf(w,
		"Email Verification Report\n"+
			"=========================\n\n"+
			"Total emails:   %d\n"+
			"Valid emails:   %d\n"+
			"Invalid emails: %d\n"+
			"Success rate:   %.2f%%\n\n"+
			"Verification mode: %s\n"+
			"Generated by: %s\n",
		s.Total, s.Valid, s.Invalid, s.SuccessRate, mode, generator)
	return err
}

type jsonReport struct {
	verimail.Summary
	VerificationMode string `json:"verification_mode"`
	Generator        string `json:"generator"`
}

// WriteJSON writes the machine-readable run report.
func WriteJSON(w io.Writer, s verimail.Summary, mode string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(jsonReport{
		Summary:          s,
		VerificationMode: mode,
		Generator:        generator,
	})
}

// WriteValidCSV writes the cleaned list: only addresses that passed,
// in input order, under an "Email" header.
func WriteValidCSV(w io.Writer, results []verimail.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Email"}); err != nil {
		return err
	}
	for _, addr := range verimail.ValidAddresses(results) {
		if err := cw.Write([]string{addr}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
