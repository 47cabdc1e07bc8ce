// Command verimail batch-verifies email addresses from an input file
// and writes a cleaned list plus text/JSON reports.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/optimode/verimail"
	"github.com/optimode/verimail/internal/config"
	"github.com/optimode/verimail/internal/extract"
	"github.com/optimode/verimail/internal/report"
)

var version = "dev"

// progressEvery is how many verdicts pass between progress log lines.
const progressEvery = 25

type flags struct {
	apiToken       string
	useAPI         bool
	outputDir      string
	reportFormat   string
	heloDomain     string
	noProgress     bool
	withHeuristics bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "verimail <input-file>",
		Short: "verimail - batch email address verification",
		Long: `verimail reads candidate email addresses from a CSV, plain list or
email file, verifies each one (format, MX records, SMTP RCPT probe, or a
remote API when a token is configured) and writes a cleaned list of
valid addresses plus text/JSON reports.`,
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.apiToken, "api-token", "", "token for the remote verification service")
	cmd.Flags().BoolVar(&f.useAPI, "use-api", false, "verify via the remote API instead of DNS/SMTP")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "directory for results (default \"output\")")
	cmd.Flags().StringVar(&f.reportFormat, "report-format", "", "report format: text, json or both (default \"both\")")
	cmd.Flags().StringVar(&f.heloDomain, "helo-domain", "", "domain announced in the SMTP EHLO command")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "disable progress logging")
	cmd.Flags().BoolVar(&f.withHeuristics, "with-heuristics", false, "also reject disposable domains and flag provider typos")

	return cmd
}

func run(cmd *cobra.Command, inputFile string, f flags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags override the environment.
	if cmd.Flags().Changed("api-token") {
		cfg.APIToken = f.apiToken
	}
	if cmd.Flags().Changed("use-api") {
		cfg.UseAPI = f.useAPI
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if cmd.Flags().Changed("report-format") {
		cfg.ReportFormat = f.reportFormat
	}
	if cmd.Flags().Changed("helo-domain") {
		cfg.HeloDomain = f.heloDomain
	}

	switch cfg.ReportFormat {
	case "text", "json", "both":
	default:
		return fmt.Errorf("invalid report format %q (want text, json or both)", cfg.ReportFormat)
	}

	log := newLogger(cfg.LogLevel)

	candidates, err := extract.FromFile(inputFile)
	if err != nil {
		return fmt.Errorf("processing %s: %w", inputFile, err)
	}
	log.WithField("candidates", len(candidates)).Infof("processing file: %s", inputFile)

	verifier := verimail.New(verimail.Config{
		APIToken: cfg.APIToken,
		UseAPI:   cfg.UseAPI,
	}).WithSMTP(verimail.SMTPOptions{HeloDomain: cfg.HeloDomain})
	if f.withHeuristics {
		verifier = verifier.WithHeuristics()
	}

	mode := report.ModeStandalone
	if verifier.APIMode() {
		mode = report.ModeAPI
	}
	log.Infof("mode: %s", mode)

	var opts verimail.BatchOptions
	if !f.noProgress {
		opts.OnResult = func(i int, r verimail.Result) {
			if (i+1)%progressEvery == 0 {
				log.Infof("verified %d addresses", i+1)
			}
			log.WithFields(logrus.Fields{
				"email":  r.Email,
				"valid":  r.Valid,
				"reason": r.Reason,
			}).Debug("verdict")
		}
	}

	results, summary := verifier.VerifyBatch(context.Background(), candidates, opts)

	if err := writeOutputs(cfg, results, summary, mode, log); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"total":   summary.Total,
		"valid":   summary.Valid,
		"invalid": summary.Invalid,
		"rate":    fmt.Sprintf("%.2f%%", summary.SuccessRate),
	}).Info("verification finished")

	return nil
}

func writeOutputs(cfg *config.Config, results []verimail.Result, summary verimail.Summary, mode string, log *logrus.Logger) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	csvPath := filepath.Join(cfg.OutputDir, "valid_emails.csv")
	if err := writeFile(csvPath, func(f *os.File) error {
		return report.WriteValidCSV(f, results)
	}); err != nil {
		return err
	}
	log.Infof("valid addresses written to %s", csvPath)

	if cfg.ReportFormat == "text" || cfg.ReportFormat == "both" {
		p := filepath.Join(cfg.OutputDir, "email_report.txt")
		if err := writeFile(p, func(f *os.File) error {
			return report.WriteText(f, summary, mode)
		}); err != nil {
			return err
		}
		log.Infof("text report written to %s", p)
	}

	if cfg.ReportFormat == "json" || cfg.ReportFormat == "both" {
		p := filepath.Join(cfg.OutputDir, "email_report.json")
		if err := writeFile(p, func(f *os.File) error {
			return report.WriteJSON(f, summary, mode)
		}); err != nil {
			return err
		}
		log.Infof("json report written to %s", p)
	}

	return nil
}

func writeFile(path string, fill func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
