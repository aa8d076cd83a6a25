package enricher

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"l1registry/pkg/registry"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// WriteReport stores the run result as indented JSON.
func WriteReport(path string, res *Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteErrorLog writes one "<folder>: <message>" line per error. Nothing is written when
// errs is empty; the returned bool tells whether a file was created.
func WriteErrorLog(path string, errs []registry.RecordError) (bool, error) {
	if len(errs) == 0 {
		return false, nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = fmt.Sprintf("%s: %s", e.Folder, e.Error)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return false, fmt.Errorf("failed to write error log: %w", err)
	}
	return true, nil
}

// PrintSummary prints the human readable run summary.
func PrintSummary(w io.Writer, res *Result, elapsed time.Duration) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	stats := res.Statistics

	bold.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Total Chains Processed: %s\n", humanize.Comma(int64(stats.TotalChains)))
	green.Fprintf(w, "  Successfully Updated: %s\n", humanize.Comma(int64(len(res.Success))))
	fmt.Fprintf(w, "  Skipped: %s\n", humanize.Comma(int64(len(res.Skipped))))
	if len(res.Errors) > 0 {
		red.Fprintf(w, "  Errors: %s\n", humanize.Comma(int64(len(res.Errors))))
	} else {
		fmt.Fprintf(w, "  Errors: 0\n")
	}
	fmt.Fprintf(w, "  Elapsed: %s\n", elapsed.Round(time.Second))
	fmt.Fprintln(w)

	bold.Fprintln(w, "Statistics:")
	fmt.Fprintf(w, "  L1 Chains: %d\n", stats.L1Count)
	fmt.Fprintf(w, "  Subnet Chains: %d\n", stats.SubnetCount)
	fmt.Fprintf(w, "  Proof of Stake: %d\n", stats.ProofOfStakeCount)
	fmt.Fprintf(w, "  Proof of Authority: %d\n", stats.ProofOfAuthorityCount)
	fmt.Fprintf(w, "  Chains with Logo URI: %d\n", stats.ChainsWithLogoURI)
	fmt.Fprintln(w)

	bold.Fprintln(w, "API Errors:")
	fmt.Fprintf(w, "  isL1 Fetch Failures: %d\n", stats.APIErrors.IsL1Failures)
	fmt.Fprintf(w, "  isL1 Subnets Not Found: %d\n", stats.APIErrors.IsL1NotFound)
	fmt.Fprintf(w, "  Logo URI Missing: %d\n", stats.APIErrors.LogoURIFailures)
}
