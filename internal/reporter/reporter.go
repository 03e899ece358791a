// Package reporter renders batch linking results for operators: a console
// summary for interactive runs, JSON for downstream tooling, and CSV for
// spreadsheet review of every best-match decision.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"payment-linking-engine/internal/matcher"
	"payment-linking-engine/internal/reconciler"
)

// Format selects the output rendering
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatConsole, FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected console, json, or csv)", s)
	}
}

// Reporter writes batch results in one format
type Reporter struct {
	writer      io.Writer
	format      Format
	showReasons bool
}

// NewReporter creates a reporter writing to w
func NewReporter(w io.Writer, format Format, showReasons bool) *Reporter {
	return &Reporter{writer: w, format: format, showReasons: showReasons}
}

// Write renders the batch result
func (r *Reporter) Write(result *reconciler.BatchResult) error {
	switch r.format {
	case FormatJSON:
		return r.writeJSON(result)
	case FormatCSV:
		return r.writeCSV(result)
	default:
		return r.writeConsole(result)
	}
}

func (r *Reporter) writeJSON(result *reconciler.BatchResult) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func (r *Reporter) writeCSV(result *reconciler.BatchResult) error {
	w := csv.NewWriter(r.writer)

	header := []string{
		"payment_id", "payment_number", "payment_amount", "description",
		"action", "confidence", "risk_level",
		"contract_id", "contract_number", "customer_name",
		"overall", "contract_number_score", "agreement_number_score",
		"customer_name_score", "amount_score", "temporal_score", "contextual_score",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, report := range result.Reports {
		row := []string{
			report.Payment.ID,
			report.Payment.PaymentNumber,
			report.Payment.Amount.String(),
			report.OriginalText,
		}

		if best := report.BestMatch; best != nil {
			row = append(row,
				string(best.Decision.Action),
				formatScore(best.Decision.Confidence),
				string(best.Decision.RiskLevel),
				best.Contract.ID,
				best.Contract.ContractNumber,
				best.Contract.CustomerName,
				formatScore(best.Similarity.Overall),
				formatScore(best.Similarity.ContractNumber),
				formatScore(best.Similarity.AgreementNumber),
				formatScore(best.Similarity.CustomerName),
				formatScore(best.Similarity.Amount),
				formatScore(best.Similarity.Temporal),
				formatScore(best.Similarity.Contextual),
			)
		} else {
			row = append(row, string(matcher.ActionReject), "0.00", string(matcher.RiskHigh),
				"", "", "", "0.00", "0.00", "0.00", "0.00", "0.00", "0.00", "0.00")
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (r *Reporter) writeConsole(result *reconciler.BatchResult) error {
	stats := result.Stats

	fmt.Fprintln(r.writer, "Payment Linking Report")
	fmt.Fprintln(r.writer, "======================")
	fmt.Fprintf(r.writer, "Payments processed:  %d\n", stats.TotalPayments)
	fmt.Fprintf(r.writer, "Matched (>= review): %d\n", stats.MatchedPayments)
	fmt.Fprintf(r.writer, "  auto_link: %d\n", stats.AutoLinked)
	fmt.Fprintf(r.writer, "  review:    %d\n", stats.NeedsReview)
	fmt.Fprintf(r.writer, "  manual:    %d\n", stats.NeedsManual)
	fmt.Fprintf(r.writer, "  reject:    %d\n", stats.Rejected)
	fmt.Fprintf(r.writer, "Success rate:        %.1f%%\n", stats.SuccessRate)
	fmt.Fprintf(r.writer, "Average confidence:  %.1f\n", stats.AverageConfidence)
	fmt.Fprintf(r.writer, "Average data quality: %.1f\n", stats.AverageDataQuality)
	fmt.Fprintf(r.writer, "Throughput:          %.1f payments/sec\n", stats.Throughput)
	fmt.Fprintln(r.writer)

	for _, report := range result.Reports {
		if best := report.BestMatch; best != nil {
			fmt.Fprintf(r.writer, "%-12s %-9s conf=%-6.1f risk=%-6s -> %s (%s)\n",
				report.Payment.ID,
				best.Decision.Action,
				best.Decision.Confidence,
				best.Decision.RiskLevel,
				best.Contract.ContractNumber,
				best.Contract.CustomerName)
			if r.showReasons {
				for _, reason := range best.Decision.Reasoning {
					fmt.Fprintf(r.writer, "    - %s\n", reason)
				}
			}
		} else {
			fmt.Fprintf(r.writer, "%-12s %-9s no candidate above the relevance floor\n",
				report.Payment.ID, matcher.ActionReject)
			if r.showReasons {
				for _, rec := range report.Insights.Recommendations {
					fmt.Fprintf(r.writer, "    - %s\n", rec)
				}
			}
		}
	}

	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
