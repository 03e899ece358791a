package parsers

import (
	"io"

	"payment-linking-engine/internal/models"
	"payment-linking-engine/pkg/errors"
	"payment-linking-engine/pkg/logger"
)

// paymentHeaderAliases maps canonical payment columns to the header names
// seen across exporting systems
var paymentHeaderAliases = map[string][]string{
	"id":               {"id", "payment_id"},
	"payment_number":   {"payment_number", "payment_no", "number"},
	"payment_date":     {"payment_date", "date", "paid_at"},
	"amount":           {"amount", "paid_amount", "value"},
	"description":      {"description", "notes", "memo", "details"},
	"reference_number": {"reference_number", "reference", "ref"},
}

var paymentRequiredColumns = []string{"id", "payment_date", "amount"}

// PaymentParser parses payment batch CSV files
type PaymentParser struct {
	logger logger.Logger
}

// NewPaymentParser creates a payment parser
func NewPaymentParser(log logger.Logger) *PaymentParser {
	return &PaymentParser{logger: componentLogger(log, "payment_parser")}
}

// ParseFile parses a payment CSV file from disk
func (p *PaymentParser) ParseFile(path string) ([]*models.Payment, *ParseStats, error) {
	f, ferr := openCSV(path)
	if ferr != nil {
		return nil, nil, ferr
	}
	defer f.Close()

	return p.Parse(f, path)
}

// Parse parses payment records from a reader. Rows that fail to parse are
// counted and reported in the stats; only structural problems (unreadable
// CSV, missing required columns) are returned as errors.
func (p *PaymentParser) Parse(r io.Reader, name string) ([]*models.Payment, *ParseStats, error) {
	reader := newCSVReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.ParseError(errors.CodeInvalidFormat, name, 1, "", "", err)
	}

	headers := resolveHeaders(header, paymentHeaderAliases)
	if missing := headers.missingColumns(paymentRequiredColumns); len(missing) > 0 {
		return nil, nil, errors.ParseError(errors.CodeMissingColumn, name, 1, missing[0], "", nil)
	}

	var payments []*models.Payment
	var recordErrors []*errors.LinkerError
	stats := &ParseStats{}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			stats.TotalRecords++
			stats.FailedRecords++
			recordErrors = append(recordErrors,
				errors.ParseError(errors.CodeInvalidFormat, name, line, "", "", err))
			continue
		}

		stats.TotalRecords++
		payment, perr := models.CreatePaymentFromCSV(
			headers.field(record, "id"),
			headers.field(record, "payment_number"),
			headers.field(record, "payment_date"),
			headers.field(record, "amount"),
			headers.field(record, "description"),
			headers.field(record, "reference_number"),
		)
		if perr != nil {
			stats.FailedRecords++
			recordErrors = append(recordErrors,
				errors.ParseError(errors.CodeInvalidData, name, line, "", "", perr))
			continue
		}

		stats.SuccessfulRecords++
		payments = append(payments, payment)
	}

	stats.Errors = errors.NewErrorSummary(recordErrors)
	if stats.FailedRecords > 0 {
		p.logger.WithFields(logger.Fields{
			"file":   name,
			"failed": stats.FailedRecords,
			"total":  stats.TotalRecords,
		}).Warn("some payment records failed to parse")
	}

	return payments, stats, nil
}
