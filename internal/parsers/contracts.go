package parsers

import (
	"io"

	"payment-linking-engine/internal/models"
	"payment-linking-engine/pkg/errors"
	"payment-linking-engine/pkg/logger"
)

// contractHeaderAliases maps canonical contract columns to the header names
// seen across exporting systems
var contractHeaderAliases = map[string][]string{
	"id":               {"id", "contract_id"},
	"contract_number":  {"contract_number", "contract_no", "number"},
	"agreement_number": {"agreement_number", "agreement_no", "agreement"},
	"customer_name":    {"customer_name", "customer", "full_name"},
	"monthly_amount":   {"monthly_amount", "monthly", "installment"},
	"contract_amount":  {"contract_amount", "total_amount", "total"},
	"start_date":       {"start_date", "started_at", "contract_date"},
	"status":           {"status", "state"},
	"contract_type":    {"contract_type", "type"},
}

var contractRequiredColumns = []string{"id", "contract_number", "start_date", "status"}

// ContractParser parses contract snapshot CSV files
type ContractParser struct {
	logger logger.Logger
}

// NewContractParser creates a contract parser
func NewContractParser(log logger.Logger) *ContractParser {
	return &ContractParser{logger: componentLogger(log, "contract_parser")}
}

// ParseFile parses a contract CSV file from disk
func (p *ContractParser) ParseFile(path string) ([]*models.Contract, *ParseStats, error) {
	f, ferr := openCSV(path)
	if ferr != nil {
		return nil, nil, ferr
	}
	defer f.Close()

	return p.Parse(f, path)
}

// Parse parses contract records from a reader with the same failure
// semantics as PaymentParser.Parse
func (p *ContractParser) Parse(r io.Reader, name string) ([]*models.Contract, *ParseStats, error) {
	reader := newCSVReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.ParseError(errors.CodeInvalidFormat, name, 1, "", "", err)
	}

	headers := resolveHeaders(header, contractHeaderAliases)
	if missing := headers.missingColumns(contractRequiredColumns); len(missing) > 0 {
		return nil, nil, errors.ParseError(errors.CodeMissingColumn, name, 1, missing[0], "", nil)
	}

	var contracts []*models.Contract
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
		contract, cerr := models.CreateContractFromCSV(
			headers.field(record, "id"),
			headers.field(record, "contract_number"),
			headers.field(record, "agreement_number"),
			headers.field(record, "customer_name"),
			headers.field(record, "monthly_amount"),
			headers.field(record, "contract_amount"),
			headers.field(record, "start_date"),
			headers.field(record, "status"),
			headers.field(record, "contract_type"),
		)
		if cerr != nil {
			stats.FailedRecords++
			recordErrors = append(recordErrors,
				errors.ParseError(errors.CodeInvalidData, name, line, "", "", cerr))
			continue
		}

		stats.SuccessfulRecords++
		contracts = append(contracts, contract)
	}

	stats.Errors = errors.NewErrorSummary(recordErrors)
	if stats.FailedRecords > 0 {
		p.logger.WithFields(logger.Fields{
			"file":   name,
			"failed": stats.FailedRecords,
			"total":  stats.TotalRecords,
		}).Warn("some contract records failed to parse")
	}

	return contracts, stats, nil
}
