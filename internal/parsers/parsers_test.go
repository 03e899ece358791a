package parsers

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"payment-linking-engine/pkg/errors"
	"payment-linking-engine/pkg/logger"
)

func TestPaymentParserParsesValidFile(t *testing.T) {
	csv := `id,payment_number,payment_date,amount,description,reference_number
PAY-1,1001,2024-01-15,500.000,LTO123456 rent payment,REF-9
PAY-2,1002,2024-01-16,350.500,دفعة إيجار عقد 4521,
`
	parser := NewPaymentParser(logger.NewSilentLogger())
	payments, stats, err := parser.Parse(strings.NewReader(csv), "payments.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(payments) != 2 {
		t.Fatalf("got %d payments, want 2", len(payments))
	}
	if stats.TotalRecords != 2 || stats.SuccessfulRecords != 2 || stats.FailedRecords != 0 {
		t.Errorf("stats = %+v, want 2/2/0", stats)
	}

	if payments[0].ID != "PAY-1" {
		t.Errorf("ID = %q, want PAY-1", payments[0].ID)
	}
	if !payments[0].Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Amount = %s, want 500", payments[0].Amount)
	}
	if payments[0].Reference != "REF-9" {
		t.Errorf("Reference = %q, want REF-9", payments[0].Reference)
	}
	if payments[1].Description != "دفعة إيجار عقد 4521" {
		t.Errorf("Description = %q", payments[1].Description)
	}
}

func TestPaymentParserHeaderAliases(t *testing.T) {
	csv := `payment_id,date,paid_amount,notes
PAY-1,2024-01-15,500,rent payment
`
	parser := NewPaymentParser(logger.NewSilentLogger())
	payments, _, err := parser.Parse(strings.NewReader(csv), "payments.csv")
	if err != nil {
		t.Fatalf("Parse with aliased headers failed: %v", err)
	}

	if len(payments) != 1 {
		t.Fatalf("got %d payments, want 1", len(payments))
	}
	if payments[0].Description != "rent payment" {
		t.Errorf("Description = %q, want aliased notes column", payments[0].Description)
	}
}

func TestPaymentParserAccumulatesRecordErrors(t *testing.T) {
	csv := `id,payment_date,amount,description
PAY-1,2024-01-15,500,good row
PAY-2,not-a-date,500,bad date
PAY-3,2024-01-17,not-money,bad amount
PAY-4,2024-01-18,125.250,good row
`
	parser := NewPaymentParser(logger.NewSilentLogger())
	payments, stats, err := parser.Parse(strings.NewReader(csv), "payments.csv")
	if err != nil {
		t.Fatalf("record-level failures must not fail the parse: %v", err)
	}

	if len(payments) != 2 {
		t.Errorf("got %d payments, want 2 good rows", len(payments))
	}
	if stats.FailedRecords != 2 {
		t.Errorf("FailedRecords = %d, want 2", stats.FailedRecords)
	}
	if stats.Errors.Total != 2 {
		t.Errorf("error summary total = %d, want 2", stats.Errors.Total)
	}
	if !stats.Errors.HasCategory(errors.CategoryParse) {
		t.Error("record errors should be parse category")
	}
}

func TestPaymentParserMissingRequiredColumn(t *testing.T) {
	csv := `id,description
PAY-1,rent payment
`
	parser := NewPaymentParser(logger.NewSilentLogger())
	_, _, err := parser.Parse(strings.NewReader(csv), "payments.csv")
	if err == nil {
		t.Fatal("expected an error for missing required columns")
	}

	linkerErr, ok := errors.AsLinkerError(err)
	if !ok {
		t.Fatalf("expected LinkerError, got %T", err)
	}
	if linkerErr.Code != errors.CodeMissingColumn {
		t.Errorf("Code = %s, want missing_column", linkerErr.Code)
	}
}

func TestPaymentParserFileNotFound(t *testing.T) {
	parser := NewPaymentParser(logger.NewSilentLogger())
	_, _, err := parser.ParseFile("/nonexistent/payments.csv")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}

	linkerErr, ok := errors.AsLinkerError(err)
	if !ok {
		t.Fatalf("expected LinkerError, got %T", err)
	}
	if linkerErr.Category != errors.CategoryFile {
		t.Errorf("Category = %s, want file", linkerErr.Category)
	}
}

func TestContractParserParsesValidFile(t *testing.T) {
	csv := `id,contract_number,agreement_number,customer_name,monthly_amount,contract_amount,start_date,status,contract_type
CON-1,LTO123456,AGR-445566,Sun Magic Trading,500.000,6000.000,2023-06-01,active,rental
CON-2,LTO789012,,Desert Line Transport,,9600.000,2022-09-15,completed,lease
`
	parser := NewContractParser(logger.NewSilentLogger())
	contracts, stats, err := parser.Parse(strings.NewReader(csv), "contracts.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(contracts) != 2 {
		t.Fatalf("got %d contracts, want 2", len(contracts))
	}
	if stats.SuccessfulRecords != 2 {
		t.Errorf("SuccessfulRecords = %d, want 2", stats.SuccessfulRecords)
	}

	first := contracts[0]
	if first.ContractNumber != "LTO123456" || first.AgreementDigits() != "445566" {
		t.Errorf("unexpected identifiers: %s / %s", first.ContractNumber, first.AgreementNumber)
	}
	if !first.IsRental() {
		t.Error("first contract should be rental type")
	}

	// Missing monthly amount falls back to the total for reference pricing
	second := contracts[1]
	if !second.ReferenceAmount().Equal(decimal.NewFromInt(9600)) {
		t.Errorf("ReferenceAmount = %s, want 9600", second.ReferenceAmount())
	}
}

func TestContractParserRejectsBadStatus(t *testing.T) {
	csv := `id,contract_number,start_date,status
CON-1,123456,2023-06-01,frozen
CON-2,123457,2023-06-01,active
`
	parser := NewContractParser(logger.NewSilentLogger())
	contracts, stats, err := parser.Parse(strings.NewReader(csv), "contracts.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(contracts) != 1 {
		t.Errorf("got %d contracts, want 1", len(contracts))
	}
	if stats.FailedRecords != 1 {
		t.Errorf("FailedRecords = %d, want 1", stats.FailedRecords)
	}
}

func TestContractParserHeaderAliases(t *testing.T) {
	csv := `contract_id,contract_no,customer,installment,started_at,state,type
CON-1,123456,Sun Magic,500,2023-06-01,active,rental
`
	parser := NewContractParser(logger.NewSilentLogger())
	contracts, _, err := parser.Parse(strings.NewReader(csv), "contracts.csv")
	if err != nil {
		t.Fatalf("Parse with aliased headers failed: %v", err)
	}

	if len(contracts) != 1 {
		t.Fatalf("got %d contracts, want 1", len(contracts))
	}
	if contracts[0].CustomerName != "Sun Magic" {
		t.Errorf("CustomerName = %q, want aliased customer column", contracts[0].CustomerName)
	}
}
