package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle state of a contract
type ContractStatus string

const (
	// ContractStatusActive represents a contract currently in force
	ContractStatusActive ContractStatus = "active"
	// ContractStatusCompleted represents a contract that ran to term
	ContractStatusCompleted ContractStatus = "completed"
	// ContractStatusOverdue represents a contract with outstanding unpaid balance
	ContractStatusOverdue ContractStatus = "overdue"
	// ContractStatusCancelled represents a cancelled contract
	ContractStatusCancelled ContractStatus = "cancelled"
)

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsValid checks if the contract status is one of the known states
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusActive, ContractStatusCompleted, ContractStatusOverdue, ContractStatusCancelled:
		return true
	default:
		return false
	}
}

// IsEligible reports whether contracts in this status participate in matching.
// Cancelled contracts are never candidates.
func (s ContractStatus) IsEligible() bool {
	return s == ContractStatusActive || s == ContractStatusCompleted || s == ContractStatusOverdue
}

// Payment represents one incoming payment record whose free-text description
// must be reconciled against open contracts
type Payment struct {
	ID            string          `json:"id" csv:"id"`
	PaymentNumber string          `json:"payment_number" csv:"payment_number"`
	PaymentDate   time.Time       `json:"payment_date" csv:"payment_date"`
	Amount        decimal.Decimal `json:"amount" csv:"amount"`
	Description   string          `json:"description" csv:"description"`
	Reference     string          `json:"reference_number,omitempty" csv:"reference_number"`
}

// NewPayment creates a new Payment instance
func NewPayment(id, number string, date time.Time, amount decimal.Decimal, description string) *Payment {
	return &Payment{
		ID:            id,
		PaymentNumber: number,
		PaymentDate:   date,
		Amount:        amount,
		Description:   description,
	}
}

// Validate performs basic validation on the Payment.
// An empty description is deliberately valid: extraction treats it as a
// legitimate zero-evidence input, not an error.
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("payment ID cannot be empty")
	}

	if p.Amount.IsNegative() {
		return fmt.Errorf("payment amount cannot be negative")
	}

	return nil
}

// MatchText returns the free text the extractor scans for this payment:
// the description plus the reference number when present.
func (p *Payment) MatchText() string {
	if p.Reference == "" {
		return p.Description
	}
	if p.Description == "" {
		return p.Reference
	}
	return p.Description + " " + p.Reference
}

// String returns a string representation of the Payment
func (p *Payment) String() string {
	return fmt.Sprintf("Payment{ID: %s, Number: %s, Amount: %s, Date: %s}",
		p.ID, p.PaymentNumber, p.Amount.String(), p.PaymentDate.Format("2006-01-02"))
}

// MarshalJSON implements custom JSON marshaling for Payment
func (p *Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Amount      string `json:"amount"`
		PaymentDate string `json:"payment_date"`
		*Alias
	}{
		Amount:      p.Amount.String(),
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		Alias:       (*Alias)(p),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Payment
func (p *Payment) UnmarshalJSON(data []byte) error {
	type Alias Payment
	aux := &struct {
		Amount      string `json:"amount"`
		PaymentDate string `json:"payment_date"`
		*Alias
	}{
		Alias: (*Alias)(p),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	p.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	p.PaymentDate, err = ParseTimeWithFormats(aux.PaymentDate)
	if err != nil {
		return fmt.Errorf("invalid payment date format: %w", err)
	}

	return nil
}

// Contract represents one candidate contract as a read-only snapshot.
// The candidate source owns the record; the scorer only borrows it for the
// duration of one scoring pass.
type Contract struct {
	ID              string          `json:"id" csv:"id"`
	ContractNumber  string          `json:"contract_number" csv:"contract_number"`
	AgreementNumber string          `json:"agreement_number" csv:"agreement_number"`
	CustomerName    string          `json:"customer_name" csv:"customer_name"`
	MonthlyAmount   decimal.Decimal `json:"monthly_amount" csv:"monthly_amount"`
	ContractAmount  decimal.Decimal `json:"contract_amount" csv:"contract_amount"`
	StartDate       time.Time       `json:"start_date" csv:"start_date"`
	Status          ContractStatus  `json:"status" csv:"status"`
	ContractType    string          `json:"contract_type" csv:"contract_type"`
}

// NewContract creates a new Contract snapshot
func NewContract(id, number, customerName string, monthlyAmount decimal.Decimal, startDate time.Time, status ContractStatus) *Contract {
	return &Contract{
		ID:             id,
		ContractNumber: number,
		CustomerName:   customerName,
		MonthlyAmount:  monthlyAmount,
		StartDate:      startDate,
		Status:         status,
	}
}

// Validate performs basic validation on the Contract
func (c *Contract) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("contract ID cannot be empty")
	}

	if strings.TrimSpace(c.ContractNumber) == "" {
		return fmt.Errorf("contract number cannot be empty")
	}

	if !c.Status.IsValid() {
		return fmt.Errorf("invalid contract status: %s", c.Status)
	}

	if c.MonthlyAmount.IsNegative() || c.ContractAmount.IsNegative() {
		return fmt.Errorf("contract amounts cannot be negative")
	}

	return nil
}

// ReferenceAmount returns the amount the scorer compares extracted amounts
// against: the monthly amount when set, otherwise the total contract amount.
func (c *Contract) ReferenceAmount() decimal.Decimal {
	if !c.MonthlyAmount.IsZero() {
		return c.MonthlyAmount
	}
	return c.ContractAmount
}

// AgreementDigits returns the agreement number with all non-digit characters
// stripped, for comparison against extracted numeric values.
func (c *Contract) AgreementDigits() string {
	var b strings.Builder
	for _, r := range c.AgreementNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsRental reports whether the contract type indicates a rental agreement
func (c *Contract) IsRental() bool {
	return strings.Contains(strings.ToLower(c.ContractType), "rental")
}

// String returns a string representation of the Contract
func (c *Contract) String() string {
	return fmt.Sprintf("Contract{ID: %s, Number: %s, Customer: %s, Monthly: %s, Status: %s}",
		c.ID, c.ContractNumber, c.CustomerName, c.MonthlyAmount.String(), c.Status)
}

// MarshalJSON implements custom JSON marshaling for Contract
func (c *Contract) MarshalJSON() ([]byte, error) {
	type Alias Contract
	return json.Marshal(&struct {
		MonthlyAmount  string `json:"monthly_amount"`
		ContractAmount string `json:"contract_amount"`
		StartDate      string `json:"start_date"`
		*Alias
	}{
		MonthlyAmount:  c.MonthlyAmount.String(),
		ContractAmount: c.ContractAmount.String(),
		StartDate:      c.StartDate.Format("2006-01-02"),
		Alias:          (*Alias)(c),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Contract
func (c *Contract) UnmarshalJSON(data []byte) error {
	type Alias Contract
	aux := &struct {
		MonthlyAmount  string `json:"monthly_amount"`
		ContractAmount string `json:"contract_amount"`
		StartDate      string `json:"start_date"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	c.MonthlyAmount, err = decimal.NewFromString(aux.MonthlyAmount)
	if err != nil {
		return fmt.Errorf("invalid monthly amount format: %w", err)
	}

	c.ContractAmount, err = decimal.NewFromString(aux.ContractAmount)
	if err != nil {
		return fmt.Errorf("invalid contract amount format: %w", err)
	}

	c.StartDate, err = ParseTimeWithFormats(aux.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date format: %w", err)
	}

	return nil
}

// Utility functions for type conversion and validation

// ParseDecimalFromString parses a decimal value from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	// Remove common currency markers and thousand separators
	s = strings.ReplaceAll(s, "KWD", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseContractStatus parses and validates a contract status from string
func ParseContractStatus(s string) (ContractStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "active":
		return ContractStatusActive, nil
	case "completed", "complete", "expired":
		return ContractStatusCompleted, nil
	case "overdue", "late":
		return ContractStatusOverdue, nil
	case "cancelled", "canceled":
		return ContractStatusCancelled, nil
	default:
		return "", fmt.Errorf("invalid contract status '%s'", s)
	}
}

// ParseTimeWithFormats attempts to parse time from string using multiple common formats
func ParseTimeWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time string cannot be empty")
	}

	// Common date formats used in exported payment and contract data
	formats := []string{
		time.RFC3339,          // "2006-01-02T15:04:05Z07:00"
		"2006-01-02 15:04:05", // "2006-01-02 15:04:05"
		"2006-01-02T15:04:05", // "2006-01-02T15:04:05"
		"2006-01-02",          // "2006-01-02"
		"02/01/2006",          // "02/01/2006"
		"2006/01/02",          // "2006/01/02"
		"Jan 2, 2006",         // "Jan 2, 2006"
		"January 2, 2006",     // "January 2, 2006"
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time '%s': %w", s, lastErr)
}

// CreatePaymentFromCSV creates a Payment from CSV field values
func CreatePaymentFromCSV(id, number, dateStr, amountStr, description, reference string) (*Payment, error) {
	amount, err := ParseDecimalFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in CSV: %w", err)
	}

	date, err := ParseTimeWithFormats(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid payment date in CSV: %w", err)
	}

	payment := NewPayment(strings.TrimSpace(id), strings.TrimSpace(number), date, amount, strings.TrimSpace(description))
	payment.Reference = strings.TrimSpace(reference)

	if err := payment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payment data: %w", err)
	}

	return payment, nil
}

// CreateContractFromCSV creates a Contract from CSV field values
func CreateContractFromCSV(id, number, agreement, customer, monthlyStr, totalStr, startStr, statusStr, contractType string) (*Contract, error) {
	monthly := decimal.Zero
	if strings.TrimSpace(monthlyStr) != "" {
		var err error
		monthly, err = ParseDecimalFromString(monthlyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid monthly amount in CSV: %w", err)
		}
	}

	total := decimal.Zero
	if strings.TrimSpace(totalStr) != "" {
		var err error
		total, err = ParseDecimalFromString(totalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid contract amount in CSV: %w", err)
		}
	}

	start, err := ParseTimeWithFormats(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid start date in CSV: %w", err)
	}

	status, err := ParseContractStatus(statusStr)
	if err != nil {
		return nil, fmt.Errorf("invalid status in CSV: %w", err)
	}

	contract := &Contract{
		ID:              strings.TrimSpace(id),
		ContractNumber:  strings.TrimSpace(number),
		AgreementNumber: strings.TrimSpace(agreement),
		CustomerName:    strings.TrimSpace(customer),
		MonthlyAmount:   monthly,
		ContractAmount:  total,
		StartDate:       start,
		Status:          status,
		ContractType:    strings.TrimSpace(contractType),
	}

	if err := contract.Validate(); err != nil {
		return nil, fmt.Errorf("invalid contract data: %w", err)
	}

	return contract, nil
}
