package extract

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType classifies what a payment description says the payment is for
type PaymentType string

const (
	// PaymentTypeRent indicates a recurring rent installment
	PaymentTypeRent PaymentType = "rent"
	// PaymentTypeLateFee indicates a late fee or penalty
	PaymentTypeLateFee PaymentType = "late_fee"
	// PaymentTypeAdvance indicates an advance or deposit payment
	PaymentTypeAdvance PaymentType = "advance"
)

// NumberEntity is an extracted contract or agreement number candidate.
// Source records which recognizer produced it; Position is the character
// offset of the match in the scanned text.
type NumberEntity struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Position   int     `json:"position"`
}

// NameEntity is an extracted customer name candidate with original casing preserved
type NameEntity struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

// AmountEntity is an extracted monetary amount candidate
type AmountEntity struct {
	Value      decimal.Decimal `json:"value"`
	Confidence float64         `json:"confidence"`
	Context    string          `json:"context"`
}

// DateEntity is an extracted date candidate. Raw holds the matched text,
// Value the parsed date.
type DateEntity struct {
	Raw        string    `json:"raw"`
	Value      time.Time `json:"value"`
	Confidence float64   `json:"confidence"`
	Format     string    `json:"format"`
}

// TypeEntity is a payment-type classification with the indicator words that
// supported it
type TypeEntity struct {
	Type       PaymentType `json:"type"`
	Confidence float64     `json:"confidence"`
	Indicators []string    `json:"indicators"`
}

// EntityBag holds everything one extraction pass recovered from a payment
// description. Slices are never nil and preserve recognizer priority order.
type EntityBag struct {
	ContractNumbers  []NumberEntity `json:"contract_numbers"`
	AgreementNumbers []NumberEntity `json:"agreement_numbers"`
	CustomerNames    []NameEntity   `json:"customer_names"`
	Amounts          []AmountEntity `json:"amounts"`
	Dates            []DateEntity   `json:"dates"`
	PaymentTypes     []TypeEntity   `json:"payment_types"`
}

// NewEntityBag returns an empty bag with all slices allocated
func NewEntityBag() *EntityBag {
	return &EntityBag{
		ContractNumbers:  []NumberEntity{},
		AgreementNumbers: []NumberEntity{},
		CustomerNames:    []NameEntity{},
		Amounts:          []AmountEntity{},
		Dates:            []DateEntity{},
		PaymentTypes:     []TypeEntity{},
	}
}

// HasContractIdentifiers reports whether the bag contains at least one
// contract or agreement number. Payments without any identifier are treated
// as high risk downstream.
func (b *EntityBag) HasContractIdentifiers() bool {
	return len(b.ContractNumbers) > 0 || len(b.AgreementNumbers) > 0
}

// HasType reports whether the bag contains a payment-type classification
// of the given kind
func (b *EntityBag) HasType(t PaymentType) bool {
	for _, pt := range b.PaymentTypes {
		if pt.Type == t {
			return true
		}
	}
	return false
}

// EntityCount returns the total number of extracted entities across all classes
func (b *EntityBag) EntityCount() int {
	return len(b.ContractNumbers) + len(b.AgreementNumbers) + len(b.CustomerNames) +
		len(b.Amounts) + len(b.Dates) + len(b.PaymentTypes)
}
