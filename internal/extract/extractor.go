// Package extract recovers structured entities from free-text payment
// descriptions. Input text is mixed Arabic/English with no reliable
// formatting, so extraction runs every recognizer in the pattern library and
// reports all candidates with per-candidate confidence instead of picking
// winners.
//
// Extraction is pure and total: the same text always yields the same bag,
// and malformed input yields an empty bag rather than an error.
//
// Example usage:
//
//	bag := extract.Extract("LTO123456 rent payment 500 KWD for January 2024")
//	for _, cn := range bag.ContractNumbers {
//	    fmt.Printf("%s (%.2f via %s)\n", cn.Value, cn.Confidence, cn.Source)
//	}
package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

const (
	maxContractNumber  = 999999
	minAgreementNumber = 1000
	maxAmountValue     = 1000000
	minNameLen         = 3
	maxNameLen         = 49
)

// Extract runs the full pattern library over the given text and returns
// every entity candidate found. Numeric and amount recognizers scan a
// lowercased copy; name and date recognizers scan the original text to
// preserve casing.
func Extract(text string) *EntityBag {
	bag := NewEntityBag()
	if strings.TrimSpace(text) == "" {
		return bag
	}

	// NFKC folds presentation forms and width variants common in
	// copy-pasted Arabic bank text
	normalized := norm.NFKC.String(text)
	lowered := strings.ToLower(normalized)

	extractContractNumbers(bag, lowered)
	extractAgreementNumbers(bag, lowered)
	extractCustomerNames(bag, normalized)
	extractAmounts(bag, lowered)
	extractDates(bag, normalized)
	classifyPaymentTypes(bag, lowered)

	return bag
}

func extractContractNumbers(bag *EntityBag, text string) {
	for _, p := range contractNumberPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if m[2] < 0 {
				continue
			}
			value := text[m[2]:m[3]]
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 || n >= maxContractNumber {
				continue
			}
			bag.ContractNumbers = append(bag.ContractNumbers, NumberEntity{
				Value:      value,
				Confidence: p.confidence,
				Source:     p.source,
				Position:   m[0],
			})
		}
	}
}

func extractAgreementNumbers(bag *EntityBag, text string) {
	for _, p := range agreementNumberPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if m[2] < 0 {
				continue
			}
			value := text[m[2]:m[3]]
			n, err := strconv.Atoi(value)
			if err != nil || n <= minAgreementNumber {
				continue
			}
			bag.AgreementNumbers = append(bag.AgreementNumbers, NumberEntity{
				Value:      value,
				Confidence: p.confidence,
				Source:     p.source,
				Position:   m[0],
			})
		}
	}
}

func extractCustomerNames(bag *EntityBag, text string) {
	for _, p := range customerNamePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			value := strings.TrimSpace(m[1])
			length := len([]rune(value))
			if length < minNameLen || length > maxNameLen {
				continue
			}
			bag.CustomerNames = append(bag.CustomerNames, NameEntity{
				Value:      value,
				Confidence: p.confidence,
				Language:   p.language,
			})
		}
	}
}

func extractAmounts(bag *EntityBag, text string) {
	for _, p := range amountPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			value, err := decimal.NewFromString(m[1])
			if err != nil {
				continue
			}
			if !value.IsPositive() || value.GreaterThanOrEqual(decimal.NewFromInt(maxAmountValue)) {
				continue
			}
			bag.Amounts = append(bag.Amounts, AmountEntity{
				Value:      value,
				Confidence: p.confidence,
				Context:    p.context,
			})
		}
	}
}

func extractDates(bag *EntityBag, text string) {
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			parsed, ok := parseDateMatch(p.format, m)
			if !ok {
				// Unparseable dates are dropped, never reported as errors
				continue
			}
			bag.Dates = append(bag.Dates, DateEntity{
				Raw:        m[0],
				Value:      parsed,
				Confidence: p.confidence,
				Format:     p.format,
			})
		}
	}
}

// parseDateMatch turns a date recognizer match into a concrete time. Month
// and year formats resolve to the first of the month.
func parseDateMatch(format string, m []string) (time.Time, bool) {
	switch format {
	case "month_year":
		month, ok := englishMonths[strings.ToLower(m[1])]
		if !ok {
			return time.Time{}, false
		}
		year, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true

	case "arabic_month_year":
		month, ok := arabicMonths[m[1]]
		if !ok {
			return time.Time{}, false
		}
		year, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true

	case "dd/mm/yyyy":
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return makeCalendarDate(year, month, day)

	case "yyyy-mm-dd":
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeCalendarDate(year, month, day)
	}

	return time.Time{}, false
}

// makeCalendarDate rejects impossible day/month combinations instead of
// letting time.Date normalize them into the next month
func makeCalendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func classifyPaymentTypes(bag *EntityBag, text string) {
	for _, profile := range paymentTypeProfiles {
		if !profile.re.MatchString(text) {
			continue
		}

		var matched []string
		for _, indicator := range profile.indicators {
			if strings.Contains(text, strings.ToLower(indicator)) {
				matched = append(matched, indicator)
			}
		}
		if len(matched) == 0 {
			continue
		}

		fraction := float64(len(matched)) / float64(len(profile.indicators))
		bag.PaymentTypes = append(bag.PaymentTypes, TypeEntity{
			Type:       profile.paymentType,
			Confidence: profile.confidence * fraction,
			Indicators: matched,
		})
	}
}
