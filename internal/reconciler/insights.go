package reconciler

import (
	"regexp"
	"strings"

	"payment-linking-engine/internal/extract"
)

// Insights summarizes how workable one payment's description was and what
// would improve future descriptions
type Insights struct {
	TextComplexity       float64  `json:"text_complexity"`
	DataQuality          float64  `json:"data_quality"`
	ProcessingConfidence float64  `json:"processing_confidence"`
	Recommendations      []string `json:"recommendations"`
}

var specialCharPattern = regexp.MustCompile(`[^a-zA-Z0-9_\s]`)

// BuildInsights derives the per-payment insight block from the extraction
// result and the best match, if any
func BuildInsights(text string, bag *extract.EntityBag, best *MatchResult) Insights {
	insights := Insights{
		TextComplexity:  TextComplexity(text),
		DataQuality:     DataQuality(bag),
		Recommendations: recommendations(bag, best),
	}
	if best != nil {
		insights.ProcessingConfidence = best.Decision.Confidence
	}
	return insights
}

// TextComplexity scores how dense a description is on a 0-100 scale, from
// word count, vocabulary size, and non-alphanumeric character count
func TextComplexity(text string) float64 {
	words := strings.Fields(text)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}
	special := len(specialCharPattern.FindAllString(text, -1))

	complexity := float64(len(words)*2+len(unique)+special) / 10
	if complexity > 100 {
		complexity = 100
	}
	return complexity
}

// DataQuality scores how much linkable evidence one extraction produced.
// Identifiers dominate the scale because they dominate the match weights.
func DataQuality(bag *extract.EntityBag) float64 {
	quality := 0.0
	if len(bag.ContractNumbers) > 0 {
		quality += 25
	}
	if len(bag.AgreementNumbers) > 0 {
		quality += 25
	}
	if len(bag.CustomerNames) > 0 {
		quality += 20
	}
	if len(bag.Amounts) > 0 {
		quality += 15
	}
	if len(bag.Dates) > 0 {
		quality += 10
	}
	if len(bag.PaymentTypes) > 0 {
		quality += 5
	}
	if quality > 100 {
		quality = 100
	}
	return quality
}

func recommendations(bag *extract.EntityBag, best *MatchResult) []string {
	recs := []string{}

	if len(bag.ContractNumbers) == 0 {
		recs = append(recs, "add a contract number to the payment description")
	}
	if len(bag.Amounts) == 0 {
		recs = append(recs, "state the payment amount in the description")
	}
	if best != nil && best.Decision.Confidence < 80 {
		recs = append(recs, "review the payment details manually")
	}
	if len(bag.PaymentTypes) == 0 {
		recs = append(recs, "state the payment type (rent, late fee, advance)")
	}

	return recs
}
