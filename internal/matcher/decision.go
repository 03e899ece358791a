package matcher

import "payment-linking-engine/internal/extract"

// Action is the linking decision for one payment/contract pair
type Action string

const (
	// ActionAutoLink links the payment without human involvement
	ActionAutoLink Action = "auto_link"
	// ActionReview queues the link for a quick human confirmation
	ActionReview Action = "review"
	// ActionManual requires full manual matching
	ActionManual Action = "manual"
	// ActionReject discards the candidate pairing
	ActionReject Action = "reject"
)

// RiskLevel expresses how dangerous an automatic link would be
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Decision is the outcome of classifying one similarity vector. Confidence
// starts from the overall score and is adjusted by the bonus and penalty
// rules; Reasoning records every rule that fired, in order.
type Decision struct {
	Action     Action    `json:"action"`
	Confidence float64   `json:"confidence"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Reasoning  []string  `json:"reasoning"`
}

// Decide classifies a similarity vector into a linking decision. Risk starts
// at medium and only the rules below move it; confidence is clamped to
// [0, 100] after all adjustments.
func (s *Scorer) Decide(similarity SimilarityVector, bag *extract.EntityBag) Decision {
	reasoning := []string{}
	confidence := similarity.Overall
	risk := RiskMedium

	if similarity.ContractNumber >= 80 && similarity.AgreementNumber >= 80 {
		risk = RiskLow
		confidence += 10
		reasoning = append(reasoning, "strong match on contract and agreement numbers")
	}

	if similarity.CustomerName >= 70 {
		confidence += 5
		reasoning = append(reasoning, "strong customer name match")
	}

	if similarity.Amount >= 80 {
		confidence += 5
		reasoning = append(reasoning, "precise amount match")
	}

	if !bag.HasContractIdentifiers() {
		risk = RiskHigh
		confidence -= 20
		reasoning = append(reasoning, "no clear contract identifiers in description")
	}

	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	var action Action
	switch {
	case confidence >= s.config.AutoLinkConfidence && risk == RiskLow:
		action = ActionAutoLink
		reasoning = append(reasoning, "very high confidence, linking automatically")
	case confidence >= s.config.ReviewConfidence && risk != RiskHigh:
		action = ActionReview
		reasoning = append(reasoning, "good confidence, queued for quick review")
	case confidence >= s.config.ManualConfidence:
		action = ActionManual
		reasoning = append(reasoning, "moderate confidence, manual matching required")
	default:
		action = ActionReject
		reasoning = append(reasoning, "low confidence, candidate rejected")
	}

	return Decision{
		Action:     action,
		Confidence: confidence,
		RiskLevel:  risk,
		Reasoning:  reasoning,
	}
}
