// Package matcher scores extracted payment entities against candidate
// contracts and classifies the result into a linking decision.
//
// Scoring is a pure function of the entity bag, the candidate snapshot, and
// the configuration: six sub-scores in [0,100], combined into a weighted
// overall score. The decision engine then folds in bonus and penalty rules
// and picks an action from an ordered threshold ladder.
//
// Example usage:
//
//	scorer := matcher.NewScorer(matcher.DefaultConfig())
//	similarity := scorer.Score(bag, contract)
//	decision := scorer.Decide(similarity, bag)
package matcher

import (
	"strings"

	"payment-linking-engine/internal/extract"
	"payment-linking-engine/internal/models"
)

// SimilarityVector holds the six dimension scores and their weighted
// combination. All values are in [0, 100].
type SimilarityVector struct {
	Overall         float64 `json:"overall"`
	ContractNumber  float64 `json:"contract_number"`
	AgreementNumber float64 `json:"agreement_number"`
	CustomerName    float64 `json:"customer_name"`
	Amount          float64 `json:"amount"`
	Temporal        float64 `json:"temporal"`
	Contextual      float64 `json:"contextual"`
}

// Scorer computes similarity vectors and decisions under one configuration
type Scorer struct {
	config *MatchingConfig
}

// NewScorer creates a Scorer with the given configuration. A nil config
// falls back to defaults.
func NewScorer(config *MatchingConfig) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Scorer{config: config}
}

// Config returns the scorer's configuration
func (s *Scorer) Config() *MatchingConfig {
	return s.config
}

// Score computes the full similarity vector between one payment's entity bag
// and one candidate contract. Each dimension takes the best score over all
// extracted candidates of its class.
func (s *Scorer) Score(bag *extract.EntityBag, contract *models.Contract) SimilarityVector {
	v := SimilarityVector{}

	v.ContractNumber = s.scoreIdentifiers(bag.ContractNumbers, strings.ToLower(contract.ContractNumber))
	v.AgreementNumber = s.scoreIdentifiers(bag.AgreementNumbers, contract.AgreementDigits())
	v.CustomerName = s.scoreCustomerName(bag.CustomerNames, contract.CustomerName)
	v.Amount = s.scoreAmount(bag.Amounts, contract)
	v.Temporal = s.scoreTemporal(bag.Dates, contract)
	v.Contextual = s.scoreContextual(bag, contract)

	w := s.config.Weights
	v.Overall = v.ContractNumber*w.ContractNumber +
		v.AgreementNumber*w.AgreementNumber +
		v.CustomerName*w.CustomerName +
		v.Amount*w.Amount +
		v.Temporal*w.Temporal +
		v.Contextual*w.Contextual

	return v
}

func (s *Scorer) scoreIdentifiers(entities []extract.NumberEntity, candidate string) float64 {
	best := 0.0
	for _, e := range entities {
		if score := identifierScore(e.Value, candidate, e.Confidence); score > best {
			best = score
		}
	}
	return best
}

func (s *Scorer) scoreCustomerName(entities []extract.NameEntity, candidate string) float64 {
	best := 0.0
	for _, e := range entities {
		if score := nameTokenScore(e.Value, candidate, e.Confidence); score > best {
			best = score
		}
	}
	return best
}

func (s *Scorer) scoreAmount(entities []extract.AmountEntity, contract *models.Contract) float64 {
	reference := contract.ReferenceAmount()
	if reference.IsZero() {
		return 0
	}

	ref, _ := reference.Float64()
	tolerance := ref * s.config.AmountTolerancePercent / 100

	best := 0.0
	for _, e := range entities {
		value, _ := e.Value.Float64()
		difference := value - ref
		if difference < 0 {
			difference = -difference
		}
		if difference > tolerance {
			continue
		}
		score := (1 - difference/ref) * e.Confidence * 100
		if score > best {
			best = score
		}
	}
	return best
}

func (s *Scorer) scoreTemporal(entities []extract.DateEntity, contract *models.Contract) float64 {
	if contract.StartDate.IsZero() {
		return 0
	}

	window := float64(s.config.TemporalWindowDays)

	best := 0.0
	for _, e := range entities {
		days := contract.StartDate.Sub(e.Value).Hours() / 24
		if days < 0 {
			days = -days
		}
		if days > window {
			continue
		}
		score := (1 - days/window) * e.Confidence * 100
		if score > best {
			best = score
		}
	}
	return best
}

// scoreContextual rewards agreement between the payment's classified type and
// the contract's type and status. Bonus constants come from production
// calibration; recalibrating means editing this one function.
func (s *Scorer) scoreContextual(bag *extract.EntityBag, contract *models.Contract) float64 {
	// A bag with nothing in it carries no contextual evidence either way,
	// so the status bonus must not manufacture a nonzero overall score
	if bag.EntityCount() == 0 {
		return 0
	}

	score := 0.0

	for _, pt := range bag.PaymentTypes {
		if pt.Type == extract.PaymentTypeRent && contract.IsRental() {
			score += 20
		}
		if pt.Type == extract.PaymentTypeLateFee && contract.Status == models.ContractStatusOverdue {
			score += 15
		}
	}

	if contract.Status == models.ContractStatusActive {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}
